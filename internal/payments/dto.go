package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	"github.com/anandkhatri/ledgerbook-backend/pkg/enums"
)

// BulkPaymentInput is one lump-sum payment from a customer. Mode defaults to
// fifo; manual mode requires transaction_ids naming which sales to settle.
type BulkPaymentInput struct {
	CustomerID     uuid.UUID         `json:"customer_id" validate:"required"`
	Amount         float64           `json:"amount" validate:"required,gt=0"`
	Mode           enums.PaymentMode `json:"mode" validate:"omitempty"`
	TransactionIDs []uuid.UUID       `json:"transaction_ids" validate:"omitempty,min=1"`
	Notes          string            `json:"notes" validate:"omitempty,max=1000"`
}

// PaymentDTO is the allocation result returned to clients.
type PaymentDTO struct {
	ID              uuid.UUID                  `json:"id"`
	CustomerID      uuid.UUID                  `json:"customer_id"`
	PaymentAmount   float64                    `json:"payment_amount"`
	AmountApplied   float64                    `json:"amount_applied"`
	RemainingAmount float64                    `json:"remaining_amount"`
	Mode            enums.PaymentMode          `json:"mode"`
	Allocations     []models.PaymentAllocation `json:"allocations"`
	Notes           *string                    `json:"notes,omitempty"`
	CreatedAt       time.Time                  `json:"created_at"`
}

// PaymentList is a cursor page of payment records, newest first.
type PaymentList struct {
	Payments   []PaymentDTO `json:"payments"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func toDTO(record *models.PaymentRecord) *PaymentDTO {
	return &PaymentDTO{
		ID:              record.ID,
		CustomerID:      record.CustomerID,
		PaymentAmount:   record.PaymentAmount,
		AmountApplied:   record.AmountApplied,
		RemainingAmount: record.RemainingAmount,
		Mode:            record.Mode,
		Allocations:     record.Allocations,
		Notes:           record.Notes,
		CreatedAt:       record.CreatedAt,
	}
}
