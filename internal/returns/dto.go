package returns

import (
	"time"

	"github.com/google/uuid"

	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
)

// ReturnLineInput is one returned item. PricePerUnit defaults to the original
// sale line's unit price when the return references a transaction, then the
// item's current sell price.
type ReturnLineInput struct {
	ItemID       uuid.UUID `json:"item_id" validate:"required"`
	Quantity     int       `json:"quantity" validate:"required,gt=0"`
	PricePerUnit *float64  `json:"price_per_unit" validate:"omitempty,gte=0"`
}

// CreateReturnInput captures a return. RefundAmount is what actually flows back
// to the customer; when omitted it defaults to the total return value.
type CreateReturnInput struct {
	TransactionID *uuid.UUID        `json:"transaction_id"`
	CustomerID    *uuid.UUID        `json:"customer_id"`
	Lines         []ReturnLineInput `json:"lines" validate:"required,min=1,dive"`
	RefundAmount  *float64          `json:"refund_amount" validate:"omitempty,gt=0"`
	Notes         string            `json:"notes" validate:"omitempty,max=1000"`
}

// ReturnDTO is the return shape returned to clients.
type ReturnDTO struct {
	ID               uuid.UUID               `json:"id"`
	TransactionID    *uuid.UUID              `json:"transaction_id,omitempty"`
	CustomerID       *uuid.UUID              `json:"customer_id,omitempty"`
	Lines            []models.ReturnLineItem `json:"lines"`
	TotalReturnValue float64                 `json:"total_return_value"`
	RefundAmount     float64                 `json:"refund_amount"`
	Notes            *string                 `json:"notes,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
}

// ReturnList is a cursor page of returns, newest first.
type ReturnList struct {
	Returns    []ReturnDTO `json:"returns"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func toDTO(record *models.ReturnRecord) *ReturnDTO {
	return &ReturnDTO{
		ID:               record.ID,
		TransactionID:    record.TransactionID,
		CustomerID:       record.CustomerID,
		Lines:            record.LineItems,
		TotalReturnValue: record.TotalReturnValue,
		RefundAmount:     record.RefundAmount,
		Notes:            record.Notes,
		CreatedAt:        record.CreatedAt,
	}
}
