package transactions

import (
	"time"

	"github.com/google/uuid"

	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
)

// LineInput is one sale line as submitted by the client. PricePerUnit falls
// back to the customer override, then the item sell price, when omitted.
// BuyPrice is an explicit snapshot override; normally the engine snapshots the
// item's current buy price itself.
type LineInput struct {
	ItemID       uuid.UUID `json:"item_id" validate:"required"`
	Quantity     int       `json:"quantity" validate:"required,gt=0"`
	PricePerUnit *float64  `json:"price_per_unit" validate:"omitempty,gte=0"`
	BuyPrice     *float64  `json:"buy_price" validate:"omitempty,gte=0"`
}

// ChargeInput is an additional charge excluded from profit.
type ChargeInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Reason string  `json:"reason" validate:"required,min=1,max=200"`
}

// CreateTransactionInput captures a new sale.
type CreateTransactionInput struct {
	CustomerID      *uuid.UUID    `json:"customer_id"`
	Lines           []LineInput   `json:"lines" validate:"required,min=1,dive"`
	PaymentReceived float64       `json:"payment_received" validate:"gte=0"`
	Charges         []ChargeInput `json:"charges" validate:"omitempty,dive"`
	TransactionDate *time.Time    `json:"transaction_date"`
	Notes           string        `json:"notes" validate:"omitempty,max=1000"`
}

// EditTransactionInput fully replaces a sale's lines and charges; the engine
// reverts the stored effect before applying this as if it were a fresh create.
type EditTransactionInput struct {
	CustomerID      *uuid.UUID    `json:"customer_id"`
	Lines           []LineInput   `json:"lines" validate:"required,min=1,dive"`
	PaymentReceived float64       `json:"payment_received" validate:"gte=0"`
	Charges         []ChargeInput `json:"charges" validate:"omitempty,dive"`
	TransactionDate *time.Time    `json:"transaction_date"`
	Notes           string        `json:"notes" validate:"omitempty,max=1000"`
}

// TransactionDTO is the sale shape returned to clients, with line items
// enriched for audit (name, buy price, and profit attached).
type TransactionDTO struct {
	ID                     uuid.UUID             `json:"id"`
	CustomerID             *uuid.UUID            `json:"customer_id,omitempty"`
	Lines                  []models.SaleLineItem `json:"lines"`
	Charges                []models.SaleCharge   `json:"charges,omitempty"`
	TotalAmount            float64               `json:"total_amount"`
	TotalAdditionalCharges float64               `json:"total_additional_charges"`
	GrandTotal             float64               `json:"grand_total"`
	PaymentReceived        float64               `json:"payment_received"`
	BalanceAmount          float64               `json:"balance_amount"`
	TotalProfit            float64               `json:"total_profit"`
	Notes                  *string               `json:"notes,omitempty"`
	TransactionDate        time.Time             `json:"transaction_date"`
	IsDeleted              bool                  `json:"is_deleted,omitempty"`
	CreatedAt              time.Time             `json:"created_at"`
}

// TransactionList is a cursor page of sales, newest first.
type TransactionList struct {
	Transactions []TransactionDTO `json:"transactions"`
	NextCursor   string           `json:"next_cursor,omitempty"`
}

// ListFilters narrows transaction listings.
type ListFilters struct {
	CustomerID      *uuid.UUID
	OnlyOutstanding bool
}

func toDTO(txn *models.SaleTransaction) *TransactionDTO {
	return &TransactionDTO{
		ID:                     txn.ID,
		CustomerID:             txn.CustomerID,
		Lines:                  txn.LineItems,
		Charges:                txn.Charges,
		TotalAmount:            txn.TotalAmount,
		TotalAdditionalCharges: txn.TotalAdditionalCharges,
		GrandTotal:             txn.GrandTotal,
		PaymentReceived:        txn.PaymentReceived,
		BalanceAmount:          txn.BalanceAmount,
		TotalProfit:            txn.TotalProfit,
		Notes:                  txn.Notes,
		TransactionDate:        txn.TransactionDate,
		IsDeleted:              txn.IsDeleted,
		CreatedAt:              txn.CreatedAt,
	}
}
