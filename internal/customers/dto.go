package customers

import (
	"time"

	"github.com/google/uuid"
)

// CreateCustomerInput captures the fields accepted on customer creation.
type CreateCustomerInput struct {
	Name    string  `json:"name" validate:"required,min=1,max=200"`
	Phone   *string `json:"phone" validate:"omitempty,max=32"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

// UpdateCustomerInput carries optional field updates.
type UpdateCustomerInput struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone   *string `json:"phone" validate:"omitempty,max=32"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

// LedgerTransactionDTO is the transaction slice of a ledger view, trimmed to
// the fields a statement needs.
type LedgerTransactionDTO struct {
	ID              uuid.UUID `json:"id"`
	GrandTotal      float64   `json:"grand_total"`
	PaymentReceived float64   `json:"payment_received"`
	BalanceAmount   float64   `json:"balance_amount"`
	TransactionDate time.Time `json:"transaction_date"`
}

// LedgerPaymentDTO is the payment slice of a ledger view.
type LedgerPaymentDTO struct {
	ID              uuid.UUID `json:"id"`
	PaymentAmount   float64   `json:"payment_amount"`
	AmountApplied   float64   `json:"amount_applied"`
	RemainingAmount float64   `json:"remaining_amount"`
	Mode            string    `json:"mode"`
	CreatedAt       time.Time `json:"created_at"`
}

// CustomerLedgerDTO is the statement view for one customer: the stored
// balance plus the transactions and payments behind it.
type CustomerLedgerDTO struct {
	Customer     CustomerDTO            `json:"customer"`
	Transactions []LedgerTransactionDTO `json:"transactions"`
	Payments     []LedgerPaymentDTO     `json:"payments"`
}

// CustomerDTO is the customer shape returned to clients.
type CustomerDTO struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Phone              *string   `json:"phone,omitempty"`
	Address            *string   `json:"address,omitempty"`
	OutstandingBalance float64   `json:"outstanding_balance"`
	HasAdvanceCredit   bool      `json:"has_advance_credit"`
	CreatedAt          time.Time `json:"created_at"`
}
