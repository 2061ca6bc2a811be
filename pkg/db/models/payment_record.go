package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/anandkhatri/ledgerbook-backend/pkg/db/types"
	"github.com/anandkhatri/ledgerbook-backend/pkg/enums"
)

// PaymentRecord captures one bulk payment and how it was allocated. Append-only;
// a record is written even when the payment lands entirely as advance credit.
type PaymentRecord struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	CustomerID      uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	PaymentAmount   float64           `gorm:"column:payment_amount;type:numeric(14,2);not null"`
	AmountApplied   float64           `gorm:"column:amount_applied;type:numeric(14,2);not null"`
	RemainingAmount float64           `gorm:"column:remaining_amount;type:numeric(14,2);not null"`
	Mode            enums.PaymentMode `gorm:"column:mode;type:text;not null"`
	// SelectedTransactionIDs preserves the caller's manual selection for audit.
	// Empty for fifo payments.
	SelectedTransactionIDs dbtypes.UUIDArray   `gorm:"column:selected_transaction_ids;type:uuid[]"`
	Notes                  *string             `gorm:"column:notes"`
	Allocations            []PaymentAllocation `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
	CreatedAt              time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// PaymentAllocation records the slice of a payment consumed by one transaction.
type PaymentAllocation struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentID     uuid.UUID `gorm:"column:payment_id;type:uuid;not null;index"`
	TransactionID uuid.UUID `gorm:"column:transaction_id;type:uuid;not null;index"`
	Applied       float64   `gorm:"column:applied;type:numeric(14,2);not null"`
	BalanceBefore float64   `gorm:"column:balance_before;type:numeric(14,2);not null"`
	BalanceAfter  float64   `gorm:"column:balance_after;type:numeric(14,2);not null"`
}
