package models

import (
	"time"

	"github.com/google/uuid"
)

// ReturnRecord reverses part of a sale. Immutable once created; the refund may
// legitimately differ from the total return value (restocking fees, goodwill).
type ReturnRecord struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	TransactionID    *uuid.UUID       `gorm:"column:transaction_id;type:uuid;index"`
	CustomerID       *uuid.UUID       `gorm:"column:customer_id;type:uuid;index"`
	TotalReturnValue float64          `gorm:"column:total_return_value;type:numeric(14,2);not null"`
	RefundAmount     float64          `gorm:"column:refund_amount;type:numeric(14,2);not null"`
	Notes            *string          `gorm:"column:notes"`
	LineItems        []ReturnLineItem `gorm:"foreignKey:ReturnID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
}

// ReturnLineItem records what came back and the profit given up.
type ReturnLineItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReturnID     uuid.UUID `gorm:"column:return_id;type:uuid;not null;index"`
	ItemID       uuid.UUID `gorm:"column:item_id;type:uuid;not null;index"`
	Name         string    `gorm:"column:name;not null"`
	Quantity     int       `gorm:"column:quantity;not null"`
	PricePerUnit float64   `gorm:"column:price_per_unit;type:numeric(14,2);not null"`
	ProfitLost   float64   `gorm:"column:profit_lost;type:numeric(14,2);not null"`
}
