package models

import (
	"time"

	"github.com/google/uuid"
)

// SaleTransaction is a sale with its line items and extra charges. Deletion is a
// flag flip only; financial records are never hard-deleted.
type SaleTransaction struct {
	ID                     uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                 uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index"`
	CustomerID             *uuid.UUID     `gorm:"column:customer_id;type:uuid;index"`
	TotalAmount            float64        `gorm:"column:total_amount;type:numeric(14,2);not null"`
	TotalAdditionalCharges float64        `gorm:"column:total_additional_charges;type:numeric(14,2);not null;default:0"`
	GrandTotal             float64        `gorm:"column:grand_total;type:numeric(14,2);not null"`
	PaymentReceived        float64        `gorm:"column:payment_received;type:numeric(14,2);not null;default:0"`
	BalanceAmount          float64        `gorm:"column:balance_amount;type:numeric(14,2);not null;default:0"`
	TotalProfit            float64        `gorm:"column:total_profit;type:numeric(14,2);not null;default:0"`
	Notes                  *string        `gorm:"column:notes"`
	TransactionDate        time.Time      `gorm:"column:transaction_date;not null;index"`
	IsDeleted              bool           `gorm:"column:is_deleted;not null;default:false"`
	LineItems              []SaleLineItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	Charges                []SaleCharge   `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt              time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// SaleLineItem snapshots name and buy price at sale time so later item edits
// cannot retroactively change recorded profit.
type SaleLineItem struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID uuid.UUID `gorm:"column:transaction_id;type:uuid;not null;index"`
	ItemID        uuid.UUID `gorm:"column:item_id;type:uuid;not null;index"`
	Name          string    `gorm:"column:name;not null"`
	Quantity      int       `gorm:"column:quantity;not null"`
	PricePerUnit  float64   `gorm:"column:price_per_unit;type:numeric(14,2);not null"`
	BuyPrice      float64   `gorm:"column:buy_price;type:numeric(14,2);not null"`
	Profit        float64   `gorm:"column:profit;type:numeric(14,2);not null"`
}

// SaleCharge is an additional charge (delivery, packing); excluded from profit.
type SaleCharge struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID uuid.UUID `gorm:"column:transaction_id;type:uuid;not null;index"`
	Amount        float64   `gorm:"column:amount;type:numeric(14,2);not null"`
	Reason        string    `gorm:"column:reason;not null"`
}
