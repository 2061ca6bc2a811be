package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is a stocked product. Quantity is only ever mutated through the stock
// service so every change lands in the stock journal.
type Item struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Name           string              `gorm:"column:name;not null"`
	SKU            *string             `gorm:"column:sku"`
	BuyPrice       float64             `gorm:"column:buy_price;type:numeric(14,2);not null"`
	SellPrice      float64             `gorm:"column:sell_price;type:numeric(14,2);not null"`
	Quantity       int                 `gorm:"column:quantity;not null;default:0"`
	PriceRevisions []ItemPriceRevision `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	CustomerPrices []ItemCustomerPrice `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// ItemPriceRevision is an append-only log of price changes. Past sale lines keep
// their own buy-price snapshot, so revisions never rewrite history.
type ItemPriceRevision struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID    uuid.UUID `gorm:"column:item_id;type:uuid;not null;index"`
	BuyPrice  float64   `gorm:"column:buy_price;type:numeric(14,2);not null"`
	SellPrice float64   `gorm:"column:sell_price;type:numeric(14,2);not null"`
	Notes     *string   `gorm:"column:notes"`
	ChangedAt time.Time `gorm:"column:changed_at;autoCreateTime"`
}

// ItemCustomerPrice overrides the sell price for one customer.
type ItemCustomerPrice struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID     uuid.UUID `gorm:"column:item_id;type:uuid;not null;uniqueIndex:idx_item_customer_price"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:idx_item_customer_price"`
	Price      float64   `gorm:"column:price;type:numeric(14,2);not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
