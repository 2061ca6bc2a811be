package items

import (
	"time"

	"github.com/google/uuid"

	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
)

// CreateItemInput captures a new catalog item. OpeningStock seeds the quantity
// through the stock journal rather than writing the column directly.
type CreateItemInput struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	SKU          *string `json:"sku" validate:"omitempty,max=64"`
	BuyPrice     float64 `json:"buy_price" validate:"gte=0"`
	SellPrice    float64 `json:"sell_price" validate:"gte=0"`
	OpeningStock int     `json:"opening_stock" validate:"gte=0"`
}

// UpdateItemInput renames or re-tags an item. Prices change through
// UpdatePricesInput so every change lands in the revision log.
type UpdateItemInput struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=200"`
	SKU  *string `json:"sku" validate:"omitempty,max=64"`
}

// UpdatePricesInput sets new buy and sell prices and appends a revision.
type UpdatePricesInput struct {
	BuyPrice  float64 `json:"buy_price" validate:"gte=0"`
	SellPrice float64 `json:"sell_price" validate:"gte=0"`
	Notes     string  `json:"notes" validate:"omitempty,max=500"`
}

// CustomerPriceInput pins a per-customer sell price for an item.
type CustomerPriceInput struct {
	CustomerID uuid.UUID `json:"customer_id" validate:"required"`
	Price      float64   `json:"price" validate:"gte=0"`
}

// AdjustStockInput is a manual correction outside of sales and returns.
type AdjustStockInput struct {
	Delta int    `json:"delta" validate:"required"`
	Notes string `json:"notes" validate:"omitempty,max=500"`
}

// ItemDTO is the catalog shape returned to clients.
type ItemDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SKU       *string   `json:"sku,omitempty"`
	BuyPrice  float64   `json:"buy_price"`
	SellPrice float64   `json:"sell_price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemList is a cursor page of items, newest first.
type ItemList struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func toDTO(item *models.Item) *ItemDTO {
	return &ItemDTO{
		ID:        item.ID,
		Name:      item.Name,
		SKU:       item.SKU,
		BuyPrice:  item.BuyPrice,
		SellPrice: item.SellPrice,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}
