package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/anandkhatri/ledgerbook-backend/pkg/enums"
)

// StockEntry is one immutable row in the stock journal. Quantity is the signed
// delta applied to the item; the journal is never updated or deleted.
type StockEntry struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	ItemID    uuid.UUID            `gorm:"column:item_id;type:uuid;not null;index"`
	Quantity  int                  `gorm:"column:quantity;not null"`
	EntryType enums.StockEntryType `gorm:"column:entry_type;type:text;not null"`
	Notes     *string              `gorm:"column:notes"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
}
