package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	"github.com/anandkhatri/ledgerbook-backend/pkg/pagination"
)

// Repository manages items' quantities and the append-only stock journal.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Item, error)
	AdjustQuantity(ctx context.Context, itemID uuid.UUID, delta int) error
	CreateEntry(ctx context.Context, entry *models.StockEntry) error
	ListEntriesByItem(ctx context.Context, userID, itemID uuid.UUID, params pagination.Params) (*EntryList, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AdjustQuantity applies the signed delta in a single statement so the item row
// stays internally consistent even without a wrapping transaction.
func (r *repository) AdjustQuantity(ctx context.Context, itemID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta)).Error
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.StockEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntriesByItem(ctx context.Context, userID, itemID uuid.UUID, params pagination.Params) (*EntryList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var entries []models.StockEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	list := &EntryList{}
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	list.Entries = entries
	return list, nil
}
