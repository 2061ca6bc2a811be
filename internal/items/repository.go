package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	"github.com/anandkhatri/ledgerbook-backend/pkg/pagination"
)

// Repository manages catalog persistence. Price updates and their revision rows
// are written together; quantity never changes here.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, userID, itemID uuid.UUID) (*models.Item, error)
	FindCustomerPrice(ctx context.Context, itemID, customerID uuid.UUID) (*models.ItemCustomerPrice, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Item, string, error)
	Update(ctx context.Context, item *models.Item) error
	UpdatePrices(ctx context.Context, item *models.Item, revision *models.ItemPriceRevision) error
	UpsertCustomerPrice(ctx context.Context, price *models.ItemCustomerPrice) error
	ListPriceRevisions(ctx context.Context, itemID uuid.UUID) ([]models.ItemPriceRevision, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an items repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindByID(ctx context.Context, userID, itemID uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindCustomerPrice(ctx context.Context, itemID, customerID uuid.UUID) (*models.ItemCustomerPrice, error) {
	var price models.ItemCustomerPrice
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND customer_id = ?", itemID, customerID).
		First(&price).Error
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *repository) List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Item, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var items []models.Item
	if err := query.Find(&items).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return items, next, nil
}

func (r *repository) Update(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).
		Omit("PriceRevisions", "CustomerPrices").
		Save(item).Error
}

// UpdatePrices writes the new prices and the revision row in one database
// transaction so the revision log cannot miss a change.
func (r *repository) UpdatePrices(ctx context.Context, item *models.Item, revision *models.ItemPriceRevision) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Item{}).
			Where("id = ?", item.ID).
			UpdateColumns(map[string]any{
				"buy_price":  item.BuyPrice,
				"sell_price": item.SellPrice,
			}).Error
		if err != nil {
			return err
		}
		return tx.Create(revision).Error
	})
}

func (r *repository) UpsertCustomerPrice(ctx context.Context, price *models.ItemCustomerPrice) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
		}).
		Create(price).Error
}

func (r *repository) ListPriceRevisions(ctx context.Context, itemID uuid.UUID) ([]models.ItemPriceRevision, error) {
	var revisions []models.ItemPriceRevision
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("changed_at DESC").
		Find(&revisions).Error
	if err != nil {
		return nil, err
	}
	return revisions, nil
}

func (r *repository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.Item{}).Error
}
