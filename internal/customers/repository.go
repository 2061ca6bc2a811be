package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
)

// Repository manages persistence for customers and their running balances.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, userID, customerID uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, userID uuid.UUID, includeDeleted bool) ([]models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	MarkDeleted(ctx context.Context, userID, customerID uuid.UUID) error
	AdjustOutstanding(ctx context.Context, customerID uuid.UUID, delta float64) error
	SetOutstanding(ctx context.Context, customerID uuid.UUID, balance float64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a customers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repository) FindByID(ctx context.Context, userID, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", customerID, userID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context, userID uuid.UUID, includeDeleted bool) ([]models.Customer, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	var customers []models.Customer
	if err := query.Order("name ASC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *repository) MarkDeleted(ctx context.Context, userID, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ? AND user_id = ?", customerID, userID).
		UpdateColumn("is_deleted", true).Error
}

// AdjustOutstanding applies a signed delta in a single statement.
func (r *repository) AdjustOutstanding(ctx context.Context, customerID uuid.UUID, delta float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		UpdateColumn("outstanding_balance", gorm.Expr("outstanding_balance + ?", delta)).Error
}

// SetOutstanding overwrites the balance; used by the payment allocator and the
// reconciliation pass, both of which recompute from source transactions.
func (r *repository) SetOutstanding(ctx context.Context, customerID uuid.UUID, balance float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		UpdateColumn("outstanding_balance", balance).Error
}
