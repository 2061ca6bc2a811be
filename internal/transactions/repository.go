package transactions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	"github.com/anandkhatri/ledgerbook-backend/pkg/pagination"
)

// Repository manages persistence for sale transactions. A transaction with its
// line items and charges is one aggregate: writes to it are wrapped in a single
// database transaction, the relational stand-in for a one-document write.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.SaleTransaction) error
	FindByID(ctx context.Context, userID, transactionID uuid.UUID) (*models.SaleTransaction, error)
	ReplaceAggregate(ctx context.Context, txn *models.SaleTransaction) error
	MarkDeleted(ctx context.Context, userID, transactionID uuid.UUID) error
	UpdatePaymentFields(ctx context.Context, transactionID uuid.UUID, paymentReceived, balanceAmount float64) error
	ListOutstandingByCustomer(ctx context.Context, userID, customerID uuid.UUID, transactionIDs []uuid.UUID) ([]models.SaleTransaction, error)
	ListActiveByCustomer(ctx context.Context, userID, customerID uuid.UUID) ([]models.SaleTransaction, error)
	SumOutstandingByCustomer(ctx context.Context, userID, customerID uuid.UUID) (float64, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.SaleTransaction, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a transactions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, txn *models.SaleTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(txn).Error
	})
}

func (r *repository) FindByID(ctx context.Context, userID, transactionID uuid.UUID) (*models.SaleTransaction, error) {
	var txn models.SaleTransaction
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Preload("Charges").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// ReplaceAggregate rewrites the parent row and its children in one database
// transaction. Children are replaced wholesale; edit semantics never patch
// individual lines.
func (r *repository) ReplaceAggregate(ctx context.Context, txn *models.SaleTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", txn.ID).Delete(&models.SaleLineItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("transaction_id = ?", txn.ID).Delete(&models.SaleCharge{}).Error; err != nil {
			return err
		}
		for i := range txn.LineItems {
			txn.LineItems[i].ID = uuid.New()
			txn.LineItems[i].TransactionID = txn.ID
		}
		for i := range txn.Charges {
			txn.Charges[i].ID = uuid.New()
			txn.Charges[i].TransactionID = txn.ID
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(txn).Error
	})
}

func (r *repository) MarkDeleted(ctx context.Context, userID, transactionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.SaleTransaction{}).
		Where("id = ? AND user_id = ?", transactionID, userID).
		UpdateColumn("is_deleted", true).Error
}

// UpdatePaymentFields is the allocator's single-row update; it deliberately
// touches nothing but the two payment columns.
func (r *repository) UpdatePaymentFields(ctx context.Context, transactionID uuid.UUID, paymentReceived, balanceAmount float64) error {
	return r.db.WithContext(ctx).
		Model(&models.SaleTransaction{}).
		Where("id = ?", transactionID).
		UpdateColumns(map[string]any{
			"payment_received": paymentReceived,
			"balance_amount":   balanceAmount,
		}).Error
}

// ListOutstandingByCustomer returns non-deleted transactions with a positive
// balance, oldest first. transactionIDs narrows the selection for manual
// allocation; created_at is the stable tie-break within one transaction date.
func (r *repository) ListOutstandingByCustomer(ctx context.Context, userID, customerID uuid.UUID, transactionIDs []uuid.UUID) ([]models.SaleTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND customer_id = ? AND is_deleted = ? AND balance_amount > 0", userID, customerID, false)
	if len(transactionIDs) > 0 {
		query = query.Where("id IN ?", transactionIDs)
	}
	var txns []models.SaleTransaction
	if err := query.Order("transaction_date ASC, created_at ASC").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) ListActiveByCustomer(ctx context.Context, userID, customerID uuid.UUID) ([]models.SaleTransaction, error) {
	var txns []models.SaleTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND customer_id = ? AND is_deleted = ?", userID, customerID, false).
		Order("transaction_date ASC, created_at ASC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) SumOutstandingByCustomer(ctx context.Context, userID, customerID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.SaleTransaction{}).
		Where("user_id = ? AND customer_id = ? AND is_deleted = ?", userID, customerID, false).
		Select("COALESCE(SUM(balance_amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) List(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.SaleTransaction, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Preload("LineItems").
		Preload("Charges").
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.OnlyOutstanding {
		query = query.Where("balance_amount > 0")
	}

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

	var txns []models.SaleTransaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return txns, next, nil
}
