package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	dbtypes "github.com/anandkhatri/ledgerbook-backend/pkg/db/types"
	"github.com/anandkhatri/ledgerbook-backend/pkg/enums"
	pkgerrors "github.com/anandkhatri/ledgerbook-backend/pkg/errors"
	"github.com/anandkhatri/ledgerbook-backend/pkg/logger"
	"github.com/anandkhatri/ledgerbook-backend/pkg/money"
	"github.com/anandkhatri/ledgerbook-backend/pkg/pagination"
)

// Service is the bulk payment allocator. A lump sum spreads across outstanding
// sales oldest first (or across a named selection in manual mode); whatever is
// left over lands on the ledger as advance credit. Every payment writes a
// record, even one consumed entirely as credit.
type Service interface {
	Bulk(ctx context.Context, userID uuid.UUID, input BulkPaymentInput) (*PaymentDTO, error)
	Get(ctx context.Context, userID, paymentID uuid.UUID) (*PaymentDTO, error)
	History(ctx context.Context, userID uuid.UUID, params pagination.Params, customerID *uuid.UUID) (*PaymentList, error)
}

type customerLedger interface {
	FindByID(ctx context.Context, userID, customerID uuid.UUID) (*models.Customer, error)
	SetOutstanding(ctx context.Context, customerID uuid.UUID, balance float64) error
}

type transactionBook interface {
	ListOutstandingByCustomer(ctx context.Context, userID, customerID uuid.UUID, transactionIDs []uuid.UUID) ([]models.SaleTransaction, error)
	SumOutstandingByCustomer(ctx context.Context, userID, customerID uuid.UUID) (float64, error)
	UpdatePaymentFields(ctx context.Context, transactionID uuid.UUID, paymentReceived, balanceAmount float64) error
}

type service struct {
	repo         Repository
	customers    customerLedger
	transactions transactionBook
	logger       *logger.Logger
}

// NewService wires the payment allocator with its collaborators.
func NewService(repo Repository, customers customerLedger, transactions transactionBook, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer ledger required")
	}
	if transactions == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, customers: customers, transactions: transactions, logger: log}, nil
}

func (s *service) Bulk(ctx context.Context, userID uuid.UUID, input BulkPaymentInput) (*PaymentDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	mode := input.Mode
	if mode == "" {
		mode = enums.PaymentModeFIFO
	}
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment mode %q", input.Mode))
	}
	if mode == enums.PaymentModeManual && len(input.TransactionIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manual mode requires transaction ids")
	}
	if mode == enums.PaymentModeFIFO && len(input.TransactionIDs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction ids are only valid in manual mode")
	}

	customer, err := s.customers.FindByID(ctx, userID, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	var selection []uuid.UUID
	if mode == enums.PaymentModeManual {
		selection = input.TransactionIDs
	}
	// Settled or unknown ids in a manual selection are simply not eligible;
	// allocation proceeds over whatever of the selection still carries a
	// balance, and an empty eligible set leaves the whole payment as credit.
	outstanding, err := s.transactions.ListOutstandingByCustomer(ctx, userID, customer.ID, selection)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list outstanding transactions")
	}

	// Decimal arithmetic keeps split totals exact; floats only at the
	// storage boundary.
	remaining := decimal.NewFromFloat(money.Round2(input.Amount))
	allocations := make([]models.PaymentAllocation, 0, len(outstanding))
	for _, txn := range outstanding {
		if remaining.IsZero() {
			break
		}
		balance := decimal.NewFromFloat(txn.BalanceAmount)
		applied := decimal.Min(remaining, balance)
		newBalance := balance.Sub(applied)
		newPayment := decimal.NewFromFloat(txn.PaymentReceived).Add(applied)

		if err := s.transactions.UpdatePaymentFields(ctx, txn.ID, newPayment.InexactFloat64(), newBalance.InexactFloat64()); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply payment to transaction")
		}

		allocations = append(allocations, models.PaymentAllocation{
			TransactionID: txn.ID,
			Applied:       applied.InexactFloat64(),
			BalanceBefore: balance.InexactFloat64(),
			BalanceAfter:  newBalance.InexactFloat64(),
		})
		remaining = remaining.Sub(applied)
	}

	amount := decimal.NewFromFloat(money.Round2(input.Amount))
	record := &models.PaymentRecord{
		UserID:          userID,
		CustomerID:      customer.ID,
		PaymentAmount:   amount.InexactFloat64(),
		AmountApplied:   amount.Sub(remaining).InexactFloat64(),
		RemainingAmount: remaining.InexactFloat64(),
		Mode:            mode,
		Allocations:     allocations,
	}
	if mode == enums.PaymentModeManual {
		record.SelectedTransactionIDs = dbtypes.UUIDArray(input.TransactionIDs)
	}
	if input.Notes != "" {
		notes := input.Notes
		record.Notes = &notes
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment record")
	}

	// The ledger is recomputed from transactions rather than decremented;
	// unapplied money posts as advance credit.
	totalOutstanding, err := s.transactions.SumOutstandingByCustomer(ctx, userID, customer.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum outstanding balances")
	}
	newOutstanding := money.Sub(totalOutstanding, remaining.InexactFloat64())
	if err := s.customers.SetOutstanding(ctx, customer.ID, newOutstanding); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer balance")
	}

	logCtx := s.logger.WithFields(ctx, map[string]any{
		"payment_id":     record.ID.String(),
		"customer_id":    customer.ID.String(),
		"payment_amount": record.PaymentAmount,
		"amount_applied": record.AmountApplied,
		"remaining":      record.RemainingAmount,
		"mode":           string(mode),
	})
	s.logger.Info(logCtx, "bulk payment allocated")
	return toDTO(record), nil
}

func (s *service) Get(ctx context.Context, userID, paymentID uuid.UUID) (*PaymentDTO, error) {
	record, err := s.repo.FindByID(ctx, userID, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return toDTO(record), nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, params pagination.Params, customerID *uuid.UUID) (*PaymentList, error) {
	records, next, err := s.repo.List(ctx, userID, params, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	out := make([]PaymentDTO, 0, len(records))
	for i := range records {
		out = append(out, *toDTO(&records[i]))
	}
	return &PaymentList{Payments: out, NextCursor: next}, nil
}
