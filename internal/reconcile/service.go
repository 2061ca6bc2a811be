package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	pkgerrors "github.com/anandkhatri/ledgerbook-backend/pkg/errors"
	"github.com/anandkhatri/ledgerbook-backend/pkg/logger"
	"github.com/anandkhatri/ledgerbook-backend/pkg/money"
)

// Service heals drift between stored customer balances and the balances
// implied by their transactions. Engine writes are sequential rather than
// atomic across aggregates, so a crash mid-operation can leave the ledger
// stale; reconciliation recomputes from the transactions, which are the
// source of truth, and is safe to run repeatedly.
type Service interface {
	FixBalances(ctx context.Context, userID, customerID uuid.UUID) (*DriftReport, error)
	FixAllBalances(ctx context.Context, userID uuid.UUID) (*RunReport, error)
}

// DriftReport describes one customer's balance check.
type DriftReport struct {
	CustomerID      uuid.UUID `json:"customer_id"`
	StoredBalance   float64   `json:"stored_balance"`
	ComputedBalance float64   `json:"computed_balance"`
	Drift           float64   `json:"drift"`
	Repaired        bool      `json:"repaired"`
	// TransactionsRepaired counts rows whose stored balance disagreed with
	// grand total minus payment received and were overwritten.
	TransactionsRepaired int `json:"transactions_repaired,omitempty"`
	// Skipped is set for customers holding advance credit; a negative
	// balance is not derivable from transactions alone.
	Skipped bool `json:"skipped,omitempty"`
}

// RunReport summarises a full reconciliation pass.
type RunReport struct {
	Checked  int           `json:"checked"`
	Repaired int           `json:"repaired"`
	Skipped  int           `json:"skipped"`
	Reports  []DriftReport `json:"reports"`
}

type customerLedger interface {
	FindByID(ctx context.Context, userID, customerID uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, userID uuid.UUID, includeDeleted bool) ([]models.Customer, error)
	SetOutstanding(ctx context.Context, customerID uuid.UUID, balance float64) error
}

type transactionBook interface {
	ListActiveByCustomer(ctx context.Context, userID, customerID uuid.UUID) ([]models.SaleTransaction, error)
	UpdatePaymentFields(ctx context.Context, transactionID uuid.UUID, paymentReceived, balanceAmount float64) error
}

type service struct {
	customers    customerLedger
	transactions transactionBook
	logger       *logger.Logger
}

// NewService wires the reconciliation service with its collaborators.
func NewService(customers customerLedger, transactions transactionBook, log *logger.Logger) (Service, error) {
	if customers == nil {
		return nil, fmt.Errorf("customer ledger required")
	}
	if transactions == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{customers: customers, transactions: transactions, logger: log}, nil
}

// FixBalances checks one customer and repairs drift beyond the rounding
// tolerance. Tolerance absorbs accumulated float rounding; anything larger
// means a half-applied operation.
func (s *service) FixBalances(ctx context.Context, userID, customerID uuid.UUID) (*DriftReport, error) {
	if userID == uuid.Nil || customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and customer id required")
	}
	customer, err := s.customers.FindByID(ctx, userID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	report, err := s.check(ctx, userID, customer, money.DriftTolerance)
	if err != nil {
		return nil, err
	}
	if report.Repaired {
		logCtx := s.logger.WithFields(ctx, map[string]any{
			"customer_id": customer.ID.String(),
			"drift":       report.Drift,
		})
		s.logger.Warn(logCtx, "customer balance repaired")
	}
	return report, nil
}

// FixAllBalances sweeps every customer, repairing any exact mismatch. Failures
// on individual customers do not stop the sweep; they aggregate into the
// returned error alongside the partial report.
func (s *service) FixAllBalances(ctx context.Context, userID uuid.UUID) (*RunReport, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	customers, err := s.customers.List(ctx, userID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}

	run := &RunReport{Reports: make([]DriftReport, 0, len(customers))}
	var errs error
	for i := range customers {
		report, err := s.check(ctx, userID, &customers[i], 0)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("customer %s: %w", customers[i].ID, err))
			continue
		}
		run.Checked++
		if report.Repaired {
			run.Repaired++
		}
		if report.Skipped {
			run.Skipped++
		}
		run.Reports = append(run.Reports, *report)
	}

	logCtx := s.logger.WithFields(ctx, map[string]any{
		"checked":  run.Checked,
		"repaired": run.Repaired,
		"skipped":  run.Skipped,
	})
	s.logger.Info(logCtx, "reconciliation pass finished")
	if errs != nil {
		return run, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "reconciliation pass had failures")
	}
	return run, nil
}

func (s *service) check(ctx context.Context, userID uuid.UUID, customer *models.Customer, tolerance float64) (*DriftReport, error) {
	report := &DriftReport{
		CustomerID:    customer.ID,
		StoredBalance: customer.OutstandingBalance,
	}
	if customer.OutstandingBalance < 0 {
		report.Skipped = true
		report.ComputedBalance = customer.OutstandingBalance
		return report, nil
	}

	txns, err := s.transactions.ListActiveByCustomer(ctx, userID, customer.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer transactions")
	}

	// Each row's balance is recomputed from grand total minus payment
	// received; the stored value is only a cache of that. Drifted rows are
	// overwritten before the corrected balances are summed.
	var computed float64
	for i := range txns {
		txn := &txns[i]
		gross := txn.GrandTotal
		if gross == 0 {
			gross = txn.TotalAmount
		}
		correct := money.Sub(gross, txn.PaymentReceived)
		if !money.EqualWithin(txn.BalanceAmount, correct, tolerance) {
			if err := s.transactions.UpdatePaymentFields(ctx, txn.ID, txn.PaymentReceived, correct); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "repair transaction balance")
			}
			report.TransactionsRepaired++
		}
		computed = money.Add(computed, correct)
	}
	computed = money.Round2(computed)
	report.ComputedBalance = computed
	report.Drift = money.Sub(customer.OutstandingBalance, computed)

	if report.TransactionsRepaired == 0 && money.EqualWithin(customer.OutstandingBalance, computed, tolerance) {
		return report, nil
	}
	if err := s.customers.SetOutstanding(ctx, customer.ID, computed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "repair customer balance")
	}
	report.Repaired = true
	return report, nil
}
