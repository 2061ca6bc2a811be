package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anandkhatri/ledgerbook-backend/internal/stock"
	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	"github.com/anandkhatri/ledgerbook-backend/pkg/enums"
	pkgerrors "github.com/anandkhatri/ledgerbook-backend/pkg/errors"
	"github.com/anandkhatri/ledgerbook-backend/pkg/logger"
	"github.com/anandkhatri/ledgerbook-backend/pkg/money"
	"github.com/anandkhatri/ledgerbook-backend/pkg/pagination"
)

// Service is the sale transaction engine. Create applies a sale's financial
// effect to stock and the customer ledger; Edit and Delete revert the stored
// effect first, then reapply, so the engine never double-counts.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateTransactionInput) (*TransactionDTO, error)
	Edit(ctx context.Context, userID, transactionID uuid.UUID, input EditTransactionInput) (*TransactionDTO, error)
	Delete(ctx context.Context, userID, transactionID uuid.UUID) error
	Get(ctx context.Context, userID, transactionID uuid.UUID) (*TransactionDTO, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) (*TransactionList, error)
}

type stockApplier interface {
	Apply(ctx context.Context, input stock.ApplyInput) (*models.StockEntry, error)
}

type customerLedger interface {
	FindByID(ctx context.Context, userID, customerID uuid.UUID) (*models.Customer, error)
	AdjustOutstanding(ctx context.Context, customerID uuid.UUID, delta float64) error
	SetOutstanding(ctx context.Context, customerID uuid.UUID, balance float64) error
}

type itemCatalog interface {
	FindByID(ctx context.Context, userID, itemID uuid.UUID) (*models.Item, error)
	FindCustomerPrice(ctx context.Context, itemID, customerID uuid.UUID) (*models.ItemCustomerPrice, error)
}

type service struct {
	repo      Repository
	stock     stockApplier
	customers customerLedger
	items     itemCatalog
	logger    *logger.Logger
}

// NewService wires the transaction engine with its collaborators.
func NewService(repo Repository, stockSvc stockApplier, customers customerLedger, items itemCatalog, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer ledger required")
	}
	if items == nil {
		return nil, fmt.Errorf("item catalog required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, stock: stockSvc, customers: customers, items: items, logger: log}, nil
}

// creditOffset is the outcome of applying a customer's advance credit to a new
// sale balance. It is computed before any write so the ledger update and the
// stored payment fields always agree.
type creditOffset struct {
	applied         bool
	paymentReceived float64
	balanceAmount   float64
	ledgerDelta     float64
	setLedger       bool
	ledgerValue     float64
}

// applyCreditOffset consumes advance credit (a negative outstanding balance)
// against a positive sale balance. With credit covering the full balance the
// sale records as fully paid; partial credit raises payment received and
// leaves the remainder due.
func applyCreditOffset(outstanding, grandTotal, paymentReceived, balance float64) creditOffset {
	if outstanding >= 0 || balance <= 0 {
		return creditOffset{
			paymentReceived: paymentReceived,
			balanceAmount:   balance,
			ledgerDelta:     balance,
		}
	}
	credit := -outstanding
	if credit >= balance {
		return creditOffset{
			applied:         true,
			paymentReceived: grandTotal,
			balanceAmount:   0,
			ledgerDelta:     balance,
		}
	}
	remaining := money.Sub(balance, credit)
	return creditOffset{
		applied:         true,
		paymentReceived: money.Add(paymentReceived, credit),
		balanceAmount:   remaining,
		setLedger:       true,
		ledgerValue:     remaining,
	}
}

// buildLines resolves each input line against the catalog, snapshotting name,
// unit price, and buy price. Price resolution order is explicit input, then the
// customer override, then the item sell price. buyPriceOverrides carries
// snapshots forward across an edit.
// Stock sufficiency is checked here, before any row is written; a failing
// line must not leave earlier lines' stock movements behind. The check is
// cumulative so repeated lines of one item cannot slip past it.
func (s *service) buildLines(ctx context.Context, userID uuid.UUID, customerID *uuid.UUID, lines []LineInput, buyPriceOverrides map[uuid.UUID]float64) ([]models.SaleLineItem, error) {
	built := make([]models.SaleLineItem, 0, len(lines))
	required := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		item, err := s.items.FindByID(ctx, userID, line.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %s not found", line.ItemID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}

		required[item.ID] += line.Quantity
		if item.Quantity < required[item.ID] {
			return nil, stock.InsufficientStockError(item, required[item.ID])
		}

		price := item.SellPrice
		if customerID != nil {
			override, err := s.items.FindCustomerPrice(ctx, item.ID, *customerID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer price")
			}
			if override != nil {
				price = override.Price
			}
		}
		if line.PricePerUnit != nil {
			price = *line.PricePerUnit
		}

		buyPrice := item.BuyPrice
		if carried, ok := buyPriceOverrides[item.ID]; ok {
			buyPrice = carried
		}
		if line.BuyPrice != nil {
			buyPrice = *line.BuyPrice
		}

		built = append(built, models.SaleLineItem{
			ItemID:       item.ID,
			Name:         item.Name,
			Quantity:     line.Quantity,
			PricePerUnit: money.Round2(price),
			BuyPrice:     money.Round2(buyPrice),
			Profit:       money.Round2(float64(line.Quantity) * (price - buyPrice)),
		})
	}
	return built, nil
}

func buildCharges(inputs []ChargeInput) []models.SaleCharge {
	charges := make([]models.SaleCharge, 0, len(inputs))
	for _, c := range inputs {
		charges = append(charges, models.SaleCharge{
			Amount: money.Round2(c.Amount),
			Reason: c.Reason,
		})
	}
	return charges
}

// computeTotals derives every financial field on the parent row from the built
// lines and charges. Charges raise the grand total but never the profit.
func computeTotals(txn *models.SaleTransaction, paymentReceived float64) {
	var totalAmount, totalProfit, totalCharges float64
	for _, line := range txn.LineItems {
		totalAmount = money.Add(totalAmount, float64(line.Quantity)*line.PricePerUnit)
		totalProfit = money.Add(totalProfit, line.Profit)
	}
	for _, charge := range txn.Charges {
		totalCharges = money.Add(totalCharges, charge.Amount)
	}
	txn.TotalAmount = totalAmount
	txn.TotalAdditionalCharges = totalCharges
	txn.GrandTotal = money.Add(totalAmount, totalCharges)
	txn.TotalProfit = totalProfit
	txn.PaymentReceived = money.Round2(paymentReceived)
	txn.BalanceAmount = money.Sub(txn.GrandTotal, txn.PaymentReceived)
}

func (s *service) loadCustomer(ctx context.Context, userID uuid.UUID, customerID *uuid.UUID) (*models.Customer, error) {
	if customerID == nil {
		return nil, nil
	}
	customer, err := s.customers.FindByID(ctx, userID, *customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return customer, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateTransactionInput) (*TransactionDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.PaymentReceived < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment received cannot be negative")
	}

	customer, err := s.loadCustomer(ctx, userID, input.CustomerID)
	if err != nil {
		return nil, err
	}

	lines, err := s.buildLines(ctx, userID, input.CustomerID, input.Lines, nil)
	if err != nil {
		return nil, err
	}

	txn := &models.SaleTransaction{
		UserID:          userID,
		CustomerID:      input.CustomerID,
		LineItems:       lines,
		Charges:         buildCharges(input.Charges),
		TransactionDate: transactionDate(input.TransactionDate),
		Notes:           optionalNotes(input.Notes),
	}
	// A negative balance is overpayment; it flows to the ledger as advance
	// credit.
	computeTotals(txn, input.PaymentReceived)
	if txn.BalanceAmount > 0 && customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit sale requires a customer")
	}

	offset := creditOffset{paymentReceived: txn.PaymentReceived, balanceAmount: txn.BalanceAmount, ledgerDelta: txn.BalanceAmount}
	if customer != nil {
		offset = applyCreditOffset(customer.OutstandingBalance, txn.GrandTotal, txn.PaymentReceived, txn.BalanceAmount)
	}
	txn.PaymentReceived = offset.paymentReceived
	txn.BalanceAmount = offset.balanceAmount

	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transaction")
	}

	if err := s.applyStock(ctx, userID, txn.ID, txn.LineItems, -1, enums.StockEntrySale, "sale"); err != nil {
		return nil, err
	}

	if customer != nil {
		if err := s.applyLedger(ctx, customer.ID, offset); err != nil {
			return nil, err
		}
	}

	logCtx := s.logger.WithFields(ctx, map[string]any{
		"transaction_id": txn.ID.String(),
		"grand_total":    txn.GrandTotal,
		"balance_amount": txn.BalanceAmount,
		"credit_offset":  offset.applied,
	})
	s.logger.Info(logCtx, "transaction created")
	return toDTO(txn), nil
}

func (s *service) Edit(ctx context.Context, userID, transactionID uuid.UUID, input EditTransactionInput) (*TransactionDTO, error) {
	if input.PaymentReceived < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment received cannot be negative")
	}
	existing, err := s.loadActive(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	customer, err := s.loadCustomer(ctx, userID, input.CustomerID)
	if err != nil {
		return nil, err
	}

	// Revert the stored effect before validating the replacement against
	// stock; the new lines are checked against the post-revert quantities.
	if err := s.revertEffect(ctx, existing, "edit revert"); err != nil {
		return nil, err
	}

	snapshots := make(map[uuid.UUID]float64, len(existing.LineItems))
	for _, line := range existing.LineItems {
		snapshots[line.ItemID] = line.BuyPrice
	}

	lines, err := s.buildLines(ctx, userID, input.CustomerID, input.Lines, snapshots)
	if err != nil {
		return nil, err
	}

	existing.CustomerID = input.CustomerID
	existing.LineItems = lines
	existing.Charges = buildCharges(input.Charges)
	existing.Notes = optionalNotes(input.Notes)
	if input.TransactionDate != nil {
		existing.TransactionDate = *input.TransactionDate
	}
	computeTotals(existing, input.PaymentReceived)
	if existing.BalanceAmount > 0 && customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit sale requires a customer")
	}

	if err := s.repo.ReplaceAggregate(ctx, existing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace transaction")
	}

	if err := s.applyStock(ctx, userID, existing.ID, existing.LineItems, -1, enums.StockEntrySale, "edit reapply"); err != nil {
		return nil, err
	}

	// Edits never consume advance credit; the balance posts to the ledger
	// as-is.
	if customer != nil && existing.BalanceAmount != 0 {
		if err := s.customers.AdjustOutstanding(ctx, customer.ID, existing.BalanceAmount); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer balance")
		}
	}

	logCtx := s.logger.WithFields(ctx, map[string]any{
		"transaction_id": existing.ID.String(),
		"grand_total":    existing.GrandTotal,
	})
	s.logger.Info(logCtx, "transaction edited")
	return toDTO(existing), nil
}

func (s *service) Delete(ctx context.Context, userID, transactionID uuid.UUID) error {
	existing, err := s.loadActive(ctx, userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.revertEffect(ctx, existing, "delete revert"); err != nil {
		return err
	}

	if err := s.repo.MarkDeleted(ctx, userID, transactionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark transaction deleted")
	}

	s.logger.Info(s.logger.WithTransactionID(ctx, transactionID.String()), "transaction deleted")
	return nil
}

func (s *service) Get(ctx context.Context, userID, transactionID uuid.UUID) (*TransactionDTO, error) {
	txn, err := s.repo.FindByID(ctx, userID, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return toDTO(txn), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) (*TransactionList, error) {
	txns, next, err := s.repo.List(ctx, userID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	out := make([]TransactionDTO, 0, len(txns))
	for i := range txns {
		out = append(out, *toDTO(&txns[i]))
	}
	return &TransactionList{Transactions: out, NextCursor: next}, nil
}

func (s *service) loadActive(ctx context.Context, userID, transactionID uuid.UUID) (*models.SaleTransaction, error) {
	txn, err := s.repo.FindByID(ctx, userID, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	if txn.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}
	return txn, nil
}

// revertEffect undoes a transaction's stock and ledger writes: quantities go
// back as adjustment entries and the customer balance drops by the stored
// balance amount.
func (s *service) revertEffect(ctx context.Context, txn *models.SaleTransaction, reason string) error {
	if err := s.applyStock(ctx, txn.UserID, txn.ID, txn.LineItems, 1, enums.StockEntryAdjustment, reason); err != nil {
		return err
	}
	if txn.CustomerID != nil && txn.BalanceAmount != 0 {
		if err := s.customers.AdjustOutstanding(ctx, *txn.CustomerID, -txn.BalanceAmount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revert customer balance")
		}
	}
	return nil
}

func (s *service) applyStock(ctx context.Context, userID, transactionID uuid.UUID, lines []models.SaleLineItem, sign int, entryType enums.StockEntryType, reason string) error {
	for _, line := range lines {
		_, err := s.stock.Apply(ctx, stock.ApplyInput{
			UserID:    userID,
			ItemID:    line.ItemID,
			Delta:     sign * line.Quantity,
			EntryType: entryType,
			Notes:     fmt.Sprintf("%s %s", reason, transactionID),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *service) applyLedger(ctx context.Context, customerID uuid.UUID, offset creditOffset) error {
	if offset.setLedger {
		if err := s.customers.SetOutstanding(ctx, customerID, offset.ledgerValue); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer balance")
		}
		return nil
	}
	if offset.ledgerDelta == 0 {
		return nil
	}
	if err := s.customers.AdjustOutstanding(ctx, customerID, offset.ledgerDelta); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer balance")
	}
	return nil
}

func transactionDate(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now().UTC()
}

func optionalNotes(notes string) *string {
	if notes == "" {
		return nil
	}
	return &notes
}
