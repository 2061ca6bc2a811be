package transactions

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anandkhatri/ledgerbook-backend/internal/stock"
	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	pkgerrors "github.com/anandkhatri/ledgerbook-backend/pkg/errors"
	"github.com/anandkhatri/ledgerbook-backend/pkg/logger"
	"github.com/anandkhatri/ledgerbook-backend/pkg/pagination"
)

func TestCreateComputesTotals(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Rice 5kg", 40, 55, 100)
	customer := f.addCustomer(0)

	dto, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		CustomerID: &customer.ID,
		Lines: []LineInput{
			{ItemID: item.ID, Quantity: 3},
		},
		Charges:         []ChargeInput{{Amount: 20, Reason: "delivery"}},
		PaymentReceived: 100,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if dto.TotalAmount != 165 {
		t.Fatalf("expected total 165, got %v", dto.TotalAmount)
	}
	if dto.GrandTotal != 185 {
		t.Fatalf("expected grand total 185, got %v", dto.GrandTotal)
	}
	if dto.TotalProfit != 45 {
		t.Fatalf("expected profit 45, got %v", dto.TotalProfit)
	}
	if dto.BalanceAmount != 85 {
		t.Fatalf("expected balance 85, got %v", dto.BalanceAmount)
	}

	if len(f.stock.applied) != 1 {
		t.Fatalf("expected one stock movement, got %d", len(f.stock.applied))
	}
	if got := f.stock.applied[0]; got.Delta != -3 || got.EntryType != "sale" {
		t.Fatalf("expected sale delta -3, got %+v", got)
	}
	if got := f.ledger.adjusted[customer.ID]; got != 85 {
		t.Fatalf("expected ledger adjusted by 85, got %v", got)
	}
}

func TestCreateUsesCustomerPriceOverride(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Sugar 1kg", 30, 45, 50)
	customer := f.addCustomer(0)
	f.catalog.overrides[overrideKey{item.ID, customer.ID}] = 42

	dto, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		CustomerID:      &customer.ID,
		Lines:           []LineInput{{ItemID: item.ID, Quantity: 2}},
		PaymentReceived: 84,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Lines[0].PricePerUnit != 42 {
		t.Fatalf("expected override price 42, got %v", dto.Lines[0].PricePerUnit)
	}
	if dto.TotalProfit != 24 {
		t.Fatalf("expected profit 24, got %v", dto.TotalProfit)
	}
}

func TestCreateFullCreditOffset(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Oil 1L", 80, 100, 20)
	customer := f.addCustomer(-250)

	dto, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		CustomerID: &customer.ID,
		Lines:      []LineInput{{ItemID: item.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if dto.PaymentReceived != 200 {
		t.Fatalf("expected payment received 200, got %v", dto.PaymentReceived)
	}
	if dto.BalanceAmount != 0 {
		t.Fatalf("expected zero balance, got %v", dto.BalanceAmount)
	}
	// Credit shrinks from -250 to -50.
	if got := f.ledger.adjusted[customer.ID]; got != 200 {
		t.Fatalf("expected ledger adjusted by 200, got %v", got)
	}
}

func TestCreatePartialCreditOffset(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Oil 1L", 80, 100, 20)
	customer := f.addCustomer(-60)

	dto, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		CustomerID: &customer.ID,
		Lines:      []LineInput{{ItemID: item.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if dto.PaymentReceived != 60 {
		t.Fatalf("expected payment received 60, got %v", dto.PaymentReceived)
	}
	if dto.BalanceAmount != 140 {
		t.Fatalf("expected balance 140, got %v", dto.BalanceAmount)
	}
	set, ok := f.ledger.set[customer.ID]
	if !ok || set != 140 {
		t.Fatalf("expected outstanding set to 140, got %v (ok=%v)", set, ok)
	}
}

func TestCreateOverpaymentGeneratesCredit(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Soap", 10, 15, 10)
	customer := f.addCustomer(0)

	dto, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		CustomerID:      &customer.ID,
		Lines:           []LineInput{{ItemID: item.ID, Quantity: 2}},
		PaymentReceived: 50,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if dto.BalanceAmount != -20 {
		t.Fatalf("expected balance -20, got %v", dto.BalanceAmount)
	}
	// The overpaid 20 lands on the ledger as advance credit.
	if got := f.ledger.adjusted[customer.ID]; got != -20 {
		t.Fatalf("expected ledger adjusted by -20, got %v", got)
	}
	if got := f.ledger.customers[customer.ID].OutstandingBalance; got != -20 {
		t.Fatalf("expected outstanding -20, got %v", got)
	}
}

func TestCreateRejectsNegativePayment(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Soap", 10, 15, 10)

	_, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		Lines:           []LineInput{{ItemID: item.ID, Quantity: 1}},
		PaymentReceived: -5,
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRejectsCreditSaleWithoutCustomer(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Soap", 10, 15, 10)

	_, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		Lines: []LineInput{{ItemID: item.ID, Quantity: 2}},
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestCreatePropagatesInsufficientStock(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Soap", 10, 15, 1)
	customer := f.addCustomer(0)

	_, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		CustomerID: &customer.ID,
		Lines:      []LineInput{{ItemID: item.ID, Quantity: 5}},
	})
	assertErrorCode(t, err, pkgerrors.CodeInsufficientStock)
	if got := f.ledger.adjusted[customer.ID]; got != 0 {
		t.Fatalf("expected no ledger movement, got %v", got)
	}
}

func TestCreateShortStockLeavesNothingBehind(t *testing.T) {
	f := newEngineFixture(t)
	full := f.addItem("Rice 5kg", 40, 55, 10)
	empty := f.addItem("Sugar 1kg", 30, 45, 0)
	customer := f.addCustomer(0)

	_, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		CustomerID: &customer.ID,
		Lines: []LineInput{
			{ItemID: full.ID, Quantity: 2},
			{ItemID: empty.ID, Quantity: 1},
		},
	})
	assertErrorCode(t, err, pkgerrors.CodeInsufficientStock)

	if len(f.repo.transactions) != 0 {
		t.Fatalf("expected no transaction persisted, got %d", len(f.repo.transactions))
	}
	if len(f.stock.applied) != 0 {
		t.Fatalf("expected no stock movement, got %d", len(f.stock.applied))
	}
	if got := f.catalog.items[full.ID].Quantity; got != 10 {
		t.Fatalf("expected first item untouched, got %d", got)
	}
}

func TestCreateRejectsRepeatedLinesBeyondStock(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Soap", 10, 15, 3)
	customer := f.addCustomer(0)

	_, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		CustomerID: &customer.ID,
		Lines: []LineInput{
			{ItemID: item.ID, Quantity: 2},
			{ItemID: item.ID, Quantity: 2},
		},
	})
	assertErrorCode(t, err, pkgerrors.CodeInsufficientStock)
	if len(f.repo.transactions) != 0 {
		t.Fatalf("expected no transaction persisted, got %d", len(f.repo.transactions))
	}
}

func TestEditRevertsThenReapplies(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Rice 5kg", 40, 55, 100)
	customer := f.addCustomer(0)

	dto, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		CustomerID: &customer.ID,
		Lines:      []LineInput{{ItemID: item.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.stock.applied = nil

	edited, err := f.svc.Edit(context.Background(), f.userID, dto.ID, EditTransactionInput{
		CustomerID:      &customer.ID,
		Lines:           []LineInput{{ItemID: item.ID, Quantity: 5}},
		PaymentReceived: 100,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}

	if len(f.stock.applied) != 2 {
		t.Fatalf("expected revert + reapply, got %d movements", len(f.stock.applied))
	}
	if got := f.stock.applied[0]; got.Delta != 3 || got.EntryType != "adjustment" {
		t.Fatalf("expected adjustment +3 revert, got %+v", got)
	}
	if got := f.stock.applied[1]; got.Delta != -5 || got.EntryType != "sale" {
		t.Fatalf("expected sale -5 reapply, got %+v", got)
	}
	// Revert of 165 then reapply of the new 175 balance.
	if got := f.ledger.adjusted[customer.ID]; got != 175 {
		t.Fatalf("expected net ledger 175, got %v", got)
	}
	if edited.BalanceAmount != 175 {
		t.Fatalf("expected balance 175, got %v", edited.BalanceAmount)
	}
}

func TestEditShortStockFailsBeforeReplace(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Rice 5kg", 40, 55, 4)
	customer := f.addCustomer(0)

	dto, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		CustomerID: &customer.ID,
		Lines:      []LineInput{{ItemID: item.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.stock.applied = nil

	_, err = f.svc.Edit(context.Background(), f.userID, dto.ID, EditTransactionInput{
		CustomerID: &customer.ID,
		Lines:      []LineInput{{ItemID: item.ID, Quantity: 9}},
	})
	assertErrorCode(t, err, pkgerrors.CodeInsufficientStock)

	// Only the revert ran; the stored aggregate and new-side stock are
	// untouched.
	if len(f.stock.applied) != 1 || f.stock.applied[0].Delta != 3 {
		t.Fatalf("expected the revert movement only, got %+v", f.stock.applied)
	}
	stored := f.repo.transactions[dto.ID]
	if len(stored.LineItems) != 1 || stored.LineItems[0].Quantity != 3 {
		t.Fatalf("expected original lines kept, got %+v", stored.LineItems)
	}
}

func TestEditCarriesBuyPriceSnapshot(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Rice 5kg", 40, 55, 100)
	customer := f.addCustomer(0)

	dto, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		CustomerID: &customer.ID,
		Lines:      []LineInput{{ItemID: item.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Cost rises after the sale; the edit must keep the recorded cost.
	f.catalog.items[item.ID].BuyPrice = 48

	edited, err := f.svc.Edit(context.Background(), f.userID, dto.ID, EditTransactionInput{
		CustomerID:      &customer.ID,
		Lines:           []LineInput{{ItemID: item.ID, Quantity: 4}},
		PaymentReceived: 220,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Lines[0].BuyPrice != 40 {
		t.Fatalf("expected carried buy price 40, got %v", edited.Lines[0].BuyPrice)
	}
	if edited.TotalProfit != 60 {
		t.Fatalf("expected profit 60, got %v", edited.TotalProfit)
	}
}

func TestEditNeverConsumesCredit(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Oil 1L", 80, 100, 20)
	customer := f.addCustomer(0)

	dto, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		CustomerID:      &customer.ID,
		Lines:           []LineInput{{ItemID: item.ID, Quantity: 1}},
		PaymentReceived: 100,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Customer now holds advance credit, but an edit posts its balance
	// without touching it.
	f.ledger.customers[customer.ID].OutstandingBalance = -500

	edited, err := f.svc.Edit(context.Background(), f.userID, dto.ID, EditTransactionInput{
		CustomerID: &customer.ID,
		Lines:      []LineInput{{ItemID: item.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.BalanceAmount != 200 {
		t.Fatalf("expected balance 200, got %v", edited.BalanceAmount)
	}
	if edited.PaymentReceived != 0 {
		t.Fatalf("expected no payment recorded, got %v", edited.PaymentReceived)
	}
}

func TestDeleteRevertsEffect(t *testing.T) {
	f := newEngineFixture(t)
	item := f.addItem("Rice 5kg", 40, 55, 100)
	customer := f.addCustomer(0)

	dto, err := f.svc.Create(context.Background(), f.userID, CreateTransactionInput{
		CustomerID: &customer.ID,
		Lines:      []LineInput{{ItemID: item.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.stock.applied = nil

	if err := f.svc.Delete(context.Background(), f.userID, dto.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(f.stock.applied) != 1 {
		t.Fatalf("expected one revert movement, got %d", len(f.stock.applied))
	}
	if got := f.stock.applied[0]; got.Delta != 3 || got.EntryType != "adjustment" {
		t.Fatalf("expected adjustment +3, got %+v", got)
	}
	if got := f.ledger.adjusted[customer.ID]; got != 0 {
		t.Fatalf("expected ledger back to zero, got %v", got)
	}
	if !f.repo.transactions[dto.ID].IsDeleted {
		t.Fatalf("expected transaction marked deleted")
	}

	if err := f.svc.Delete(context.Background(), f.userID, dto.ID); err == nil {
		t.Fatalf("expected second delete to fail")
	}
}

func TestApplyCreditOffsetTable(t *testing.T) {
	cases := []struct {
		name            string
		outstanding     float64
		grandTotal      float64
		payment         float64
		balance         float64
		wantPayment     float64
		wantBalance     float64
		wantApplied     bool
		wantSetLedger   bool
		wantLedgerValue float64
	}{
		{name: "no credit", outstanding: 100, grandTotal: 50, payment: 0, balance: 50, wantPayment: 0, wantBalance: 50},
		{name: "full coverage", outstanding: -80, grandTotal: 50, payment: 0, balance: 50, wantPayment: 50, wantBalance: 0, wantApplied: true},
		{name: "exact coverage", outstanding: -50, grandTotal: 50, payment: 0, balance: 50, wantPayment: 50, wantBalance: 0, wantApplied: true},
		{name: "partial coverage", outstanding: -20, grandTotal: 50, payment: 0, balance: 50, wantPayment: 20, wantBalance: 30, wantApplied: true, wantSetLedger: true, wantLedgerValue: 30},
		{name: "already settled", outstanding: -20, grandTotal: 50, payment: 50, balance: 0, wantPayment: 50, wantBalance: 0},
		{name: "overpaid passes through", outstanding: 0, grandTotal: 50, payment: 70, balance: -20, wantPayment: 70, wantBalance: -20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := applyCreditOffset(tc.outstanding, tc.grandTotal, tc.payment, tc.balance)
			if got.paymentReceived != tc.wantPayment {
				t.Fatalf("payment: expected %v, got %v", tc.wantPayment, got.paymentReceived)
			}
			if got.balanceAmount != tc.wantBalance {
				t.Fatalf("balance: expected %v, got %v", tc.wantBalance, got.balanceAmount)
			}
			if got.applied != tc.wantApplied {
				t.Fatalf("applied: expected %v, got %v", tc.wantApplied, got.applied)
			}
			if got.setLedger != tc.wantSetLedger {
				t.Fatalf("setLedger: expected %v, got %v", tc.wantSetLedger, got.setLedger)
			}
			if tc.wantSetLedger && got.ledgerValue != tc.wantLedgerValue {
				t.Fatalf("ledgerValue: expected %v, got %v", tc.wantLedgerValue, got.ledgerValue)
			}
		})
	}
}

func assertErrorCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s", code)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

type engineFixture struct {
	svc     Service
	repo    *stubTxnRepo
	stock   *stubStockApplier
	ledger  *stubLedger
	catalog *stubCatalog
	userID  uuid.UUID
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		repo:    &stubTxnRepo{transactions: map[uuid.UUID]*models.SaleTransaction{}},
		ledger:  &stubLedger{customers: map[uuid.UUID]*models.Customer{}, adjusted: map[uuid.UUID]float64{}, set: map[uuid.UUID]float64{}},
		catalog: &stubCatalog{items: map[uuid.UUID]*models.Item{}, overrides: map[overrideKey]float64{}},
		userID:  uuid.New(),
	}
	f.stock = &stubStockApplier{catalog: f.catalog}
	svc, err := NewService(f.repo, f.stock, f.ledger, f.catalog, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func (f *engineFixture) addItem(name string, buyPrice, sellPrice float64, quantity int) *models.Item {
	item := &models.Item{
		ID:        uuid.New(),
		UserID:    f.userID,
		Name:      name,
		BuyPrice:  buyPrice,
		SellPrice: sellPrice,
		Quantity:  quantity,
	}
	f.catalog.items[item.ID] = item
	return item
}

func (f *engineFixture) addCustomer(outstanding float64) *models.Customer {
	customer := &models.Customer{
		ID:                 uuid.New(),
		UserID:             f.userID,
		Name:               "Customer",
		OutstandingBalance: outstanding,
	}
	f.ledger.customers[customer.ID] = customer
	return customer
}

type stubTxnRepo struct {
	transactions map[uuid.UUID]*models.SaleTransaction
}

func (r *stubTxnRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubTxnRepo) Create(ctx context.Context, txn *models.SaleTransaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	r.transactions[txn.ID] = txn
	return nil
}

func (r *stubTxnRepo) FindByID(ctx context.Context, userID, transactionID uuid.UUID) (*models.SaleTransaction, error) {
	txn, ok := r.transactions[transactionID]
	if !ok || txn.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return txn, nil
}

func (r *stubTxnRepo) ReplaceAggregate(ctx context.Context, txn *models.SaleTransaction) error {
	r.transactions[txn.ID] = txn
	return nil
}

func (r *stubTxnRepo) MarkDeleted(ctx context.Context, userID, transactionID uuid.UUID) error {
	txn, ok := r.transactions[transactionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	txn.IsDeleted = true
	return nil
}

func (r *stubTxnRepo) UpdatePaymentFields(ctx context.Context, transactionID uuid.UUID, paymentReceived, balanceAmount float64) error {
	txn, ok := r.transactions[transactionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	txn.PaymentReceived = paymentReceived
	txn.BalanceAmount = balanceAmount
	return nil
}

func (r *stubTxnRepo) ListOutstandingByCustomer(ctx context.Context, userID, customerID uuid.UUID, transactionIDs []uuid.UUID) ([]models.SaleTransaction, error) {
	return nil, nil
}

func (r *stubTxnRepo) ListActiveByCustomer(ctx context.Context, userID, customerID uuid.UUID) ([]models.SaleTransaction, error) {
	return nil, nil
}

func (r *stubTxnRepo) SumOutstandingByCustomer(ctx context.Context, userID, customerID uuid.UUID) (float64, error) {
	var total float64
	for _, txn := range r.transactions {
		if txn.UserID == userID && txn.CustomerID != nil && *txn.CustomerID == customerID && !txn.IsDeleted {
			total += txn.BalanceAmount
		}
	}
	return total, nil
}

func (r *stubTxnRepo) List(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.SaleTransaction, string, error) {
	return nil, "", nil
}

type stubStockApplier struct {
	catalog *stubCatalog
	applied []stock.ApplyInput
}

func (s *stubStockApplier) Apply(ctx context.Context, input stock.ApplyInput) (*models.StockEntry, error) {
	item, ok := s.catalog.items[input.ItemID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	if input.Delta < 0 && item.Quantity+input.Delta < 0 {
		return nil, pkgerrors.New(
			pkgerrors.CodeInsufficientStock,
			fmt.Sprintf("insufficient stock for %s", item.Name),
		)
	}
	item.Quantity += input.Delta
	s.applied = append(s.applied, input)
	return &models.StockEntry{ID: uuid.New(), ItemID: input.ItemID, Quantity: input.Delta, EntryType: input.EntryType}, nil
}

type stubLedger struct {
	customers map[uuid.UUID]*models.Customer
	adjusted  map[uuid.UUID]float64
	set       map[uuid.UUID]float64
}

func (l *stubLedger) FindByID(ctx context.Context, userID, customerID uuid.UUID) (*models.Customer, error) {
	customer, ok := l.customers[customerID]
	if !ok || customer.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return customer, nil
}

func (l *stubLedger) AdjustOutstanding(ctx context.Context, customerID uuid.UUID, delta float64) error {
	l.adjusted[customerID] += delta
	if customer, ok := l.customers[customerID]; ok {
		customer.OutstandingBalance += delta
	}
	return nil
}

func (l *stubLedger) SetOutstanding(ctx context.Context, customerID uuid.UUID, balance float64) error {
	l.set[customerID] = balance
	if customer, ok := l.customers[customerID]; ok {
		customer.OutstandingBalance = balance
	}
	return nil
}

type overrideKey struct {
	itemID     uuid.UUID
	customerID uuid.UUID
}

type stubCatalog struct {
	items     map[uuid.UUID]*models.Item
	overrides map[overrideKey]float64
}

func (c *stubCatalog) FindByID(ctx context.Context, userID, itemID uuid.UUID) (*models.Item, error) {
	item, ok := c.items[itemID]
	if !ok || item.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (c *stubCatalog) FindCustomerPrice(ctx context.Context, itemID, customerID uuid.UUID) (*models.ItemCustomerPrice, error) {
	price, ok := c.overrides[overrideKey{itemID, customerID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.ItemCustomerPrice{ItemID: itemID, CustomerID: customerID, Price: price}, nil
}
