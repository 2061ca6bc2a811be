package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/anandkhatri/ledgerbook-backend/internal/auth"
	customersvc "github.com/anandkhatri/ledgerbook-backend/internal/customers"
	itemsvc "github.com/anandkhatri/ledgerbook-backend/internal/items"
	paymentsvc "github.com/anandkhatri/ledgerbook-backend/internal/payments"
	reconcilesvc "github.com/anandkhatri/ledgerbook-backend/internal/reconcile"
	returnsvc "github.com/anandkhatri/ledgerbook-backend/internal/returns"
	stocksvc "github.com/anandkhatri/ledgerbook-backend/internal/stock"
	txnsvc "github.com/anandkhatri/ledgerbook-backend/internal/transactions"
	pkgAuth "github.com/anandkhatri/ledgerbook-backend/pkg/auth"
	"github.com/anandkhatri/ledgerbook-backend/pkg/auth/session"
	"github.com/anandkhatri/ledgerbook-backend/pkg/config"
	"github.com/anandkhatri/ledgerbook-backend/pkg/db/models"
	"github.com/anandkhatri/ledgerbook-backend/pkg/logger"
	"github.com/anandkhatri/ledgerbook-backend/pkg/pagination"
	"github.com/anandkhatri/ledgerbook-backend/pkg/redis"
)

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return session.NewAccessID(), "refresh", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return &authsvc.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req authsvc.RegisterRequest) error {
	return nil
}

type stubItemsService struct{}

func (stubItemsService) Create(ctx context.Context, userID uuid.UUID, input itemsvc.CreateItemInput) (*itemsvc.ItemDTO, error) {
	return &itemsvc.ItemDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (stubItemsService) Get(ctx context.Context, userID, itemID uuid.UUID) (*itemsvc.ItemDTO, error) {
	return &itemsvc.ItemDTO{ID: itemID}, nil
}

func (stubItemsService) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*itemsvc.ItemList, error) {
	return &itemsvc.ItemList{}, nil
}

func (stubItemsService) Update(ctx context.Context, userID, itemID uuid.UUID, input itemsvc.UpdateItemInput) (*itemsvc.ItemDTO, error) {
	return &itemsvc.ItemDTO{ID: itemID}, nil
}

func (stubItemsService) UpdatePrices(ctx context.Context, userID, itemID uuid.UUID, input itemsvc.UpdatePricesInput) (*itemsvc.ItemDTO, error) {
	return &itemsvc.ItemDTO{ID: itemID}, nil
}

func (stubItemsService) SetCustomerPrice(ctx context.Context, userID, itemID uuid.UUID, input itemsvc.CustomerPriceInput) error {
	return nil
}

func (stubItemsService) PriceHistory(ctx context.Context, userID, itemID uuid.UUID) ([]models.ItemPriceRevision, error) {
	return nil, nil
}

func (stubItemsService) AdjustStock(ctx context.Context, userID, itemID uuid.UUID, input itemsvc.AdjustStockInput) (*itemsvc.ItemDTO, error) {
	return &itemsvc.ItemDTO{ID: itemID}, nil
}

func (stubItemsService) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	return nil
}

type stubStockService struct{}

func (stubStockService) Apply(ctx context.Context, input stocksvc.ApplyInput) (*models.StockEntry, error) {
	return &models.StockEntry{}, nil
}

func (stubStockService) Journal(ctx context.Context, userID, itemID uuid.UUID, params pagination.Params) (*stocksvc.EntryList, error) {
	return &stocksvc.EntryList{}, nil
}

type stubCustomersService struct{}

func (stubCustomersService) Create(ctx context.Context, userID uuid.UUID, input customersvc.CreateCustomerInput) (*customersvc.CustomerDTO, error) {
	return &customersvc.CustomerDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (stubCustomersService) Get(ctx context.Context, userID, customerID uuid.UUID) (*customersvc.CustomerDTO, error) {
	return &customersvc.CustomerDTO{ID: customerID}, nil
}

func (stubCustomersService) List(ctx context.Context, userID uuid.UUID) ([]customersvc.CustomerDTO, error) {
	return nil, nil
}

func (stubCustomersService) Update(ctx context.Context, userID, customerID uuid.UUID, input customersvc.UpdateCustomerInput) (*customersvc.CustomerDTO, error) {
	return &customersvc.CustomerDTO{ID: customerID}, nil
}

func (stubCustomersService) Delete(ctx context.Context, userID, customerID uuid.UUID) error {
	return nil
}

func (stubCustomersService) Ledger(ctx context.Context, userID, customerID uuid.UUID) (*customersvc.CustomerLedgerDTO, error) {
	return &customersvc.CustomerLedgerDTO{Customer: customersvc.CustomerDTO{ID: customerID}}, nil
}

type stubTransactionsService struct{}

func (stubTransactionsService) Create(ctx context.Context, userID uuid.UUID, input txnsvc.CreateTransactionInput) (*txnsvc.TransactionDTO, error) {
	return &txnsvc.TransactionDTO{ID: uuid.New()}, nil
}

func (stubTransactionsService) Edit(ctx context.Context, userID, transactionID uuid.UUID, input txnsvc.EditTransactionInput) (*txnsvc.TransactionDTO, error) {
	return &txnsvc.TransactionDTO{ID: transactionID}, nil
}

func (stubTransactionsService) Delete(ctx context.Context, userID, transactionID uuid.UUID) error {
	return nil
}

func (stubTransactionsService) Get(ctx context.Context, userID, transactionID uuid.UUID) (*txnsvc.TransactionDTO, error) {
	return &txnsvc.TransactionDTO{ID: transactionID}, nil
}

func (stubTransactionsService) List(ctx context.Context, userID uuid.UUID, params pagination.Params, filters txnsvc.ListFilters) (*txnsvc.TransactionList, error) {
	return &txnsvc.TransactionList{}, nil
}

type stubReturnsService struct{}

func (stubReturnsService) Create(ctx context.Context, userID uuid.UUID, input returnsvc.CreateReturnInput) (*returnsvc.ReturnDTO, error) {
	return &returnsvc.ReturnDTO{ID: uuid.New()}, nil
}

func (stubReturnsService) Get(ctx context.Context, userID, returnID uuid.UUID) (*returnsvc.ReturnDTO, error) {
	return &returnsvc.ReturnDTO{ID: returnID}, nil
}

func (stubReturnsService) List(ctx context.Context, userID uuid.UUID, params pagination.Params, customerID *uuid.UUID) (*returnsvc.ReturnList, error) {
	return &returnsvc.ReturnList{}, nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) Bulk(ctx context.Context, userID uuid.UUID, input paymentsvc.BulkPaymentInput) (*paymentsvc.PaymentDTO, error) {
	return &paymentsvc.PaymentDTO{ID: uuid.New()}, nil
}

func (stubPaymentsService) Get(ctx context.Context, userID, paymentID uuid.UUID) (*paymentsvc.PaymentDTO, error) {
	return &paymentsvc.PaymentDTO{ID: paymentID}, nil
}

func (stubPaymentsService) History(ctx context.Context, userID uuid.UUID, params pagination.Params, customerID *uuid.UUID) (*paymentsvc.PaymentList, error) {
	return &paymentsvc.PaymentList{}, nil
}

type stubReconcileService struct{}

func (stubReconcileService) FixBalances(ctx context.Context, userID, customerID uuid.UUID) (*reconcilesvc.DriftReport, error) {
	return &reconcilesvc.DriftReport{CustomerID: customerID}, nil
}

func (stubReconcileService) FixAllBalances(ctx context.Context, userID uuid.UUID) (*reconcilesvc.RunReport, error) {
	return &reconcilesvc.RunReport{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		(*redis.Client)(nil),
		stubSessionManager{},
		Services{
			Auth:         stubAuthService{},
			Register:     stubRegisterService{},
			Items:        stubItemsService{},
			Stock:        stubStockService{},
			Customers:    stubCustomersService{},
			Transactions: stubTransactionsService{},
			Returns:      stubReturnsService{},
			Payments:     stubPaymentsService{},
			Reconcile:    stubReconcileService{},
		},
	)
}

func mintRouterToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicPing(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestHealthLiveReportsEnv(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Ledgerbook-Env"); got != "test" {
		t.Fatalf("expected env header test got %q", got)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintRouterToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestDomainRoutesRegistered(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := mintRouterToken(t, cfg)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/items"},
		{http.MethodGet, "/api/v1/customers"},
		{http.MethodGet, "/api/v1/customers/" + uuid.NewString() + "/ledger"},
		{http.MethodGet, "/api/v1/transactions"},
		{http.MethodGet, "/api/v1/returns"},
		{http.MethodGet, "/api/v1/payments"},
		{http.MethodPost, "/api/v1/reconcile/customers"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200 got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestLoginRouteServesStubbedTokens(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	// No body means the validator rejects; the route itself must be mounted.
	if resp.Code == http.StatusNotFound || resp.Code == http.StatusMethodNotAllowed {
		t.Fatalf("expected login route mounted got %d", resp.Code)
	}
}
