package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anandkhatri/ledgerbook-backend/api/controllers"
	"github.com/anandkhatri/ledgerbook-backend/api/middleware"
	"github.com/anandkhatri/ledgerbook-backend/internal/auth"
	customersvc "github.com/anandkhatri/ledgerbook-backend/internal/customers"
	itemsvc "github.com/anandkhatri/ledgerbook-backend/internal/items"
	paymentsvc "github.com/anandkhatri/ledgerbook-backend/internal/payments"
	reconcilesvc "github.com/anandkhatri/ledgerbook-backend/internal/reconcile"
	returnsvc "github.com/anandkhatri/ledgerbook-backend/internal/returns"
	stocksvc "github.com/anandkhatri/ledgerbook-backend/internal/stock"
	txnsvc "github.com/anandkhatri/ledgerbook-backend/internal/transactions"
	"github.com/anandkhatri/ledgerbook-backend/pkg/auth/session"
	"github.com/anandkhatri/ledgerbook-backend/pkg/config"
	"github.com/anandkhatri/ledgerbook-backend/pkg/logger"
	"github.com/anandkhatri/ledgerbook-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles the domain services the router exposes.
type Services struct {
	Auth         auth.Service
	Register     auth.RegisterService
	Items        itemsvc.Service
	Stock        stocksvc.Service
	Customers    customersvc.Service
	Transactions txnsvc.Service
	Returns      returnsvc.Service
	Payments     paymentsvc.Service
	Reconcile    reconcilesvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	sessions sessionManager,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/items", func(r chi.Router) {
			r.Post("/", controllers.CreateItem(svcs.Items, logg))
			r.Get("/", controllers.ListItems(svcs.Items, logg))
			r.Get("/{itemId}", controllers.GetItem(svcs.Items, logg))
			r.Patch("/{itemId}", controllers.UpdateItem(svcs.Items, logg))
			r.Delete("/{itemId}", controllers.DeleteItem(svcs.Items, logg))
			r.Put("/{itemId}/prices", controllers.UpdateItemPrices(svcs.Items, logg))
			r.Get("/{itemId}/prices/history", controllers.ItemPriceHistory(svcs.Items, logg))
			r.Put("/{itemId}/customer-price", controllers.SetItemCustomerPrice(svcs.Items, logg))
			r.Post("/{itemId}/stock", controllers.AdjustItemStock(svcs.Items, logg))
			r.Get("/{itemId}/stock/journal", controllers.ItemStockJournal(svcs.Stock, logg))
		})

		r.Route("/v1/customers", func(r chi.Router) {
			r.Post("/", controllers.CreateCustomer(svcs.Customers, logg))
			r.Get("/", controllers.ListCustomers(svcs.Customers, logg))
			r.Get("/{customerId}", controllers.GetCustomer(svcs.Customers, logg))
			r.Get("/{customerId}/ledger", controllers.CustomerLedger(svcs.Customers, logg))
			r.Patch("/{customerId}", controllers.UpdateCustomer(svcs.Customers, logg))
			r.Delete("/{customerId}", controllers.DeleteCustomer(svcs.Customers, logg))
		})

		r.Route("/v1/transactions", func(r chi.Router) {
			r.Post("/", controllers.CreateTransaction(svcs.Transactions, logg))
			r.Get("/", controllers.ListTransactions(svcs.Transactions, logg))
			r.Get("/{transactionId}", controllers.GetTransaction(svcs.Transactions, logg))
			r.Put("/{transactionId}", controllers.EditTransaction(svcs.Transactions, logg))
			r.Delete("/{transactionId}", controllers.DeleteTransaction(svcs.Transactions, logg))
		})

		r.Route("/v1/returns", func(r chi.Router) {
			r.Post("/", controllers.CreateReturn(svcs.Returns, logg))
			r.Get("/", controllers.ListReturns(svcs.Returns, logg))
			r.Get("/{returnId}", controllers.GetReturn(svcs.Returns, logg))
		})

		r.Route("/v1/payments", func(r chi.Router) {
			r.Post("/bulk", controllers.BulkPayment(svcs.Payments, logg))
			r.Get("/", controllers.PaymentHistory(svcs.Payments, logg))
			r.Get("/{paymentId}", controllers.GetPayment(svcs.Payments, logg))
		})

		r.Route("/v1/reconcile", func(r chi.Router) {
			r.Post("/customers/{customerId}", controllers.FixCustomerBalance(svcs.Reconcile, logg))
			r.Post("/customers", controllers.FixAllBalances(svcs.Reconcile, logg))
		})
	})

	return r
}
