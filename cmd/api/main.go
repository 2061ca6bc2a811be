package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/anandkhatri/ledgerbook-backend/api/routes"
	"github.com/anandkhatri/ledgerbook-backend/internal/auth"
	"github.com/anandkhatri/ledgerbook-backend/internal/customers"
	"github.com/anandkhatri/ledgerbook-backend/internal/items"
	"github.com/anandkhatri/ledgerbook-backend/internal/payments"
	"github.com/anandkhatri/ledgerbook-backend/internal/reconcile"
	"github.com/anandkhatri/ledgerbook-backend/internal/returns"
	"github.com/anandkhatri/ledgerbook-backend/internal/stock"
	"github.com/anandkhatri/ledgerbook-backend/internal/transactions"
	"github.com/anandkhatri/ledgerbook-backend/internal/users"
	"github.com/anandkhatri/ledgerbook-backend/pkg/auth/session"
	"github.com/anandkhatri/ledgerbook-backend/pkg/config"
	"github.com/anandkhatri/ledgerbook-backend/pkg/db"
	"github.com/anandkhatri/ledgerbook-backend/pkg/logger"
	"github.com/anandkhatri/ledgerbook-backend/pkg/migrate"
	"github.com/anandkhatri/ledgerbook-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(dbClient, sessionManager, cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, sessionManager, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(dbClient *db.Client, sessionManager *session.Manager, cfg *config.Config, logg *logger.Logger) (routes.Services, error) {
	gdb := dbClient.DB()

	userRepo := users.NewRepository(gdb)
	customerRepo := customers.NewRepository(gdb)
	itemRepo := items.NewRepository(gdb)
	stockRepo := stock.NewRepository(gdb)
	txnRepo := transactions.NewRepository(gdb)
	returnRepo := returns.NewRepository(gdb)
	paymentRepo := payments.NewRepository(gdb)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Services{}, err
	}
	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:        dbClient,
		UserRepoFactory: auth.DefaultUserRepoFactory,
		PasswordConfig:  cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	stockService, err := stock.NewService(stockRepo)
	if err != nil {
		return routes.Services{}, err
	}
	customerService, err := customers.NewService(customerRepo, txnRepo, paymentRepo)
	if err != nil {
		return routes.Services{}, err
	}
	itemService, err := items.NewService(itemRepo, stockService, customerRepo)
	if err != nil {
		return routes.Services{}, err
	}
	txnService, err := transactions.NewService(txnRepo, stockService, customerRepo, itemRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}
	returnService, err := returns.NewService(returnRepo, stockService, customerRepo, txnRepo, itemRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}
	paymentService, err := payments.NewService(paymentRepo, customerRepo, txnRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}
	reconcileService, err := reconcile.NewService(customerRepo, txnRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:         authService,
		Register:     registerService,
		Items:        itemService,
		Stock:        stockService,
		Customers:    customerService,
		Transactions: txnService,
		Returns:      returnService,
		Payments:     paymentService,
		Reconcile:    reconcileService,
	}, nil
}
