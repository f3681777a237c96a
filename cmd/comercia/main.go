package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/comercia-pos/comercia-pos/internal/app"
	"github.com/comercia-pos/comercia-pos/internal/billing"
	"github.com/comercia-pos/comercia-pos/internal/catalog"
	"github.com/comercia-pos/comercia-pos/internal/dashboard"
	"github.com/comercia-pos/comercia-pos/internal/expense"
	"github.com/comercia-pos/comercia-pos/internal/loans"
	"github.com/comercia-pos/comercia-pos/internal/notify"
	"github.com/comercia-pos/comercia-pos/internal/partner"
	"github.com/comercia-pos/comercia-pos/internal/platform/cache"
	"github.com/comercia-pos/comercia-pos/internal/platform/db"
	"github.com/comercia-pos/comercia-pos/internal/purchases"
	"github.com/comercia-pos/comercia-pos/internal/sales"
	"github.com/comercia-pos/comercia-pos/internal/shared"
	"github.com/comercia-pos/comercia-pos/internal/trade"
	"github.com/comercia-pos/comercia-pos/internal/users"
	"github.com/comercia-pos/comercia-pos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, dashboard cache degraded", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	counters := shared.NewCounterStore(pool)
	idemStore := shared.NewIdempotencyStore(pool)

	tradeService := trade.NewService(logger,
		trade.NewDetailRepository(pool), trade.NewPaymentRepository(pool))

	catalogService := catalog.NewService(logger, catalog.NewRepository(pool))
	partnerService := partner.NewService(logger, partner.NewRepository(pool))
	usersService := users.NewService(logger, users.NewRepository(pool), queue)

	company := billing.Company{
		RUC:              cfg.CompanyRUC,
		Name:             cfg.CompanyName,
		RegistrationName: cfg.CompanyRegistrationName,
		Address:          cfg.CompanyAddress,
	}
	sunatClient := billing.NewHTTPSunatClient(cfg.SunatBaseURL,
		cfg.SunatPersonaID, cfg.SunatPersonaToken, cfg.SunatTimeout)
	billingRepo := billing.NewRepository(pool)
	billingService := billing.NewService(logger, billingRepo, billingRepo, sunatClient,
		company, cfg.SunatPersonaID, cfg.SunatPersonaToken)

	dashboardService := dashboard.NewService(logger, dashboard.NewRepository(pool),
		redisClient, cfg.DashboardCacheTTL)

	salesService := sales.NewService(logger, sales.NewRepository(pool), counters,
		tradeService, billingService, auditLogger, dashboardService)
	purchasesService := purchases.NewService(logger, purchases.NewRepository(pool),
		counters, tradeService, auditLogger, dashboardService)
	loansService := loans.NewService(logger, loans.NewRepository(pool), counters,
		tradeService, auditLogger, dashboardService)

	expenseService := expense.NewService(logger, expense.NewRepository(pool),
		trade.NewPaymentRepository(pool), dashboardService)

	searchLimiter := app.SearchLimiter()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CatalogHandler:   catalog.NewHandler(logger, catalogService, searchLimiter),
		PartnerHandler:   partner.NewHandler(logger, partnerService, searchLimiter),
		UsersHandler:     users.NewHandler(logger, usersService, cfg.SunatBaseURL),
		SalesHandler:     sales.NewHandler(logger, salesService, tradeService),
		PurchasesHandler: purchases.NewHandler(logger, purchasesService, tradeService),
		LoansHandler:     loans.NewHandler(logger, loansService, tradeService),
		TradeHandler:     trade.NewHandler(logger, tradeService, idemStore, dashboardService),
		ExpenseHandler:   expense.NewHandler(logger, expenseService),
		BillingHandler:   billing.NewHandler(logger, billingService),
		DashboardHandler: dashboard.NewHandler(logger, dashboardService),
		NotifyHandler:    notify.NewHandler(logger, cfg.WhatsAppVerifyToken, queue),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
