// @title          Group Ledger API
// @version        1.0
// @description    Shared expenses, settlements and simplified debts for groups.
// @host           localhost:8080
// @BasePath       /api/v1
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/groupledger/docs"
	"github.com/fkhayef/groupledger/internal/cache"
	"github.com/fkhayef/groupledger/internal/config"
	"github.com/fkhayef/groupledger/internal/database"
	"github.com/fkhayef/groupledger/internal/events"
	"github.com/fkhayef/groupledger/internal/events/kafka"
	"github.com/fkhayef/groupledger/internal/expense"
	expensesplit "github.com/fkhayef/groupledger/internal/expense/split"
	"github.com/fkhayef/groupledger/internal/group"
	"github.com/fkhayef/groupledger/internal/ledger"
	"github.com/fkhayef/groupledger/internal/metrics"
	"github.com/fkhayef/groupledger/internal/notification"
	"github.com/fkhayef/groupledger/internal/settlement"
	"github.com/fkhayef/groupledger/internal/storage/memory"
	"github.com/fkhayef/groupledger/pkg/logging"
	mw "github.com/fkhayef/groupledger/pkg/middleware"
)

// stores bundles the persistence chosen by DATA_BACKEND
type stores struct {
	groups        group.Store
	expenses      ledger.ExpenseStore
	settlements   ledger.SettlementStore
	notifications notification.Store
	close         func() error
}

func main() {
	// Load .env file
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	st, err := openStores(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "backend", cfg.DataBackend, "error", err)
		os.Exit(1)
	}
	defer st.close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Split Strategy Factory (Factory Pattern)
	splitFactory := expensesplit.NewSplitStrategyFactory()

	// Group directory
	groupService := group.NewService(st.groups)
	groupHandler := group.NewHandler(groupService)

	// Notification feature
	notificationService := notification.NewService(st.notifications)
	notificationHandler := notification.NewHandler(notificationService)

	// Ledger event sinks
	var publishers events.Multi
	if cfg.NotificationsEnabled {
		publishers = append(publishers, notification.NewPublisher(notificationService))
	}
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publishers = append(publishers, kp)
		logger.Info("Publishing ledger events to Kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// Balance cache
	cacheManager := cache.NewManager()
	ledgerOpts := []ledger.Option{
		ledger.WithPublisher(publishers),
		ledger.WithPublishTimeout(cfg.PublishTimeout),
		ledger.WithMetrics(m),
		ledger.WithLogger(logger.With("component", "ledger")),
	}
	if cfg.BalanceCacheSize > 0 {
		balanceCache := ledger.NewBalanceCache(cfg.BalanceCacheSize, cfg.BalanceCacheTTL)
		cacheManager.Register(balanceCache)
		ledgerOpts = append(ledgerOpts, ledger.WithBalanceCache(balanceCache))
	}
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	// Ledger engine (expenses, settlements, balances)
	ledgerService := ledger.NewService(st.expenses, st.settlements, groupService, splitFactory, ledgerOpts...)
	groupService.SetActivityGuard(ledgerService)
	balanceHandler := ledger.NewHandler(ledgerService)

	expenseHandler := expense.NewHandler(expense.NewService(ledgerService))
	settlementHandler := settlement.NewHandler(settlement.NewService(ledgerService))

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.MemberMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/settlements", settlementHandler.Routes())
		r.Mount("/balances", balanceHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("Graceful shutdown failed", "error", err)
	}
	logger.Info("Shutdown complete")
}

func openStores(cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.DataBackend == config.BackendMemory {
		s := memory.NewStore()
		logger.Warn("Using in-memory storage; data is lost on restart")
		return &stores{
			groups:        s,
			expenses:      s,
			settlements:   s,
			notifications: s,
			close:         func() error { return nil },
		}, nil
	}

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to database successfully")

	if cfg.RunMigrations {
		if err := database.RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Database migrations applied")
	}

	return postgresStores(db), nil
}

func postgresStores(db *sql.DB) *stores {
	return &stores{
		groups:        group.NewRepository(db),
		expenses:      expense.NewRepository(db),
		settlements:   settlement.NewRepository(db),
		notifications: notification.NewRepository(db),
		close:         db.Close,
	}
}
