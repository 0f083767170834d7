package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apppayment "github.com/storesync/backend/internal/application/payment"
	appsync "github.com/storesync/backend/internal/application/sync"
	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/domain/order"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/infrastructure/cache"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/crm"
	"github.com/storesync/backend/internal/infrastructure/event"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/infrastructure/opn"
	"github.com/storesync/backend/internal/infrastructure/persistence"
	"github.com/storesync/backend/internal/infrastructure/signature"
	"github.com/storesync/backend/internal/interfaces/http/handler"
	"github.com/storesync/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithGormLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	orderRepo := persistence.NewGormOrderRepository(db.DB)
	refundRepo := persistence.NewGormRefundRepository(db.DB)
	mappingRepo := persistence.NewGormProductMappingRepository(db.DB)

	crmClient, err := crm.NewClient(crm.Config{
		Host:      cfg.Crm.Host,
		CompanyID: cfg.Crm.CompanyID,
		Token:     cfg.Crm.Token,
		StatusID:  cfg.Crm.StatusID,
		ProjectID: cfg.Crm.ProjectID,
		Timeout:   cfg.Crm.Timeout,
	}, log)
	if err != nil {
		log.Fatal("failed to create CRM client", zap.Error(err))
	}

	gateway, err := opn.NewAdapter(opn.Config{
		BaseURL:   cfg.Gateway.BaseURL,
		SecretKey: cfg.Gateway.SecretKey,
		ReturnURI: cfg.Gateway.ReturnURI,
		Enable3DS: cfg.Gateway.Enable3DS,
		Timeout:   cfg.Gateway.Timeout,
	}, log)
	if err != nil {
		log.Fatal("failed to create payment gateway adapter", zap.Error(err))
	}

	idem, err := newIdempotencyStore(cfg, log)
	if err != nil {
		log.Fatal("failed to create idempotency store", zap.Error(err))
	}
	defer func() { _ = idem.Close() }()

	eventBus := event.NewInMemoryEventBus(log)

	statusMapper := newStatusMapper(cfg.Crm.StatusMap)
	syncEngine := appsync.NewOrderSyncEngine(orderRepo, crmClient, statusMapper, mappingRepo, eventBus, log)

	reconciler := apppayment.NewReconciler(orderRepo, refundRepo, gateway, idem, eventBus, apppayment.Options{
		PollInterval:    cfg.Payment.PollInterval,
		PollMaxAttempts: cfg.Payment.PollMaxAttempts,
		IdempotencyTTL:  cfg.Payment.IdempotencyTTL,
	}, log)

	paidHandler := appsync.NewPaidOrderHandler(syncEngine, idem, cfg.Payment.IdempotencyTTL, log)
	eventBus.Subscribe(paidHandler)
	outcomeHandler := appsync.NewPaymentOutcomeHandler(syncEngine, log)
	eventBus.Subscribe(outcomeHandler)

	ctx := context.Background()
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = eventBus.Stop(stopCtx)
	}()

	checkers := map[string]handler.ReadinessChecker{
		"database": db,
	}
	if redisStore, ok := idem.(*cache.RedisIdempotencyStore); ok {
		checkers["redis"] = redisStore
	}

	handlers := router.Handlers{
		System: handler.NewSystemHandler(checkers),
		Webhook: handler.NewWebhookHandler(
			signature.NewVerifier(cfg.Crm.WebhookSecret),
			signature.NewVerifier(cfg.Gateway.WebhookSecret),
			syncEngine,
			reconciler,
			log,
		),
		Order:    handler.NewOrderHandler(orderRepo, syncEngine, log),
		Payment:  handler.NewPaymentHandler(reconciler, log),
		Checkout: handler.NewCheckoutHandler(),
	}

	engine := router.Setup(cfg, log, handlers)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	log.Info("server exited gracefully")
}

// newIdempotencyStore selects the Redis-backed store when configured,
// otherwise the in-process one
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) (shared.IdempotencyStore, error) {
	if !cfg.Redis.Enabled {
		return cache.NewInMemoryIdempotencyStore(), nil
	}

	store, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	log.Info("using Redis idempotency store",
		zap.String("host", cfg.Redis.Host),
		zap.Int("port", cfg.Redis.Port),
	)
	return store, nil
}

// newStatusMapper builds the status translation table, applying any
// overrides from configuration on top of the defaults
func newStatusMapper(overrides map[string]string) *integration.StatusMapper {
	if len(overrides) == 0 {
		return integration.NewDefaultStatusMapper()
	}

	table := integration.DefaultStatusMap()
	for local, external := range overrides {
		table[order.Status(local)] = external
	}
	return integration.NewStatusMapper(table)
}
