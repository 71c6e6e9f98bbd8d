package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbilling "github.com/Asdjeiflv/InvoicePilot/internal/application/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/cache"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/config"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/logger"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/mail"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/persistence"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/scheduler"
	"github.com/Asdjeiflv/InvoicePilot/internal/interfaces/http/handler"
	"github.com/Asdjeiflv/InvoicePilot/internal/interfaces/http/middleware"
	"github.com/Asdjeiflv/InvoicePilot/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting invoicepilot",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()

	clock := shared.Clock(shared.SystemClock)
	scope := persistence.NewGormTransactionScope(db)

	clientCache := newClientCache(cfg, clock, log)

	numbering := appbilling.NewNumberingService(scope, clock, log)
	invoiceService := appbilling.NewInvoiceService(scope, numbering, clock, log)
	quotationService := appbilling.NewQuotationService(scope, numbering, clock, log)
	reconcileService := appbilling.NewReconcileService(scope, clock, log)
	paymentService := appbilling.NewPaymentService(scope, reconcileService, clock, log)
	mailer := mail.NewLogMailer(cfg.Mail.From, log)
	reminderService := appbilling.NewReminderService(scope, mailer, clock, log)
	clientService := appbilling.NewClientService(scope, clientCache, clock, log)
	exportService := appbilling.NewExportService(scope, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Idempotency.Enabled {
		store := newIdempotencyStore(cfg, clock, log)
		defer func() { _ = store.Close() }()
		engine.Use(middleware.Idempotency(store, cfg.Idempotency.TTL, log))
	}

	handler.NewHealthHandler(db).Register(engine)

	router.NewRouter(engine).
		Register(handler.NewClientHandler(clientService)).
		Register(handler.NewQuotationHandler(quotationService, invoiceService)).
		Register(handler.NewInvoiceHandler(invoiceService, reconcileService)).
		Register(handler.NewPaymentHandler(paymentService)).
		Register(handler.NewReminderHandler(reminderService)).
		Register(handler.NewExportHandler(exportService)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	var sweep *scheduler.OverdueSweepScheduler
	if cfg.Sweep.Enabled {
		sweep = scheduler.NewOverdueSweepScheduler(reconcileService, cfg.Sweep.Interval, log)
		sweep.Start(context.Background())
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")
	if sweep != nil {
		sweep.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited gracefully")
}

func newIdempotencyStore(cfg *config.Config, clock shared.Clock, log *zap.Logger) shared.IdempotencyStore {
	if !cfg.Cache.Enabled {
		return cache.NewInMemoryIdempotencyStore(clock)
	}
	client, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, using in-memory idempotency store", zap.Error(err))
		return cache.NewInMemoryIdempotencyStore(clock)
	}
	return cache.NewRedisIdempotencyStore(client)
}

func newClientCache(cfg *config.Config, clock shared.Clock, log *zap.Logger) appbilling.ClientCache {
	if !cfg.Cache.Enabled {
		return cache.NewInMemoryClientCache(cfg.Cache.TTL, clock)
	}
	client, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, using in-memory client cache", zap.Error(err))
		return cache.NewInMemoryClientCache(cfg.Cache.TTL, clock)
	}
	log.Info("redis client cache enabled", zap.String("addr", cfg.Redis.Addr()))
	return cache.NewRedisClientCache(client, cfg.Cache.TTL, log)
}
