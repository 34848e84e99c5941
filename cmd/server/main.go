package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/royale/pos/internal/application/advisor"
	catalogapp "github.com/royale/pos/internal/application/catalog"
	inventoryapp "github.com/royale/pos/internal/application/inventory"
	partnerapp "github.com/royale/pos/internal/application/partner"
	reportapp "github.com/royale/pos/internal/application/report"
	tradeapp "github.com/royale/pos/internal/application/trade"
	"github.com/royale/pos/internal/infrastructure/ai"
	"github.com/royale/pos/internal/infrastructure/config"
	"github.com/royale/pos/internal/infrastructure/event"
	"github.com/royale/pos/internal/infrastructure/logger"
	"github.com/royale/pos/internal/infrastructure/persistence"
	"github.com/royale/pos/internal/infrastructure/storage"
	"github.com/royale/pos/internal/infrastructure/telemetry"
	"github.com/royale/pos/internal/interfaces/http/handler"
	"github.com/royale/pos/internal/interfaces/http/middleware"
	"github.com/royale/pos/internal/interfaces/http/router"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	serviceName := cfg.Telemetry.ServiceName

	// OTEL log bridge: rebuild the logger with the bridge tee'd in
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log provider", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(serviceName, logProvider, logger.ParseLevel(cfg.Telemetry.LogsLevel))
		if log, err = logger.New(logCfg, logger.WithCore(otelCore)); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Royale",
		zap.String("version", version),
		zap.String("shop", cfg.Shop.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("timezone", cfg.Shop.Timezone),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: serviceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
		if err := logProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down log provider", zap.Error(err))
		}
	}()

	// Open the store. The schema is migrated up before anything reads it.
	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowThreshold))
	db := persistence.NewDatabase(&cfg.Database, log,
		persistence.WithLogger(gormLog),
		persistence.WithOpenHook(telemetry.NewDBTracingPlugin(dbTracing, log).Register),
	)
	if err := db.Initialize(ctx); err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing store", zap.Error(err))
		}
	}()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db)
	saleRepo := persistence.NewGormSaleRepository(db)
	stockLedger := persistence.NewGormStockLedger(db)
	debtorRepo := persistence.NewGormDebtorRepository(db)

	// Application services
	loc := cfg.Shop.Location()
	defaults := catalogapp.Defaults{
		LowStockThreshold: cfg.Shop.DefaultLowStockThreshold,
		CostRatio:         cfg.Shop.CostRatioDecimal(),
	}

	meter := meterProvider.Meter(serviceName)
	businessMetrics := telemetry.NewNopBusinessMetrics()
	if meterProvider.IsEnabled() {
		bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:  meter,
			Logger: log,
			StockProvider: telemetry.StockLevelFunc(func(ctx context.Context) (int64, error) {
				low, err := productRepo.FindLowStock(ctx)
				return int64(len(low)), err
			}),
		})
		if err != nil {
			log.Fatal("Failed to create business metrics", zap.Error(err))
		}
		businessMetrics = bm
		businessMetrics.StartPeriodicCollection(ctx)
		defer businessMetrics.Stop()
	}

	eventBus := event.NewInMemoryEventBus(log, event.WithDispatchObserver(businessMetrics))
	inventoryService := catalogapp.NewInventoryService(productRepo, stockLedger, eventBus, log, defaults)

	saleProcessor := tradeapp.NewSaleProcessor(productRepo, saleRepo, stockLedger, eventBus, log)
	saleProcessor.SetBusinessMetrics(businessMetrics)

	reconciler := inventoryapp.NewReconciliationService(saleRepo, productRepo, stockLedger, stockLedger, log)
	reconciler.SetBusinessMetrics(businessMetrics)

	archive, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to connect report storage", zap.Error(err))
	}
	reportService := reportapp.NewService(saleRepo, productRepo, archive, loc, log)

	gemini, err := ai.NewGeminiClient(ctx, &cfg.Advisor, log, ai.WithHTTPClient(&http.Client{
		Timeout:   cfg.Advisor.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}))
	if err != nil {
		log.Fatal("Failed to create advisor client", zap.Error(err))
	}
	if !gemini.Enabled() {
		log.Warn("Advisor has no API key; advice and chat will answer with fallback text")
	}
	advisorService := advisor.NewService(gemini, productRepo, saleRepo, log,
		advisor.WithFailureRecorder(businessMetrics),
		advisor.WithRecentSales(cfg.Advisor.RecentSales),
		advisor.WithLocation(loc),
	)

	debtorService := partnerapp.NewDebtorService(debtorRepo, log)

	// Event handlers
	journal := event.NewJournalHandler(log)
	stockAlerts := inventoryapp.NewStockAlertHandler(log)
	eventBus.Subscribe(journal)
	eventBus.Subscribe(stockAlerts)
	log.Info("Event handlers registered",
		zap.Strings("journal_events", journal.EventTypes()),
		zap.Strings("stock_alert_events", stockAlerts.EventTypes()),
	)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// A sale interrupted by a crash leaves unapplied lines behind; report
	// them at start so they are repaired before the next day's stock count
	if pending, err := reconciler.Check(ctx); err != nil {
		log.Error("Startup reconciliation check failed", zap.Error(err))
	} else if len(pending) > 0 {
		log.Warn("Sale lines awaiting reconciliation", zap.Int("lines", len(pending)))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engineCfg := router.EngineConfig{
		ServiceName: serviceName,
		Logger:      log,
		CORS: middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: middleware.DefaultCORSConfig().ExposeHeaders,
			MaxAge:        middleware.DefaultCORSConfig().MaxAge,
		},
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		TracingEnabled:   tracerProvider.IsEnabled(),
		ProfilingEnabled: profiler.IsEnabled(),
		MetricsPath:      cfg.Metrics.Path,
	}
	if meterProvider.IsEnabled() {
		engineCfg.Meter = meter
	}
	if cfg.Metrics.PrometheusEnabled {
		engineCfg.Prometheus = middleware.NewPrometheusMetrics("royale")
	}

	engine := router.NewEngine(engineCfg, router.Handlers{
		System:         handler.NewSystemHandler(db, version),
		Product:        handler.NewProductHandler(inventoryService),
		Sale:           handler.NewSaleHandler(saleProcessor),
		Report:         handler.NewReportHandler(reportService),
		Reconciliation: handler.NewReconciliationHandler(reconciler),
		Advisor:        handler.NewAdvisorHandler(advisorService),
		Debtor:         handler.NewDebtorHandler(debtorService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}
