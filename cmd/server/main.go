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

	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoicesxpert/backend/internal/application/invoicing"
	printingapp "github.com/invoicesxpert/backend/internal/application/printing"
	sharingapp "github.com/invoicesxpert/backend/internal/application/sharing"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/printing"
	"github.com/invoicesxpert/backend/internal/infrastructure/cache"
	"github.com/invoicesxpert/backend/internal/infrastructure/config"
	"github.com/invoicesxpert/backend/internal/infrastructure/event"
	"github.com/invoicesxpert/backend/internal/infrastructure/ledger"
	"github.com/invoicesxpert/backend/internal/infrastructure/logger"
	"github.com/invoicesxpert/backend/internal/infrastructure/migration"
	"github.com/invoicesxpert/backend/internal/infrastructure/persistence"
	"github.com/invoicesxpert/backend/internal/infrastructure/persistence/models"
	infra "github.com/invoicesxpert/backend/internal/infrastructure/printing"
	"github.com/invoicesxpert/backend/internal/infrastructure/storage"
	"github.com/invoicesxpert/backend/internal/infrastructure/telemetry"
	"github.com/invoicesxpert/backend/internal/interfaces/http/handler"
	"github.com/invoicesxpert/backend/internal/interfaces/http/middleware"
	"github.com/invoicesxpert/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/invoicesxpert/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			InvoicesXpert API
//	@version		1.0
//	@description	Invoice management with client records, 18 print styles, PDF export and payment-app share links.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.email	support@invoicesxpert.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

const version = "1.0.0"

// stores bundles the repositories selected by persistence.driver
type stores struct {
	clients invoicing.ClientRepository
	invoice invoicing.InvoiceRepository
	jobs    printing.ExportJobRepository
	db      *persistence.Database
}

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

	// Initialize logger
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	collector := telemetry.Endpoint{
		Address:     cfg.Telemetry.CollectorEndpoint,
		Protocol:    cfg.Telemetry.Protocol,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.App.Env,
	}

	// Forward logs to the collector when enabled
	logProvider, err := telemetry.NewLoggerProvider(rootCtx, telemetry.LogsConfig{
		Enabled:  cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		Endpoint: collector,
	}, log)
	if err != nil {
		log.Warn("OpenTelemetry logs disabled", zap.Error(err))
	} else if logProvider.IsEnabled() {
		bridge := logProvider.Core(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Telemetry.LogsLevel))
		if log, err = logger.New(logCfg, bridge); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting InvoicesXpert",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("persistence", cfg.Persistence.Driver),
	)

	// Tracing, metrics and profiling
	tracerProvider, err := telemetry.NewTracerProvider(rootCtx, telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		Endpoint:      collector,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(rootCtx, telemetry.MetricsConfig{
		Enabled:        cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		Endpoint:       collector,
		ExportInterval: cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
		ProfileMutexes:  true,
	}, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", zap.Error(err))
	}
	if cfg.Telemetry.ProfilingSpanProfile && profiler != nil && profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles disabled", zap.Error(err))
		}
	}

	// Redis is dialed lazily, only by the stores configured to use it
	factory := cache.NewFactory(cfg, cache.WithLogger(log))
	defer func() {
		if err := factory.Close(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}()

	st, err := openStores(rootCtx, cfg, factory, log)
	if err != nil {
		log.Fatal("Failed to open persistence", zap.Error(err))
	}
	if st.db != nil {
		defer func() {
			if err := st.db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
	}

	sequence, err := factory.NumberSequence(rootCtx, st.gormDB())
	if err != nil {
		log.Fatal("Failed to create invoice number sequence", zap.Error(err))
	}
	locker, err := factory.ExportLocker(rootCtx)
	if err != nil {
		log.Fatal("Failed to create export lock", zap.Error(err))
	}

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Rendering pipeline
	registry := infra.NewRegistry()
	engine := infra.NewTemplateEngine()
	renderer, err := infra.NewInvoiceRenderer(engine, registry)
	if err != nil {
		log.Fatal("Failed to load invoice templates", zap.Error(err))
	}
	browser, err := infra.NewChromedpBrowser(&infra.ChromedpConfig{
		DefaultTimeout: cfg.Render.Timeout,
		RemoteURL:      cfg.Render.ChromeURL,
		ExecPath:       cfg.Render.ExecPath,
		Headless:       cfg.Render.Headless,
		DisableGPU:     cfg.Render.DisableGPU,
		NoSandbox:      cfg.Render.NoSandbox,
		ViewportWidth:  cfg.Render.ViewportWidth,
		Scale:          cfg.Render.Scale,
		SettleDelay:    cfg.Render.SettleDelay,
		Logger:         log.Named("chromedp"),
	})
	if err != nil {
		log.Fatal("Failed to create headless browser", zap.Error(err))
	}
	defer func() {
		_ = browser.Close()
	}()
	paginator := infra.NewPaginator(infra.WithCreator(cfg.App.Name), infra.WithPaginatorLogger(log))

	archive, err := newArchive(rootCtx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create export archive", zap.Error(err))
	}
	if archive != nil {
		go infra.RunRetention(rootCtx, archive, time.Duration(cfg.Export.RetentionDays)*24*time.Hour, time.Hour, log)
	}

	exportMetrics, err := telemetry.NewExportMetrics(meterProvider.Meter("invoicesxpert.export"))
	if err != nil {
		log.Warn("Export metrics disabled", zap.Error(err))
	}

	// Initialize application services
	numbers := invoicing.NewNumberGenerator(sequence)
	clientService := invoicingapp.NewClientService(st.clients, log)
	invoiceService := invoicingapp.NewInvoiceService(st.invoice, st.clients, numbers, registry, ledger.NewWriter(log), eventBus, log)
	dashboardService := invoicingapp.NewDashboardService(invoiceService, st.clients)

	exportOpts := []printingapp.ExportServiceOption{
		printingapp.WithLocker(locker),
		printingapp.WithLockWait(cfg.Export.LockWait),
		printingapp.WithEventPublisher(eventBus),
		printingapp.WithMetrics(exportMetrics),
		printingapp.WithLogger(log),
	}
	if archive != nil {
		exportOpts = append(exportOpts, printingapp.WithArchive(archive))
	}
	exportService := printingapp.NewExportService(st.invoice, st.jobs, renderer, browser, browser, paginator, exportOpts...)
	catalogService := printingapp.NewCatalogService(st.invoice, renderer, log)
	shareService := sharingapp.NewShareService(st.invoice, renderer, engine, cfg.Share.PublicOrigin, cfg.Share.FallbackDelay, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register field-level validation messages
	middleware.SetupValidator()

	// Create Gin engine with middleware
	ginEngine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
		SkipPaths:   []string{"/health", "/ready"},
	}))
	ginEngine.Use(middleware.SpanStatus())
	ginEngine.Use(logger.GinMiddleware(log))
	ginEngine.Use(middleware.HTTPMetrics(meterProvider))

	// CORS
	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	ginEngine.Use(middleware.CORSWithConfig(corsConfig))

	// Request body size limit
	ginEngine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		swaggerCfg := middleware.SwaggerConfig{
			Enabled:    true,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}
		if cfg.Swagger.Username != "" {
			swaggerCfg.Accounts = gin.Accounts{cfg.Swagger.Username: cfg.Swagger.Password}
		}
		ginEngine.GET("/swagger/*any",
			middleware.SwaggerProtection(swaggerCfg),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}

	// API routes carry the session, JSON security headers and the optional
	// general rate limit; public pages get the relaxed page policy.
	apiMW := []gin.HandlerFunc{
		middleware.Secure(),
		middleware.Session(),
		middleware.Profiling(profiler != nil && profiler.IsEnabled()),
	}
	if cfg.HTTP.RateLimitRequests > 0 {
		apiMW = append(apiMW, middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
	}
	var exportLimit gin.HandlerFunc
	if cfg.Export.RateLimitRequests > 0 {
		exportLimit = middleware.ExportRateLimit(middleware.NewRateLimiter(cfg.Export.RateLimitRequests, cfg.Export.RateLimitWindow))
	}

	handlers := &handler.Handlers{
		Clients:   handler.NewClientHandler(clientService),
		Invoices:  handler.NewInvoiceHandler(invoiceService),
		Exports:   handler.NewExportHandler(exportService),
		Templates: handler.NewTemplateHandler(catalogService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Share:     handler.NewShareHandler(shareService),
		System:    handler.NewSystemHandler(cfg.App.Name, version, readinessChecks(cfg, st, factory, browser)),
	}

	r := router.NewRouter(ginEngine, router.WithAPIMiddleware(apiMW...))
	handlers.RegisterAll(r, exportLimit,
		middleware.SecureWithConfig(middleware.PublicPageSecurityConfig()),
	)
	r.Setup()

	for _, route := range ginEngine.Routes() {
		log.Debug("Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// in-flight exports finish before the browser goes away
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopBackground()

	if err := eventBus.Stop(ctx); err != nil {
		log.Warn("Event bus stop failed", zap.Error(err))
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Warn("Profiler stop failed", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(ctx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	if logProvider != nil {
		_ = logger.Sync(log)
		_ = logProvider.Shutdown(ctx)
	}
}

func (s *stores) gormDB() *gorm.DB {
	if s.db == nil {
		return nil
	}
	return s.db.DB
}

// openStores opens the repositories for persistence.driver. SQLite is
// auto-migrated; PostgreSQL runs the embedded migrations.
func openStores(ctx context.Context, cfg *config.Config, factory *cache.Factory, log *zap.Logger) (*stores, error) {
	if !cfg.Persistence.UsesSQL() {
		kv, err := factory.KVStore(ctx)
		if err != nil {
			return nil, err
		}
		return &stores{
			clients: persistence.NewKVClientRepository(kv),
			invoice: persistence.NewKVInvoiceRepository(kv),
			jobs:    persistence.NewKVExportJobRepository(kv),
		}, nil
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Persistence, &cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		return nil, err
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Persistence.Driver))

	switch cfg.Persistence.Driver {
	case config.DriverSQLite:
		if err := db.DB.AutoMigrate(models.All()...); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	case config.DriverPostgres:
		if err := migratePostgres(db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        db.System(),
	}, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}

	return &stores{
		clients: persistence.NewGormClientRepository(db.DB),
		invoice: persistence.NewGormInvoiceRepository(db.DB),
		jobs:    persistence.NewGormExportJobRepository(db.DB),
		db:      db,
	}, nil
}

func migratePostgres(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	m, err := migration.New(sqlDB, log)
	if err != nil {
		return err
	}
	// closing the migrator would close the shared connection
	if err := m.Up(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// newArchive returns the store for copies of exported PDFs, or nil when
// export.archive is none.
func newArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) (infra.ExportArchive, error) {
	switch cfg.Export.Archive {
	case config.ArchiveFilesystem:
		return infra.NewFileSystemStorage(&infra.FileSystemStorageConfig{
			BasePath: cfg.Export.ArchivePath,
			BaseURL:  cfg.Export.ArchiveBaseURL,
			Logger:   log,
		})
	case config.ArchiveS3:
		archive, err := storage.NewS3Archive(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiry),
		)
		if err != nil {
			return nil, err
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return archive, nil
	default:
		return nil, nil
	}
}

// readinessChecks lists the dependencies /ready probes
func readinessChecks(cfg *config.Config, st *stores, factory *cache.Factory, browser *infra.ChromedpBrowser) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"browser": browser.Ping,
	}
	if st.db != nil {
		checks["database"] = st.db.Ping
	}
	usesRedis := cfg.Export.Lock == config.LockRedis ||
		(!cfg.Persistence.UsesSQL() && cfg.Persistence.KVStore == config.KVStoreRedis)
	if usesRedis {
		checks["redis"] = func(ctx context.Context) error {
			client, err := factory.Redis(ctx)
			if err != nil {
				return err
			}
			return client.Ping(ctx).Err()
		}
	}
	return checks
}
