package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditapp "github.com/bettstax/backend/internal/application/audit"
	clientapp "github.com/bettstax/backend/internal/application/client"
	complianceapp "github.com/bettstax/backend/internal/application/compliance"
	documentapp "github.com/bettstax/backend/internal/application/document"
	eventapp "github.com/bettstax/backend/internal/application/event"
	filingapp "github.com/bettstax/backend/internal/application/filing"
	identityapp "github.com/bettstax/backend/internal/application/identity"
	navigationapp "github.com/bettstax/backend/internal/application/navigation"
	paymentapp "github.com/bettstax/backend/internal/application/payment"
	reportapp "github.com/bettstax/backend/internal/application/report"
	schemaapp "github.com/bettstax/backend/internal/application/schema"
	settingsapp "github.com/bettstax/backend/internal/application/settings"
	taxcalcapp "github.com/bettstax/backend/internal/application/taxcalc"
	webhookapp "github.com/bettstax/backend/internal/application/webhook"
	workflowapp "github.com/bettstax/backend/internal/application/workflow"
	"github.com/bettstax/backend/internal/infrastructure/auth"
	"github.com/bettstax/backend/internal/infrastructure/cache"
	"github.com/bettstax/backend/internal/infrastructure/config"
	"github.com/bettstax/backend/internal/infrastructure/email"
	"github.com/bettstax/backend/internal/infrastructure/event"
	"github.com/bettstax/backend/internal/infrastructure/logger"
	"github.com/bettstax/backend/internal/infrastructure/pdf"
	"github.com/bettstax/backend/internal/infrastructure/persistence"
	"github.com/bettstax/backend/internal/infrastructure/scheduler"
	"github.com/bettstax/backend/internal/infrastructure/storage"
	"github.com/bettstax/backend/internal/infrastructure/telemetry"
	webhookinfra "github.com/bettstax/backend/internal/infrastructure/webhook"
	"github.com/bettstax/backend/internal/interfaces/http/handler"
	"github.com/bettstax/backend/internal/interfaces/http/middleware"
	"github.com/bettstax/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/bettstax/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			BettsTax Backend API
//	@version		1.0
//	@description	Multi-tenant tax practice management API covering clients, tax filings, payments, documents, and Finance Act 2025 compliance for Sierra Leone.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/bettstax/backend
//	@contact.email	support@bettstax.sl

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting BettsTax Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// OpenTelemetry providers. Disabled sections yield no-op providers, so
	// the wiring below stays unconditional.
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	logsProvider, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := logsProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down log exporter", zap.Error(err))
		}
	}()
	if logsProvider.IsEnabled() {
		// Tee application logs to the collector alongside the local output
		bridged, err := telemetry.CreateBridgedLoggerFromConfig(&telemetry.BaseLoggerConfig{
			Level:      cfg.Log.Level,
			Format:     cfg.Log.Format,
			Output:     cfg.Log.Output,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		}, logsProvider, cfg.Telemetry.ServiceName)
		if err != nil {
			log.Warn("Log bridging unavailable, keeping local logger", zap.Error(err))
		} else {
			log = bridged
		}
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		ProfileCPU:        true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Database query tracing and pool metrics
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracingCfg := telemetry.DefaultDBTracingConfig()
		dbTracingCfg.Enabled = true
		dbTracingCfg.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		dbTracingCfg.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		if err := telemetry.NewDBTracingPlugin(dbTracingCfg, log).RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
	}
	dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
	dbMetricsCfg.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, dbMetricsCfg, log)
	if err != nil {
		log.Warn("Database metrics unavailable", zap.Error(err))
	} else if dbMetrics != nil {
		defer dbMetrics.Stop()
	}

	// Business metrics: filing/payment counters recorded inline by the
	// services, compliance gauges collected periodically per tenant
	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:              meterProvider.Meter("bettstax.business"),
			Logger:             log,
			ComplianceProvider: telemetry.NewGormComplianceMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Business metrics unavailable", zap.Error(err))
			businessMetrics = nil
		} else {
			businessMetrics.StartPeriodicCollection(
				context.Background(), telemetry.NewGormTenantProvider(db.DB), 0,
			)
			defer businessMetrics.Stop()
		}
	}

	// Initialize repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	filingRepo := persistence.NewGormTaxFilingRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	ruleRepo := persistence.NewGormDeadlineRuleRepository(db.DB)
	holidayRepo := persistence.NewGormPublicHolidayRepository(db.DB)
	auditEntryRepo := persistence.NewGormAuditEntryRepository(db.DB)
	settingRepo := persistence.NewGormSettingRepository(db.DB)
	reportTemplateRepo := persistence.NewGormReportTemplateRepository(db.DB)
	reportQueryRepo := persistence.NewGormReportQueryRepository(db.DB)
	triggerRepo := persistence.NewGormTriggerRepository(db.DB)
	webhookRegistrationRepo := persistence.NewGormWebhookRegistrationRepository(db.DB)
	webhookDeliveryRepo := persistence.NewGormWebhookDeliveryRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	// Versioned serializer upgrades stored payloads from older schema
	// versions before they reach handlers
	eventSerializer := event.NewVersionedSerializer(log)
	event.RegisterAllEvents(eventSerializer)

	// Create outbox publisher for transactional event saving
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Inject outbox publisher into repositories that persist domain events
	clientRepo.SetOutboxEventSaver(outboxPublisher)
	filingRepo.SetOutboxEventSaver(outboxPublisher)
	paymentRepo.SetOutboxEventSaver(outboxPublisher)
	documentRepo.SetOutboxEventSaver(outboxPublisher)
	tenantRepo.SetOutboxEventSaver(outboxPublisher)

	// Object storage for document uploads (S3-compatible, stub for local dev)
	var objectStorage documentapp.ObjectStorageService
	if cfg.Storage.Provider == "s3" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Using stub object storage; uploads are not persisted")
	}

	// Outbound email (deadline reminders, welcome mail, trigger notifications)
	var (
		welcomeMailer   identityapp.WelcomeMailer
		deadlineMailer  complianceapp.DeadlineMailer
		triggerNotifier workflowapp.Notifier
	)
	if cfg.Email.Enabled {
		smtpSender := email.NewSMTPSender(cfg.Email, log)
		welcomeMailer, deadlineMailer, triggerNotifier = smtpSender, smtpSender, smtpSender
	} else {
		noopSender := email.NewNoopSender()
		welcomeMailer, deadlineMailer, triggerNotifier = noopSender, noopSender, noopSender
	}

	// Initialize application services
	settingsService := settingsapp.NewSettingsService(settingRepo)
	complianceService := complianceapp.NewComplianceService(ruleRepo, holidayRepo)
	calculatorService := taxcalcapp.NewCalculatorService(ruleRepo, holidayRepo)
	clientService := clientapp.NewClientService(clientRepo, filingRepo)
	filingService := filingapp.NewFilingService(filingRepo, clientRepo, ruleRepo, holidayRepo)
	paymentService := paymentapp.NewPaymentService(paymentRepo, filingRepo)
	if businessMetrics != nil {
		filingService.SetBusinessMetrics(businessMetrics)
		paymentService.SetBusinessMetrics(businessMetrics)
	}

	documentService := documentapp.NewDocumentService(documentRepo, clientRepo, filingRepo, objectStorage)
	documentConfig := documentapp.DefaultDocumentServiceConfig()
	if cfg.Storage.PresignExpiration > 0 {
		documentConfig.UploadURLExpiry = cfg.Storage.PresignExpiration
		documentConfig.DownloadURLExpiry = cfg.Storage.PresignExpiration
	}
	documentService.SetConfig(documentConfig)

	reminderService := complianceapp.NewReminderService(tenantRepo, filingRepo, clientRepo, settingsService, deadlineMailer)
	auditService := auditapp.NewAuditService(auditEntryRepo)

	// Navigation badge counts are cached per (tenant, role, user)
	countsCache, err := cache.NewCacheFactory[navigationapp.CountsResponse](
		cfg.Cache, cfg.Redis, "nav:counts", cache.WithCacheFactoryLogger(log),
	).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize navigation counts cache", zap.Error(err))
	}
	navigationService := navigationapp.NewNavigationService(
		filingRepo, paymentRepo, documentRepo, clientRepo, webhookDeliveryRepo, countsCache,
	)

	pdfRenderer := pdf.NewChromedpRenderer(pdf.Config{Logger: log})
	reportService := reportapp.NewReportService(reportTemplateRepo, reportQueryRepo, pdfRenderer)

	httpSender := webhookinfra.NewHTTPSender(cfg.Webhook.HTTPTimeout)
	webhookService := webhookapp.NewWebhookService(webhookRegistrationRepo, webhookDeliveryRepo, httpSender)

	schemaRegistry := schemaapp.NewDefaultRegistry()
	schemaService := schemaapp.NewSchemaService(schemaRegistry)
	triggerService := workflowapp.NewTriggerService(triggerRepo, schemaRegistry)

	// Identity services (auth, users, tenants)
	jwtService := auth.NewJWTService(cfg.JWT)
	var tokenBlacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		blacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Token blacklist unavailable, logout will not revoke tokens", zap.Error(err))
		} else {
			tokenBlacklist = blacklist
		}
	}
	authService := identityapp.NewAuthService(userRepo, tenantRepo, jwtService, tokenBlacklist, log)
	userService := identityapp.NewUserService(userRepo, clientRepo, welcomeMailer, log)
	tenantService := identityapp.NewTenantService(tenantRepo, userRepo, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Outbox retries can redeliver an event, so every subscriber is wrapped
	// with idempotency checking keyed on the event ID. Redis-backed when
	// available, in-memory otherwise.
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(
		cfg.Redis, cache.WithLogger(log),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Every domain event lands in the audit trail
	auditRecorder := auditapp.NewEventRecorder(auditEntryRepo)
	eventBus.Subscribe(event.NewIdempotentHandler(auditRecorder, idempotencyStore, log))

	// Fan events out to matching webhook registrations
	webhookFanout := webhookapp.NewEventFanout(webhookRegistrationRepo, webhookDeliveryRepo)
	eventBus.Subscribe(event.NewIdempotentHandler(webhookFanout, idempotencyStore, log))

	// Evaluate workflow triggers against incoming events
	triggerEngine := workflowapp.NewTriggerEngine(
		triggerRepo, auditEntryRepo, webhookService, filingService, triggerNotifier,
	)
	eventBus.Subscribe(event.NewIdempotentHandler(triggerEngine, idempotencyStore, log))

	log.Info("Event handlers registered",
		zap.Int("handlers", 3),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start outbox processor for guaranteed event delivery
	// The outbox processor reads events from the outbox_events table and publishes them to the event bus
	outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
	if err := outboxProcessor.Start(context.Background()); err != nil {
		log.Fatal("Failed to start outbox processor", zap.Error(err))
	}
	defer func() {
		if err := outboxProcessor.Stop(context.Background()); err != nil {
			log.Error("Error stopping outbox processor", zap.Error(err))
		}
	}()
	log.Info("Outbox processor started",
		zap.Int("batch_size", outboxProcessorConfig.BatchSize),
		zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
	)

	// Webhook dispatcher delivers queued webhook payloads with retry/backoff
	if cfg.Webhook.DispatcherEnabled {
		dispatcher := webhookinfra.NewDispatcher(
			webhookDeliveryRepo, webhookRegistrationRepo, httpSender, cfg.Webhook, log,
		)
		if err := dispatcher.Start(context.Background()); err != nil {
			log.Fatal("Failed to start webhook dispatcher", zap.Error(err))
		}
		defer func() {
			if err := dispatcher.Stop(context.Background()); err != nil {
				log.Error("Error stopping webhook dispatcher", zap.Error(err))
			}
		}()
		log.Info("Webhook dispatcher started",
			zap.Duration("poll_interval", cfg.Webhook.PollInterval),
			zap.Int("batch_size", cfg.Webhook.BatchSize),
		)
	}

	// Initialize maintenance scheduler (if enabled)
	var maintenanceScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		executor := scheduler.NewMaintenanceExecutor(
			filingService, reminderService, reportService, documentService, auditService,
			scheduler.DefaultMaintenanceExecutorConfig(), log,
		)
		maintenanceScheduler = scheduler.NewScheduler(scheduler.SchedulerConfig{
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}, executor, log)
		if err := maintenanceScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
		}
		defer func() {
			if err := maintenanceScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping maintenance scheduler", zap.Error(err))
			}
		}()

		cronTrigger := scheduler.NewCronTrigger(
			scheduler.CronTriggerConfigFromSchedule(cfg.Scheduler.DailyCronSchedule),
			maintenanceScheduler, log,
		)
		if err := cronTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			if err := cronTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
		log.Info("Maintenance scheduler started",
			zap.String("schedule", cfg.Scheduler.DailyCronSchedule),
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
		)
	}

	// Bootstrap the first firm and its defaults when configured
	if cfg.App.SeedOnStart {
		seedInitialData(context.Background(), cfg, tenantService, complianceService, settingsService, reportService, log)
	}

	// Initialize HTTP handlers
	clientHandler := handler.NewClientHandler(clientService)
	filingHandler := handler.NewFilingHandler(filingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	documentHandler := handler.NewDocumentHandler(documentService)
	complianceHandler := handler.NewComplianceHandler(complianceService)
	calculatorHandler := handler.NewCalculatorHandler(calculatorService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	auditHandler := handler.NewAuditHandler(auditService)
	navigationHandler := handler.NewNavigationHandler(navigationService)
	reportHandler := handler.NewReportHandler(reportService)
	webhookHandler := handler.NewWebhookHandler(webhookService)
	triggerHandler := handler.NewTriggerHandler(triggerService)
	schemaHandler := handler.NewSchemaHandler(schemaService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	systemHandler := handler.NewSystemHandler(maintenanceScheduler)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)
	outboxHandler := handler.NewOutboxHandler(outboxService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. Tracing/Metrics/Profiling - observability (when telemetry enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Observability middleware: request tracing, RED metrics, profiling labels
	if tracerProvider.IsEnabled() {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}
	if meterProvider.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint
	swaggerConfig := middleware.SwaggerConfig{
		Enabled:     cfg.Swagger.Enabled,
		RequireAuth: cfg.Swagger.RequireAuth,
		AllowedIPs:  cfg.Swagger.AllowedIPs,
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(swaggerConfig, middleware.JWTAuthMiddleware(jwtService)),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	publicPaths := []string{
		"/api/v1/auth/login",
		"/api/v1/auth/refresh",
		"/api/v1/ping",
		"/api/v1/system/ping",
		"/api/v1/system/info",
	}
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths:      publicPaths,
		Logger:         log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Tenant context is resolved from JWT claims after authentication
	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.SkipPaths = append(tenantConfig.SkipPaths, publicPaths...)
	tenantConfig.Logger = log
	r.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	staffOnly := middleware.RequireStaff()
	adminOnly := middleware.RequireAdmin()

	// Authentication
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// Client management (portal users reach their own filings/documents only)
	clientRoutes := router.NewDomainGroup("clients", "/clients")
	clientRoutes.POST("", staffOnly, clientHandler.Create)
	clientRoutes.GET("", staffOnly, clientHandler.List)
	clientRoutes.GET("/code/:code", staffOnly, clientHandler.GetByCode)
	clientRoutes.GET("/tin/:tin", staffOnly, clientHandler.GetByTIN)
	clientRoutes.GET("/:id", staffOnly, clientHandler.GetByID)
	clientRoutes.PUT("/:id", staffOnly, clientHandler.Update)
	clientRoutes.DELETE("/:id", staffOnly, clientHandler.Delete)
	clientRoutes.PUT("/:id/code", staffOnly, clientHandler.UpdateCode)
	clientRoutes.POST("/:id/assign", staffOnly, clientHandler.Assign)
	clientRoutes.DELETE("/:id/assign", staffOnly, clientHandler.Unassign)
	clientRoutes.POST("/:id/gst", staffOnly, clientHandler.RegisterGST)
	clientRoutes.DELETE("/:id/gst", staffOnly, clientHandler.DeregisterGST)
	clientRoutes.POST("/:id/activate", staffOnly, clientHandler.Activate)
	clientRoutes.POST("/:id/deactivate", staffOnly, clientHandler.Deactivate)
	clientRoutes.POST("/:id/suspend", staffOnly, clientHandler.Suspend)
	clientRoutes.POST("/:id/portal", staffOnly, clientHandler.GrantPortalAccess)
	clientRoutes.DELETE("/:id/portal", staffOnly, clientHandler.RevokePortalAccess)
	clientRoutes.GET("/:id/filings", filingHandler.ListByClient)
	clientRoutes.GET("/:id/documents", documentHandler.ListByClient)

	// Tax filings
	filingRoutes := router.NewDomainGroup("filings", "/filings")
	filingRoutes.POST("", staffOnly, filingHandler.Create)
	filingRoutes.GET("", filingHandler.List)
	filingRoutes.GET("/deadlines", staffOnly, filingHandler.UpcomingDeadlines)
	filingRoutes.GET("/stats", staffOnly, filingHandler.Stats)
	filingRoutes.GET("/number/:number", filingHandler.GetByNumber)
	filingRoutes.GET("/:id", filingHandler.GetByID)
	filingRoutes.PUT("/:id", staffOnly, filingHandler.Update)
	filingRoutes.DELETE("/:id", staffOnly, filingHandler.Delete)
	filingRoutes.POST("/:id/submit", staffOnly, filingHandler.Submit)
	filingRoutes.POST("/:id/review", staffOnly, filingHandler.StartReview)
	filingRoutes.POST("/:id/flag", staffOnly, filingHandler.FlagForReview)
	filingRoutes.POST("/:id/approve", staffOnly, filingHandler.Approve)
	filingRoutes.POST("/:id/reject", staffOnly, filingHandler.Reject)
	filingRoutes.POST("/:id/file", staffOnly, filingHandler.MarkFiled)
	filingRoutes.POST("/:id/cancel", staffOnly, filingHandler.Cancel)
	filingRoutes.POST("/:id/recalculate", staffOnly, filingHandler.RecalculateCharges)
	filingRoutes.POST("/:id/overdue", staffOnly, filingHandler.MarkOverdue)
	filingRoutes.GET("/:id/payments", paymentHandler.ListByFiling)
	filingRoutes.GET("/:id/balance", paymentHandler.OutstandingBalance)
	filingRoutes.GET("/:id/documents", documentHandler.ListByFiling)

	// Payments
	paymentRoutes := router.NewDomainGroup("payments", "/payments")
	paymentRoutes.Use(staffOnly)
	paymentRoutes.POST("", paymentHandler.Record)
	paymentRoutes.GET("", paymentHandler.List)
	paymentRoutes.GET("/totals", paymentHandler.TotalsByMethod)
	paymentRoutes.GET("/number/:number", paymentHandler.GetByNumber)
	paymentRoutes.GET("/:id", paymentHandler.GetByID)
	paymentRoutes.DELETE("/:id", paymentHandler.Delete)
	paymentRoutes.POST("/:id/confirm", paymentHandler.Confirm)
	paymentRoutes.POST("/:id/fail", paymentHandler.Fail)
	paymentRoutes.POST("/:id/refund", paymentHandler.Refund)
	paymentRoutes.PUT("/:id/receipt", paymentHandler.AttachReceipt)

	// Documents (portal users upload and download their own)
	documentRoutes := router.NewDomainGroup("documents", "/documents")
	documentRoutes.POST("", documentHandler.InitiateUpload)
	documentRoutes.GET("", documentHandler.List)
	documentRoutes.GET("/usage", staffOnly, documentHandler.Usage)
	documentRoutes.GET("/:id", documentHandler.GetByID)
	documentRoutes.GET("/:id/download", documentHandler.DownloadURL)
	documentRoutes.POST("/:id/confirm", documentHandler.ConfirmUpload)
	documentRoutes.PUT("/:id", staffOnly, documentHandler.Update)
	documentRoutes.PUT("/:id/filing", staffOnly, documentHandler.LinkFiling)
	documentRoutes.POST("/:id/archive", staffOnly, documentHandler.Archive)
	documentRoutes.POST("/:id/restore", staffOnly, documentHandler.Restore)
	documentRoutes.DELETE("/:id", staffOnly, documentHandler.Delete)

	// Tax calculator
	calculatorRoutes := router.NewDomainGroup("calculator", "/calculator")
	calculatorRoutes.POST("/liability", calculatorHandler.CalculateLiability)
	calculatorRoutes.POST("/comprehensive", calculatorHandler.CalculateComprehensive)
	calculatorRoutes.POST("/late-charges", calculatorHandler.CalculateLateCharges)
	calculatorRoutes.GET("/rates", calculatorHandler.RateTables)
	calculatorRoutes.GET("/withholding-categories", calculatorHandler.WithholdingCategories)

	// Compliance (deadline rules and public holidays)
	complianceRoutes := router.NewDomainGroup("compliance", "/compliance")
	complianceRoutes.Use(staffOnly)
	complianceRoutes.POST("/rules", complianceHandler.CreateRule)
	complianceRoutes.GET("/rules", complianceHandler.ListRules)
	complianceRoutes.GET("/rules/tax-type/:taxType", complianceHandler.GetRuleByTaxType)
	complianceRoutes.GET("/rules/:id", complianceHandler.GetRule)
	complianceRoutes.PUT("/rules/:id", complianceHandler.UpdateRule)
	complianceRoutes.DELETE("/rules/:id", complianceHandler.DeleteRule)
	complianceRoutes.POST("/rules/:id/activate", complianceHandler.ActivateRule)
	complianceRoutes.POST("/rules/:id/deactivate", complianceHandler.DeactivateRule)
	complianceRoutes.POST("/preview-due-date", complianceHandler.PreviewDueDate)
	complianceRoutes.POST("/holidays", complianceHandler.CreateHoliday)
	complianceRoutes.GET("/holidays", complianceHandler.ListHolidays)
	complianceRoutes.GET("/holidays/:id", complianceHandler.GetHoliday)
	complianceRoutes.PUT("/holidays/:id", complianceHandler.UpdateHoliday)
	complianceRoutes.DELETE("/holidays/:id", complianceHandler.DeleteHoliday)
	complianceRoutes.POST("/holidays/:id/activate", complianceHandler.ActivateHoliday)
	complianceRoutes.POST("/holidays/:id/deactivate", complianceHandler.DeactivateHoliday)
	complianceRoutes.POST("/seed", complianceHandler.SeedDefaults)

	// Tenant settings
	settingsRoutes := router.NewDomainGroup("settings", "/settings")
	settingsRoutes.Use(staffOnly)
	settingsRoutes.GET("", settingsHandler.List)
	settingsRoutes.PUT("", settingsHandler.Upsert)
	settingsRoutes.POST("/seed", settingsHandler.SeedDefaults)
	settingsRoutes.GET("/:key", settingsHandler.Get)
	settingsRoutes.DELETE("/:key", settingsHandler.Delete)

	// Audit trail
	auditRoutes := router.NewDomainGroup("audit", "/audit")
	auditRoutes.Use(staffOnly)
	auditRoutes.GET("", auditHandler.Search)
	auditRoutes.GET("/activity", auditHandler.ActivityCount)
	auditRoutes.GET("/history/:entityType/:entityId", auditHandler.EntityHistory)
	auditRoutes.POST("/purge", adminOnly, auditHandler.Purge)
	auditRoutes.GET("/:id", auditHandler.GetEntry)

	// Navigation badge counts
	navigationRoutes := router.NewDomainGroup("navigation", "/navigation")
	navigationRoutes.GET("/counts", navigationHandler.Counts)

	// Reports
	reportRoutes := router.NewDomainGroup("reports", "/reports")
	reportRoutes.Use(staffOnly)
	reportRoutes.POST("/templates", reportHandler.CreateTemplate)
	reportRoutes.GET("/templates", reportHandler.ListTemplates)
	reportRoutes.GET("/templates/code/:code", reportHandler.GetTemplateByCode)
	reportRoutes.POST("/templates/seed", reportHandler.SeedDefaults)
	reportRoutes.GET("/templates/:id", reportHandler.GetTemplate)
	reportRoutes.PUT("/templates/:id", reportHandler.UpdateTemplate)
	reportRoutes.DELETE("/templates/:id", reportHandler.DeleteTemplate)
	reportRoutes.POST("/templates/:id/activate", reportHandler.ActivateTemplate)
	reportRoutes.POST("/templates/:id/deactivate", reportHandler.DeactivateTemplate)
	reportRoutes.PUT("/templates/:id/schedule", reportHandler.SetSchedule)
	reportRoutes.GET("/templates/:id/render", reportHandler.Render)
	reportRoutes.GET("/templates/:id/export/csv", reportHandler.ExportCSV)
	reportRoutes.GET("/templates/:id/export/pdf", reportHandler.ExportPDF)
	reportRoutes.GET("/types", reportHandler.ReportTypes)

	// Webhooks
	webhookRoutes := router.NewDomainGroup("webhooks", "/webhooks")
	webhookRoutes.Use(staffOnly)
	webhookRoutes.POST("", webhookHandler.Register)
	webhookRoutes.GET("", webhookHandler.List)
	webhookRoutes.GET("/export", webhookHandler.Export)
	webhookRoutes.POST("/import", webhookHandler.Import)
	webhookRoutes.GET("/dead-letters", webhookHandler.ListDeadLetters)
	webhookRoutes.POST("/deliveries/:id/redeliver", webhookHandler.Redeliver)
	webhookRoutes.GET("/:id", webhookHandler.Get)
	webhookRoutes.PUT("/:id", webhookHandler.Update)
	webhookRoutes.DELETE("/:id", webhookHandler.Delete)
	webhookRoutes.POST("/:id/rotate-secret", webhookHandler.RotateSecret)
	webhookRoutes.POST("/:id/activate", webhookHandler.Activate)
	webhookRoutes.POST("/:id/deactivate", webhookHandler.Deactivate)
	webhookRoutes.POST("/:id/test", webhookHandler.TestEndpoint)
	webhookRoutes.GET("/:id/stats", webhookHandler.Stats)
	webhookRoutes.GET("/:id/deliveries", webhookHandler.ListDeliveries)

	// Workflow triggers
	triggerRoutes := router.NewDomainGroup("triggers", "/triggers")
	triggerRoutes.Use(staffOnly)
	triggerRoutes.POST("", triggerHandler.Create)
	triggerRoutes.GET("", triggerHandler.List)
	triggerRoutes.POST("/validate", triggerHandler.Validate)
	triggerRoutes.GET("/:id", triggerHandler.Get)
	triggerRoutes.PUT("/:id", triggerHandler.Update)
	triggerRoutes.DELETE("/:id", triggerHandler.Delete)
	triggerRoutes.PUT("/:id/priority", triggerHandler.SetPriority)
	triggerRoutes.POST("/:id/activate", triggerHandler.Activate)
	triggerRoutes.POST("/:id/deactivate", triggerHandler.Deactivate)
	triggerRoutes.POST("/:id/test", triggerHandler.Test)

	// Entity/event schema reflection
	schemaRoutes := router.NewDomainGroup("schema", "/schema")
	schemaRoutes.Use(staffOnly)
	schemaRoutes.GET("/entities", schemaHandler.ListEntityTypes)
	schemaRoutes.GET("/entities/:entityType", schemaHandler.GetSchema)
	schemaRoutes.GET("/events/:eventType", schemaHandler.GetSchemaForEvent)
	schemaRoutes.GET("/operators", schemaHandler.Operators)

	// User account management
	userRoutes := router.NewDomainGroup("users", "/users")
	userRoutes.Use(adminOnly)
	userRoutes.POST("", userHandler.Create)
	userRoutes.GET("", userHandler.List)
	userRoutes.GET("/counts", userHandler.CountByRole)
	userRoutes.GET("/:id", userHandler.GetByID)
	userRoutes.PUT("/:id", userHandler.Update)
	userRoutes.DELETE("/:id", userHandler.Delete)
	userRoutes.PUT("/:id/client", userHandler.LinkClient)
	userRoutes.PUT("/:id/password", userHandler.ResetPassword)
	userRoutes.POST("/:id/activate", userHandler.Activate)
	userRoutes.POST("/:id/deactivate", userHandler.Deactivate)
	userRoutes.POST("/:id/unlock", userHandler.Unlock)

	// Tenant management
	tenantRoutes := router.NewDomainGroup("tenants", "/tenants")
	tenantRoutes.Use(adminOnly)
	tenantRoutes.POST("", tenantHandler.Create)
	tenantRoutes.GET("", tenantHandler.List)
	tenantRoutes.GET("/code/:code", tenantHandler.GetByCode)
	tenantRoutes.GET("/:id", tenantHandler.GetByID)
	tenantRoutes.PUT("/:id", tenantHandler.Update)
	tenantRoutes.DELETE("/:id", tenantHandler.Delete)
	tenantRoutes.POST("/:id/activate", tenantHandler.Activate)
	tenantRoutes.POST("/:id/deactivate", tenantHandler.Deactivate)
	tenantRoutes.POST("/:id/suspend", tenantHandler.Suspend)

	// System endpoints
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/scheduler", staffOnly, systemHandler.SchedulerStatus)
	systemRoutes.POST("/scheduler/trigger", adminOnly, systemHandler.TriggerMaintenance)
	systemRoutes.GET("/outbox/stats", adminOnly, outboxHandler.GetStats)
	systemRoutes.GET("/outbox/dead", adminOnly, outboxHandler.GetDeadLetterEntries)
	systemRoutes.POST("/outbox/dead/retry-all", adminOnly, outboxHandler.RetryAllDeadEntries)
	systemRoutes.GET("/outbox/:id", adminOnly, outboxHandler.GetEntry)
	systemRoutes.POST("/outbox/:id/retry", adminOnly, outboxHandler.RetryDeadEntry)

	// Register all domain groups
	r.Register(authRoutes).
		Register(clientRoutes).
		Register(filingRoutes).
		Register(paymentRoutes).
		Register(documentRoutes).
		Register(calculatorRoutes).
		Register(complianceRoutes).
		Register(settingsRoutes).
		Register(auditRoutes).
		Register(navigationRoutes).
		Register(reportRoutes).
		Register(webhookRoutes).
		Register(triggerRoutes).
		Register(schemaRoutes).
		Register(userRoutes).
		Register(tenantRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// seedInitialData provisions the bootstrap firm, its admin account, and the
// per-tenant defaults (deadline rules, public holidays, settings, system
// report templates). Safe to run on every boot: it exits early once the
// firm exists.
func seedInitialData(
	ctx context.Context,
	cfg *config.Config,
	tenants *identityapp.TenantService,
	compliance *complianceapp.ComplianceService,
	settings *settingsapp.SettingsService,
	reports *reportapp.ReportService,
	log *zap.Logger,
) {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		log.Warn("Seed on start enabled but admin credentials are not configured, skipping")
		return
	}

	if existing, err := tenants.GetByCode(ctx, cfg.Admin.TenantCode); err == nil && existing != nil {
		log.Debug("Bootstrap tenant already exists", zap.String("code", existing.Code))
		return
	}

	created, err := tenants.Create(ctx, identityapp.CreateTenantRequest{
		Code:       cfg.Admin.TenantCode,
		Name:       cfg.Admin.TenantName,
		AdminEmail: cfg.Admin.Email,
		AdminName:  cfg.Admin.Name,
		AdminPass:  cfg.Admin.Password,
	})
	if err != nil {
		log.Error("Failed to seed bootstrap tenant", zap.Error(err))
		return
	}

	if _, err := compliance.SeedDefaults(ctx, created.ID, complianceapp.SeedDefaultsRequest{}); err != nil {
		log.Error("Failed to seed deadline rules and holidays", zap.Error(err))
	}
	if _, err := settings.SeedDefaults(ctx, created.ID); err != nil {
		log.Error("Failed to seed default settings", zap.Error(err))
	}
	if _, err := reports.SeedDefaults(ctx, created.ID); err != nil {
		log.Error("Failed to seed system report templates", zap.Error(err))
	}

	log.Info("Bootstrap tenant seeded",
		zap.String("code", created.Code),
		zap.String("admin_email", cfg.Admin.Email),
	)
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
