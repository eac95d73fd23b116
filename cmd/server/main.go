package main

//go:generate swag init -g main.go -d ./,../../internal/interfaces/http/handler -o ../../docs

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	accessapp "github.com/qbic/datamanager/internal/application/access"
	"github.com/qbic/datamanager/internal/application/export"
	identityapp "github.com/qbic/datamanager/internal/application/identity"
	lookupapp "github.com/qbic/datamanager/internal/application/lookup"
	measurementapp "github.com/qbic/datamanager/internal/application/measurement"
	notificationapp "github.com/qbic/datamanager/internal/application/notification"
	projectapp "github.com/qbic/datamanager/internal/application/project"
	sampleapp "github.com/qbic/datamanager/internal/application/sample"
	"github.com/qbic/datamanager/internal/domain/identity"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/auth"
	"github.com/qbic/datamanager/internal/infrastructure/cache"
	"github.com/qbic/datamanager/internal/infrastructure/config"
	"github.com/qbic/datamanager/internal/infrastructure/event"
	"github.com/qbic/datamanager/internal/infrastructure/logger"
	"github.com/qbic/datamanager/internal/infrastructure/lookup"
	"github.com/qbic/datamanager/internal/infrastructure/mail"
	"github.com/qbic/datamanager/internal/infrastructure/persistence"
	"github.com/qbic/datamanager/internal/infrastructure/printing"
	"github.com/qbic/datamanager/internal/infrastructure/scheduler"
	"github.com/qbic/datamanager/internal/infrastructure/storage"
	"github.com/qbic/datamanager/internal/infrastructure/telemetry"
	"github.com/qbic/datamanager/internal/interfaces/http/handler"
	"github.com/qbic/datamanager/internal/interfaces/http/middleware"
	"github.com/qbic/datamanager/internal/interfaces/http/router"

	_ "github.com/qbic/datamanager/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Data Manager API
//	@version		1.0
//	@description	Research project, sample and measurement metadata management

//	@license.name	MIT

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = baseLog.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry providers are no-ops when disabled
	tel, err := telemetry.Setup(ctx, cfg.Telemetry, version, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			baseLog.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log := tel.Logger(baseLog)

	log.Info("Starting Data Manager",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.Open(ctx, &cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := tel.DB.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis is optional, in-memory fallbacks are used without it
	redisClient, err := cache.NewRedisClient(ctx, &cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
	}

	objectStorage, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Repositories
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	experimentRepo := persistence.NewGormExperimentRepository(db.DB)
	confoundingRepo := persistence.NewGormConfoundingRepository(db.DB)
	sampleRepo := persistence.NewGormSampleRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	codeSequence := persistence.NewGormCodeSequence(db.DB)
	qualityControlRepo := persistence.NewGormQualityControlRepository(db.DB)
	measurementRepo := persistence.NewGormMeasurementRepository(db.DB)
	rawDataLookup := persistence.NewGormRawDataLookup(db.DB)
	offerRepo := persistence.NewGormOfferRepository(db.DB)
	termRepo := persistence.NewGormTermRepository(db.DB)
	aclRepo := persistence.NewGormACLRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	tokenRepo := persistence.NewGormTokenRepository(db.DB)
	emailJobRepo := persistence.NewGormEmailJobRepository(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventIdempotency := cache.NewIdempotencyStore(redisClient, "dm:events:", log)

	// Lookups of ontology terms and research organisations
	var terminology lookupapp.TerminologyService
	if cfg.Services.RemoteTermLookup {
		terminology = lookup.NewTerminologyClient(cfg.Services.TerminologyEndpoint, cfg.Services.RequestTimeout, log)
	}
	ontologyLookup := lookupapp.NewOntologyLookup(termRepo, terminology, log)
	organisationCache := cache.NewOrganisationCache(redisClient, cache.OrganisationCacheOptions{
		TTL:       cfg.Services.OrganisationTTL,
		LocalSize: cache.DefaultOrganisationCacheSize,
	}, log)
	organisationLookup := lookupapp.NewOrganisationLookup(
		lookup.NewRORClient(cfg.Services.ROREndpoint, cfg.Services.RequestTimeout, log),
		organisationCache,
		log,
	)

	// Identity
	jwtService := auth.NewJWTService(cfg.JWT)
	revocations := auth.NewRevocations(redisClient)
	tokenEncoder, err := auth.NewPBKDF2TokenEncoder(cfg.Identity.TokenSalt, cfg.Identity.TokenIterations)
	if err != nil {
		log.Fatal("Failed to initialize token encoder", zap.Error(err))
	}
	passwordPolicy := identity.DefaultPasswordPolicy()
	if cfg.Identity.PasswordIterations > 0 {
		passwordPolicy.Iterations = cfg.Identity.PasswordIterations
	}
	authConfig := identityapp.DefaultAuthServiceConfig()
	if cfg.Identity.TokenValidity > 0 {
		authConfig.TokenValidity = cfg.Identity.TokenValidity
	}
	authService := identityapp.NewAuthService(
		userRepo, tokenRepo, jwtService, revocations, passwordPolicy, tokenEncoder, eventBus, authConfig, log,
	)

	// Application services
	accessService := accessapp.NewService(aclRepo, eventBus, log)
	experimentService := projectapp.NewExperimentService(
		experimentRepo, confoundingRepo, projectRepo, sampleRepo, ontologyLookup, eventBus, log,
	)
	projectService := projectapp.NewProjectService(
		projectRepo, projectRepo, offerRepo, experimentService, accessService, eventBus, tel.Metrics, log,
	)
	offerService := projectapp.NewOfferService(offerRepo, objectStorage, log)
	requestService := projectapp.NewAsyncProjectService(
		projectService,
		experimentService,
		accessService,
		cache.NewIdempotencyStore(redisClient, "dm:requests:", log),
		projectapp.AsyncConfig{
			MaxAttempts:        cfg.Async.MaxAttempts,
			InitialBackoff:     cfg.Async.InitialBackoff,
			IdempotencyTTL:     cfg.Async.IdempotencyTTL,
			MaxTrackedRequests: cfg.Async.MaxTracked,
		},
		log,
	)
	sampleValidation := sampleapp.NewValidation(experimentRepo, confoundingRepo, sampleRepo, ontologyLookup)
	sampleService := sampleapp.NewSampleService(
		projectRepo, sampleRepo, batchRepo, codeSequence, confoundingRepo, measurementRepo,
		sampleValidation, eventBus, tel.Metrics, log,
	)
	qualityControlService := sampleapp.NewQualityControlService(qualityControlRepo, objectStorage, eventBus, log)
	measurementService := measurementapp.NewMeasurementService(
		measurementRepo, sampleRepo, ontologyLookup, organisationLookup, rawDataLookup, eventBus, tel.Metrics, log,
	)

	// RO-Crate export, the PDF summary needs a browser
	var renderer printing.PDFRenderer
	if cfg.Export.PDFEnabled {
		chrome := printing.NewChromedpRenderer(printing.ChromedpConfig{
			ExecPath:       cfg.Export.ChromePath,
			DefaultTimeout: cfg.Export.RenderTimeout,
			NoSandbox:      true,
		}, log)
		defer func() {
			if err := chrome.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		renderer = chrome
	}
	exportService := export.NewService(
		projectRepo, experimentRepo, projectRepo, objectStorage, renderer, tel.Metrics,
		export.Options{IncludePDF: cfg.Export.PDFEnabled, StoreArchives: cfg.Export.StoreArchives},
		cfg.App.BaseURL, log,
	)

	// Notification handlers turn domain events into queued emails
	notificationHandlers := []shared.EventHandler{
		notificationapp.NewAccountHandler(emailJobRepo, authService, cfg.App.BaseURL, log),
		notificationapp.NewAccessGrantedHandler(emailJobRepo, userRepo, projectRepo, cfg.App.BaseURL, log),
		notificationapp.NewBatchRegisteredHandler(emailJobRepo, accessService, userRepo, cfg.App.BaseURL, log),
	}
	for _, h := range notificationHandlers {
		eventBus.Subscribe(event.NewIdempotentHandler(h, eventIdempotency, shared.DefaultIdempotencyConfig(), log), h.EventTypes()...)
		log.Info("Event handler registered", zap.Strings("event_types", h.EventTypes()))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Background work: async project requests and email dispatch
	requestWorkers := scheduler.NewPool(scheduler.PoolConfig{
		Workers:    cfg.Async.Workers,
		JobTimeout: cfg.Scheduler.JobTimeout,
	}, requestService, log)
	requestWorkers.Start(ctx)
	requestService.SetSubmitter(requestWorkers)
	defer func() {
		if err := requestWorkers.Stop(context.Background()); err != nil {
			log.Error("Error stopping request workers", zap.Error(err))
		}
	}()

	sender, err := mail.NewSender(cfg.Mail, log)
	if err != nil {
		log.Fatal("Failed to initialize mail sender", zap.Error(err))
	}
	dispatcher := scheduler.NewMailDispatcher(scheduler.MailDispatcherConfig{
		Enabled:      cfg.Scheduler.Enabled,
		PollInterval: cfg.Scheduler.MailPollInterval,
		BatchSize:    cfg.Scheduler.MailBatchSize,
		MaxAttempts:  cfg.Mail.MaxAttempts,
	}, emailJobRepo, sender, tel.Metrics, log)
	dispatcher.Start(ctx)
	defer func() {
		if err := dispatcher.Stop(context.Background()); err != nil {
			log.Error("Error stopping mail dispatcher", zap.Error(err))
		}
	}()

	// HTTP handlers
	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Projects:     handler.NewProjectHandler(projectService, requestService, cfg.App.BaseURL),
		Experiments:  handler.NewExperimentHandler(experimentService),
		Samples:      handler.NewSampleHandler(sampleService, qualityControlService),
		Measurements: handler.NewMeasurementHandler(measurementService),
		Offers:       handler.NewOfferHandler(offerService),
		Access:       handler.NewAccessHandler(accessService),
		Lookups:      handler.NewLookupHandler(ontologyLookup, organisationLookup),
		Exports:      handler.NewExportHandler(exportService),
		System: handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.HealthCheck{
			"database": db.Ping,
			"redis": func(ctx context.Context) error {
				if redisClient == nil {
					return nil
				}
				return redisClient.Ping(ctx).Err()
			},
		}),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack in order: request id, tracing, recovery, request
	// logging, security headers, CORS, body limit, rate limit
	engine.Use(middleware.RequestID())
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName), middleware.SpanEnricher())
		httpMetrics, err := middleware.HTTPMetrics(tel.Meter.Meter("github.com/qbic/datamanager/http"))
		if err != nil {
			log.Fatal("Failed to create HTTP metrics", zap.Error(err))
		}
		engine.Use(httpMetrics)
	}
	engine.Use(middleware.Profiling(cfg.Telemetry.ProfilingEnabled))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure(middleware.SecurityConfig{
		HSTSEnabled: cfg.App.Env == "production",
		HSTSMaxAge:  middleware.DefaultSecurityConfig().HSTSMaxAge,
		CSP:         middleware.DefaultSecurityConfig().CSP,
	}))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiter.StartCleanup(ctx)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	guards := router.Guards{Projects: middleware.NewProjectGuard(accessService, log)}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authLimiter.StartCleanup(ctx)
		guards.AuthRateLimit = middleware.RateLimit(authLimiter)
	}

	engine.GET("/health", handlers.System.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	authCfg := middleware.DefaultAuthConfig(jwtService)
	authCfg.Revocations = revocations
	authCfg.Tokens = authService
	authCfg.SkipPaths = append(authCfg.SkipPaths, router.PublicPaths(r.BasePath())...)
	authCfg.SkipPathPrefixes = append(authCfg.SkipPathPrefixes, router.PublicPrefixes(r.BasePath())...)
	authCfg.Logger = log
	authenticate := middleware.Authenticate(authCfg)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, authenticate),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r.Use(authenticate)
	for _, group := range router.DataManagerRoutes(handlers, guards) {
		r.Register(group)
	}
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}
