package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/educentral-admin-api/api/swagger"
	"github.com/noah-isme/educentral-admin-api/internal/handler"
	"github.com/noah-isme/educentral-admin-api/internal/importer"
	internalmiddleware "github.com/noah-isme/educentral-admin-api/internal/middleware"
	"github.com/noah-isme/educentral-admin-api/internal/repository"
	"github.com/noah-isme/educentral-admin-api/internal/service"
	"github.com/noah-isme/educentral-admin-api/pkg/cache"
	"github.com/noah-isme/educentral-admin-api/pkg/config"
	"github.com/noah-isme/educentral-admin-api/pkg/database"
	"github.com/noah-isme/educentral-admin-api/pkg/genai"
	"github.com/noah-isme/educentral-admin-api/pkg/jobs"
	"github.com/noah-isme/educentral-admin-api/pkg/logger"
	"github.com/noah-isme/educentral-admin-api/pkg/mail"
	corsmiddleware "github.com/noah-isme/educentral-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/educentral-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/educentral-admin-api/pkg/storage"
)

// @title EduCentral Admin API
// @version 1.0.0
// @description University administration backend: people, catalogue, finance, leave, messaging and bulk import.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.Pinger{}

	stores, db, err := openStores(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open storage", zap.Error(err))
	}
	if db != nil {
		defer db.Close() //nolint:errcheck
		checks["postgres"] = db.PingContext
	}

	metrics := service.NewMetricsService()
	cacheRepo, redisClient := openCache(cfg, logr)
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.DashboardTTL, logr, cacheRepo != nil)

	validate := validator.New()
	var ids importer.IDGenerator = importer.NewSequenceGenerator(nil)
	if cfg.Import.IDStrategy == config.IDUUID {
		ids = importer.UUIDGenerator{}
	}

	authSvc, err := service.NewAuthService(service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		AdminEmail:        cfg.Auth.AdminEmail,
		AdminName:         cfg.Auth.AdminName,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
		AdminPassword:     cfg.Auth.AdminPassword,
	}, validate, logr)
	if err != nil {
		logr.Fatal("failed to init auth", zap.Error(err))
	}

	// Message delivery queue.
	sender := newMailSender(cfg, logr)
	messageQueue := jobs.NewQueue("messages", service.NewMessageWorker(sender, logr).Handle, jobs.QueueConfig{
		Workers:    cfg.Messages.WorkerConcurrency,
		MaxRetries: cfg.Messages.WorkerRetries,
		RetryDelay: cfg.Messages.RetryDelay,
		OnResult:   recordJob(metrics),
		Logger:     logr,
	})
	messageQueue.Start(ctx)
	defer messageQueue.Stop()

	// Export pipeline.
	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	exporter := service.NewExportService(service.ExportSources{
		Users:    stores.Users,
		Courses:  stores.Courses,
		Events:   stores.Events,
		Invoices: stores.Invoices,
		Leaves:   stores.Leaves,
	}, files, storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL), service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)
	exportQueue := jobs.NewQueue("exports", service.NewExportWorker(stores.ExportJobs, exporter, cfg.Exports.WorkerRetries, logr).Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		OnResult:   recordJob(metrics),
		Logger:     logr,
	})
	exportQueue.Start(ctx)
	defer exportQueue.Stop()
	exportJobs := service.NewExportJobService(stores.ExportJobs, exportQueue, exporter, ids, validate, logr, service.ExportJobConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
	})
	exportJobs.RecoverPendingJobs(ctx)
	exportJobs.StartCleanup(ctx)

	generator := genai.New(cfg.Generation.BaseURL, cfg.Generation.APIKey, cfg.Generation.Model, cfg.Generation.Timeout, cfg.Generation.Skip)
	imports := service.NewImportService(service.ImportServiceParams{
		Users:       stores.Users,
		Courses:     stores.Courses,
		Events:      stores.Events,
		Pipeline:    importer.NewPipeline(importer.NewNormalizer(nil), ids, importer.Policy(cfg.Import.Policy)),
		Metrics:     metrics,
		Cache:       cacheSvc,
		MaxFileSize: cfg.Import.MaxFileSize,
		Logger:      logr,
	})
	dashboard := service.NewDashboardService(service.DashboardServiceParams{
		Users:    stores.Users,
		Courses:  stores.Courses,
		Events:   stores.Events,
		Invoices: stores.Invoices,
		Leaves:   stores.Leaves,
		Cache:    cacheSvc,
		CacheTTL: cfg.Cache.DashboardTTL,
		Logger:   logr,
	})

	invoices := handler.NewInvoiceHandler(
		service.NewInvoiceService(stores.Invoices, stores.Users, ids, validate, logr),
		service.NewInvoiceGenerationService(stores.Invoices, stores.Users, generator, cfg.Generation.Fallback, ids, metrics, cacheSvc, validate, logr),
	)

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Users:      handler.NewUserHandler(service.NewUserService(stores.Users, ids, validate, logr)),
		Courses:    handler.NewCourseHandler(service.NewCourseService(stores.Courses, ids, validate, logr)),
		Events:     handler.NewEventHandler(service.NewEventService(stores.Events, ids, validate, logr)),
		Invoices:   invoices,
		Leaves:     handler.NewLeaveHandler(service.NewLeaveService(stores.Leaves, stores.Users, ids, cacheSvc, validate, logr)),
		Messages:   handler.NewMessageHandler(service.NewMessageService(stores.Messages, stores.Users, messageQueue, ids, validate, logr)),
		Attendance: handler.NewAttendanceHandler(service.NewAttendanceService(stores.Attendance, stores.Users, validate, logr)),
		Dashboard:  handler.NewDashboardHandler(dashboard, service.NewAnalyticsService(stores.Static, cacheSvc, cfg.Cache.AnalyticsTTL, logr)),
		Timetable:  handler.NewTimetableHandler(service.NewTimetableService(stores.Static)),
		Imports:    handler.NewImportHandler(imports),
		Exports:    handler.NewExportHandler(exportJobs),
	}
	health := handler.NewHealthHandler(metrics, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", health.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	guard := internalmiddleware.JWT(authSvc)
	if !cfg.Auth.Enabled {
		logr.Warn("authentication disabled, every request acts as the administrator")
		guard = internalmiddleware.Anonymous()
	}
	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())
	handler.Register(api, handlers, guard)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStores(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*repository.Stores, *sqlx.DB, error) {
	if cfg.Storage.Driver != config.StoragePostgres {
		return repository.NewMemoryStores(cfg.Storage.Seed), nil, nil
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logr.Info("database migrations applied")
	}
	return repository.NewPostgresStores(db, cfg.Storage.Seed), db, nil
}

// openCache prefers Redis and falls back to a process local cache when Redis is
// unreachable. It returns a nil repository when caching is switched off.
func openCache(cfg *config.Config, logr *zap.Logger) (service.CacheRepository, *redis.Client) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, using in-process cache", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
		return repository.NewLocalCache(nil), nil
	}
	return repository.NewCacheRepository(client, logr), client
}

func newMailSender(cfg *config.Config, logr *zap.Logger) mail.Sender {
	if cfg.Mail.Driver == config.MailSendgrid && cfg.Mail.SendgridAPIKey != "" {
		return mail.NewSendgridSender(cfg.Mail.SendgridAPIKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	}
	if cfg.Mail.Driver == config.MailSendgrid {
		logr.Warn("MAIL_DRIVER=sendgrid without SENDGRID_API_KEY, logging messages instead")
	}
	return mail.NewLogSender(logr)
}

func recordJob(metrics *service.MetricsService) jobs.ResultFunc {
	return func(queue string, _ jobs.Job, outcome jobs.Outcome) {
		metrics.RecordJob(queue, string(outcome))
	}
}
