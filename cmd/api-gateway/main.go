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

	_ "github.com/noah-isme/hr-letter-api/api/swagger"
	"github.com/noah-isme/hr-letter-api/internal/handler"
	"github.com/noah-isme/hr-letter-api/internal/middleware"
	"github.com/noah-isme/hr-letter-api/internal/repository"
	"github.com/noah-isme/hr-letter-api/internal/service"
	"github.com/noah-isme/hr-letter-api/pkg/cache"
	"github.com/noah-isme/hr-letter-api/pkg/config"
	"github.com/noah-isme/hr-letter-api/pkg/database"
	"github.com/noah-isme/hr-letter-api/pkg/events"
	"github.com/noah-isme/hr-letter-api/pkg/export"
	"github.com/noah-isme/hr-letter-api/pkg/jobs"
	"github.com/noah-isme/hr-letter-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/hr-letter-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/hr-letter-api/pkg/middleware/requestid"
	"github.com/noah-isme/hr-letter-api/pkg/storage"
)

// @title HR Letter API
// @version 1.0.0
// @description Employee letter requests, admin review and issued letters
// @BasePath /api
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			logr.Sugar().Fatalw("failed to migrate database", "error", err)
		}
		logr.Sugar().Infow("migrations applied", "versions", applied)
	}

	metrics := service.NewMetricsService()
	cacheSvc, closeCache := newCacheService(ctx, cfg, metrics, logr)
	defer closeCache()

	publisher, err := events.NewFromConfig(ctx, cfg.Events.TopicARN, cfg.Events.AWSRegion, logr)
	if err != nil {
		logr.Sugar().Warnw("event publishing disabled", "error", err)
		publisher = events.NopPublisher{}
	}

	validate := validator.New()
	requestRepo := repository.NewLetterRequestRepository(db)
	templateRepo := repository.NewLetterTemplateRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	requestOpts := []service.LetterRequestServiceOption{
		service.WithLetterRequestCache(cacheSvc, cfg.Cache.TTL),
		service.WithEventPublisher(publisher),
		service.WithLetterMetrics(metrics),
		service.WithRetransition(cfg.Letters.AllowRetransition),
	}

	var documents *service.LetterDocumentService
	var queue *jobs.Queue
	if cfg.Documents.Enabled {
		documents, queue, err = newDocumentPipeline(cfg, db, requestRepo, templateRepo, metrics, logr)
		if err != nil {
			logr.Sugar().Fatalw("failed to init letter documents", "error", err)
		}
		queue.Start(ctx)
		defer queue.Stop()
		documents.RecoverPending(ctx)
		requestOpts = append(requestOpts, service.WithDocumentIssuer(documents))
	}

	letterRequests := service.NewLetterRequestService(requestRepo, auditRepo, validate, logr, requestOpts...)
	templates := service.NewLetterTemplateService(templateRepo, auditRepo, validate, logr)
	exporter := service.NewLetterExportService(requestRepo, nil, nil, logr)
	tokens := service.NewTokenService(service.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Expiration: cfg.JWT.Expiration,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	routes := handler.Routes{
		LetterRequests: handler.NewLetterRequestHandler(letterRequests, exporter),
		Templates:      handler.NewLetterTemplateHandler(templates),
		Metrics:        handler.NewMetricsHandler(metrics, db),
		Tokens:         tokens,
	}
	if documents != nil {
		routes.Documents = handler.NewLetterDocumentHandler(documents)
	}
	routes.Register(r, cfg.APIPrefix)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
}

func newCacheService(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*service.CacheService, func()) {
	var client *redis.Client
	if cfg.Cache.Enabled {
		c, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			client = c
		}
	}
	repo := repository.NewCacheRepository(client, logr)
	closeFn := func() {
		if err := repo.Close(); err != nil {
			logr.Sugar().Warnw("failed to close redis", "error", err)
		}
	}
	return service.NewCacheService(repo, metrics, cfg.Cache.TTL, logr, client != nil), closeFn
}

func newDocumentPipeline(cfg *config.Config, db *sqlx.DB, requests *repository.LetterRequestRepository, templates *repository.LetterTemplateRepository, metrics *service.MetricsService, logr *zap.Logger) (*service.LetterDocumentService, *jobs.Queue, error) {
	files, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)
	docRepo := repository.NewLetterDocumentRepository(db)

	worker := service.NewLetterDocumentWorker(docRepo, requests, templates, export.NewLetterRenderer(cfg.Documents.Organisation), files, signer,
		service.LetterDocumentWorkerConfig{
			DownloadPrefix: cfg.APIPrefix + "/letter-documents/download",
			MaxRetries:     cfg.Documents.WorkerRetries,
		}, logr)

	queue := jobs.NewQueue("letter_documents", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Documents.WorkerConcurrency,
		MaxRetries: cfg.Documents.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
		Observer:   metrics.ObserveJob,
	})

	documents := service.NewLetterDocumentService(docRepo, requests, queue, files, signer, logr)
	return documents, queue, nil
}
