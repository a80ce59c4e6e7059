package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/cinerate/cinerate-api/api/swagger"
	"github.com/cinerate/cinerate-api/internal/capability"
	"github.com/cinerate/cinerate-api/internal/handler"
	"github.com/cinerate/cinerate-api/internal/middleware"
	"github.com/cinerate/cinerate-api/internal/rating"
	"github.com/cinerate/cinerate-api/internal/repository"
	"github.com/cinerate/cinerate-api/internal/service"
	"github.com/cinerate/cinerate-api/internal/strategy"
	"github.com/cinerate/cinerate-api/pkg/cache"
	"github.com/cinerate/cinerate-api/pkg/config"
	"github.com/cinerate/cinerate-api/pkg/database"
	"github.com/cinerate/cinerate-api/pkg/locks"
	"github.com/cinerate/cinerate-api/pkg/logger"
	corsmiddleware "github.com/cinerate/cinerate-api/pkg/middleware/cors"
	reqidmiddleware "github.com/cinerate/cinerate-api/pkg/middleware/requestid"
)

// @title CineRate API
// @version 0.1.0
// @description Screenplay age-rating and what-if simulation service
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, rating cache disabled", "error", err)
		redisClient = nil
	}

	policy, err := rating.LoadPolicy(cfg.Rating.ThresholdsFile)
	if err != nil {
		logr.Sugar().Fatalw("failed to load rating thresholds", "error", err)
	}

	var scorer rating.Scorer
	switch cfg.Scoring.Backend {
	case "remote":
		scorer = capability.NewRemoteScorer(cfg.Scoring.RemoteURL, cfg.Scoring.ModelVersion, cfg.Scoring.Timeout)
	default:
		scorer = rating.NewLexiconScorer(cfg.Scoring.ModelVersion)
	}
	pipeline := rating.NewPipeline(scorer, rating.NewAggregator(policy, cfg.Rating.EvidenceLimit), cfg.Rating.MaxScenes)

	var rewriter capability.Rewriter
	if cfg.Rewrite.Enabled {
		rewriter = capability.NewAnthropicRewriter(cfg.Rewrite.APIKey, cfg.Rewrite.Model, cfg.Rewrite.Timeout)
	}

	scriptRepo := repository.NewScriptRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	jobRepo := repository.NewJobRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	locker := locks.NewKeyedLocker()

	ratingSvc := service.NewRatingService(scriptRepo, versionRepo, pipeline, locker, cacheRepo, logr, service.RatingServiceConfig{
		CacheTTL: cfg.Rating.CacheTTL,
	}).WithMetrics(metricsSvc)

	registry := strategy.NewRegistry(rewriter)
	whatIfSvc := service.NewWhatIfService(ratingSvc, pipeline, registry, capability.NewHeuristicExtractor(), capability.NewKeywordClassifier(), logr)
	advisorSvc := service.NewAdvisorService(ratingSvc, pipeline, policy, logr)
	versionSvc := service.NewVersionService(versionRepo, scriptRepo, logr)
	exportSvc := service.NewExportService(ratingSvc, logr)
	jobSvc := service.NewJobService(jobRepo, ratingSvc, logr, service.JobServiceConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
	}).WithMetrics(metricsSvc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobSvc.Start(ctx)
	defer jobSvc.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	scriptHandler := handler.NewScriptHandler(ratingSvc)
	whatIfHandler := handler.NewWhatIfHandler(whatIfSvc)
	advisorHandler := handler.NewAdvisorHandler(advisorSvc)
	versionHandler := handler.NewVersionHandler(versionSvc)
	jobHandler := handler.NewJobHandler(jobSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.Auth.JWTSecret, cfg.Auth.Enabled))
	{
		api.POST("/rate", scriptHandler.RateText)
		api.POST("/whatif", whatIfHandler.SimulateText)
		api.POST("/advise", advisorHandler.AdviseText)

		scripts := api.Group("/scripts")
		{
			scripts.POST("", scriptHandler.Create)
			scripts.GET("", scriptHandler.List)
			scripts.GET("/:id", scriptHandler.Get)
			scripts.DELETE("/:id", scriptHandler.Delete)
			scripts.POST("/:id/rate", scriptHandler.Rate)
			scripts.GET("/:id/history", scriptHandler.History)

			scripts.POST("/:id/whatif", whatIfHandler.SimulateScript)
			scripts.POST("/:id/advise", advisorHandler.AdviseScript)

			scripts.POST("/:id/versions", versionHandler.Snapshot)
			scripts.GET("/:id/versions", versionHandler.List)
			scripts.GET("/:id/versions/compare", versionHandler.Compare)
			scripts.GET("/:id/versions/:number", versionHandler.Get)
			scripts.DELETE("/:id/versions/:number", versionHandler.Delete)
			scripts.POST("/:id/versions/:number/restore", versionHandler.Restore)

			scripts.POST("/:id/jobs", jobHandler.Enqueue)
			scripts.GET("/:id/jobs", jobHandler.ListByScript)

			scripts.GET("/:id/export/report.pdf", exportHandler.ReportPDF)
			scripts.GET("/:id/export/scenes.csv", exportHandler.SceneScoresCSV)
		}

		api.GET("/jobs/:id", jobHandler.Get)
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
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
