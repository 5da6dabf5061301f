package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mehrbod2002/coinboard/internal/api"
	"github.com/mehrbod2002/coinboard/internal/cache"
	"github.com/mehrbod2002/coinboard/internal/coincap"
	"github.com/mehrbod2002/coinboard/internal/config"
	"github.com/mehrbod2002/coinboard/internal/history"
	"github.com/mehrbod2002/coinboard/internal/logger"
	"github.com/mehrbod2002/coinboard/internal/metrics"
	"github.com/mehrbod2002/coinboard/internal/middleware"
	"github.com/mehrbod2002/coinboard/internal/repository"
	"github.com/mehrbod2002/coinboard/internal/service"
	"github.com/mehrbod2002/coinboard/internal/updater"
	"github.com/mehrbod2002/coinboard/internal/ws"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	dbName         = "coinboard"
	logsCollection = "logs"
	memoryLogLimit = 1000
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Setup(cfg.LogLevel, os.Getenv("LOG_PRETTY") != "")
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewPrometheusMetrics()

	var responseCache cache.Cache
	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		rc, err := cache.NewRedisCache(pingCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		responseCache = rc
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis response cache")
	} else {
		responseCache = cache.NewMemoryCache(time.Minute)
	}
	defer responseCache.Close()

	var logRepo repository.LogRepository
	if cfg.MongoURI != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer client.Disconnect(context.Background())

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = client.Ping(pingCtx, nil)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to ping MongoDB")
		}
		logRepo = repository.NewLogRepository(client, dbName, logsCollection)
	} else {
		logRepo = repository.NewInMemoryLogRepository(memoryLogLimit)
	}
	logService := service.NewLogService(logRepo)

	labeler := history.NewLabeler(cfg.Location)
	upstream := coincap.NewClient(cfg.CoinCapURL, cfg.CoinCapAPIKey, cfg.UpstreamTimeout, m)

	svcCfg := service.DefaultAssetServiceConfig()
	svcCfg.AssetTTL = cfg.AssetCacheTTL
	svcCfg.HistoryTTL = cfg.HistoryCacheTTL
	svcCfg.ListTTL = cfg.AssetCacheTTL
	svcCfg.Labeler = labeler
	assetService := service.NewAssetService(upstream, responseCache, svcCfg, m)

	hub := ws.NewHub(m)
	go hub.Run(ctx)

	chartCfg := updater.DefaultConfig()
	chartCfg.Interval = cfg.PollInterval
	chartCfg.MaxRetained = cfg.MaxRetained
	chartCfg.Labeler = labeler
	chartCfg.Metrics = m
	wsHandler := ws.NewWebSocketHandler(hub, ws.AssetSource{Service: assetService}, chartCfg)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())

	api.SetupRoutes(r, api.Dependencies{
		AssetService: assetService,
		LogService:   logService,
		WSHandler:    wsHandler,
		Metrics:      m,
		JWTSecret:    cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		log.Info().Msgf("WebSocket endpoint available at %s/ws", cfg.BaseURL)
		log.Info().Msgf("Swagger UI available at %s/swagger/index.html", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
