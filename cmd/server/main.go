// Package main runs the campaign studio HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rewardscraft/studio/config"
	"github.com/rewardscraft/studio/internal/auth"
	"github.com/rewardscraft/studio/internal/logo"
	"github.com/rewardscraft/studio/internal/middleware"
	"github.com/rewardscraft/studio/internal/realtime"
	"github.com/rewardscraft/studio/internal/studio"
	"github.com/rewardscraft/studio/internal/worker"
	"github.com/rewardscraft/studio/pkg/redis"
	"github.com/rewardscraft/studio/pkg/response"
	"github.com/rewardscraft/studio/pkg/storage"
)

// blobStore is what the logo flow and the /logos route need from a store.
type blobStore interface {
	logo.BlobStore
	logo.BlobOpener
}

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	var store blobStore = storage.NewMemory(cfg.Logo.BasePath, cfg.Logo.MaxBytes)
	if cfg.Logo.Store == "s3" {
		s3Store, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			LogosBucket:          cfg.AWS.LogosBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled, keeping logos in memory", zap.Error(err))
		} else {
			store = s3Store
		}
	}

	savers := studio.MultiSaver{{Name: "log", Saver: studio.NewLogSaver(logger)}}
	var redisPubSub *realtime.RedisPubSub
	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			savers = append(savers, studio.NamedSaver{Name: "redis", Saver: studio.NewPublishSaver(rdb, studio.SavedChannel)})
			redisPubSub = realtime.NewRedisPubSub(rdb.Client, logger)
		}
	}

	var hub *realtime.Hub
	if redisPubSub != nil {
		hub = realtime.NewHub(logger, redisPubSub, redisPubSub)
	} else {
		hub = realtime.NewHub(logger, nil, nil)
	}

	tokens := auth.NewTokenService(cfg.Session.TokenSecret, cfg.Session.TokenTTL)
	registry := studio.NewRegistry(store, savers, cfg.Session.IdleTTL, logger)
	registry.SetNotifier(hub)

	studioHandler := studio.NewHandler(registry, tokens, cfg.Server.SecureCookies, logger)
	page := studio.NewPage(studioHandler)
	janitor := worker.NewSessionJanitor(registry, cfg.Session.JanitorInterval, logger)
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
	})

	router := gin.New()
	router.MaxMultipartMemory = cfg.Logo.MaxBytes
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// Health and metrics
	router.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok", "sessions": registry.Len()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Logo blobs (memory store URLs point here; S3 hands out presigned URLs instead)
	router.GET(cfg.Logo.BasePath+"/*key", logo.ServeBlob(store, logger))

	// Server-rendered studio
	router.GET("/", page.Show)
	pages := router.Group("/studio")
	{
		pages.POST("/campaign", page.Campaign())
		pages.POST("/design", page.Design())
		pages.POST("/preset", page.Preset())
		pages.POST("/tab", page.Tab())
		pages.POST("/logo", limiter.Middleware(), page.Logo())
		pages.POST("/logo/remove", page.RemoveLogo())
		pages.POST("/save", limiter.Middleware(), page.Save())
	}

	// JSON API
	api := router.Group("/api")
	api.GET("/presets", studioHandler.Presets)
	api.POST("/sessions", limiter.Middleware(), studioHandler.CreateSession)

	current := api.Group("/sessions/current")
	current.Use(middleware.SessionToken(tokens), studio.RequireSession(registry))
	{
		current.GET("", studioHandler.Get)
		current.DELETE("", studioHandler.Delete)
		current.PATCH("/campaign", studioHandler.UpdateCampaign)
		current.PATCH("/voucher", studioHandler.UpdateVoucher)
		current.POST("/voucher/fields", studioHandler.ApplyField)
		current.POST("/voucher/preset", studioHandler.ApplyPreset)
		current.PUT("/tab", studioHandler.SetTab)
		current.POST("/logo", limiter.Middleware(), studioHandler.UploadLogo)
		current.DELETE("/logo", studioHandler.RemoveLogo)
		current.POST("/save", limiter.Middleware(), studioHandler.Save)
		current.GET("/preview", studioHandler.Preview)
	}

	// WebSocket (token in cookie, header or query)
	router.GET("/ws", realtime.ServeWs(hub, registry, tokens, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background workers (idle session expiry, Redis fan-out)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go janitor.Run(workerCtx)
	logger.Info("session janitor started", zap.Duration("idle_ttl", cfg.Session.IdleTTL))
	if hub.Fanout() {
		go hub.Run(workerCtx)
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	registry.CloseAll(shutdownCtx)
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
