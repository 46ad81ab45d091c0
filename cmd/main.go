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
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"renovation_consult_server/api"
	"renovation_consult_server/config"
	"renovation_consult_server/internal/ai"
	handlers "renovation_consult_server/internal/api"
	"renovation_consult_server/internal/api/middleware"
	"renovation_consult_server/internal/consultation"
	"renovation_consult_server/pkg/logger"
)

func main() {
	// --- Load .env file ---
	// Must run before viper reads the environment.
	envErr := godotenv.Load()

	// --- Configuration Loading ---
	cfg, err := config.LoadConfig(".") // Load from config.yaml or env vars
	if err != nil {
		logger.New("info", "json").Fatal("cannot load config", zap.Error(err))
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	switch {
	case envErr == nil:
		log.Info("loaded environment variables from .env file")
	case os.IsNotExist(envErr):
		log.Info(".env file not found, relying on system environment variables")
	default:
		log.Warn("error loading .env file", zap.Error(envErr))
	}
	if cfg.FileUsed != "" {
		log.Info("using configuration file", zap.String("path", cfg.FileUsed))
	} else {
		log.Info("config.yaml not found, relying solely on environment variables")
	}

	// --- Dependency Initialization ---

	// The generation client is built per submission from the submitted credential.
	clientFactory := consultation.NewClientFactory(ai.Options{
		BaseURL: cfg.LLMBaseURL,
		ModelID: cfg.LLMModelID,
	})
	consultationHandler := consultation.NewHandler(clientFactory, log.Named("consultation"))

	apiHandler := handlers.NewAPIHandler(
		consultationHandler,
		handlers.CallToAction{
			Banner:  cfg.CTABanner,
			Phone:   cfg.ContactPhone,
			Line:    cfg.ContactLine,
			LineURL: cfg.ContactLineURL,
		},
		cfg.FooterNote,
		log.Named("api"),
	)

	// Optional redis-backed submit rate limit
	var limiter middleware.RateLimiter
	var redisPinger handlers.Pinger
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		redisLimiter := middleware.NewRedisRateLimiter(redisClient)
		limiter = redisLimiter
		redisPinger = redisLimiter
		log.Info("submit rate limit enabled", zap.String("redis_addr", cfg.RedisAddr), zap.Int("per_minute", cfg.RateLimitPerMinute))
	} else {
		log.Warn("REDIS_ADDR not set, submit rate limit disabled")
	}
	healthHandler := handlers.NewHealthHandler(redisPinger)

	// --- Start API Server ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
		log.Info("running in gin debug mode")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(log.Named("http")))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	api.RegisterRoutes(router, apiHandler, healthHandler,
		middleware.RateLimit(limiter, cfg.RateLimitPerMinute, log.Named("ratelimit"), apiHandler.RateLimited))

	server := &http.Server{
		Addr:        cfg.ServerAddress,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// A submission blocks on the generation call, which has no timeout of its own.
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting API server", zap.String("addr", cfg.ServerAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error("API server listen error", zap.Error(err))
		return
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("API server forced shutdown", zap.Error(err))
	} else {
		log.Info("API server gracefully stopped")
	}
}
