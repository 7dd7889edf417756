// Package main is the entry point for the back-office API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"backoffice/internal/app"
	"backoffice/internal/domain/catalogs/offer"
	"backoffice/internal/infrastructure/auth"
	"backoffice/internal/infrastructure/cache"
	v1 "backoffice/internal/infrastructure/http/v1"
	"backoffice/internal/infrastructure/http/v1/handlers"
	"backoffice/internal/infrastructure/storage/memory"
	"backoffice/internal/infrastructure/storage/postgres"
	"backoffice/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	mode := getEnv("STORAGE", "postgres")
	log.Infow("starting backoffice server", "storage", mode)

	checks := map[string]handlers.ReadinessChecker{}

	// --- Storage ---
	var storage app.Storage
	switch mode {
	case "memory":
		log.Warn("in-memory storage: data is lost on restart")
		storage = app.MemoryStorage(memory.NewStore())
	case "postgres":
		poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
		poolCfg.MaxConns = int32(getEnvInt("DB_MAX_CONNS", int(poolCfg.MaxConns)))
		poolCfg.MinConns = int32(getEnvInt("DB_MIN_CONNS", int(poolCfg.MinConns)))

		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()
		log.Info("database connection established")

		if getEnvBool("DB_AUTO_MIGRATE", false) {
			if err := postgres.ApplySchema(ctx, pool); err != nil {
				log.Fatalw("failed to apply schema", "error", err)
			}
			log.Info("database schema applied")
		}

		storage, err = app.PostgresStorage(postgres.NewTxManager(pool))
		if err != nil {
			log.Fatalw("failed to initialize storage", "error", err)
		}
		checks["database"] = pool
	default:
		log.Fatalw("unknown STORAGE value", "storage", mode)
	}

	// --- Offer cache ---
	var offerCache offer.Cache
	if redisURL := getEnv("REDIS_URL", ""); redisURL != "" {
		client, err := cache.NewRedisClient(ctx, redisURL)
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer client.Close()
		offerCache = cache.NewOfferCache(client, getEnvDuration("OFFER_CACHE_TTL", cache.DefaultOfferTTL))
		checks["redis"] = redisCheck{client: client}
		log.Info("offer cache enabled")
	}

	services := app.NewServices(storage, offerCache, app.Config{
		AllowLinesOnCommitted: getEnvBool("ALLOW_LINES_ON_COMMITTED", false),
	})

	// --- Auth ---
	jwtValidator, err := auth.NewJWTValidator(auth.JWTConfig{
		Secret: mustEnv("JWT_SECRET"),
		Issuer: getEnv("JWT_ISSUER", ""),
	})
	if err != nil {
		log.Fatalw("failed to initialize jwt validator", "error", err)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Services:        services,
		Logger:          log,
		JWTValidator:    jwtValidator,
		APIKeyVerifier:  auth.NewAPIKeyVerifier(getEnv("INTEGRATION_API_KEY_HASH", "")),
		AuditRecorder:   storage.Audit,
		ReadinessChecks: checks,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// redisCheck reports cache availability on /health/ready.
type redisCheck struct {
	client *redis.Client
}

func (r redisCheck) Ready(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
