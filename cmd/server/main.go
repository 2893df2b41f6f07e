package main

import (
	"context"   // Context for startup and shutdown
	"errors"    // Error matching
	"net/http"  // HTTP server
	"os"        // Process signals
	"os/signal" // Signal handling
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"finance_tracker/internal/api"     // HTTP handlers and router
	"finance_tracker/internal/auth"    // Identity verification
	"finance_tracker/internal/cache"   // List caches
	"finance_tracker/internal/config"  // Configuration
	"finance_tracker/internal/events"  // Event publishing
	"finance_tracker/internal/logging" // Logger setup
	"finance_tracker/internal/service" // Transaction service
	"finance_tracker/internal/store"   // Record store

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"golang.org/x/sync/errgroup"   // Server and shutdown goroutines
)

const shutdownTimeout = 30 * time.Second

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logging.Setup(cfg.LogLevel, cfg.IsProd)

	// Refuse to start with an invalid configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	// The service account provides the project id and, in dev, the signing key
	sa, err := auth.LoadServiceAccount(cfg.ServiceAccountPath)
	if err != nil {
		logrus.Fatalf("failed to load Firebase service account: %v", err)
	}
	verifier, err := newVerifier(cfg, sa)
	if err != nil {
		logrus.Fatalf("failed to set up token verification: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup record store
	opened, err := store.Open(ctx, cfg, sa.ProjectID)
	if err != nil {
		logrus.Fatalf("failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer func() {
		if err := opened.Cleanup(); err != nil {
			logrus.WithError(err).Warn("Failed to close store")
		}
	}()

	opts := []service.Option{}

	// Setup list cache
	listCache, closeCache, err := newListCache(ctx, cfg)
	if err != nil {
		logrus.Fatalf("failed to set up %s cache: %v", cfg.CacheBackend, err)
	}
	defer closeCache()
	if listCache != nil {
		opts = append(opts, service.WithCache(listCache))
	}

	// Setup event publisher
	if cfg.AMQPURL != "" {
		pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logrus.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer pub.Close()
		opts = append(opts, service.WithEvents(pub))
	}

	svc := service.NewTransactionService(opened.Store, opts...)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := api.NewRouter(api.RouterConfig{
		Verifier:       verifier,               // Access guard verifier
		Service:        svc,                    // Transaction service
		AllowedOrigins: cfg.CORSAllowedOrigins, // CORS allow-list
		TrustedProxies: []string{"127.0.0.1"},  // Set trusted proxies for Gin
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithFields(logrus.Fields{
			"port":    cfg.AppPort,
			"store":   cfg.StoreBackend,
			"cache":   cfg.CacheBackend,
			"keys":    cfg.AuthKeySource,
			"project": sa.ProjectID,
		}).Info("Server running") // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done() // Signal received or server failed
		logrus.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("Server stopped with error")
		return
	}
	logrus.Info("Server stopped")
}

// newVerifier picks the signing keys trusted by the access guard
func newVerifier(cfg *config.Config, sa *auth.ServiceAccount) (auth.Verifier, error) {
	switch cfg.AuthKeySource {
	case config.KeySourceServiceAccount:
		keys, err := auth.ServiceAccountKeySource(sa)
		if err != nil {
			return nil, err
		}
		logrus.Warn("Trusting tokens signed with the service account key, do not use in production")
		return auth.NewTokenVerifier(sa.ProjectID, keys), nil
	default:
		return auth.NewTokenVerifier(sa.ProjectID, auth.NewCertSource(cfg.GoogleCertsURL, nil)), nil
	}
}

// newListCache returns nil when caching is disabled
func newListCache(ctx context.Context, cfg *config.Config) (service.ListCache, func(), error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		// Setup Redis client
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			_ = redisClient.Close()
			return nil, nil, err
		}
		return cache.NewRedisListCache(redisClient, cfg.CacheTTL), func() { _ = redisClient.Close() }, nil
	case config.CacheMemory:
		c, err := cache.NewMemoryListCache(cfg.CacheTTL)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		return nil, func() {}, nil
	}
}
