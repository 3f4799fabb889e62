// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/auth"
	"github.com/jaswanth12321/carequo-insure-tech/internal/cache"
	"github.com/jaswanth12321/carequo-insure-tech/internal/claims"
	"github.com/jaswanth12321/carequo-insure-tech/internal/config"
	"github.com/jaswanth12321/carequo-insure-tech/internal/directory"
	"github.com/jaswanth12321/carequo-insure-tech/internal/documents"
	"github.com/jaswanth12321/carequo-insure-tech/internal/events"
	"github.com/jaswanth12321/carequo-insure-tech/internal/handlers"
	"github.com/jaswanth12321/carequo-insure-tech/internal/ledger"
	"github.com/jaswanth12321/carequo-insure-tech/internal/logger"
	"github.com/jaswanth12321/carequo-insure-tech/internal/repository"
	"github.com/jaswanth12321/carequo-insure-tech/internal/routes"
	"github.com/jaswanth12321/carequo-insure-tech/internal/storage"
	"github.com/jaswanth12321/carequo-insure-tech/internal/storage/memstore"
)

func main() {
	env := config.MustLoad()

	log, err := logger.New(env.Production(), false)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting carequo backend",
		zap.String("environment", env.AppEnv),
		zap.String("port", env.Port),
		zap.String("db_driver", env.Database.Driver))

	store, health, err := openStore(env.Database, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}

	statsCache := openCache(env.Redis, log)
	if c, ok := statsCache.(*cache.Redis); ok {
		health = append(health, handlers.HealthCheck{Name: "stats_cache", Check: c.Ping})
	}

	var pub events.Publisher
	if len(env.Kafka.Brokers) > 0 {
		pub = events.NewKafkaPublisher(env.Kafka.Brokers, env.Kafka.Topic, log)
		log.Info("publishing events to kafka", zap.Strings("brokers", env.Kafka.Brokers), zap.String("topic", env.Kafka.Topic))
	} else {
		pub = events.NewLogPublisher(log)
	}
	defer pub.Close()

	docs, err := documents.NewS3Service(context.Background(), env.Storage)
	if err != nil {
		log.Fatal("failed to configure document storage", zap.Error(err))
	}
	if !docs.Enabled() {
		log.Warn("S3_BUCKET not set, document uploads disabled")
	}

	tokens := auth.NewTokenIssuer(env.JWTSecret, env.TokenTTL)
	ledgerSvc := ledger.NewService(store, statsCache, pub, log)

	if env.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := routes.NewRouter(routes.Deps{
		Auth:           auth.NewService(store, tokens, log),
		Claims:         claims.NewManager(store, ledgerSvc, pub, log),
		Ledger:         ledgerSvc,
		Directory:      directory.NewService(store, ledgerSvc, pub, log),
		Documents:      docs,
		Logger:         log,
		RequestTimeout: env.RequestTimeout,
		Health:         health,
	})

	srv := &http.Server{
		Addr:         ":" + env.Port,
		Handler:      routes.WithCORS(r, env.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: env.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if c, ok := statsCache.(*cache.Redis); ok {
		_ = c.Close()
	}
	log.Info("server stopped")
}

func openStore(cfg config.Database, log *zap.Logger) (repository.Store, []handlers.HealthCheck, error) {
	if cfg.Driver == "memory" {
		log.Warn("using in-memory storage, data is lost on restart")
		return memstore.New().Repositories(), nil, nil
	}
	db, err := storage.OpenDB(cfg, log)
	if err != nil {
		return repository.Store{}, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return repository.Store{}, nil, err
	}
	checks := []handlers.HealthCheck{{Name: "database", Check: sqlDB.PingContext}}
	return storage.NewStore(db), checks, nil
}

// openCache falls back to no caching when redis is absent or unreachable.
func openCache(cfg config.Redis, log *zap.Logger) cache.StatsCache {
	if cfg.Addr == "" {
		return cache.Nop{}
	}
	c := cache.NewRedis(cfg.Addr, cfg.Password, cfg.StatsTTL)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		log.Warn("redis unavailable, stats cache disabled", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = c.Close()
		return cache.Nop{}
	}
	log.Info(fmt.Sprintf("stats cache on redis %s", cfg.Addr), zap.Duration("ttl", cfg.StatsTTL))
	return c
}
