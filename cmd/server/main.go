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

	elasticsearch "github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/toolmarketplace/server/internal/config"
	"github.com/toolmarketplace/server/internal/db"
	"github.com/toolmarketplace/server/internal/es"
	"github.com/toolmarketplace/server/internal/httpserver"
	"github.com/toolmarketplace/server/internal/logging"
	"github.com/toolmarketplace/server/internal/mykafka"
	"github.com/toolmarketplace/server/internal/redisx"
	"github.com/toolmarketplace/server/internal/repo"
	"github.com/toolmarketplace/server/internal/service/cart"
	"github.com/toolmarketplace/server/internal/service/catalog"
	"github.com/toolmarketplace/server/internal/service/order"
	"github.com/toolmarketplace/server/internal/service/review"
	"github.com/toolmarketplace/server/internal/service/search"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Error("database migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready")

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		logger.Info("kafka producer configured", "brokers", cfg.KafkaBrokers)
	} else {
		logger.Warn("KAFKA_BROKERS not set, events disabled")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = redisx.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, product cache disabled", "error", err)
			redisClient = nil
		}
	}

	var esClient *elasticsearch.Client
	if cfg.ESURL != "" {
		esClient, err = es.NewClient(cfg)
		if err != nil {
			logger.Warn("elasticsearch unavailable, search disabled", "error", err)
			esClient = nil
		}
	}

	r := repo.New(gdb)

	var indexer *search.Indexer
	if esClient != nil {
		indexer = &search.Indexer{ES: esClient, IndexName: search.ProductIndex}
	}

	deps := httpserver.Deps{
		DB:        gdb,
		Repo:      r,
		JWTSecret: cfg.JWTSecret,
		Cart:      &cart.Service{Repo: r},
		Catalog:   &catalog.Service{Repo: r, Cache: redisClient, Indexer: indexer, Producer: producer},
		Orders:    &order.Service{Repo: r, Producer: producer},
		Reviews:   &review.Service{Repo: r, Producer: producer},
		ES:        esClient,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(httpserver.RequestLogger(logger))

	httpserver.Register(e, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		logger.Info("server starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
