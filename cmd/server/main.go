package main

import (
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shipping-decision-service/internal/adapters/cache"
	"shipping-decision-service/internal/adapters/carriers"
	"shipping-decision-service/internal/adapters/repositories"
	"shipping-decision-service/internal/api"
	"shipping-decision-service/internal/config"
	"shipping-decision-service/internal/customsdata"
	"shipping-decision-service/internal/platform/db"
	"shipping-decision-service/internal/platform/logging"
	"shipping-decision-service/internal/ports"
	"shipping-decision-service/internal/services"
)

// main is the application composition root. It wires concrete adapters
// (carrier APIs, Postgres, Redis) behind ports and starts the HTTP
// server. Postgres and Redis are optional: without them the engine
// still quotes and tracks, it just predicts from quoted times only and
// skips caching.
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogsDirectory)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	tables, err := customsdata.Load()
	if err != nil {
		logger.Fatal("customs tables", zap.Error(err))
	}

	adapters := buildAdapters(cfg, logger)
	if len(adapters) == 0 {
		logger.Fatal("no carriers configured; set credentials for at least one carrier")
	}

	var history ports.HistoryRepository
	if cfg.DatabaseURL != "" {
		pool, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()

		if err := repositories.InitSchema(pool); err != nil {
			logger.Fatal("database schema", zap.Error(err))
		}
		history = repositories.NewPostgresHistoryRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set; predictions fall back to quoted transit times")
	}

	var quoteCache ports.QuoteCache
	var trackingCache ports.TrackingCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = client.Close() }()

		quoteCache = cache.NewRedisQuoteCache(client, cfg.QuoteCacheTTL)
		trackingCache = cache.NewRedisTrackingCache(client, cfg.TrackingCacheTTL)
	} else {
		logger.Warn("REDIS_ADDR not set; quote and tracking caches disabled")
	}

	engine := &services.Engine{
		Aggregator: &services.QuoteAggregator{
			Adapters:         adapters,
			Cache:            quoteCache,
			AggregateTimeout: cfg.AggregateTimeout,
			AdapterTimeout:   cfg.AdapterTimeout,
			Logger:           logger,
		},
		Predictor: &services.DeliveryPredictor{History: history, Logger: logger},
		Customs:   &services.CustomsService{Tables: tables},
		Tracking:  services.NewTrackingService(adapters, trackingCache, logger),
		Logger:    logger,
	}

	router := api.NewRouter(engine, logger)

	// WriteTimeout leaves room for a full fan-out hitting the aggregate
	// deadline plus response encoding.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.AggregateTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logger.Info("server listening", zap.String("addr", srv.Addr))
	logger.Fatal("server stopped", zap.Error(srv.ListenAndServe()))
}

// buildAdapters constructs one adapter per carrier with credentials,
// each behind a circuit breaker.
func buildAdapters(cfg *config.Config, logger *zap.Logger) []ports.CarrierAdapter {
	adapters := make([]ports.CarrierAdapter, 0, 4)

	if cfg.DHL.Configured() {
		a, err := carriers.NewDHLAdapter(cfg.DHL)
		if err != nil {
			logger.Fatal("dhl adapter", zap.Error(err))
		}
		adapters = append(adapters, carriers.WithBreaker(a))
	}
	if cfg.FedEx.Configured() {
		a, err := carriers.NewFedExAdapter(cfg.FedEx)
		if err != nil {
			logger.Fatal("fedex adapter", zap.Error(err))
		}
		adapters = append(adapters, carriers.WithBreaker(a))
	}
	if cfg.UPS.Configured() {
		a, err := carriers.NewUPSAdapter(cfg.UPS)
		if err != nil {
			logger.Fatal("ups adapter", zap.Error(err))
		}
		adapters = append(adapters, carriers.WithBreaker(a))
	}
	if cfg.Shippo.Configured() {
		a, err := carriers.NewShippoAdapter(cfg.Shippo)
		if err != nil {
			logger.Fatal("shippo adapter", zap.Error(err))
		}
		adapters = append(adapters, carriers.WithBreaker(a))
	}

	for _, a := range adapters {
		logger.Info("carrier configured", zap.String("carrier", a.Name()))
	}
	return adapters
}
