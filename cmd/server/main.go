package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trialmatch/internal/audit"
	jwttoken "trialmatch/internal/jwt_token"
	"trialmatch/internal/matching"
	matchhandler "trialmatch/internal/matching/handler"
	matchmetrics "trialmatch/internal/matching/metrics"
	"trialmatch/internal/platform/config"
	"trialmatch/internal/platform/httpserver"
	"trialmatch/internal/platform/logger"
	"trialmatch/internal/platform/middleware"
	platformredis "trialmatch/internal/platform/redis"
	"trialmatch/internal/record"
	trialcache "trialmatch/internal/trial/cache"
	trialstore "trialmatch/internal/trial/store"
	"trialmatch/pkg/platform/circuit"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		for _, ddl := range []string{trialstore.Schema(), audit.Schema()} {
			if _, err := db.ExecContext(ctx, ddl); err != nil {
				log.Error("schema apply failed", "error", err)
				os.Exit(1)
			}
		}
	}

	catalog := buildCatalog(ctx, cfg, db, log)
	auditStore := buildAuditStore(ctx, cfg, db, log)
	publisher := audit.NewPublisher(auditStore)
	extractor := buildExtractor(cfg, log)

	m := matchmetrics.New()
	service := matching.NewService(extractor, catalog, publisher, m, log)
	handler := matchhandler.New(service, publisher, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.JWTSigningKey != "" {
			validator := jwttoken.NewService(cfg.JWTSigningKey, "trialmatch")
			r.Use(middleware.RequireAuth(validator, log))
		} else {
			log.Warn("JWT signing key not set, API is unauthenticated")
		}
		handler.Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	log.Info("starting trialmatch", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildCatalog picks the catalog backend: Postgres when configured, demo
// seed data in memory otherwise, with an optional Redis read-through cache
// in front of either.
func buildCatalog(ctx context.Context, cfg config.Server, db *sql.DB, log *slog.Logger) trialstore.Catalog {
	var catalog trialstore.Catalog
	if db != nil {
		catalog = trialstore.NewPostgres(db)
	} else {
		memory := trialstore.NewMemoryCatalog()
		if err := trialstore.Seed(ctx, memory); err != nil {
			log.Error("catalog seed failed", "error", err)
			os.Exit(1)
		}
		log.Info("using in-memory demo catalog")
		catalog = memory
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		catalog = trialcache.New(catalog, redisClient.Client, cfg.CatalogTTL, log)
		log.Info("catalog cache enabled", "ttl", cfg.CatalogTTL)
	}
	return catalog
}

// buildAuditStore picks the audit backend and attaches the Kafka sink when
// brokers are configured. The sink sits behind a background worker so append
// latency stays bounded by the primary store.
func buildAuditStore(ctx context.Context, cfg config.Server, db *sql.DB, log *slog.Logger) audit.Store {
	var store audit.Store
	if db != nil {
		store = audit.NewPostgres(db)
	} else {
		store = audit.NewInMemoryStore()
		log.Warn("using in-memory audit store, events are lost on restart")
	}

	if len(cfg.KafkaBrokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka sink init failed", "error", err)
			os.Exit(1)
		}
		worker := audit.NewWorker(sink, 1024, log)
		go func() { _ = worker.Run(ctx) }()
		store = audit.NewFanout(store, worker)
		log.Info("audit kafka sink enabled", "topic", cfg.KafkaTopic)
	}
	return store
}

// buildExtractor picks the extraction collaborator: the language-model
// extractor when an API key is present, the simulated parser otherwise. The
// model extractor sits behind a circuit breaker and degrades to the
// simulated parser during provider outages.
func buildExtractor(cfg config.Server, log *slog.Logger) record.Extractor {
	if cfg.OpenAIKey != "" {
		extractor, err := record.NewOpenAIExtractor(cfg.OpenAIKey, cfg.OpenAIModel, log)
		if err != nil {
			log.Error("openai extractor init failed", "error", err)
			os.Exit(1)
		}
		log.Info("using language-model extractor", "model", cfg.OpenAIModel)
		breaker := circuit.New(5, time.Minute)
		return record.NewFallbackExtractor(extractor, record.NewSimulatedExtractor(), breaker, log)
	}
	log.Info("using simulated extractor")
	return record.NewSimulatedExtractor()
}
