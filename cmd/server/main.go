package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	jwttoken "nexolend/internal/jwt_token"
	"nexolend/internal/platform/config"
	"nexolend/internal/platform/httpserver"
	"nexolend/internal/platform/kafka"
	"nexolend/internal/platform/logger"
	"nexolend/internal/platform/postgres"
	"nexolend/internal/platform/redis"
	"nexolend/internal/scoring"
	"nexolend/internal/scoring/adapters"
	flagsmemory "nexolend/internal/scoring/flags/memory"
	flagspostgres "nexolend/internal/scoring/flags/postgres"
	scoringhandler "nexolend/internal/scoring/handler"
	ledgermemory "nexolend/internal/scoring/ledger/memory"
	ledgerpostgres "nexolend/internal/scoring/ledger/postgres"
	scoringmetrics "nexolend/internal/scoring/metrics"
	"nexolend/internal/scoring/store/snapshot"
	httptransport "nexolend/internal/transport/http"
	"nexolend/pkg/platform/middleware/auth"
)

const (
	jwtIssuer   = "nexolend"
	jwtAudience = "scoring-api"

	shutdownTimeout = 10 * time.Second
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the scoring packages.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := kafka.NewPublisher(ctx, cfg.Kafka, log)
	if err != nil {
		log.Error("kafka connection failed", "error", err)
		os.Exit(1)
	}
	if publisher != nil {
		defer publisher.Close()
	}

	stores := buildStores(db)
	sources, checks := buildSources(db, redisClient)

	opts := []scoring.Option{
		scoring.WithLogger(log),
		scoring.WithMetrics(scoringmetrics.New()),
		scoring.WithTracer(otel.Tracer("nexolend/scoring")),
		scoring.WithCollectTimeout(cfg.CollectTimeout),
		scoring.WithStaleAfter(cfg.StaleAfter),
	}
	if publisher != nil {
		opts = append(opts, scoring.WithNotifier(adapters.NewKafkaNotifier(publisher, log)))
	}

	service, err := scoring.New(stores, sources, opts...)
	if err != nil {
		log.Error("scoring service init failed", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, jwtIssuer, jwtAudience)
	handler := scoringhandler.New(service, log)
	router := httptransport.NewRouter(handler, jwtValidator{jwtService}, log, checks...)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting scoring server",
			"addr", cfg.Addr,
			"postgres", db != nil,
			"redis", redisClient != nil,
			"kafka", publisher != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// buildStores selects Postgres-backed stores when a DSN is configured and
// falls back to in-memory stores for local development.
func buildStores(db *sql.DB) scoring.Stores {
	if db == nil {
		return scoring.Stores{
			Snapshots: snapshot.NewInMemoryStore(),
			Events:    ledgermemory.NewInMemoryStore(),
			Flags:     flagsmemory.NewInMemoryStore(),
		}
	}
	return scoring.Stores{
		Snapshots: snapshot.NewPostgres(db),
		Events:    ledgerpostgres.New(db),
		Flags:     flagspostgres.New(db),
	}
}

// buildSources wires evidence sources against the configured backends and
// returns the health checks for the ones that can actually fail.
func buildSources(db *sql.DB, redisClient *redis.Client) (scoring.Sources, []httptransport.HealthCheck) {
	var sources scoring.Sources
	var checks []httptransport.HealthCheck

	if db != nil {
		evidence := adapters.NewPostgresEvidence(db)
		sources.Repayments = evidence
		sources.Loans = evidence.Loans()
		sources.Profiles = evidence
		sources.Documents = evidence
		checks = append(checks, httptransport.HealthCheck{Name: "postgres", Check: db.PingContext})
	} else {
		evidence := adapters.NewMemoryEvidence()
		sources.Repayments = evidence
		sources.Loans = evidence.Loans()
		sources.Profiles = evidence
		sources.Documents = evidence
	}

	if redisClient != nil {
		sources.Reputation = adapters.NewRedisReputation(redisClient)
		sources.Duplicates = adapters.NewRedisDuplicateIndex(redisClient)
		checks = append(checks, httptransport.HealthCheck{Name: "redis", Check: redisClient.Health})
	} else {
		sources.Reputation = adapters.NewMemoryReputation()
		sources.Duplicates = adapters.NewMemoryDuplicateIndex()
	}

	return sources, checks
}

// jwtValidator bridges the JWT service to the auth middleware's claim shape.
type jwtValidator struct {
	service *jwttoken.JWTService
}

func (v jwtValidator) ValidateToken(token string) (*auth.Claims, error) {
	claims, err := v.service.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &auth.Claims{ActorID: claims.ActorID, Role: claims.Role}, nil
}
