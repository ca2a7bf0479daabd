package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/example/agro-storefront/internal/api"
	"github.com/example/agro-storefront/internal/auth"
	"github.com/example/agro-storefront/internal/command"
	"github.com/example/agro-storefront/internal/config"
	"github.com/example/agro-storefront/internal/domain/payment"
	"github.com/example/agro-storefront/internal/domain/product"
	"github.com/example/agro-storefront/internal/infrastructure/kafka"
	"github.com/example/agro-storefront/internal/infrastructure/store"
	"github.com/example/agro-storefront/internal/logging"
	"github.com/example/agro-storefront/internal/query"
	"github.com/example/agro-storefront/internal/session"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("API").Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log := logging.New("API")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Strs("kafka", cfg.KafkaBrokers).
		Str("topic", cfg.KafkaTopic).
		Bool("postgres", cfg.DatabaseURL != "").
		Bool("redis", cfg.RedisAddr != "").
		Msg("AgroConnect storefront starting")

	// Event feed (optional)
	var publisher store.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
	}

	// Event journal: PostgreSQL when configured, memory otherwise
	var events store.EventStoreInterface
	if cfg.DatabaseURL != "" {
		db, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
		}
		defer db.Close()

		pg := store.NewPostgresEventStore(db, publisher)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to create events table")
		}
		events = pg
		log.Info().Msg("event journal: PostgreSQL")
	} else {
		events = store.NewEventStore(publisher)
		log.Info().Msg("event journal: memory")
	}

	// Cart snapshots: Redis when configured, memory otherwise
	var snapshots session.SnapshotStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to Redis")
		}
		snapshots = session.NewRedisSnapshotStore(client)
		log.Info().Msg("session snapshots: Redis")
	}

	sessions := session.NewManager(snapshots, cfg.SessionTTL, logging.New("Session"))
	catalog := product.NewCatalog(product.Seed())
	processor := payment.NewProcessor(cfg.PaymentDelay, cfg.PaymentSuccessRate)
	tokens := auth.NewSessionTokens(cfg.SessionSecret, cfg.SessionTTL)

	cmdHandler := command.NewHandler(sessions, catalog, events, processor, logging.New("Command"))
	queryHandler := query.NewHandler(sessions, catalog)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions.Run(ctx, cfg.SweepInterval)
	}()

	router := api.NewRouter(api.RouterConfig{
		Handlers:    api.NewHandlers(cmdHandler, queryHandler, tokens, logging.New("HTTP")),
		Tokens:      tokens,
		Logger:      logging.New("HTTP"),
		SubmitLimit: rate.Limit(cfg.SubmitRateLimit),
		SubmitBurst: cfg.SubmitRateBurst,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	cancel() // stops the session sweeper

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	// Let in-flight payments settle so their events reach the journal
	cmdHandler.Wait()
	wg.Wait()
	log.Info().Msg("stopped")
}
