package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Guizzs26/polls_client/internal/config"
	"github.com/Guizzs26/polls_client/internal/event"
	"github.com/Guizzs26/polls_client/internal/logger"
	"github.com/Guizzs26/polls_client/internal/metrics"
	"github.com/Guizzs26/polls_client/internal/pollapi"
	"github.com/Guizzs26/polls_client/internal/processing"
	"github.com/Guizzs26/polls_client/internal/pubsub"
	"github.com/Guizzs26/polls_client/internal/store"
)

const metricsNamespace = "polls"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logr := logger.NewLogger(cfg.LogLevel)
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logr.Warn("sentry disabled", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
			logr = logger.NewLoggerWithSentry(cfg.LogLevel)
		}
	}

	mainCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := pollapi.New(
		pollapi.WithBaseURL(cfg.BaseURL),
		pollapi.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		pollapi.WithLogger(logr),
		pollapi.WithMetrics(metrics.NewClientMetrics(prometheus.DefaultRegisterer, metricsNamespace)),
	)

	var snapshots store.SnapshotStore = store.NewMemoryStore()
	if cfg.RedisURL != "" {
		rs, err := store.NewRedisStore(mainCtx, cfg.RedisURL)
		if err != nil {
			logr.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		snapshots = rs
	}
	defer snapshots.Close()

	consumer, err := newConsumer(cfg)
	if err != nil {
		logr.Error("failed to create vote consumer", "broker", cfg.Broker, "error", err)
		os.Exit(1)
	}
	if consumer != nil {
		defer consumer.Close()
	}

	hub := pubsub.NewHub(logr)
	go hub.Run(mainCtx)

	relay := processing.NewResultsRelay(
		consumer,
		client,
		snapshots,
		hub,
		metrics.NewRelayMetrics(prometheus.DefaultRegisterer, metricsNamespace),
		logr,
		cfg.RefreshInterval,
	)

	server := &http.Server{
		Addr:    cfg.RelayAddr,
		Handler: newRouter(relay, hub, snapshots, logr),
	}

	go func() {
		logr.Info("relay listening", "addr", cfg.RelayAddr, "poll_service", client.BaseURL(), "broker", cfg.Broker)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("relay server failed", "error", err)
			cancel()
		}
	}()

	if err := relay.Run(mainCtx); err != nil {
		logr.Error("results relay stopped", "error", err)
	}

	logr.Info("shutting down relay")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("relay forced to shutdown", "error", err)
	}
}

func newConsumer(cfg *config.Config) (event.VoteConsumer, error) {
	switch cfg.Broker {
	case config.BrokerKafka:
		kc, err := event.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
		if err != nil {
			return nil, err
		}
		return kc, nil
	case config.BrokerAmqp:
		ac, err := event.NewAmqpConsumer(cfg.AmqpURL, cfg.AmqpQueue)
		if err != nil {
			return nil, err
		}
		return ac, nil
	default:
		return nil, nil
	}
}
