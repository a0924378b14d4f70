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

	"github.com/getsentry/sentry-go"
	_ "github.com/joho/godotenv/autoload"

	"github.com/Guizzs26/polls_client/internal/config"
	"github.com/Guizzs26/polls_client/internal/event"
	"github.com/Guizzs26/polls_client/internal/ledger"
	"github.com/Guizzs26/polls_client/internal/logger"
	"github.com/Guizzs26/polls_client/internal/pollapi"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	log := logger.NewLogger(cfg.LogLevel)
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.Warn("sentry disabled", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
			log = logger.NewLoggerWithSentry(cfg.LogLevel)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		client: pollapi.New(
			pollapi.WithBaseURL(cfg.BaseURL),
			pollapi.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
			pollapi.WithLogger(log),
		),
		token:  cfg.Token,
		logger: log,
		out:    os.Stdout,
	}

	if cfg.LedgerPath != "" {
		db, err := ledger.NewDB(cfg.LedgerPath)
		if err == nil {
			err = db.Migrate()
		}
		if err != nil {
			log.Error("failed to open vote ledger", "path", cfg.LedgerPath, "error", err)
			return 1
		}
		defer db.Close()
		a.ledger = ledger.NewVoteLedger(db)
	}

	if len(os.Args) > 1 && os.Args[1] == "vote" {
		pub, err := newPublisher(cfg)
		if err != nil {
			log.Warn("vote events disabled", "broker", cfg.Broker, "error", err)
		} else if pub != nil {
			defer pub.Close()
			a.publisher = pub
		}
	}

	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
			return 2
		}
		if pollapi.IsTransport(err) {
			log.Debug("poll service unreachable", "base_url", cfg.BaseURL, "error", err)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newPublisher(cfg *config.Config) (event.VotePublisher, error) {
	switch cfg.Broker {
	case config.BrokerKafka:
		kp, err := event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		return kp, nil
	case config.BrokerAmqp:
		ap, err := event.NewAmqpPublisher(cfg.AmqpURL, cfg.AmqpQueue)
		if err != nil {
			return nil, err
		}
		return ap, nil
	default:
		return nil, nil
	}
}
