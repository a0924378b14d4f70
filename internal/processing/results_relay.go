package processing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Guizzs26/polls_client/internal/event"
	"github.com/Guizzs26/polls_client/internal/metrics"
	"github.com/Guizzs26/polls_client/internal/model"
	"github.com/Guizzs26/polls_client/internal/pollapi"
	"github.com/Guizzs26/polls_client/internal/store"
)

const consumeRetryDelay = time.Second

// ResultsFetcher is implemented by *pollapi.Client.
type ResultsFetcher interface {
	FetchResults(ctx context.Context, pollID string) (*model.PollResultSet, error)
}

// Broadcaster is implemented by *pubsub.Hub.
type Broadcaster interface {
	Publish(ctx context.Context, pollID string, data []byte) bool
}

// ResultsRelay keeps subscribers of a poll up to date. It re-fetches results
// whenever a vote-cast event names the poll and, for every poll it has seen,
// on a fixed interval. Snapshots are pushed only when they changed.
type ResultsRelay struct {
	consumer    event.VoteConsumer // nil: interval refreshes only
	fetcher     ResultsFetcher
	store       store.SnapshotStore
	broadcaster Broadcaster
	metrics     *metrics.RelayMetrics
	logger      *slog.Logger
	interval    time.Duration
	retryDelay  time.Duration // wait after a failed event read

	mu      sync.RWMutex
	tracked map[string]bool // poll ids to refresh on each tick
}

func NewResultsRelay(
	c event.VoteConsumer,
	f ResultsFetcher,
	s store.SnapshotStore,
	b Broadcaster,
	m *metrics.RelayMetrics,
	logger *slog.Logger,
	interval time.Duration,
) *ResultsRelay {
	return &ResultsRelay{
		consumer:    c,
		fetcher:     f,
		store:       s,
		broadcaster: b,
		metrics:     m,
		logger:      logger,
		interval:    interval,
		retryDelay:  consumeRetryDelay,
		tracked:     make(map[string]bool),
	}
}

// Run blocks until ctx is done or the event stream ends.
func (rr *ResultsRelay) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	var wg sync.WaitGroup
	if rr.consumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := rr.consume(ctx); err != nil {
				errCh <- err
				cancel()
			}
		}()
	}
	defer wg.Wait()

	ticker := time.NewTicker(rr.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rr.logger.Info("results relay stopping")
			select {
			case err := <-errCh:
				return err
			default:
				return nil
			}

		case <-ticker.C:
			rr.refreshTracked(ctx)
		}
	}
}

func (rr *ResultsRelay) consume(ctx context.Context) error {
	for {
		cast, err := rr.consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("vote event stream closed: %w", err)
			}
			if errors.Is(err, event.ErrMalformedEvent) {
				rr.logger.Warn("skipping malformed vote event", "error", err)
				continue
			}
			rr.logger.Error("error reading vote event", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(rr.retryDelay):
			}
			continue
		}

		rr.logger.Debug("vote event received",
			"poll_id", cast.PollID,
			"vote_id", cast.Vote.ID,
			"option_id", cast.Vote.OptionID,
		)
		rr.Track(cast.PollID)
		if _, err := rr.Refresh(ctx, cast.PollID); err != nil {
			rr.logger.Warn("results refresh failed", "poll_id", cast.PollID, "error", err)
		}
	}
}

// Track adds pollID to the set refreshed on every tick.
func (rr *ResultsRelay) Track(pollID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.tracked[pollID] = true
}

func (rr *ResultsRelay) untrack(pollID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	delete(rr.tracked, pollID)
}

func (rr *ResultsRelay) Tracked() []string {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	ids := make([]string, 0, len(rr.tracked))
	for id := range rr.tracked {
		ids = append(ids, id)
	}
	return ids
}

func (rr *ResultsRelay) refreshTracked(ctx context.Context) {
	for _, pollID := range rr.Tracked() {
		if ctx.Err() != nil {
			return
		}
		if _, err := rr.Refresh(ctx, pollID); err != nil {
			rr.logger.Warn("results refresh failed", "poll_id", pollID, "error", err)
		}
	}
}

// Refresh fetches the results of pollID, stores them and broadcasts them if
// they differ from the stored snapshot. It returns the encoded snapshot.
// A poll the service no longer knows is dropped from the tracked set.
func (rr *ResultsRelay) Refresh(ctx context.Context, pollID string) ([]byte, error) {
	results, err := rr.fetcher.FetchResults(ctx, pollID)
	if err != nil {
		rr.metrics.Refreshed("failed")
		if pollGone(err) {
			rr.untrack(pollID)
		}
		return nil, fmt.Errorf("fetch results for poll %s: %w", pollID, err)
	}

	data, err := json.Marshal(results)
	if err != nil {
		rr.metrics.Refreshed("failed")
		return nil, fmt.Errorf("encode results for poll %s: %w", pollID, err)
	}

	changed, err := rr.store.Save(ctx, pollID, data)
	if err != nil {
		rr.metrics.Refreshed("failed")
		return nil, fmt.Errorf("store results for poll %s: %w", pollID, err)
	}

	if !changed {
		rr.metrics.Refreshed("unchanged")
		return data, nil
	}

	rr.metrics.Refreshed("changed")
	if rr.broadcaster.Publish(ctx, pollID, data) {
		rr.metrics.Broadcasted(pollID)
	}
	rr.logger.Info("results changed",
		"poll_id", pollID,
		"question", results.Question,
		"total_votes", results.TotalVotes(),
	)
	return data, nil
}

// Current returns the freshest snapshot of pollID, falling back to the
// stored one when the poll service cannot be reached. Polls that resolve
// are tracked from then on.
func (rr *ResultsRelay) Current(ctx context.Context, pollID string) ([]byte, error) {
	data, err := rr.Refresh(ctx, pollID)
	if err == nil {
		rr.Track(pollID)
		return data, nil
	}

	if pollGone(err) {
		return nil, err
	}

	stored, storeErr := rr.store.Latest(ctx, pollID)
	if storeErr != nil {
		return nil, err
	}
	rr.Track(pollID)
	rr.logger.Warn("serving stored results", "poll_id", pollID, "error", err)
	return stored, nil
}

func pollGone(err error) bool {
	return pollapi.IsApplication(err) && pollapi.StatusCode(err) == http.StatusNotFound
}
