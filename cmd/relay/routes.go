package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Guizzs26/polls_client/internal/pollapi"
	"github.com/Guizzs26/polls_client/internal/pubsub"
	"github.com/Guizzs26/polls_client/internal/store"
)

type currentResults interface {
	Current(ctx context.Context, pollID string) ([]byte, error)
}

func newRouter(relay currentResults, hub *pubsub.Hub, snapshots store.SnapshotStore, logr *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ws/results/{pollID}", func(w http.ResponseWriter, req *http.Request) {
		pollID := chi.URLParam(req, "pollID")

		initial, err := relay.Current(req.Context(), pollID)
		if err != nil {
			writeError(w, err)
			return
		}

		logr.Info("subscriber connected", "poll_id", pollID, "remote", req.RemoteAddr)
		// Re-read after registration so updates stored meanwhile are not missed.
		latest := func(ctx context.Context) ([]byte, error) {
			if data, err := snapshots.Latest(ctx, pollID); err == nil {
				return data, nil
			}
			return initial, nil
		}
		if err := hub.Subscribe(w, req, pollID, latest); err != nil {
			logr.Warn("websocket upgrade failed", "poll_id", pollID, "error", err)
		}
	})

	r.Get("/results/{pollID}", func(w http.ResponseWriter, req *http.Request) {
		data, err := snapshots.Latest(req.Context(), chi.URLParam(req, "pollID"))
		if errors.Is(err, store.ErrNoSnapshot) {
			writeDetail(w, http.StatusNotFound, "No results relayed for this poll yet")
			return
		}
		if err != nil {
			logr.Error("failed to read snapshot", "error", err)
			writeDetail(w, http.StatusInternalServerError, "Failed to read results")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// writeError mirrors the poll service's status for application errors so
// subscribers see "Poll not found" as a 404.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if code := pollapi.StatusCode(err); code >= 400 && code < 500 {
		status = code
	}
	writeDetail(w, status, err.Error())
}

// writeDetail answers with the same {"detail": ...} shape the poll service uses.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
