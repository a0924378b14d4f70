package pubsub

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := NewHub(slog.New(slog.DiscardHandler))
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pollID := strings.TrimPrefix(r.URL.Path, "/ws/results/")
		h.Subscribe(w, r, pollID, func(context.Context) ([]byte, error) {
			return []byte(`{"initial":"` + pollID + `"}`), nil
		})
	}))
	t.Cleanup(srv.Close)
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server, pollID string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/results/" + pollID
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, msg, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return string(msg)
}

func TestHub_InitialSnapshot(t *testing.T) {
	_, srv := startHub(t)
	conn := dial(t, srv, "42")

	if got := read(t, conn); got != `{"initial":"42"}` {
		t.Errorf("initial message = %s", got)
	}
}

func TestHub_PublishReachesOnlyPollSubscribers(t *testing.T) {
	h, srv := startHub(t)

	a := dial(t, srv, "1")
	b := dial(t, srv, "2")
	// The initial snapshot is written only after the hub accepted the
	// registration, so reading it orders the publishes below after it.
	read(t, a)
	read(t, b)

	h.Publish(context.Background(), "1", []byte("update-1"))
	h.Publish(context.Background(), "2", []byte("update-2"))

	if got := read(t, a); got != "update-1" {
		t.Errorf("poll 1 subscriber got %s", got)
	}
	if got := read(t, b); got != "update-2" {
		t.Errorf("poll 2 subscriber got %s", got)
	}
}

func TestHub_PublishAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(slog.New(slog.DiscardHandler))
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	if h.Publish(context.Background(), "1", []byte("x")) {
		t.Error("expected Publish to report a stopped hub")
	}
}

func TestHub_RegistersBeforeSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := NewHub(slog.New(slog.DiscardHandler))
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Subscribe(w, r, "1", func(ctx context.Context) ([]byte, error) {
			// an update lands while the snapshot is being read
			h.Publish(ctx, "1", []byte("update"))
			return []byte("snapshot"), nil
		})
	}))
	t.Cleanup(srv.Close)

	conn := dial(t, srv, "1")
	if got := read(t, conn); got != "snapshot" {
		t.Errorf("first message = %s, want snapshot", got)
	}
	if got := read(t, conn); got != "update" {
		t.Errorf("second message = %s, want update", got)
	}
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := NewHub(slog.New(slog.DiscardHandler))
	go h.Run(ctx)

	slow := &Client{Hub: h, Send: make(chan []byte, 1), PollID: "1"}
	h.Register <- slow

	h.Publish(ctx, "1", []byte("first"))
	h.Publish(ctx, "1", []byte("second"))

	if got := <-slow.Send; string(got) != "first" {
		t.Errorf("buffered message = %s, want first", got)
	}
	select {
	case _, ok := <-slow.Send:
		if ok {
			t.Error("expected Send to be closed after overflow")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("slow subscriber was not dropped")
	}
}
