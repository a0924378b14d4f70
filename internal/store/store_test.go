package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	rs, err := NewRedisStore(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	t.Cleanup(func() { rs.Close() })
	return rs, mr
}

func testSnapshotStore(t *testing.T, s SnapshotStore) {
	ctx := context.Background()

	t.Run("missing snapshot", func(t *testing.T) {
		_, err := s.Latest(ctx, "nope")
		if !errors.Is(err, ErrNoSnapshot) {
			t.Errorf("expected ErrNoSnapshot, got %v", err)
		}
	})

	t.Run("first save is a change", func(t *testing.T) {
		changed, err := s.Save(ctx, "1", []byte(`{"poll_id":1}`))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if !changed {
			t.Error("expected first save to report a change")
		}
	})

	t.Run("same snapshot is not a change", func(t *testing.T) {
		changed, err := s.Save(ctx, "1", []byte(`{"poll_id":1}`))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if changed {
			t.Error("expected identical snapshot to be unchanged")
		}
	})

	t.Run("new snapshot is a change", func(t *testing.T) {
		changed, err := s.Save(ctx, "1", []byte(`{"poll_id":1,"results":[]}`))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if !changed {
			t.Error("expected different snapshot to report a change")
		}

		got, err := s.Latest(ctx, "1")
		if err != nil {
			t.Fatalf("Latest failed: %v", err)
		}
		if string(got) != `{"poll_id":1,"results":[]}` {
			t.Errorf("Latest = %s", got)
		}
	})

	t.Run("polls are independent", func(t *testing.T) {
		changed, err := s.Save(ctx, "2", []byte(`{"poll_id":1}`))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if !changed {
			t.Error("expected first save of poll 2 to report a change")
		}
	})
}

func TestMemoryStore(t *testing.T) {
	testSnapshotStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	rs, mr := newRedisStore(t)
	testSnapshotStore(t, rs)

	if !mr.Exists("poll:1:results") {
		t.Error("expected poll:1:results key")
	}
	if ttl := mr.TTL("poll:1:results"); ttl <= 0 {
		t.Errorf("expected a TTL on snapshot key, got %v", ttl)
	}
}

func TestNewRedisStore_BadURL(t *testing.T) {
	if _, err := NewRedisStore(context.Background(), "not a url"); err == nil {
		t.Error("expected error for invalid URL")
	}
}
