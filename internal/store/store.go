package store

import (
	"context"
	"errors"
)

var ErrNoSnapshot = errors.New("no results snapshot stored for poll")

// SnapshotStore keeps the latest encoded results snapshot per poll.
type SnapshotStore interface {
	// Save stores snapshot and reports whether it differs from the previous one.
	Save(ctx context.Context, pollID string, snapshot []byte) (bool, error)
	Latest(ctx context.Context, pollID string) ([]byte, error)
	Close() error
}
