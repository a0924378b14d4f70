package event

import (
	"context"

	"github.com/Guizzs26/polls_client/internal/model"
)

// VotePublisher announces votes the poll service has accepted.
type VotePublisher interface {
	Publish(ctx context.Context, cast model.VoteCast) error
	Close() error
}
