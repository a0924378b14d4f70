package event

import (
	"context"

	"github.com/Guizzs26/polls_client/internal/model"
)

type VoteConsumer interface {
	ReadMessage(ctx context.Context) (model.VoteCast, error)
	Close() error
}
