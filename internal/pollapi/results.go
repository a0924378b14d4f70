package pollapi

import (
	"context"
	"net/http"

	"github.com/Guizzs26/polls_client/internal/model"
)

// FetchResults returns the current tallies for pollID as sent by the service.
func (c *Client) FetchResults(ctx context.Context, pollID string) (*model.PollResultSet, error) {
	var results model.PollResultSet
	err := c.send(ctx, request{
		endpoint: "results",
		method:   http.MethodGet,
		path:     pollPath(pollID, "/results"),
	}, &results)
	if err != nil {
		return nil, err
	}
	return &results, nil
}
