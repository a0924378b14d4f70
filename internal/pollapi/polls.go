package pollapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Guizzs26/polls_client/internal/model"
)

const DefaultBatchSize = 10

// ListPolls returns one page of polls.
func (c *Client) ListPolls(ctx context.Context, skip, limit int) ([]model.Poll, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var polls []model.Poll
	err := c.send(ctx, request{
		endpoint: "list_polls",
		method:   http.MethodGet,
		path:     "/polls",
		query:    query,
		rewrite: func(e *Error) {
			if e.StatusCode == http.StatusNotFound {
				e.Message = "Polls endpoint not found"
			}
		},
	}, &polls)
	if err != nil {
		return nil, err
	}
	return polls, nil
}

// FetchAllPolls pages through ListPolls until the service returns an empty
// or short batch.
func (c *Client) FetchAllPolls(ctx context.Context, batchSize int) ([]model.Poll, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	all := []model.Poll{}
	for skip := 0; ; skip += batchSize {
		batch, err := c.ListPolls(ctx, skip, batchSize)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < batchSize {
			return all, nil
		}
	}
}
