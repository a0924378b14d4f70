package pollapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Guizzs26/polls_client/internal/model"
)

// SubmitVote records a vote for optionID in pollID, authenticated with token.
// optionID must be a base-10 integer; otherwise no request is sent and the
// error wraps ErrInvalidOptionID. There is no idempotency key: two calls
// submit two votes.
func (c *Client) SubmitVote(ctx context.Context, pollID, optionID, token string) (*model.VoteRecord, error) {
	option, err := strconv.Atoi(optionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOptionID, optionID)
	}

	var vote model.VoteRecord
	err = c.send(ctx, request{
		endpoint: "vote",
		method:   http.MethodPost,
		path:     pollPath(pollID, "/vote"),
		token:    token,
		body:     model.VoteRequest{OptionID: option},
	}, &vote)
	if err != nil {
		return nil, err
	}
	return &vote, nil
}
