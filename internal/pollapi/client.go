// Package pollapi is the HTTP client for the poll service. Every call is a
// single request with no retry; failures come back as *Error.
package pollapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Guizzs26/polls_client/internal/metrics"
)

const (
	DefaultBaseURL = "http://localhost:8000"

	maxErrorBody = 64 << 10
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     *slog.Logger
	metrics    *metrics.ClientMetrics
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New builds a Client for DefaultBaseURL. The default transport is
// http.DefaultClient, which enforces no timeout.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one round trip. endpoint is the metrics label.
type request struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	token    string
	body     any

	// rewrite lets an operation adjust the message of an application error.
	rewrite func(*Error)
}

func (c *Client) send(ctx context.Context, r request, out any) error {
	start := time.Now()
	reqID := uuid.NewString()

	err := c.roundTrip(ctx, r, reqID, out)

	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case IsTransport(err):
		outcome = metrics.OutcomeTransportError
	default:
		outcome = metrics.OutcomeApplicationError
	}
	c.metrics.Observe(r.endpoint, outcome, time.Since(start))

	c.logger.DebugContext(ctx, "poll service request",
		"request_id", reqID,
		"method", r.method,
		"path", r.path,
		"outcome", outcome,
		"status", StatusCode(err),
		"elapsed", time.Since(start),
	)
	return err
}

func (c *Client) roundTrip(ctx context.Context, r request, reqID string, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", r.endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", r.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := applicationError(resp)
		if r.rewrite != nil {
			r.rewrite(apiErr)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return decodeError(resp, err)
	}
	return nil
}

func pollPath(pollID string, suffix string) string {
	return "/polls/" + url.PathEscape(pollID) + suffix
}
