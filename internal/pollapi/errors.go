package pollapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

var ErrInvalidOptionID = errors.New("option id must be an integer")

// Kind tells an application-level rejection from a request that never completed.
type Kind int

const (
	KindApplication Kind = iota + 1
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "application"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

const transportPrefix = "network error: "

// Error is returned by every Client call that fails after the request was built.
// Error() returns only Message, which is what callers show to users.
type Error struct {
	Kind       Kind
	StatusCode int // zero for KindTransport
	Message    string
	Err        error // transport failure or undecodable success body

	detail string // "detail" from the error body, if any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func IsApplication(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindApplication
}

func IsTransport(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindTransport
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type errorBody struct {
	Detail string `json:"detail"`
}

func transportError(err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: transportPrefix + err.Error(),
		Err:     err,
	}
}

// applicationError reads the body of a non-2xx response. A string "detail"
// becomes the message; anything else falls back to "HTTP <code>: <text>".
func applicationError(resp *http.Response) *Error {
	apiErr := &Error{
		Kind:       KindApplication,
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, statusText(resp)),
	}

	// An unreadable body only means there is no detail; Err stays nil.
	var body errorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body); err != nil {
		return apiErr
	}
	if body.Detail != "" {
		apiErr.detail = body.Detail
		apiErr.Message = body.Detail
	}
	return apiErr
}

func decodeError(resp *http.Response, err error) *Error {
	return &Error{
		Kind:       KindApplication,
		StatusCode: resp.StatusCode,
		Message:    "invalid response body: " + err.Error(),
		Err:        err,
	}
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	// Non-standard codes: reuse whatever reason phrase the server sent.
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}
