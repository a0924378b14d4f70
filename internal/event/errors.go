package event

import "errors"

// ErrMalformedEvent marks a message that could not be decoded. Consumers
// skip it and keep reading.
var ErrMalformedEvent = errors.New("malformed vote event")
