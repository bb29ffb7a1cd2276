package generation

import "errors"

var (
	// ErrMissingAPIKey is returned before any network call when a client was
	// constructed without credentials. Fatal, never retried.
	ErrMissingAPIKey = errors.New("generation api key missing")
	// ErrNoResponse is returned when the endpoint answered but the decoded
	// reply contained no usable text.
	ErrNoResponse = errors.New("no response")
)
