package extract

import (
	"errors"
	"fmt"
)

// ErrMissingCredential means no EXAONE API key is configured. Checked before
// any request is built, so it never reaches the network.
var ErrMissingCredential = errors.New("generation api key is not configured")

// ErrUnparsable means the generation output never yielded a metadata object
// satisfying the schema.
var ErrUnparsable = errors.New("no valid metadata object in generation response")

// UpstreamError is a non-success HTTP response from the generation endpoint.
// Not retried here; retry policy belongs to the caller.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation api status %d: %s", e.Status, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
