package publish

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned when the client has no integration token.
var ErrNoToken = errors.New("medium integration token not set")

// APIError is a non-success response from Medium.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("medium %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("medium %s: status %d", e.Op, e.StatusCode)
}
