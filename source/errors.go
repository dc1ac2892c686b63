package source

import (
	"errors"
	"fmt"
)

// TransportError is a failed fetch: the request never completed or the
// upstream answered with a non-2xx status. StatusCode is 0 for the former.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to load journeys: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("failed to load journeys: %s", e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ShapeError is a well-formed response that breaks the journeys contract.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid journeys payload: %s", e.Reason)
}

// IsRetryable reports whether the user should be offered a retry. Both load
// failure kinds are; there is no automatic retry.
func IsRetryable(err error) bool {
	var te *TransportError
	var se *ShapeError
	return errors.As(err, &te) || errors.As(err, &se)
}
