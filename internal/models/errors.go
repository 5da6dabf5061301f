package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the upstream does not know the requested coin.
var ErrNotFound = errors.New("asset not found")

// UpstreamError covers every other failure talking to a market data source:
// non-2xx responses, transport errors and malformed bodies.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream returned status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ErrorResponse is the error envelope of every JSON endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
