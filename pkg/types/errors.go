package types

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPayload is returned by a normalizer when the top-level payload is absent.
	ErrEmptyPayload = errors.New("empty payload")

	// ErrUnknownSource is returned when no component is registered for a source id.
	ErrUnknownSource = errors.New("unknown source")
)

// FetchError describes a failed request to a bookmaker API.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch %s: status %d: %v", e.Source, e.URL, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s fetch %s: %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err carries a FetchError marked retryable.
func IsRetryable(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Retryable
	}

	return false
}
