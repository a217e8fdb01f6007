package fetch

import (
	"fmt"
	"time"
)

type ErrorKind string

const (
	KindConnection ErrorKind = "connection"
	KindTimeout    ErrorKind = "timeout"
	KindRateLimit  ErrorKind = "rate_limit"
	KindUnknown    ErrorKind = "unknown"
)

// NetworkError covers transport failures and non-2xx responses.
// StatusCode is zero when the request never produced a response.
type NetworkError struct {
	Kind       ErrorKind
	StatusCode int
	// populated from the Retry-After response header when present
	RetryAfter time.Duration
	cause      error
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("network error (%s): status %d", e.Kind, e.StatusCode)
	}
	if e.cause != nil {
		return fmt.Sprintf("network error (%s): %s", e.Kind, e.cause.Error())
	}
	return fmt.Sprintf("network error (%s)", e.Kind)
}

func (e *NetworkError) Unwrap() error {
	return e.cause
}

// Retryable reports whether retrying the request could plausibly
// succeed. Retrying a 4xx other than 408/429 will not.
func (e *NetworkError) Retryable() bool {
	switch e.Kind {
	case KindConnection, KindTimeout, KindRateLimit:
		return true
	}
	return false
}
