package client

import (
	"errors"
	"fmt"
)

// TransportError covers network failures, timeouts and non-2xx responses.
// StatusCode is zero when the request never produced a response.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SchemaError means the upstream returned an error payload or a body that
// does not decode into the expected shape. Never retried, never defaulted.
type SchemaError struct {
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("upstream schema error: %s", e.Detail)
}

// IsRetryable reports whether an error is a transient transport failure
// (connection error, timeout, or 5xx) worth a single retry.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode == 0 || te.StatusCode >= 500
	}
	return false
}
