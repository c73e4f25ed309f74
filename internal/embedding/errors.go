package embedding

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	// KindNetwork is a transport-level failure (connection refused, reset, DNS).
	KindNetwork ErrorKind = "network"
	// KindTimeout means the request deadline was exceeded.
	KindTimeout ErrorKind = "timeout"
	// KindStatus is a non-success HTTP response from the provider.
	KindStatus ErrorKind = "status"
	// KindMalformed means the response body could not be decoded or carried no vector.
	KindMalformed ErrorKind = "malformed"
)

// ProviderError is returned for every failed call to the embedding provider.
type ProviderError struct {
	Kind ErrorKind
	// StatusCode is the HTTP status for KindStatus, zero otherwise.
	StatusCode int
	Model      string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("embedding provider: status %d (model %s): %v", e.StatusCode, e.Model, e.Err)
	}
	return fmt.Sprintf("embedding provider: %s (model %s): %v", e.Kind, e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient: timeouts, network errors,
// rate limiting and 5xx responses. Other 4xx and malformed bodies are permanent.
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindNetwork:
		return true
	case KindStatus:
		return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// IsRetryable reports whether err wraps a retryable ProviderError.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return false
}
