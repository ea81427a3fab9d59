package integrations

import (
	"errors"
	"net/http"
	"time"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when the requested resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-2xx responses).
	ErrNetwork = errors.New("network error")

	// ErrDecode is returned when a response body is not valid JSON for the target type.
	ErrDecode = errors.New("decode error")
)

// NewHTTPClient creates an HTTP client with the standard request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
