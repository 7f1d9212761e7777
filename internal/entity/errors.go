package entity

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a required record is absent from an
// otherwise successful upstream response.
var ErrNotFound = errors.New("record not found")

// ErrInsufficientFunds marks the one order rejection reason that is
// retryable after funding settles.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ConfigError is fatal: the run cannot proceed without a usable
// configuration (missing file, unparseable field, no matching bank).
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// UpstreamError carries the status code and raw body of a failed
// exchange response so it can be appended to the error log verbatim.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Body)
}

// IsInsufficientFunds reports whether err is the retryable
// insufficient-funds rejection, either as the sentinel or as an
// UpstreamError whose body names it.
func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}
