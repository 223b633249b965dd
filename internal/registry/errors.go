package registry

import (
	"errors"
	"fmt"

	dErrors "landscape/pkg/domain-errors"
)

// ErrorCategory is the normalized failure taxonomy for registry requests.
type ErrorCategory string

const (
	// ErrorTimeout indicates the registry took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorNetwork indicates the request never produced a response
	ErrorNetwork ErrorCategory = "network"

	// ErrorOutage indicates a 5xx response
	ErrorOutage ErrorCategory = "outage"

	// ErrorRejected indicates a 4xx (or otherwise unexpected) status
	ErrorRejected ErrorCategory = "rejected"

	// ErrorBadData indicates a body that is not a JSON array of projects
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorPagination indicates pagination that does not terminate
	ErrorPagination ErrorCategory = "pagination"
)

// FetchError wraps one failed registry request with its categorization.
type FetchError struct {
	Category   ErrorCategory
	URL        string
	Status     int // 0 when no response was received
	Message    string
	Underlying error
	Retryable  bool
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("registry [%s] %s: %s", e.Category, e.URL, e.Message)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Underlying
}

// NewFetchError creates a categorized request failure. Timeouts, network
// failures and outages are retryable.
func NewFetchError(category ErrorCategory, url string, status int, message string, underlying error) *FetchError {
	retryable := category == ErrorTimeout ||
		category == ErrorNetwork ||
		category == ErrorOutage

	return &FetchError{
		Category:   category,
		URL:        url,
		Status:     status,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable checks if an error is worth retrying
func IsRetryable(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Retryable
	}
	return false
}

// toDomainError translates the final error of a request into the domain
// taxonomy. A retryable failure that is still failing once the budget is spent
// means the registry is unavailable; anything else is a bad response.
func toDomainError(err error, url string, attempts int) error {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return dErrors.Wrap(err, dErrors.CodeRegistryUnavailable,
			fmt.Sprintf("GET %s after %d attempt(s)", url, attempts))
	}
	if fe.Retryable {
		return dErrors.Wrap(fe, dErrors.CodeRegistryUnavailable,
			fmt.Sprintf("GET %s failed after %d attempt(s)", url, attempts))
	}
	return dErrors.Wrap(fe, dErrors.CodeRegistryResponse, fmt.Sprintf("GET %s", url))
}
