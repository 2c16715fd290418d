package momo

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	ErrCodeRejected        = "GATEWAY_REJECTED"
	ErrCodeTimeout         = "GATEWAY_TIMEOUT"
	ErrCodeUnavailable     = "GATEWAY_UNAVAILABLE"
	ErrCodeInvalidResponse = "GATEWAY_INVALID_RESPONSE"
)

var (
	// ErrRejected means the provider declined the payout synchronously. The
	// order was never accepted, so no money moved and none ever will for
	// this reference.
	ErrRejected = errors.New(ErrCodeRejected)

	// ErrTimeout and ErrUnavailable are ambiguous outcomes: the provider may
	// or may not have received the order. Callers must not treat them as
	// either success or definitive failure.
	ErrTimeout     = errors.New(ErrCodeTimeout)
	ErrUnavailable = errors.New(ErrCodeUnavailable)

	// ErrInvalidResponse covers a 2xx whose body does not parse as the
	// expected JSON, e.g. an HTML error page from a misrouted endpoint.
	ErrInvalidResponse = errors.New(ErrCodeInvalidResponse)
)

// RejectionError wraps ErrRejected with the provider's own code and message.
type RejectionError struct {
	StatusCode      int
	ProviderCode    string
	ProviderMessage string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrCodeRejected, e.ProviderMessage, e.ProviderCode)
}

func (e *RejectionError) Unwrap() error {
	return ErrRejected
}

var notFoundCodes = map[string]bool{
	"RESOURCE_NOT_FOUND": true,
	"NOT_FOUND":          true,
	"HTTP_404":           true,
}

// IsNotFound reports whether the provider explicitly stated it has no record
// of the referenced order. Only that signal means the payout definitively
// does not exist; any other client error (bad credentials, throttling) says
// nothing about the order itself.
func IsNotFound(err error) bool {
	var rejection *RejectionError
	if !errors.As(err, &rejection) {
		return false
	}

	return rejection.StatusCode == http.StatusNotFound || notFoundCodes[rejection.ProviderCode]
}
