package reliability

import (
	"context"
	"errors"
	"net"

	"github.com/ent0n29/callbridge/internal/ultravox"
)

// FailureKind labels why a session-creation attempt failed.
type FailureKind string

const (
	FailureTransport      FailureKind = "transport"
	FailureTimeout        FailureKind = "timeout"
	FailureCanceled       FailureKind = "canceled"
	FailureUpstreamStatus FailureKind = "upstream_status"
	FailureUpstreamBody   FailureKind = "upstream_body"
	FailureInternal       FailureKind = "internal"
)

// IsRetryableHTTPStatus classifies retryable HTTP status codes.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// Classify maps a session client error to its failure kind.
func Classify(err error) FailureKind {
	var statusErr *ultravox.StatusError
	var netErr net.Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return FailureUpstreamStatus
	case errors.Is(err, ultravox.ErrMalformedResponse), errors.Is(err, ultravox.ErrMissingJoinURL):
		return FailureUpstreamBody
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return FailureTimeout
		}
		return FailureTransport
	default:
		return FailureInternal
	}
}

// IsTransient reports whether a later attempt could plausibly succeed. No
// attempt is repeated here; the value only annotates failure logs.
func IsTransient(err error) bool {
	var statusErr *ultravox.StatusError
	if errors.As(err, &statusErr) {
		return IsRetryableHTTPStatus(statusErr.StatusCode)
	}
	switch Classify(err) {
	case FailureTransport, FailureTimeout:
		return true
	default:
		return false
	}
}
