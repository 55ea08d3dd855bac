package reliability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/ent0n29/callbridge/internal/ultravox"
)

func TestIsRetryableHTTPStatus(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tc := range cases {
		got := IsRetryableHTTPStatus(tc.code)
		if got != tc.want {
			t.Fatalf("IsRetryableHTTPStatus(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	refused := &url.Error{Op: "Post", URL: "https://x", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}
	cases := []struct {
		name      string
		err       error
		kind      FailureKind
		transient bool
	}{
		{"status 503", &ultravox.StatusError{StatusCode: 503}, FailureUpstreamStatus, true},
		{"status 400", &ultravox.StatusError{StatusCode: 400}, FailureUpstreamStatus, false},
		{"missing join url", ultravox.ErrMissingJoinURL, FailureUpstreamBody, false},
		{"malformed", fmt.Errorf("%w: bad", ultravox.ErrMalformedResponse), FailureUpstreamBody, false},
		{"deadline", fmt.Errorf("send request: %w", context.DeadlineExceeded), FailureTimeout, true},
		{"canceled", fmt.Errorf("send request: %w", context.Canceled), FailureCanceled, false},
		{"net timeout", &url.Error{Op: "Post", URL: "https://x", Err: timeoutErr{}}, FailureTimeout, true},
		{"refused", fmt.Errorf("send request: %w", refused), FailureTransport, true},
		{"other", errors.New("boom"), FailureInternal, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.kind {
				t.Fatalf("Classify() = %q, want %q", got, tc.kind)
			}
			if got := IsTransient(tc.err); got != tc.transient {
				t.Fatalf("IsTransient() = %v, want %v", got, tc.transient)
			}
		})
	}
}
