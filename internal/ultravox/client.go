// Package ultravox creates live voice-AI sessions for inbound calls.
package ultravox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ent0n29/callbridge/internal/agent"
)

const (
	DefaultAPIURL = "https://api.ultravox.ai/api/calls"

	// DefaultTimeout is the upper bound for one session-creation round trip.
	// Callers usually impose a tighter deadline through ctx.
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 1 << 20
	maxErrorExcerpt  = 4 << 10
)

var (
	ErrMalformedResponse = errors.New("malformed session response")
	ErrMissingJoinURL    = errors.New("session response missing joinUrl")
)

// StatusError reports a non-2xx answer from the session-creation endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ultravox http status %d: %s", e.StatusCode, e.Body)
}

// SessionHandle is what a successful session-creation call yields.
type SessionHandle struct {
	JoinURL string
	CallID  string
}

type Config struct {
	APIURL     string
	APIKey     string
	HTTPClient *http.Client
}

// Client performs single-attempt session-creation calls. It holds no
// per-call state and is safe for concurrent use.
type Client struct {
	url    string
	apiKey string
	client *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("ultravox api key is required")
	}
	url := strings.TrimSpace(cfg.APIURL)
	if url == "" {
		url = DefaultAPIURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DisableKeepAlives = true
		httpClient = &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		}
	}
	return &Client{
		url:    url,
		apiKey: apiKey,
		client: httpClient,
	}, nil
}

func (c *Client) URL() string { return c.url }

// CreateCall submits cfg once and returns the session's join URL. It never
// retries; every failure is returned to the caller.
func (c *Client) CreateCall(ctx context.Context, cfg agent.SessionConfig) (SessionHandle, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return SessionHandle{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return SessionHandle{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return SessionHandle{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorExcerpt))
		return SessionHandle{}, &StatusError{
			StatusCode: res.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return SessionHandle{}, fmt.Errorf("read response: %w", err)
	}
	return parseSession(body)
}

func parseSession(body []byte) (SessionHandle, error) {
	var out struct {
		CallID  string `json:"callId"`
		JoinURL string `json:"joinUrl"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return SessionHandle{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	joinURL := strings.TrimSpace(out.JoinURL)
	if joinURL == "" {
		return SessionHandle{}, ErrMissingJoinURL
	}
	return SessionHandle{JoinURL: joinURL, CallID: out.CallID}, nil
}
