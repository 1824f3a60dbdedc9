package stash

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/stashmetrics/stash-exporter/internal/config"
)

// UpstreamError marks any failure to reach the Stash API or to obtain a
// well-formed, error-free response from it. The orchestrator treats it as
// "the source is down for this cycle"; any other error is a defect.
type UpstreamError struct {
	Op  string // the operation that failed, e.g. "stats query"
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("stash: %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// upstreamErrf wraps err as an *UpstreamError for the named operation.
func upstreamErrf(op string, format string, args ...any) error {
	return &UpstreamError{Op: op, Err: fmt.Errorf(format, args...)}
}

// Executor is the transport contract the Fetcher depends on: run one GraphQL
// query and return the raw "data" payload. Abstracted so tests can inject a
// canned responder without an HTTP server.
type Executor interface {
	Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error)
}

// Client is the GraphQL-over-HTTP transport to a single Stash instance.
// It is safe for concurrent use; the underlying http.Client is built once.
type Client struct {
	url    string
	client *http.Client
}

// NewClient builds a Client for the configured Stash endpoint. The ApiKey
// header and TLS options are wired into the transport so every request
// carries them.
func NewClient(cfg config.StashConfig) *Client {
	transport := &authRoundTripper{
		base: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
			},
		},
		apiKey: cfg.APIKey(),
	}
	return &Client{
		url: cfg.URL,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

// authRoundTripper injects the Stash ApiKey header into every outgoing
// request when a key is configured.
type authRoundTripper struct {
	base   http.RoundTripper
	apiKey string
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.apiKey != "" {
		req = req.Clone(req.Context())
		req.Header.Set("ApiKey", t.apiKey)
	}
	return t.base.RoundTrip(req)
}

// graphqlRequest is the standard GraphQL POST body.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse is the standard GraphQL envelope. A response with a
// non-empty Errors list is a failed query even when Data is present.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute POSTs query with variables and returns the "data" payload.
// Network failures, non-2xx statuses, malformed JSON and GraphQL-level
// errors all come back as *UpstreamError.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		// Variables are plain ints/strings; this cannot fail at runtime.
		return nil, fmt.Errorf("stash: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("stash: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: "graphql post", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamErrf("graphql post", "unexpected status %d", resp.StatusCode)
	}

	var envelope graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &UpstreamError{Op: "decode response", Err: err}
	}
	if len(envelope.Errors) > 0 {
		return nil, upstreamErrf("graphql query", "server returned %d errors, first: %s",
			len(envelope.Errors), envelope.Errors[0].Message)
	}
	return envelope.Data, nil
}
