package stash

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stashmetrics/stash-exporter/internal/config"
)

// newTestClient points a Client at the given test server.
func newTestClient(srv *httptest.Server, keyEnv string) *Client {
	return NewClient(config.StashConfig{
		URL:       srv.URL,
		APIKeyEnv: keyEnv,
		Timeout:   5 * time.Second,
	})
}

func TestExecute_ReturnsData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"stats": {"scene_count": 42}}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, "")
	data, err := c.Execute(context.Background(), libraryStatsQuery, nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if string(data) != `{"stats": {"scene_count": 42}}` {
		t.Errorf("data = %s", data)
	}
}

func TestExecute_SendsAPIKeyHeader(t *testing.T) {
	t.Setenv("TEST_STASH_KEY", "abc123")

	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("ApiKey")
		_, _ = w.Write([]byte(`{"data": {}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, "TEST_STASH_KEY")
	if _, err := c.Execute(context.Background(), libraryStatsQuery, nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if gotKey != "abc123" {
		t.Errorf("ApiKey header = %q, want abc123", gotKey)
	}
}

func TestExecute_GraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": null, "errors": [{"message": "field not found"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, "")
	_, err := c.Execute(context.Background(), libraryStatsQuery, nil)
	if err == nil {
		t.Fatal("Execute() expected error for GraphQL errors array")
	}
	if !IsUpstream(err) {
		t.Errorf("error %v should be classified as upstream", err)
	}
}

func TestExecute_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv, "")
	_, err := c.Execute(context.Background(), libraryStatsQuery, nil)
	if err == nil {
		t.Fatal("Execute() expected error for 500 status")
	}
	if !IsUpstream(err) {
		t.Errorf("error %v should be classified as upstream", err)
	}
}

func TestExecute_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": `))
	}))
	defer srv.Close()

	c := newTestClient(srv, "")
	_, err := c.Execute(context.Background(), libraryStatsQuery, nil)
	if err == nil {
		t.Fatal("Execute() expected error for truncated body")
	}
	if !IsUpstream(err) {
		t.Errorf("error %v should be classified as upstream", err)
	}
}

func TestExecute_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // shut down before use

	c := newTestClient(srv, "")
	_, err := c.Execute(context.Background(), libraryStatsQuery, nil)
	if err == nil {
		t.Fatal("Execute() expected error against closed server")
	}
	if !IsUpstream(err) {
		t.Errorf("error %v should be classified as upstream", err)
	}
}
