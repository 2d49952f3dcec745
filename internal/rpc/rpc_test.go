package rpc

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestClient points a client at an httptest server over plain tcp
func newTestClient(server *httptest.Server) HTTPClient {
	config := &HTTPConfig{
		Address: strings.TrimPrefix(server.URL, "http://"),
		Network: "tcp",
		Timeout: 5 * time.Second,
		BaseURL: "http://localhost",
	}
	return NewHTTPClient(config)
}

/**
 * Test URL construction with query parameters
 * @param {*testing.T} t - Testing framework instance
 * @description Parameters must land in the query string; the path must stay
 * a path, with no escaped separators
 */
func TestBuildURLWithParams(t *testing.T) {
	url, err := buildURL("http://localhost", "/workshop/api/v1/services/db/wait",
		map[string]interface{}{"timeout": 30})
	if err != nil {
		t.Fatalf("buildURL failed: %v", err)
	}
	if url != "http://localhost/workshop/api/v1/services/db/wait?timeout=30" {
		t.Errorf("unexpected URL: %s", url)
	}
	if strings.Contains(url, "%3F") {
		t.Errorf("query separator escaped into the path: %s", url)
	}
}

/**
 * Test that POST query parameters reach the server
 * @param {*testing.T} t - Testing framework instance
 * @description The route path must match exactly and the parameter must be
 * readable from the query, not swallowed into the path
 */
func TestPostCarriesQueryParams(t *testing.T) {
	var gotPath, gotTimeout string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTimeout = r.URL.Query().Get("timeout")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server)
	defer client.Close()

	resp, err := client.Post("/workshop/api/v1/services/db/wait",
		map[string]interface{}{"timeout": 30}, nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if gotPath != "/workshop/api/v1/services/db/wait" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotTimeout != "30" {
		t.Errorf("timeout parameter did not arrive, got %q", gotTimeout)
	}
}

func TestPostWithoutParams(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server)
	defer client.Close()

	if _, err := client.Post("/workshop/api/v1/check", nil, nil); err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if gotPath != "/workshop/api/v1/check" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotQuery != "" {
		t.Errorf("unexpected query: %s", gotQuery)
	}
}
