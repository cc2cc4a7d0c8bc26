package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDoRequest(t *testing.T) {
	var gotAuth, gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"consistent":true}`))
	}))
	defer srv.Close()

	origURL, origToken, origTimeout := baseURL, token, timeout
	defer func() { baseURL, token, timeout = origURL, origToken, origTimeout }()

	baseURL = srv.URL
	token = "test-token"
	timeout = 5 * time.Second

	result := doRequest(http.MethodGet, "/api/v1/reports/consistency", "")

	if gotMethod != http.MethodGet || gotPath != "/api/v1/reports/consistency" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("expected bearer token header, got %q", gotAuth)
	}
	if consistent, ok := result["consistent"].(bool); !ok || !consistent {
		t.Fatalf("unexpected result %v", result)
	}
}
