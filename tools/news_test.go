package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alfredlabs/alfred/core"
)

func TestNewsToolPassesFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("apikey") != "test-key" {
			t.Errorf("apikey = %q", q.Get("apikey"))
		}
		if q.Get("q") != "aviation" {
			t.Errorf("q = %q", q.Get("q"))
		}
		if q.Get("language") != "en" {
			t.Errorf("language = %q, want default en", q.Get("language"))
		}
		if q.Get("category") != "technology" {
			t.Errorf("category = %q", q.Get("category"))
		}
		if q.Has("country") {
			t.Error("country should be omitted when empty")
		}
		w.Write([]byte(`{"status":"success","results":[]}`))
	}))
	defer srv.Close()

	tool := NewNewsTool(NewNewsClientWithEndpoint("test-key", srv.URL))
	result, err := tool.Execute(context.Background(), &core.ToolParams{
		Input: json.RawMessage(`{"query": "aviation", "category": "technology"}`),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Content != `{"status":"success","results":[]}` {
		t.Errorf("content = %q", result.Content)
	}
}

func TestNewsToolHTTPErrorDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	tool := NewNewsTool(NewNewsClientWithEndpoint("bad-key", srv.URL))
	result, err := tool.Execute(context.Background(), &core.ToolParams{
		Input: json.RawMessage(`{"query": "aviation"}`),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal([]byte(result.Content), &got); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if got["error"] != "HTTP Error: 401" {
		t.Errorf("error = %q", got["error"])
	}
}
