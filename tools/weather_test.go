package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alfredlabs/alfred/core"
)

func TestMETARToolPerStationResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("dataSource") != "metars" {
			t.Errorf("dataSource = %q", q.Get("dataSource"))
		}
		if q.Get("hoursBeforeNow") != "2" {
			t.Errorf("hoursBeforeNow = %q", q.Get("hoursBeforeNow"))
		}
		switch q.Get("stationString") {
		case "KJFK":
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		case "KDCA":
			w.Write([]byte("<METAR>KDCA 281651Z</METAR>"))
		default:
			t.Errorf("unexpected station %q", q.Get("stationString"))
		}
	}))
	defer srv.Close()

	tool := NewMETARTool(NewWeatherClientWithEndpoint(srv.URL))
	result, err := tool.Execute(context.Background(), &core.ToolParams{
		Input: json.RawMessage(`{"stations": ["KJFK", "KDCA"], "hours_before_now": 2}`),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal([]byte(result.Content), &got); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if got["KJFK"] != "Error: HTTP 503" {
		t.Errorf("KJFK = %q, want Error: HTTP 503", got["KJFK"])
	}
	if !strings.Contains(got["KDCA"], "KDCA 281651Z") {
		t.Errorf("KDCA = %q", got["KDCA"])
	}
}

func TestTAFToolDefaultsHours(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("dataSource") != "tafs" {
			t.Errorf("dataSource = %q", q.Get("dataSource"))
		}
		if q.Get("hoursBeforeNow") != "1" {
			t.Errorf("hoursBeforeNow = %q, want default 1", q.Get("hoursBeforeNow"))
		}
		w.Write([]byte("<TAF/>"))
	}))
	defer srv.Close()

	tool := NewTAFTool(NewWeatherClientWithEndpoint(srv.URL))
	result, err := tool.Execute(context.Background(), &core.ToolParams{
		Input: json.RawMessage(`{"stations": ["KJFK"]}`),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(result.Content), &got); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if got["KJFK"] != "<TAF/>" {
		t.Errorf("KJFK = %q", got["KJFK"])
	}
}

func TestWeatherClientNetworkError(t *testing.T) {
	// Closed server: the request error lands in the station's result.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewWeatherClientWithEndpoint(srv.URL)
	results := c.fetch(context.Background(), "metars", []string{"KJFK"}, 1)
	if !strings.HasPrefix(results["KJFK"], "Error:") {
		t.Errorf("KJFK = %q, want Error prefix", results["KJFK"])
	}
}
