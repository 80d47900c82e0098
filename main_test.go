package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"oxforecast/internal/config"
	"oxforecast/internal/server"
)

func TestHealthEndpointMockupMode(t *testing.T) {
	cfg := &config.Config{
		Port:         "8080",
		APIBaseURL:   "http://127.0.0.1:1",
		Region:       "kanagawa",
		DisplayTZ:    "Asia/Tokyo",
		Latitude:     35.4478,
		Longitude:    139.6425,
		ThresholdPPB: 120,
		ChartVariant: "rich",
		OutputDir:    t.TempDir(),
		MockupMode:   true,
		MocksDir:     "internal/mocks",
		Environment:  "test",
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	defer srv.Close()

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), `"status":"healthy"`) {
		t.Errorf("handler returned unexpected body: got %v", rr.Body.String())
	}
}

func TestChartFromFixtures(t *testing.T) {
	cfg := &config.Config{
		Port:         "8080",
		Region:       "kanagawa",
		DisplayTZ:    "Asia/Tokyo",
		Latitude:     35.4478,
		Longitude:    139.6425,
		ThresholdPPB: 120,
		ChartVariant: "simple",
		OutputDir:    t.TempDir(),
		MockupMode:   true,
		MocksDir:     "internal/mocks",
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	defer srv.Close()

	for _, path := range []string{"/chart", "/chart.png", "/chart.json?variant=rich", "/ptable?a=120&b=1"} {
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s: got status %d, body %s", path, rr.Code, rr.Body.String())
		}
	}

	// Without an upstream there is nothing to proxy.
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/ox/v0a/kanagawa", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("GET /api/...: got status %d, want %d", rr.Code, http.StatusNotFound)
	}
}
