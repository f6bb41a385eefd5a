package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CodeX93/freshbox-backend/internal/cart"
	"github.com/CodeX93/freshbox-backend/internal/coverage"
	"github.com/CodeX93/freshbox-backend/internal/schedule"
	"github.com/CodeX93/freshbox-backend/pkg/config"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
)

// Exercises the public read-only routes; the checkout and order routes
// need live redis/database clients and are covered by their service tests.
func TestRouterPublicRoutes(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	router := NewRouter(
		cfg,
		logg,
		nil,
		nil,
		coverage.NewMatcher([]string{"SW1", "N1"}),
		cart.NewCatalog(),
		schedule.NewAllocator(1, 2),
		nil,
		nil,
		nil,
		nil,
	)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"liveness", "/health/live", http.StatusOK},
		{"coverage", "/api/v1/coverage?postcode=SW1A+1AA", http.StatusOK},
		{"coverage without postcode", "/api/v1/coverage", http.StatusBadRequest},
		{"services", "/api/v1/services", http.StatusOK},
		{"schedule dates", "/api/v1/schedule/dates", http.StatusOK},
		{"schedule slots", "/api/v1/schedule/slots", http.StatusOK},
		{"unknown route", "/api/v1/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tt.status {
				t.Fatalf("%s: expected %d, got %d", tt.path, tt.status, resp.Code)
			}
		})
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	router := NewRouter(cfg, logg, nil, nil,
		coverage.NewMatcher(nil), cart.NewCatalog(), schedule.NewAllocator(1, 2),
		nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header to be set")
	}
}
