package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/CodeX93/freshbox-backend/internal/coverage"
	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestCoverageCheck(t *testing.T) {
	handler := CoverageCheck(coverage.NewMatcher([]string{"SW1", "N1"}), testLogger())

	tests := []struct {
		name     string
		postcode string
		covered  bool
	}{
		{"covered with space", "SW1A 1AA", true},
		{"covered lowercase", "n1 6xe", true},
		{"outside area", "M1 1AE", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/coverage?postcode="+url.QueryEscape(tt.postcode), nil)
			resp := httptest.NewRecorder()
			handler(resp, req)

			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.Code)
			}
			var envelope struct {
				Data struct {
					Postcode string `json:"postcode"`
					Covered  bool   `json:"covered"`
				} `json:"data"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if envelope.Data.Covered != tt.covered {
				t.Fatalf("expected covered=%v for %s", tt.covered, tt.postcode)
			}
		})
	}
}

func TestCoverageCheckRequiresPostcode(t *testing.T) {
	handler := CoverageCheck(coverage.NewMatcher([]string{"SW1"}), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/coverage", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
}
