package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler(t *testing.T) {
	ok := PingerFunc(func(ctx context.Context) error { return nil })
	down := PingerFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name     string
		postgres Pinger
		redis    Pinger
		wantCode int
	}{
		{"all healthy", ok, ok, http.StatusOK},
		{"no redis configured", ok, nil, http.StatusOK},
		{"postgres down", down, ok, http.StatusServiceUnavailable},
		{"redis down", ok, down, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.postgres, tt.redis)

			rec := httptest.NewRecorder()
			h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}

			rec = httptest.NewRecorder()
			h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("liveness must not depend on dependencies, got %d", rec.Code)
			}
		})
	}
}
