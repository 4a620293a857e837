package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockDB struct {
	pingFunc func(ctx context.Context) error
}

func (m *mockDB) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		ping       func(ctx context.Context) error
		wantCode   int
		wantStatus string
	}{
		{"store reachable", nil, http.StatusOK, "ok"},
		{
			name:       "ping fails",
			ping:       func(ctx context.Context) error { return errors.New("connection refused") },
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
		},
		{
			name: "ping bounded by deadline",
			ping: func(ctx context.Context) error {
				if _, ok := ctx.Deadline(); !ok {
					return errors.New("no deadline")
				}
				return nil
			},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&mockDB{pingFunc: tt.ping}, "http://localhost:5173")
			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest("GET", "/api/health", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var resp healthResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("expected status=%s, got %q", tt.wantStatus, resp.Status)
			}
			if _, err := time.Parse(time.RFC3339Nano, resp.Timestamp); err != nil {
				t.Errorf("timestamp %q is not RFC3339: %v", resp.Timestamp, err)
			}
			if resp.Message == "connection refused" {
				t.Error("ping error must not leak to clients")
			}
		})
	}
}
