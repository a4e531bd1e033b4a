package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playperu/pinpoint/internal/handler/health"
)

type mockChecker struct{ err error }

func (m mockChecker) Check(_ context.Context) error { return m.err }

func TestHandler(t *testing.T) {
	tests := []struct {
		name        string
		checks      map[string]health.Checker
		wantStatus  int
		wantOverall string
		wantChecks  map[string]string
	}{
		{
			name: "healthy",
			checks: map[string]health.Checker{
				"sqlite": mockChecker{},
			},
			wantStatus:  http.StatusOK,
			wantOverall: "ok",
			wantChecks:  map[string]string{"sqlite": "ok"},
		},
		{
			name: "sqlite down",
			checks: map[string]health.Checker{
				"sqlite": mockChecker{err: errors.New("locked")},
			},
			wantStatus:  http.StatusServiceUnavailable,
			wantOverall: "degraded",
			wantChecks:  map[string]string{"sqlite": "error"},
		},
		{
			name: "func checker",
			checks: map[string]health.Checker{
				"sqlite": health.CheckerFunc(func(context.Context) error { return nil }),
				"disk":   health.CheckerFunc(func(context.Context) error { return errors.New("full") }),
			},
			wantStatus:  http.StatusServiceUnavailable,
			wantOverall: "degraded",
			wantChecks:  map[string]string{"sqlite": "ok", "disk": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gauges := map[string]health.Gauge{"sessions": func() int { return 3 }}
			h := health.NewHandler(slog.Default(), tt.checks, gauges)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body health.Response
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}

			if body.Status != tt.wantOverall {
				t.Errorf("overall status = %q, want %q", body.Status, tt.wantOverall)
			}
			for name, want := range tt.wantChecks {
				if got := body.Checks[name].Status; got != want {
					t.Errorf("%s status = %q, want %q", name, got, want)
				}
			}
			if got := body.Gauges["sessions"]; got != 3 {
				t.Errorf("sessions gauge = %d, want 3", got)
			}
		})
	}
}
