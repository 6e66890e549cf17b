package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AndreiTelteu/team-status/internal/middleware"
	"github.com/AndreiTelteu/team-status/internal/model"
)

// mockHealthChecker はHealthCheckerのモック実装。
type mockHealthChecker struct {
	pingFn func(ctx context.Context) error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func newTestRouter(t *testing.T, checker HealthChecker) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(300))
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		Logger:            discardLogger(),
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		HealthChecker:     checker,
		MetricsHandler:    http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
		WSHandler:         http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
		EmployeeStore:     &mockEmployeeStore{},
		ClientStore:       &mockClientStore{},
		LeaveStore:        &mockLeaveStore{},
		OfferStore:        &mockOfferStore{},
		StatusCache:       &stubSnapshotter{statuses: model.StatusMap{}},
	})
}

func TestRouter_Health_OK(t *testing.T) {
	router := newTestRouter(t, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestRouter_Health_DBUnavailable(t *testing.T) {
	checker := &mockHealthChecker{
		pingFn: func(ctx context.Context) error { return errors.New("connection refused") },
	}
	router := newTestRouter(t, checker)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}

func TestRouter_RoutesEmployeeAPI(t *testing.T) {
	router := newTestRouter(t, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestRouter_RoutesExportCSV(t *testing.T) {
	router := newTestRouter(t, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/export/statuses.csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodOptions, "/api/employees", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected CORS origin header, got %q", got)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}
