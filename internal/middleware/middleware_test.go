package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FieldAtlas/FA-Backend/internal/middleware"
)

// callWithOrigin wraps a simple 200-OK inner handler in the CORS middleware,
// optionally setting the Origin header, and returns the recorded response.
func callWithOrigin(t *testing.T, allowed map[string]struct{}, method, origin string) *httptest.ResponseRecorder {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.CORS(allowed)(inner)
	req := httptest.NewRequest(method, "/test", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// TestCORS_AllowedOrigin verifies that an allow-listed origin is echoed back.
func TestCORS_AllowedOrigin(t *testing.T) {
	allowed := map[string]struct{}{"https://atlas.example.com": {}}

	rec := callWithOrigin(t, allowed, http.MethodGet, "https://atlas.example.com")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://atlas.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q", got)
	}
}

// TestCORS_UnknownOrigin verifies that an unknown origin gets no CORS grant
// but the request itself still goes through.
func TestCORS_UnknownOrigin(t *testing.T) {
	allowed := map[string]struct{}{"https://atlas.example.com": {}}

	rec := callWithOrigin(t, allowed, http.MethodGet, "https://evil.example.com")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Access-Control-Allow-Origin %q", got)
	}
}

// TestCORS_Preflight verifies that OPTIONS requests short-circuit with 204.
func TestCORS_Preflight(t *testing.T) {
	allowed := map[string]struct{}{"https://atlas.example.com": {}}

	rec := callWithOrigin(t, allowed, http.MethodOptions, "https://atlas.example.com")

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

// TestAllowedOrigins_FromEnv verifies parsing of the comma-separated list.
func TestAllowedOrigins_FromEnv(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " https://a.example.com , https://b.example.com/ ")

	allowed := middleware.AllowedOrigins()
	if _, ok := allowed["https://a.example.com"]; !ok {
		t.Error("missing https://a.example.com")
	}
	if _, ok := allowed["https://b.example.com"]; !ok {
		t.Error("missing https://b.example.com (trailing slash should be trimmed)")
	}
	if len(allowed) != 2 {
		t.Errorf("allowed = %v", allowed)
	}
}

func TestAllowedOrigins_Defaults(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "")

	allowed := middleware.AllowedOrigins()
	if _, ok := allowed["http://localhost:5173"]; !ok {
		t.Errorf("expected local dev origin in defaults, got %v", allowed)
	}
}
