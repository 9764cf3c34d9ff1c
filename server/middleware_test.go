package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/giygas/telehealth-api/metrics"
)

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		path         string
		expectedCost int64
	}{
		{"metrics endpoint", http.MethodGet, "/metrics", 0},
		{"health endpoint", http.MethodGet, "/health", 5},
		{"appointment export", http.MethodGet, "/dashboard/appointments/export", 200},
		{"diagnosis lookup", http.MethodPost, "/diagnosis", 20},
		{"risk assessment", http.MethodPost, "/risk/assess", 20},
		{"new session", http.MethodPost, "/sessions", 50},
		{"start call", http.MethodPost, "/calls", 100},
		{"call info", http.MethodGet, "/calls/abc", 10},
		{"dashboard counts", http.MethodGet, "/dashboard/counts", 20},
		{"status change", http.MethodPost, "/dashboard/appointments/apt-1/status", 20},
		{"cart", http.MethodGet, "/cart", 10},
		{"unknown path", http.MethodGet, "/nope", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if got := getTokenCost(req); got != tt.expectedCost {
				t.Errorf("getTokenCost(%s %s) = %d, want %d", tt.method, tt.path, got, tt.expectedCost)
			}
		})
	}
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRateLimitHandlerHeaders(t *testing.T) {
	rl := NewRateLimiter()
	handler := rl.Handler(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "1000" {
		t.Errorf("X-RateLimit-Limit = %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Remaining"); got != "995" {
		t.Errorf("X-RateLimit-Remaining = %q, want 995", got)
	}
}

func TestRateLimitHandlerExhaustsBucket(t *testing.T) {
	rl := NewRateLimiter()
	handler := rl.Handler(http.HandlerFunc(okHandler))

	// five exports drain the 1000 token bucket
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/appointments/export", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard/appointments/export", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" || rr.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("Unexpected headers %v", rr.Header())
	}

	// other clients keep their own budget
	req = httptest.NewRequest(http.MethodGet, "/dashboard/appointments/export", nil)
	req.RemoteAddr = "10.0.0.3:1234"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Other client: expected 200, got %d", rr.Code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter()
	handler := rl.Handler(http.HandlerFunc(okHandler))

	for _, path := range []string{"/metrics", "/cart"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.1.0.1:1" + path
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	if rl.Clients() != 2 {
		t.Fatalf("Expected 2 buckets, got %d", rl.Clients())
	}
	if got := testutil.ToFloat64(metrics.RateLimiterBucketsTotal); got != 2 {
		t.Errorf("Buckets gauge = %v, want 2", got)
	}

	// only the free /metrics call left its bucket full
	if removed := rl.Cleanup(); removed != 1 {
		t.Errorf("Expected 1 bucket removed, got %d", removed)
	}
	if rl.Clients() != 1 {
		t.Errorf("Expected 1 bucket left, got %d", rl.Clients())
	}
	if got := testutil.ToFloat64(metrics.RateLimiterBucketsTotal); got != 1 {
		t.Errorf("Buckets gauge = %v, want 1", got)
	}

	rl.Stop()
	rl.Stop()
}
