package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/giygas/telehealth-api/config"
)

func TestRealIPMiddleware_SingleIP(t *testing.T) {
	var seen string
	handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "203.0.113.7" {
		t.Errorf("Expected 203.0.113.7, got %s", seen)
	}
}

func TestRealIPMiddleware_FirstOfList(t *testing.T) {
	var seen string
	handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", " 198.51.100.1 , 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "198.51.100.1" {
		t.Errorf("Expected 198.51.100.1, got %s", seen)
	}
}

func TestRealIPMiddleware_WithoutXForwardedFor(t *testing.T) {
	var seen string
	handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.10:5555"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "192.168.1.10:5555" {
		t.Errorf("RemoteAddr should be unchanged, got %s", seen)
	}
}

func sizeLimited(maxBody, maxHeader int64) http.Handler {
	cfg := config.Config{MaxRequestBody: maxBody, MaxHeaderSize: maxHeader}
	return RequestSizeMiddleware(&cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequestSizeMiddleware_ExceedsMaxSize(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.ContentLength = 2_000_000

	rr := httptest.NewRecorder()
	sizeLimited(1024*1024, 1024*1024).ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413 for large Content-Length, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Maximum allowed size is 1048576 bytes") {
		t.Errorf("Unexpected body %s", rr.Body.String())
	}
}

func TestRequestSizeMiddleware_ExactlyMaxSize(t *testing.T) {
	body := strings.Repeat("a", 64)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	rr := httptest.NewRecorder()
	sizeLimited(64, 1024).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status OK at exact max size, got %d", rr.Code)
	}
}

func TestRequestSizeMiddleware_UndeclaredBodyIsCapped(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 100)))
	req.ContentLength = -1

	rr := httptest.NewRecorder()
	sizeLimited(64, 1024).ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected the read to fail past the limit, got %d", rr.Code)
	}
}

func TestRequestSizeMiddleware_NoBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rr := httptest.NewRecorder()
	sizeLimited(1024, 1024).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status OK without a body, got %d", rr.Code)
	}
}

func TestRequestSizeMiddleware_HeadersTooLarge(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Padding", strings.Repeat("x", 200))

	rr := httptest.NewRecorder()
	sizeLimited(1024, 100).ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestHeaderFieldsTooLarge {
		t.Errorf("Expected 431, got %d", rr.Code)
	}
}
