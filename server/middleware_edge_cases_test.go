package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pharmalytics/drugcost-api/config"
)

// ============================================================================
// EDGE CASE TESTS FOR MIDDLEWARE
// ============================================================================

func sizeLimitConfig() *config.Config {
	return &config.Config{
		MaxRequestBody: 1024,
		MaxHeaderSize:  1024,
	}
}

func TestRealIPMiddleware_SingleIP(t *testing.T) {
	// X-Forwarded-For with a single IP and no comma
	var seen string
	handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.1")
	req.RemoteAddr = "192.168.1.1:12345"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "203.0.113.1" {
		t.Errorf("Expected 203.0.113.1, got %q", seen)
	}
}

func TestBlockDirectAccess_RemoteAddrWithoutPort(t *testing.T) {
	// SplitHostPort fails on a bare host, the whole value is used as host
	handler := BlockDirectAccessMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "localhost"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected bare localhost allowed, got %d", rr.Code)
	}
}

func TestRequestSizeMiddleware_BodyTooLarge(t *testing.T) {
	handler := RequestSizeMiddleware(sizeLimitConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not run for an oversized body")
	}))

	req := httptest.NewRequest("POST", "/api/add-drug", strings.NewReader("{}"))
	req.Header.Set("Content-Length", "2048")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected status 413, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Request body too large") {
		t.Errorf("Expected a body-size error, got %s", rr.Body.String())
	}
}

func TestRequestSizeMiddleware_HeadersTooLarge(t *testing.T) {
	handler := RequestSizeMiddleware(sizeLimitConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not run for oversized headers")
	}))

	req := httptest.NewRequest("GET", "/api/drugs", nil)
	req.Header.Set("X-Big-Header", strings.Repeat("a", 2048))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestHeaderFieldsTooLarge {
		t.Fatalf("Expected status 431, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Request headers too large") {
		t.Errorf("Expected a header-size error, got %s", rr.Body.String())
	}
}

func TestRequestSizeMiddleware_WithinLimits(t *testing.T) {
	called := false
	handler := RequestSizeMiddleware(sizeLimitConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/add-drug", strings.NewReader(`{"drug_name":"x"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !called {
		t.Error("Handler should run for a small request")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestRequestSizeMiddleware_NonNumericContentLength(t *testing.T) {
	// An unparseable Content-Length skips the early check, the body cap
	// still protects the read path
	called := false
	handler := RequestSizeMiddleware(sizeLimitConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("POST", "/api/add-drug", strings.NewReader("{}"))
	req.Header.Set("Content-Length", "not-a-number")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("Handler should run when the header cannot be parsed")
	}
}

func TestRequestSizeMiddleware_CapsBodyReader(t *testing.T) {
	// Content-Length can lie, the reader itself is capped
	var readErr error
	handler := RequestSizeMiddleware(sizeLimitConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest("POST", "/api/add-drug", strings.NewReader(strings.Repeat("x", 4096)))
	req.Header.Del("Content-Length")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if readErr == nil {
		t.Error("Expected the capped reader to reject the oversized body")
	}
}
