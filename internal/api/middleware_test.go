package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimingMiddlewareSetsHeader(t *testing.T) {
	h := TimingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Process-Time") == "" {
		t.Fatal("X-Process-Time header missing")
	}
}

func TestRateLimitMiddlewareRejectsBurst(t *testing.T) {
	mw := RateLimitMiddleware(4, time.Minute) // burst of 2
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var limited bool
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			if got := rec.Header().Get("Retry-After"); got != "60" {
				t.Fatalf("Retry-After = %q, want window seconds", got)
			}
			limited = true
		}
	}
	if !limited {
		t.Fatal("burst was never limited")
	}
}

func TestRateLimitMiddlewareIsolatesClients(t *testing.T) {
	mw := RateLimitMiddleware(2, time.Minute)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Exhaust the first client's bucket.
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("second client rejected: %d", rec.Code)
	}
}

func TestClientLimitersEvictIdle(t *testing.T) {
	cl := newClientLimiters(10, time.Minute)
	cl.allow("10.0.0.1")
	cl.allow("10.0.0.2")

	// The first client goes idle past the threshold; the second stays fresh.
	cl.mu.Lock()
	cl.clients["10.0.0.1"].lastSeen = time.Now().Add(-4 * time.Minute)
	cl.mu.Unlock()

	cl.evictIdle(time.Now())

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if _, ok := cl.clients["10.0.0.1"]; ok {
		t.Fatal("idle client not evicted")
	}
	if _, ok := cl.clients["10.0.0.2"]; !ok {
		t.Fatal("active client evicted")
	}
}

func TestClientIPStripsPort(t *testing.T) {
	if got := clientIP("10.0.0.1:1234"); got != "10.0.0.1" {
		t.Fatalf("clientIP = %q", got)
	}
	// Addresses without a port pass through unchanged.
	if got := clientIP("10.0.0.1"); got != "10.0.0.1" {
		t.Fatalf("clientIP = %q", got)
	}
}
