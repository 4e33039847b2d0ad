package api

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/summitathletics/summit-data/internal/api/respond"
)

// --------------------------------------------------------------------------
// Request timing middleware
// --------------------------------------------------------------------------

// TimingMiddleware adds X-Process-Time header to all responses.
func TimingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		elapsed := time.Since(start)
		w.Header().Set("X-Process-Time", fmt.Sprintf("%.2fms", float64(elapsed.Microseconds())/1000.0))
	})
}

// --------------------------------------------------------------------------
// Rate limiting middleware (IP-based token bucket)
// --------------------------------------------------------------------------

// client pairs a token bucket with its last activity, so idle entries can
// be swept instead of accumulating for every IP ever seen.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiters struct {
	mu      sync.Mutex
	clients map[string]*client
	rate    rate.Limit
	burst   int
	maxIdle time.Duration
}

func newClientLimiters(requestsPerWindow int, window time.Duration) *clientLimiters {
	cl := &clientLimiters{
		clients: make(map[string]*client),
		rate:    rate.Limit(float64(requestsPerWindow) / window.Seconds()),
		burst:   requestsPerWindow / 2,
		maxIdle: 3 * window,
	}
	go cl.evictLoop()
	return cl
}

// allow charges one request against the bucket for ip, creating the bucket
// on first sight.
func (cl *clientLimiters) allow(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	c, exists := cl.clients[ip]
	if !exists {
		c = &client{limiter: rate.NewLimiter(cl.rate, cl.burst)}
		cl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

func (cl *clientLimiters) evictLoop() {
	ticker := time.NewTicker(cl.maxIdle)
	defer ticker.Stop()
	for range ticker.C {
		cl.evictIdle(time.Now())
	}
}

func (cl *clientLimiters) evictIdle(now time.Time) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	for ip, c := range cl.clients {
		if now.Sub(c.lastSeen) > cl.maxIdle {
			delete(cl.clients, ip)
		}
	}
}

func clientIP(remoteAddr string) string {
	ip, _, err := net.SplitHostPort(remoteAddr)
	if err != nil || ip == "" {
		return remoteAddr
	}
	return ip
}

// RateLimitMiddleware returns middleware that rate-limits by client IP.
// Rejected requests get a Retry-After matching the refill window.
func RateLimitMiddleware(requestsPerWindow int, window time.Duration) func(http.Handler) http.Handler {
	limiters := newClientLimiters(requestsPerWindow, window)
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.allow(clientIP(r.RemoteAddr)) {
				w.Header().Set("Retry-After", retryAfter)
				respond.WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED",
					fmt.Sprintf("request limit of %d per %s exceeded", requestsPerWindow, window))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
