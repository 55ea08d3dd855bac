package httpapi

import (
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// accessLog logs one line per request with the chi request id.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// recoverer turns a handler panic into a logged 500.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.Error("panic recovered",
				"request_id", middleware.GetReqID(r.Context()),
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			respondError(w, http.StatusInternalServerError, "internal", "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.limiter.Allow(ip) {
			s.metrics.RateLimitedRequest.Inc()
			s.logger.Warn("rate limit exceeded",
				"request_id", middleware.GetReqID(r.Context()),
				"ip", ip,
				"path", r.URL.Path,
			)
			w.Header().Set("Retry-After", "1")
			respondError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr. Forwarding headers only count
// when TrustProxyHeaders mounted middleware.RealIP ahead of this.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterMaxIdle         = 10 * time.Minute
)

type ipLimitEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP and evicts idle ones.
type ipRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*ipLimitEntry
	limit   rate.Limit
	burst   int
	logger  *slog.Logger
	stopCh  chan struct{}
	once    sync.Once
}

func newIPRateLimiter(limit rate.Limit, burst int, logger *slog.Logger) *ipRateLimiter {
	rl := &ipRateLimiter{
		entries: make(map[string]*ipLimitEntry),
		limit:   limit,
		burst:   burst,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *ipRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	entry, ok := rl.entries[ip]
	if !ok {
		entry = &ipLimitEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[ip] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

func (rl *ipRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *ipRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now().Add(-limiterMaxIdle))
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *ipRateLimiter) cleanup(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for ip, entry := range rl.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.entries, ip)
			removed++
		}
	}
	if removed > 0 {
		rl.logger.Debug("webhook rate limiter cleanup", "removed", removed, "remaining", len(rl.entries))
	}
}
