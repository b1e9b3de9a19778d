package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"hotelier/pkg/logger"
)

// KeyExtractor derives the rate-limit bucket key for a request. The
// default keys by acting staff member and falls back to client IP for
// anonymous requests.
type KeyExtractor func(r *http.Request) string

type RateLimiter struct {
	mu        sync.RWMutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor KeyExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewRateLimiter(limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *RateLimiter {
	limiter := &RateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *RateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	now := time.Now()

	rl.mu.RLock()
	timestamps := rl.requests[key]
	rl.mu.RUnlock()

	validTimestamps := make([]time.Time, 0)
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			validTimestamps = append(validTimestamps, ts)
		}
	}

	if len(validTimestamps) >= rl.limit {
		return false
	}

	validTimestamps = append(validTimestamps, now)

	rl.mu.Lock()
	rl.requests[key] = validTimestamps
	rl.mu.Unlock()

	return true
}

func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractRateLimitKey(r, limiter.extractor)

			if !limiter.Allow(key) {
				rejectRateLimited(w, limiter.log, r, key)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractRateLimitKey(r *http.Request, extractor KeyExtractor) string {
	if extractor == nil {
		return DefaultKeyExtractor(r)
	}
	return extractor(r)
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, key string) {
	requestID := ""
	if rid := r.Context().Value(RequestIDKey); rid != nil {
		requestID = rid.(string)
	}

	log.Warn("Rate limit exceeded",
		"request_id", requestID,
		"key", key,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
}

// DefaultKeyExtractor prefers the actor header so a busy front desk
// terminal does not starve the rest of the property sharing its NAT.
func DefaultKeyExtractor(r *http.Request) string {
	if actorID := r.Header.Get(HeaderActorID); actorID != "" {
		return actorID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
