package handlers

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter map; past it the map is reset.
const maxTrackedClients = 10000

// RateLimiter throttles requests per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	logger   logrus.FieldLogger
}

func NewRateLimiter(requestsPerSecond float64, burst int, logger logrus.FieldLogger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		logger:   logger,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= maxTrackedClients {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Handler answers 429 once a client exceeds its budget. RemoteAddr is
// expected to be rewritten by middleware.RealIP upstream.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !rl.limiter(key).Allow() {
			rl.logger.WithFields(logrus.Fields{
				"client": key,
				"path":   r.URL.Path,
			}).Warn("rate limit exceeded")
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartCleanup drops all tracked clients every interval until stop is closed.
func (rl *RateLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.mu.Lock()
				rl.limiters = make(map[string]*rate.Limiter)
				rl.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
