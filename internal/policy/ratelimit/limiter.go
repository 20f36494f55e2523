// Package ratelimit implements per-client token buckets for operations that are
// expensive to repeat, such as tearing down the browser session.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JakeFAU/trendwatch/internal/metrics"
)

// maxClients bounds the bucket map; past it the map starts over.
const maxClients = 4096

// Limiter manages per-client rate limits.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

// Config holds rate limiter configuration.
type Config struct {
	// PerMinute is both the refill rate and the burst. Zero or less disables
	// limiting.
	PerMinute int
}

// New creates a new Limiter, or nil when cfg disables limiting. A nil Limiter
// allows everything.
func New(cfg Config) *Limiter {
	if cfg.PerMinute <= 0 {
		return nil
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(time.Minute / time.Duration(cfg.PerMinute)),
		burst:    cfg.PerMinute,
	}
}

// Allow reports whether client may proceed now, consuming a token if so.
func (l *Limiter) Allow(client string) bool {
	if l == nil {
		return true
	}
	if client == "" {
		client = "unknown"
	}
	l.mu.Lock()
	limiter, exists := l.limiters[client]
	if !exists {
		if len(l.limiters) >= maxClients {
			l.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(l.every, l.burst)
		l.limiters[client] = limiter
	}
	l.mu.Unlock()

	if !limiter.Allow() {
		metrics.ObserveResetThrottled()
		return false
	}
	return true
}
