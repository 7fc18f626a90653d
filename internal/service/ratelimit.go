package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds per-key token bucket settings.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate; 0 or less disables limiting.
	RequestsPerSecond float64
	BurstSize         int
}

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepSize  = 4096
	limiterSweepEvery = time.Minute
)

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter keeps one token bucket per key (client IP).
type KeyedRateLimiter struct {
	mu       sync.Mutex
	cfg      RateLimitConfig
	limiters map[string]*keyedLimiter
	now      func() time.Time

	// lastSweep bounds full scans to one per limiterSweepEvery
	lastSweep time.Time
}

func NewKeyedRateLimiter(cfg RateLimitConfig) *KeyedRateLimiter {
	if cfg.BurstSize < 1 {
		cfg.BurstSize = 1
	}
	return &KeyedRateLimiter{
		cfg:      cfg,
		limiters: make(map[string]*keyedLimiter),
		now:      time.Now,
	}
}

// Allow reports whether key may proceed now, consuming a token if so.
func (l *KeyedRateLimiter) Allow(key string) bool {
	if l == nil || l.cfg.RequestsPerSecond <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.limiters) >= limiterSweepSize && now.Sub(l.lastSweep) >= limiterSweepEvery {
		l.sweep(now)
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &keyedLimiter{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.BurstSize)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// sweep drops buckets idle for longer than limiterIdleTTL. Caller holds mu.
func (l *KeyedRateLimiter) sweep(now time.Time) {
	l.lastSweep = now
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.limiters, key)
		}
	}
}

// Len returns the number of tracked keys
func (l *KeyedRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
