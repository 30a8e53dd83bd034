package auth

import (
	"sync"
	"time"
)

// RateLimiter locks out client IPs that keep presenting invalid tokens.
// Failures are counted per IP within a fixed window.
type RateLimiter struct {
	mu              sync.RWMutex
	attempts        map[string]*attemptRecord
	maxAttempts     int
	windowDuration  time.Duration
	lockoutDuration time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // Maximum failures before lockout (default: 10)
	WindowDuration  time.Duration // Time window for counting failures (default: 15m)
	LockoutDuration time.Duration // How long to lock out after max failures (default: 15m)
	CleanupInterval time.Duration // How often to clean up expired records (default: 5m)
}

// DefaultRateLimitConfig returns sensible defaults for rate limiting.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     10,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 15 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewRateLimiter creates a new rate limiter with the given configuration.
// Call Stop to end its cleanup goroutine.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	defaults := DefaultRateLimitConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = defaults.WindowDuration
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = defaults.LockoutDuration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaults.CleanupInterval
	}

	rl := &RateLimiter{
		attempts:        make(map[string]*attemptRecord),
		maxAttempts:     cfg.MaxAttempts,
		windowDuration:  cfg.WindowDuration,
		lockoutDuration: cfg.LockoutDuration,
		cleanupInterval: cfg.CleanupInterval,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// Allow reports whether ip may attempt authentication, and if not, for how long it is locked.
func (rl *RateLimiter) Allow(ip string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.RLock()
	defer rl.mu.RUnlock()

	record, exists := rl.attempts[ip]
	if !exists {
		return true, 0
	}
	if !record.lockedUntil.IsZero() && now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts an invalid token. Returns true when ip is now locked out.
func (rl *RateLimiter) RecordFailure(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, exists := rl.attempts[ip]
	if !exists || now.Sub(record.firstAttempt) > rl.windowDuration {
		record = &attemptRecord{firstAttempt: now}
		rl.attempts[ip] = record
	}

	record.count++
	if record.count >= rl.maxAttempts {
		record.lockedUntil = now.Add(rl.lockoutDuration)
		return true
	}
	return false
}

// RecordSuccess clears the failure record of ip.
func (rl *RateLimiter) RecordSuccess(ip string) {
	rl.mu.Lock()
	delete(rl.attempts, ip)
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup removes records whose window and lockout have both expired.
func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, record := range rl.attempts {
		windowExpired := now.Sub(record.firstAttempt) > rl.windowDuration
		lockoutExpired := record.lockedUntil.IsZero() || now.After(record.lockedUntil)
		if windowExpired && lockoutExpired {
			delete(rl.attempts, ip)
		}
	}
}
