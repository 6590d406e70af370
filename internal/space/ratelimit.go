// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package space

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/wardrobe/internal/item"
)

// Default rate limiting values.
const (
	// DefaultBurstCapacity is the number of limited actions a character may
	// perform in a row.
	DefaultBurstCapacity = 3

	// DefaultSustainedRate is the number of limited actions per second
	// allowed over time.
	DefaultSustainedRate = 0.2

	// MinSustainedRate ensures the bucket refills eventually.
	MinSustainedRate = 0.01

	// DefaultCleanupInterval is how often idle characters are forgotten.
	DefaultCleanupInterval = 5 * time.Minute

	// DefaultIdleMaxAge is how long a character may stay idle before its
	// bucket is dropped.
	DefaultIdleMaxAge = time.Hour
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// BurstCapacity defaults to DefaultBurstCapacity if zero or negative.
	BurstCapacity int `koanf:"burst"`

	// SustainedRate is in actions per second. Defaults to
	// DefaultSustainedRate if zero or negative.
	SustainedRate float64 `koanf:"rate"`

	// CleanupInterval defaults to DefaultCleanupInterval if zero.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	// IdleMaxAge defaults to DefaultIdleMaxAge if zero.
	IdleMaxAge time.Duration `koanf:"idle_max_age"`

	// Now replaces the wall clock in tests.
	Now func() time.Time `koanf:"-"`
}

// bucket tracks the tokens of one character.
type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// RateLimiter limits expensive actions per character with a token bucket.
// It is safe for concurrent use.
//
// A background goroutine forgets idle characters; call Close to stop it.
type RateLimiter struct {
	mu            sync.Mutex
	buckets       map[item.CharacterID]*bucket
	burstCapacity int
	sustainedRate float64
	idleMaxAge    time.Duration
	now           func() time.Time

	stopChan chan struct{}
	wg       sync.WaitGroup

	// nil if no registry was provided
	gauge prometheus.Gauge
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine.
// When reg is not nil a gauge of tracked characters is registered with it.
func NewRateLimiter(cfg RateLimiterConfig, reg prometheus.Registerer) *RateLimiter {
	burstCapacity := cfg.BurstCapacity
	if burstCapacity <= 0 {
		burstCapacity = DefaultBurstCapacity
	}

	sustainedRate := cfg.SustainedRate
	if sustainedRate <= 0 {
		sustainedRate = DefaultSustainedRate
	}
	sustainedRate = max(sustainedRate, MinSustainedRate)

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	idleMaxAge := cfg.IdleMaxAge
	if idleMaxAge <= 0 {
		idleMaxAge = DefaultIdleMaxAge
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	rl := &RateLimiter{
		buckets:       make(map[item.CharacterID]*bucket),
		burstCapacity: burstCapacity,
		sustainedRate: sustainedRate,
		idleMaxAge:    idleMaxAge,
		now:           now,
		stopChan:      make(chan struct{}),
	}

	if reg != nil {
		rl.gauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wardrobe_ratelimiter_characters",
			Help: "Current number of characters tracked by the action rate limiter",
		})
		reg.MustRegister(rl.gauge)
	}

	rl.wg.Add(1)
	go rl.cleanupLoop(cleanupInterval)

	return rl
}

// Allow consumes a token of character. It returns false and the
// milliseconds until the next token when the bucket is empty.
func (rl *RateLimiter) Allow(character item.CharacterID) (allowed bool, cooldownMs int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[character]
	if !ok {
		b = &bucket{tokens: float64(rl.burstCapacity), lastCheck: now}
		rl.buckets[character] = b
	}

	elapsed := now.Sub(b.lastCheck).Seconds()
	b.tokens = min(b.tokens+elapsed*rl.sustainedRate, float64(rl.burstCapacity))
	b.lastCheck = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true, 0
	}

	deficit := 1.0 - b.tokens
	return false, int64(deficit / rl.sustainedRate * 1000)
}

// Tracked returns the number of characters with a bucket.
func (rl *RateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// Cleanup forgets characters idle for longer than maxAge.
func (rl *RateLimiter) Cleanup(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	threshold := rl.now().Add(-maxAge)
	for id, b := range rl.buckets {
		if b.lastCheck.Before(threshold) {
			delete(rl.buckets, id)
		}
	}

	if rl.gauge != nil {
		rl.gauge.Set(float64(len(rl.buckets)))
	}
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	defer rl.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.Cleanup(rl.idleMaxAge)
		}
	}
}

// Close stops the cleanup goroutine and waits for it.
func (rl *RateLimiter) Close() {
	close(rl.stopChan)
	rl.wg.Wait()
}
