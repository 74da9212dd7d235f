package ratelimit

import (
	"sync"
	"time"
)

const (
	defaultCleanupPeriod = 5 * time.Minute
	entryIdleTTL         = 30 * time.Minute
)

// KeyedConfig configures a KeyedLimiter instance.
type KeyedConfig struct {
	// Burst is the maximum tokens per key (burst capacity).
	Burst float64
	// RefillRate is tokens refilled per second per key.
	RefillRate float64
	// CleanupPeriod controls how often inactive entries are removed.
	// Zero means the default of 5 minutes.
	CleanupPeriod time.Duration
	// OnDrop is invoked whenever a request is rejected. Optional.
	OnDrop func()
}

// KeyedLimiter tracks token buckets per key (sender phone number).
// Idle entries are cleaned up in the background.
type KeyedLimiter struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
	config  KeyedConfig
	stopCh  chan struct{}
	stopped sync.Once
}

type keyedEntry struct {
	limiter  *Limiter
	lastSeen time.Time
}

// NewKeyedLimiter creates a new per-key rate limiter and starts its
// cleanup loop. Call Stop when done.
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = defaultCleanupPeriod
	}
	kl := &KeyedLimiter{
		entries: make(map[string]*keyedEntry),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}
	go kl.cleanupLoop()
	return kl
}

// Allow reports whether a request for the given key is allowed.
// An empty key is always allowed.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	kl.mu.Lock()
	entry, ok := kl.entries[key]
	if !ok {
		entry = &keyedEntry{limiter: New(kl.config.Burst, kl.config.RefillRate)}
		kl.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	kl.mu.Unlock()

	if entry.limiter.Allow() {
		return true
	}
	if kl.config.OnDrop != nil {
		kl.config.OnDrop()
	}
	return false
}

// ActiveKeys returns the number of keys currently tracked.
func (kl *KeyedLimiter) ActiveKeys() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.entries)
}

// Stop terminates the cleanup loop.
func (kl *KeyedLimiter) Stop() {
	kl.stopped.Do(func() { close(kl.stopCh) })
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-entryIdleTTL)
			kl.mu.Lock()
			for key, entry := range kl.entries {
				if entry.lastSeen.Before(cutoff) {
					delete(kl.entries, key)
				}
			}
			kl.mu.Unlock()
		}
	}
}
