// Package throttle limits request rates per caller key.
package throttle

import (
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	"golang.org/x/time/rate"
)

// KeyedThrottleCfg configuration for KeyedThrottle
type KeyedThrottleCfg struct {
	// NPerSec tokens refilled per second for each key
	NPerSec float64
	// Burst bucket size for each key
	Burst int
	// IdleTTL removes limiters unused for longer than this
	IdleTTL time.Duration
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedThrottle keeps one token bucket per key
type KeyedThrottle struct {
	mu       sync.Mutex
	cfg      KeyedThrottleCfg
	limiters map[string]*keyedLimiter
	lastGC   time.Time
}

// NewKeyedThrottle create new KeyedThrottle
func NewKeyedThrottle(cfg KeyedThrottleCfg) (*KeyedThrottle, error) {
	if cfg.NPerSec <= 0 {
		return nil, errors.New("NPerSec must bigger than 0")
	}
	if cfg.Burst < 1 {
		return nil, errors.New("burst must bigger than 0")
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}

	return &KeyedThrottle{
		cfg:      cfg,
		limiters: map[string]*keyedLimiter{},
	}, nil
}

// Allow reports whether key may proceed at now
func (t *KeyedThrottle) Allow(key string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Sub(t.lastGC) > t.cfg.IdleTTL {
		for k, l := range t.limiters {
			if now.Sub(l.lastSeen) > t.cfg.IdleTTL {
				delete(t.limiters, k)
			}
		}
		t.lastGC = now
	}

	l, ok := t.limiters[key]
	if !ok {
		l = &keyedLimiter{limiter: rate.NewLimiter(rate.Limit(t.cfg.NPerSec), t.cfg.Burst)}
		t.limiters[key] = l
	}
	l.lastSeen = now

	return l.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys
func (t *KeyedThrottle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.limiters)
}
