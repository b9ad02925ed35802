package gateway

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedSenders caps the number of tracked limiter keys to prevent
// memory exhaustion from rotating sender IDs.
const maxTrackedSenders = 4096

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SenderLimiter enforces a per-sender request rate with a bounded key map.
// Safe for concurrent use. A nil SenderLimiter allows everything.
type SenderLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	entries map[string]*limiterEntry
}

// NewSenderLimiter builds a limiter allowing rpm requests per minute per
// sender. rpm <= 0 disables limiting (returns nil).
func NewSenderLimiter(rpm int) *SenderLimiter {
	if rpm <= 0 {
		return nil
	}
	return &SenderLimiter{
		limit:   rate.Limit(float64(rpm) / 60.0),
		burst:   5,
		entries: make(map[string]*limiterEntry),
	}
}

// Allow reports whether the sender is within its rate budget.
func (l *SenderLimiter) Allow(sender string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if len(l.entries) >= maxTrackedSenders {
		l.evictLocked(now)
	}

	e, ok := l.entries[sender]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[sender] = e
	}
	e.lastSeen = now
	return e.limiter.Allow()
}

// evictLocked drops idle entries, then random entries if still at cap.
func (l *SenderLimiter) evictLocked(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) >= time.Minute {
			delete(l.entries, k)
		}
	}
	for len(l.entries) >= maxTrackedSenders {
		for k := range l.entries {
			delete(l.entries, k)
			break
		}
	}
}
