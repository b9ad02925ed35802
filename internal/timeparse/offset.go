package timeparse

import (
	"sync"
	"time"
)

// Seasonal UTC offsets for the fixed local civil zone (Central European rule).
const (
	offsetStandardHours = 1
	offsetDaylightHours = 2
)

// defaultCacheTTL bounds how long a computed offset is reused for nearby
// reference instants before being recomputed.
const defaultCacheTTL = 10 * time.Minute

// lastSunday returns midnight UTC of the last Sunday of the given month.
func lastSunday(year int, month time.Month) time.Time {
	// Last day of month = day 0 of the next month.
	t := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	for t.Weekday() != time.Sunday {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// inDaylightPeriod reports whether ref falls inside the daylight-saving
// period of its calendar year: last Sunday of March 00:00 (inclusive) up to
// last Sunday of October 00:00 (exclusive).
func inDaylightPeriod(ref time.Time) bool {
	ref = ref.UTC()
	start := lastSunday(ref.Year(), time.March)
	end := lastSunday(ref.Year(), time.October)
	return !ref.Before(start) && ref.Before(end)
}

// utcOffsetHours returns the fixed-rule UTC offset for the reference instant.
// This does not consult a live timezone authority; a cached external time
// source may override it via OffsetCache.Put.
func utcOffsetHours(ref time.Time) int {
	if inDaylightPeriod(ref) {
		return offsetDaylightHours
	}
	return offsetStandardHours
}

// OffsetCache memoizes the computed UTC offset with a TTL measured against
// the reference instants it is asked about. The cached function is pure, so
// concurrent recomputation is harmless; the mutex only keeps the struct
// fields consistent.
type OffsetCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	computedAt time.Time
	offset     int
	valid      bool
}

// NewOffsetCache creates a cache with the given TTL. ttl <= 0 uses the default.
func NewOffsetCache(ttl time.Duration) *OffsetCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &OffsetCache{ttl: ttl}
}

// Offset returns the UTC offset in hours for ref, reusing the cached value
// when ref is within the TTL window of the last computation.
func (c *OffsetCache) Offset(ref time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid {
		age := ref.Sub(c.computedAt)
		if age >= 0 && age < c.ttl {
			return c.offset
		}
	}

	c.offset = utcOffsetHours(ref)
	c.computedAt = ref
	c.valid = true
	return c.offset
}

// Put overrides the cached offset, e.g. from an external time source.
func (c *OffsetCache) Put(ref time.Time, offsetHours int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = offsetHours
	c.computedAt = ref
	c.valid = true
}
