// Package timeparse resolves natural-language date/time expressions into
// absolute timestamps in a fixed local civil calendar. Parsing is pure and
// deterministic: the only clock input is the reference instant passed by the
// caller, and the seasonal UTC offset follows a fixed rule (see offset.go).
package timeparse

import (
	"fmt"
	"strings"
	"time"
)

// FailureReason classifies why a resolve attempt failed.
type FailureReason string

const (
	ReasonAmbiguous           FailureReason = "ambiguous"
	ReasonUnrecognizedFormat  FailureReason = "unrecognized_format"
	ReasonInvalidCalendarDate FailureReason = "invalid_calendar_date"
)

// ParsedDateTime is a civil date/time in the fixed local zone. It carries no
// zone identifier; the anchoring to the local zone is by convention.
type ParsedDateTime struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

// String renders the value as "2006-01-02 15:04".
func (p ParsedDateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", p.Year, p.Month, p.Day, p.Hour, p.Minute)
}

// Weekday returns the day of week of the civil date.
func (p ParsedDateTime) Weekday() time.Weekday {
	return time.Date(p.Year, p.Month, p.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Time materializes the civil value in the given location.
func (p ParsedDateTime) Time(loc *time.Location) time.Time {
	return time.Date(p.Year, p.Month, p.Day, p.Hour, p.Minute, 0, 0, loc)
}

// Add returns the value shifted by a duration, normalizing across day and
// month boundaries.
func (p ParsedDateTime) Add(d time.Duration) ParsedDateTime {
	t := time.Date(p.Year, p.Month, p.Day, p.Hour, p.Minute, 0, 0, time.UTC).Add(d)
	return fromTime(t)
}

// addDays returns the value shifted by n calendar days.
func (p ParsedDateTime) addDays(n int) ParsedDateTime {
	t := time.Date(p.Year, p.Month, p.Day, p.Hour, p.Minute, 0, 0, time.UTC).AddDate(0, 0, n)
	return fromTime(t)
}

// withClock returns the value with the time-of-day replaced.
func (p ParsedDateTime) withClock(hour, minute int) ParsedDateTime {
	p.Hour = hour
	p.Minute = minute
	return p
}

// dateBefore reports whether p's civil date is strictly before q's.
func (p ParsedDateTime) dateBefore(q ParsedDateTime) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	if p.Month != q.Month {
		return p.Month < q.Month
	}
	return p.Day < q.Day
}

func fromTime(t time.Time) ParsedDateTime {
	return ParsedDateTime{
		Year:   t.Year(),
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
	}
}

// validDate reports whether year/month/day form a real calendar date.
func validDate(year int, month time.Month, day int) bool {
	if month < time.January || month > time.December || day < 1 {
		return false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && t.Month() == month && t.Day() == day
}

// ParseResult holds either a resolved value or a failure reason, never both.
type ParseResult struct {
	When   ParsedDateTime
	Reason FailureReason
}

// OK reports whether the parse succeeded.
func (r ParseResult) OK() bool { return r.Reason == "" }

func success(p ParsedDateTime) ParseResult     { return ParseResult{When: p} }
func failure(reason FailureReason) ParseResult { return ParseResult{Reason: reason} }

// Resolver parses natural-language datetime expressions against a reference
// instant. It is stateless apart from an optional injected offset cache and
// safe for concurrent use.
type Resolver struct {
	cache *OffsetCache
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithOffsetCache injects a shared offset cache (optional).
func WithOffsetCache(c *OffsetCache) Option {
	return func(r *Resolver) { r.cache = c }
}

// NewResolver creates a Resolver. Without options every call recomputes the
// seasonal offset, which is cheap.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, o := range opts {
		o(r)
	}
	return r
}

// offsetHours returns the seasonal UTC offset for ref, via the cache if set.
func (r *Resolver) offsetHours(ref time.Time) int {
	if r.cache != nil {
		return r.cache.Offset(ref)
	}
	return utcOffsetHours(ref)
}

// Now returns the local civil anchor for the reference instant: UTC plus the
// seasonal offset.
func (r *Resolver) Now(ref time.Time) ParsedDateTime {
	offset := r.offsetHours(ref)
	return fromTime(ref.UTC().Add(time.Duration(offset) * time.Hour))
}

// LocalContext renders the current local civil time for injection into
// conversational prompts, e.g. "2025-06-07 14:30 (Saturday)".
func (r *Resolver) LocalContext(ref time.Time) string {
	now := r.Now(ref)
	return fmt.Sprintf("%s (%s)", now, now.Weekday())
}

// Resolve parses text against the reference instant, trying each strategy in
// fixed priority order and returning the first match. It never reads a live
// clock and performs no I/O.
func (r *Resolver) Resolve(text string, ref time.Time) ParseResult {
	text = strings.ToLower(text)
	anchor := r.Now(ref)

	for _, strategy := range strategies {
		if res, matched := strategy(text, anchor); matched {
			return res
		}
	}
	return failure(ReasonUnrecognizedFormat)
}
