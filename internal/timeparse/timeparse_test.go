package timeparse

import (
	"testing"
	"time"
)

// refSaturday is 2025-06-07 10:00 UTC, local civil 12:00 on Saturday June 7
// (daylight period, offset +2).
var refSaturday = time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC)

// refMonday is 2025-06-09 08:00 UTC, local civil 10:00 on Monday June 9.
var refMonday = time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)

func mustResolve(t *testing.T, text string, ref time.Time) ParsedDateTime {
	t.Helper()
	res := NewResolver().Resolve(text, ref)
	if !res.OK() {
		t.Fatalf("Resolve(%q) failed: %s", text, res.Reason)
	}
	return res.When
}

func mustFail(t *testing.T, text string, ref time.Time, want FailureReason) {
	t.Helper()
	res := NewResolver().Resolve(text, ref)
	if res.OK() {
		t.Fatalf("Resolve(%q) = %v, want failure %s", text, res.When, want)
	}
	if res.Reason != want {
		t.Fatalf("Resolve(%q) reason = %s, want %s", text, res.Reason, want)
	}
}

func TestResolveISO(t *testing.T) {
	want := ParsedDateTime{Year: 2025, Month: time.June, Day: 7, Hour: 14, Minute: 30}

	// The explicit form resolves identically regardless of the reference instant.
	for _, ref := range []time.Time{
		refSaturday,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 12, 31, 23, 59, 0, 0, time.UTC),
	} {
		if got := mustResolve(t, "2025-06-07 14:30", ref); got != want {
			t.Errorf("Resolve ISO with ref %v = %v, want %v", ref, got, want)
		}
	}

	if got := mustResolve(t, "remind me 2025-06-07T14:30 sharp", refSaturday); got != want {
		t.Errorf("T separator: got %v, want %v", got, want)
	}
}

func TestResolveTomorrow(t *testing.T) {
	got := mustResolve(t, "tomorrow at 2pm", refSaturday)
	want := ParsedDateTime{Year: 2025, Month: time.June, Day: 8, Hour: 14, Minute: 0}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolveTodayAndTonight(t *testing.T) {
	cases := []struct {
		text string
		want ParsedDateTime
	}{
		{"today at 5pm", ParsedDateTime{2025, time.June, 7, 17, 0}},
		{"tonight at 8pm", ParsedDateTime{2025, time.June, 7, 20, 0}},
		{"today", ParsedDateTime{2025, time.June, 7, 9, 0}}, // default time
	}
	for _, c := range cases {
		if got := mustResolve(t, c.text, refSaturday); got != c.want {
			t.Errorf("Resolve(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestResolveWeekdayNeverSameDay(t *testing.T) {
	// Reference is a Monday; "Monday" must mean next Monday, 7 days out.
	got := mustResolve(t, "Monday at 3pm", refMonday)
	want := ParsedDateTime{Year: 2025, Month: time.June, Day: 16, Hour: 15, Minute: 0}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolveWeekday(t *testing.T) {
	cases := []struct {
		text string
		want ParsedDateTime
	}{
		// Reference is Saturday June 7.
		{"wednesday at 10am", ParsedDateTime{2025, time.June, 11, 10, 0}},
		{"next friday at 4:45pm", ParsedDateTime{2025, time.June, 13, 16, 45}},
		{"sunday", ParsedDateTime{2025, time.June, 8, 9, 0}},
	}
	for _, c := range cases {
		if got := mustResolve(t, c.text, refSaturday); got != c.want {
			t.Errorf("Resolve(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestResolveAmbiguousDayReferences(t *testing.T) {
	mustFail(t, "today or tomorrow at 5pm", refSaturday, ReasonAmbiguous)
	mustFail(t, "monday or tuesday works", refSaturday, ReasonAmbiguous)
}

func TestResolveMonthDay(t *testing.T) {
	cases := []struct {
		text string
		want ParsedDateTime
	}{
		{"20 June at 5pm", ParsedDateTime{2025, time.June, 20, 17, 0}},
		{"june 20 at 5pm", ParsedDateTime{2025, time.June, 20, 17, 0}},
		{"June 20th at 5pm", ParsedDateTime{2025, time.June, 20, 17, 0}},
		{"3 Jul 2026 at 11:15", ParsedDateTime{2026, time.July, 3, 11, 15}},
		{"December 24", ParsedDateTime{2025, time.December, 24, 9, 0}},
		// A date already past rolls forward to next year.
		{"5 January at 10am", ParsedDateTime{2026, time.January, 5, 10, 0}},
		{"March 1", ParsedDateTime{2026, time.March, 1, 9, 0}},
	}
	for _, c := range cases {
		if got := mustResolve(t, c.text, refSaturday); got != c.want {
			t.Errorf("Resolve(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestResolveInvalidCalendarDate(t *testing.T) {
	mustFail(t, "31 February at 9am", refSaturday, ReasonInvalidCalendarDate)
	mustFail(t, "June 31 at noonish 9am", refSaturday, ReasonInvalidCalendarDate)
	mustFail(t, "meet on (2025-02-30) at 10:00", refSaturday, ReasonInvalidCalendarDate)
}

func TestResolveAnnotated(t *testing.T) {
	got := mustResolve(t, "confirm the visit (2025-07-01) at 16:00 please", refSaturday)
	want := ParsedDateTime{Year: 2025, Month: time.July, Day: 1, Hour: 16, Minute: 0}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	// No time fragment: default 09:00.
	got = mustResolve(t, "confirm the visit (2025-07-01)", refSaturday)
	want = ParsedDateTime{Year: 2025, Month: time.July, Day: 1, Hour: 9, Minute: 0}
	if got != want {
		t.Errorf("default time: got %v, want %v", got, want)
	}
}

func TestResolveRelativeOffset(t *testing.T) {
	cases := []struct {
		text string
		want ParsedDateTime
	}{
		{"in 3 hours", ParsedDateTime{2025, time.June, 7, 15, 0}},
		{"in 1 hour", ParsedDateTime{2025, time.June, 7, 13, 0}},
		{"in 90 minutes", ParsedDateTime{2025, time.June, 7, 13, 30}},
		// Crosses local midnight.
		{"in 13 hours", ParsedDateTime{2025, time.June, 8, 1, 0}},
	}
	for _, c := range cases {
		if got := mustResolve(t, c.text, refSaturday); got != c.want {
			t.Errorf("Resolve(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestResolveBareTime(t *testing.T) {
	cases := []struct {
		text string
		want ParsedDateTime
	}{
		{"14:30", ParsedDateTime{2025, time.June, 7, 14, 30}},
		{"2:15pm", ParsedDateTime{2025, time.June, 7, 14, 15}},
		{"7pm", ParsedDateTime{2025, time.June, 7, 19, 0}},
		{"12am", ParsedDateTime{2025, time.June, 7, 0, 0}},
		{"12pm", ParsedDateTime{2025, time.June, 7, 12, 0}},
	}
	for _, c := range cases {
		if got := mustResolve(t, c.text, refSaturday); got != c.want {
			t.Errorf("Resolve(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestResolveCoarseRelative(t *testing.T) {
	cases := []struct {
		text string
		want ParsedDateTime
	}{
		{"next week", ParsedDateTime{2025, time.June, 14, 9, 0}},
		{"next month", ParsedDateTime{2025, time.July, 7, 9, 0}},
		{"next week at 3pm", ParsedDateTime{2025, time.June, 14, 15, 0}},
	}
	for _, c := range cases {
		if got := mustResolve(t, c.text, refSaturday); got != c.want {
			t.Errorf("Resolve(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestResolveNumericFallback(t *testing.T) {
	got := mustResolve(t, "pick me up around 18 45 ok?", refSaturday)
	want := ParsedDateTime{Year: 2025, Month: time.June, Day: 7, Hour: 18, Minute: 45}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolveUnrecognized(t *testing.T) {
	mustFail(t, "asdkjh", refSaturday, ReasonUnrecognizedFormat)
	mustFail(t, "", refSaturday, ReasonUnrecognizedFormat)
	// Two integers out of clock range do not qualify for the fallback.
	mustFail(t, "call 99 99", refSaturday, ReasonUnrecognizedFormat)
}

func TestResolveTwelveHourConversion(t *testing.T) {
	cases := []struct {
		text     string
		wantHour int
	}{
		{"tomorrow at 12am", 0},
		{"tomorrow at 12pm", 12},
		{"tomorrow at 1pm", 13},
		{"tomorrow at 11am", 11},
		{"tomorrow at 23", 23}, // no suffix: 24h literal
	}
	for _, c := range cases {
		got := mustResolve(t, c.text, refSaturday)
		if got.Hour != c.wantHour {
			t.Errorf("Resolve(%q) hour = %d, want %d", c.text, got.Hour, c.wantHour)
		}
	}
}

func TestResolveWithOffsetCache(t *testing.T) {
	cache := NewOffsetCache(5 * time.Minute)
	r := NewResolver(WithOffsetCache(cache))

	got := r.Resolve("tomorrow at 2pm", refSaturday)
	if !got.OK() {
		t.Fatalf("unexpected failure: %s", got.Reason)
	}
	want := ParsedDateTime{Year: 2025, Month: time.June, Day: 8, Hour: 14, Minute: 0}
	if got.When != want {
		t.Errorf("got %v, want %v", got.When, want)
	}
}

func TestLocalContext(t *testing.T) {
	got := NewResolver().LocalContext(refSaturday)
	want := "2025-06-07 12:00 (Saturday)"
	if got != want {
		t.Errorf("LocalContext = %q, want %q", got, want)
	}
}
