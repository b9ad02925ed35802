package timeparse

import (
	"regexp"
	"strconv"
	"time"
)

// Default time of day applied when an expression names a date but no clock time.
const (
	defaultHour   = 9
	defaultMinute = 0
)

// strategy attempts one parse form against lowercased text. The boolean
// reports whether the strategy claimed the input; a claimed input may still
// carry a failure (e.g. an invalid calendar date).
type strategy func(text string, anchor ParsedDateTime) (ParseResult, bool)

// strategies is the fixed priority order. The first strategy that claims the
// input wins; later strategies never see it.
var strategies = []strategy{
	parseAnnotated,
	parseRelativeDay,
	parseMonthDay,
	parseISO,
	parseRelativeOffset,
	parseBareTime,
	parseCoarseRelative,
	parseNumericFallback,
}

const monthPattern = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var (
	reAnnotatedDate = regexp.MustCompile(`\((\d{4})-(\d{2})-(\d{2})\)`)
	reAtTime        = regexp.MustCompile(`\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	reDayKeyword    = regexp.MustCompile(`\b(today|tonight|tomorrow)\b`)
	reWeekdayName   = regexp.MustCompile(`\b(?:next\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	reDayMonth      = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+` + monthPattern + `\b(?:\s+(\d{4}))?`)
	reMonthDay      = regexp.MustCompile(`\b` + monthPattern + `\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4}))?`)
	reISODateTime   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})[t ](\d{1,2}):(\d{2})\b`)
	reRelOffset     = regexp.MustCompile(`\bin\s+(\d+)\s+(hour|minute)s?\b`)
	reClockTime     = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	reHourSuffix    = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`)
	reCoarse        = regexp.MustCompile(`\bnext\s+(week|month)\b`)
	reInteger       = regexp.MustCompile(`\d+`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var weekdaysByName = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday, "sunday": time.Sunday,
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// to24Hour applies the 12h → 24h conversion rules: "pm" adds 12 unless the
// hour is 12; "am" maps 12 to 0; no suffix leaves the hour as a 24h literal.
func to24Hour(hour int, suffix string) int {
	switch suffix {
	case "pm":
		if hour != 12 {
			return hour + 12
		}
	case "am":
		if hour == 12 {
			return 0
		}
	}
	return hour
}

// extractAtTime finds an "at H[:MM][am|pm]" fragment. Returns the default
// 09:00 when absent or out of range.
func extractAtTime(text string) (hour, minute int) {
	m := reAtTime.FindStringSubmatch(text)
	if m == nil {
		return defaultHour, defaultMinute
	}
	hour = to24Hour(atoi(m[1]), m[3])
	if m[2] != "" {
		minute = atoi(m[2])
	}
	if hour > 23 || minute > 59 {
		return defaultHour, defaultMinute
	}
	return hour, minute
}

// parseAnnotated handles a literal ISO calendar date inside parentheses,
// e.g. "set it up (2025-07-01) at 14:00".
func parseAnnotated(text string, anchor ParsedDateTime) (ParseResult, bool) {
	m := reAnnotatedDate.FindStringSubmatch(text)
	if m == nil {
		return ParseResult{}, false
	}

	year, month, day := atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3])
	if !validDate(year, month, day) {
		return failure(ReasonInvalidCalendarDate), true
	}

	hour, minute := extractAtTime(text)
	return success(ParsedDateTime{Year: year, Month: month, Day: day, Hour: hour, Minute: minute}), true
}

// parseRelativeDay handles "today", "tonight", "tomorrow" and weekday names
// (optionally prefixed by "next"), with an optional "at" time fragment.
// A named weekday always resolves to a future occurrence: if the target is
// today, it means seven days from now. Conflicting day references in one
// message are reported as ambiguous.
func parseRelativeDay(text string, anchor ParsedDateTime) (ParseResult, bool) {
	offsets := map[int]bool{}

	for _, m := range reDayKeyword.FindAllStringSubmatch(text, -1) {
		switch m[1] {
		case "today", "tonight":
			offsets[0] = true
		case "tomorrow":
			offsets[1] = true
		}
	}
	for _, m := range reWeekdayName.FindAllStringSubmatch(text, -1) {
		target := weekdaysByName[m[1]]
		delta := (int(target) - int(anchor.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		offsets[delta] = true
	}

	if len(offsets) == 0 {
		return ParseResult{}, false
	}
	if len(offsets) > 1 {
		return failure(ReasonAmbiguous), true
	}

	var days int
	for d := range offsets {
		days = d
	}
	hour, minute := extractAtTime(text)
	return success(anchor.addDays(days).withClock(hour, minute)), true
}

// parseMonthDay handles "DD Month [YYYY]" and "Month DD [YYYY]" forms with an
// optional "at" time fragment. When the year is omitted and the resolved date
// lies strictly before the reference local date, it rolls forward one year.
func parseMonthDay(text string, anchor ParsedDateTime) (ParseResult, bool) {
	var day, year int
	var month time.Month
	yearGiven := false

	if m := reDayMonth.FindStringSubmatch(text); m != nil {
		day = atoi(m[1])
		month = monthsByPrefix[m[2][:3]]
		if m[3] != "" {
			year = atoi(m[3])
			yearGiven = true
		}
	} else if m := reMonthDay.FindStringSubmatch(text); m != nil {
		month = monthsByPrefix[m[1][:3]]
		day = atoi(m[2])
		if m[3] != "" {
			year = atoi(m[3])
			yearGiven = true
		}
	} else {
		return ParseResult{}, false
	}

	if !yearGiven {
		year = anchor.Year
	}
	if !validDate(year, month, day) {
		return failure(ReasonInvalidCalendarDate), true
	}

	hour, minute := extractAtTime(text)
	resolved := ParsedDateTime{Year: year, Month: month, Day: day, Hour: hour, Minute: minute}

	if !yearGiven && resolved.dateBefore(anchor) {
		resolved.Year++
		if !validDate(resolved.Year, month, day) {
			return failure(ReasonInvalidCalendarDate), true
		}
	}
	return success(resolved), true
}

// parseISO handles explicit "YYYY-MM-DD HH:MM" (or with a T separator).
func parseISO(text string, anchor ParsedDateTime) (ParseResult, bool) {
	m := reISODateTime.FindStringSubmatch(text)
	if m == nil {
		return ParseResult{}, false
	}

	year, month, day := atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3])
	hour, minute := atoi(m[4]), atoi(m[5])
	if !validDate(year, month, day) {
		return failure(ReasonInvalidCalendarDate), true
	}
	if hour > 23 || minute > 59 {
		return failure(ReasonUnrecognizedFormat), true
	}
	return success(ParsedDateTime{Year: year, Month: month, Day: day, Hour: hour, Minute: minute}), true
}

// parseRelativeOffset handles "in N hours" / "in N minutes" relative to the
// local civil anchor.
func parseRelativeOffset(text string, anchor ParsedDateTime) (ParseResult, bool) {
	m := reRelOffset.FindStringSubmatch(text)
	if m == nil {
		return ParseResult{}, false
	}

	n := atoi(m[1])
	var d time.Duration
	switch m[2] {
	case "hour":
		d = time.Duration(n) * time.Hour
	case "minute":
		d = time.Duration(n) * time.Minute
	}
	t := time.Date(anchor.Year, anchor.Month, anchor.Day, anchor.Hour, anchor.Minute, 0, 0, time.UTC).Add(d)
	return success(fromTime(t)), true
}

// parseBareTime handles a standalone clock time ("14:30", "2:15pm", "7pm")
// anchored to the current local civil date.
func parseBareTime(text string, anchor ParsedDateTime) (ParseResult, bool) {
	if m := reClockTime.FindStringSubmatch(text); m != nil {
		hour := to24Hour(atoi(m[1]), m[3])
		minute := atoi(m[2])
		if hour <= 23 && minute <= 59 {
			return success(anchor.withClock(hour, minute)), true
		}
	}
	if m := reHourSuffix.FindStringSubmatch(text); m != nil {
		hour := to24Hour(atoi(m[1]), m[2])
		if hour <= 23 {
			return success(anchor.withClock(hour, 0)), true
		}
	}
	return ParseResult{}, false
}

// parseCoarseRelative handles "next week" (+7 days) and "next month"
// (+30 days, approximate), defaulting the time to 09:00.
func parseCoarseRelative(text string, anchor ParsedDateTime) (ParseResult, bool) {
	m := reCoarse.FindStringSubmatch(text)
	if m == nil {
		return ParseResult{}, false
	}

	days := 7
	if m[1] == "month" {
		days = 30
	}
	hour, minute := extractAtTime(text)
	return success(anchor.addDays(days).withClock(hour, minute)), true
}

// parseNumericFallback interprets the last two integers in otherwise
// unstructured text as hour and minute when both are in range.
func parseNumericFallback(text string, anchor ParsedDateTime) (ParseResult, bool) {
	nums := reInteger.FindAllString(text, -1)
	if len(nums) < 2 {
		return ParseResult{}, false
	}

	hour := atoi(nums[len(nums)-2])
	minute := atoi(nums[len(nums)-1])
	if hour > 23 || minute > 59 {
		return ParseResult{}, false
	}
	return success(anchor.withClock(hour, minute)), true
}
