package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/nextlevelbuilder/concierge/internal/bus"
	"github.com/nextlevelbuilder/concierge/internal/store"
	"github.com/nextlevelbuilder/concierge/internal/timeparse"
)

const (
	defaultEventDuration = time.Hour
	maxEventTitleLen     = 80
)

// clarifyForReason maps a parse failure to the follow-up question sent back
// to the user. Parse failures are recovered locally, never surfaced as
// system errors.
func clarifyForReason(reason timeparse.FailureReason) Result {
	switch reason {
	case timeparse.ReasonAmbiguous:
		return Clarification("You mentioned more than one day — which one did you mean?")
	case timeparse.ReasonInvalidCalendarDate:
		return Clarification("That date doesn't exist on the calendar — could you double-check it?")
	default:
		return Clarification("I couldn't work out the date and time — when exactly?")
	}
}

// handleCalendarAction resolves the temporal expression in the message and
// creates a calendar event. Unresolvable datetimes ask for clarification
// instead of silently defaulting.
func (r *Router) handleCalendarAction(ctx context.Context, msg bus.IncomingMessage, user store.User, ref time.Time) Result {
	if r.calendar == nil {
		return Failure(fmt.Errorf("calendar: provider not configured"))
	}

	parsed := r.resolver.Resolve(msg.Text, ref)
	if !parsed.OK() {
		return clarifyForReason(parsed.Reason)
	}

	ev := Event{
		Title:       eventTitle(msg.Text),
		Description: msg.Text,
		Start:       parsed.When,
		End:         parsed.When.Add(defaultEventDuration),
	}
	if user.Email != "" {
		ev.Attendees = []string{user.Email}
	}

	eventID, err := r.calendar.CreateEvent(ctx, ev)
	if err != nil {
		return Failure(fmt.Errorf("calendar: create event: %w", err))
	}

	slog.Info("calendar event created", "event_id", eventID, "start", parsed.When.String())
	return Success(fmt.Sprintf("Scheduled %q for %s.", ev.Title, parsed.When)).
		WithPayload(map[string]string{"event_id": eventID, "start": parsed.When.String()})
}

var reEventFiller = regexp.MustCompile(`(?i)^\s*(please\s+)?(schedule|set up|create|add|book)\s+(an?\s+)?`)

// eventTitle derives a short title from the message text.
func eventTitle(text string) string {
	title := reEventFiller.ReplaceAllString(text, "")
	if idx := strings.IndexAny(title, ".\n"); idx > 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Appointment"
	}
	return truncate(title, maxEventTitleLen)
}
