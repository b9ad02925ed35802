package google

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/nextlevelbuilder/concierge/internal/dispatch"
)

// calendarTimeZone is the IANA zone matching the gateway's civil-time rules.
const calendarTimeZone = "Europe/Berlin"

// CalendarClient creates events in the user's primary Google calendar.
// Implements the dispatch CalendarService contract.
type CalendarClient struct {
	service    *calendar.Service
	calendarID string
	location   *time.Location
}

// NewCalendarClient builds an authenticated calendar client.
func NewCalendarClient(ctx context.Context, ts oauth2.TokenSource) (*CalendarClient, error) {
	service, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("google: create calendar service: %w", err)
	}
	loc, err := time.LoadLocation(calendarTimeZone)
	if err != nil {
		return nil, fmt.Errorf("google: load location %s: %w", calendarTimeZone, err)
	}
	return &CalendarClient{service: service, calendarID: "primary", location: loc}, nil
}

// CreateEvent inserts the event and returns its Google event ID.
func (c *CalendarClient) CreateEvent(ctx context.Context, ev dispatch.Event) (string, error) {
	gev := &calendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.Time(c.location).Format(time.RFC3339),
			TimeZone: calendarTimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: ev.End.Time(c.location).Format(time.RFC3339),
			TimeZone: calendarTimeZone,
		},
	}
	for _, a := range ev.Attendees {
		gev.Attendees = append(gev.Attendees, &calendar.EventAttendee{Email: a})
	}

	created, err := c.service.Events.Insert(c.calendarID, gev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("google: insert event: %w", err)
	}

	slog.Info("calendar event created", "event_id", created.Id, "summary", created.Summary)
	return created.Id, nil
}
