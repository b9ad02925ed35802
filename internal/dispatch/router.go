// Package dispatch routes classified messages to their handlers and absorbs
// every collaborator failure into a DispatchResult. Nothing in this package
// lets a fault propagate past Dispatch: a handler either answers, asks for
// clarification, or fails with a generic user-safe result.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nextlevelbuilder/concierge/internal/bus"
	"github.com/nextlevelbuilder/concierge/internal/classify"
	"github.com/nextlevelbuilder/concierge/internal/store"
	"github.com/nextlevelbuilder/concierge/internal/timeparse"
)

// Result is the unified return type from handler execution.
// Exactly one of three shapes: success (OK), clarification request
// (Clarify), or failure (neither). Err carries internal detail for logging
// and is never shown to the end user.
type Result struct {
	OK      bool
	Text    string
	Clarify bool
	Payload map[string]string
	Err     error
}

// Success builds a successful result with user-facing text.
func Success(text string) Result { return Result{OK: true, Text: text} }

// Clarification builds a follow-up request; it is not a failure.
func Clarification(text string) Result { return Result{Clarify: true, Text: text} }

// Failure builds a failed result; err is internal detail only.
func Failure(err error) Result { return Result{Err: err} }

// WithPayload attaches structured payload entries to a result.
func (r Result) WithPayload(kv map[string]string) Result {
	r.Payload = kv
	return r
}

// Event is the calendar event contract handed to the Calendar Provider.
type Event struct {
	Title       string
	Description string
	Start       timeparse.ParsedDateTime
	End         timeparse.ParsedDateTime
	Attendees   []string
}

// EmailSender is the Email Provider contract.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// CalendarService is the Calendar Provider contract.
type CalendarService interface {
	CreateEvent(ctx context.Context, ev Event) (eventID string, err error)
}

// LeadExtractor is the Extraction Provider contract for CRM lead capture.
type LeadExtractor interface {
	ExtractLead(ctx context.Context, text, defaultOwner string) (store.Lead, error)
}

// Assistant is the conversational agent contract. localContext carries the
// resolved local-time string so the agent can reason about relative dates.
type Assistant interface {
	Reply(ctx context.Context, localContext, prompt string) (string, error)
}

// Router selects and invokes the handler for a classified intent. It is
// stateless between invocations; one call handles one message end-to-end.
type Router struct {
	resolver  *timeparse.Resolver
	mailer    EmailSender
	calendar  CalendarService
	extractor LeadExtractor
	leads     store.LeadStore
	assistant Assistant
}

// NewRouter wires a Router with its collaborators. Any collaborator may be
// nil; the corresponding handler then fails gracefully instead of crashing.
func NewRouter(resolver *timeparse.Resolver, mailer EmailSender, calendar CalendarService,
	extractor LeadExtractor, leads store.LeadStore, assistant Assistant) *Router {
	return &Router{
		resolver:  resolver,
		mailer:    mailer,
		calendar:  calendar,
		extractor: extractor,
		leads:     leads,
		assistant: assistant,
	}
}

// Dispatch invokes the handler for the intent. Panics and collaborator
// errors are converted into failed Results; the caller always receives a
// usable Result.
func (r *Router) Dispatch(ctx context.Context, intent classify.Intent, msg bus.IncomingMessage, user store.User, ref time.Time) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("handler panic recovered", "intent", string(intent), "panic", rec)
			res = Failure(fmt.Errorf("dispatch %s: panic: %v", intent, rec))
		}
	}()

	switch intent {
	case classify.IntentMailMe:
		return r.handleMailMe(ctx, msg, user)
	case classify.IntentCalendarAction:
		return r.handleCalendarAction(ctx, msg, user, ref)
	case classify.IntentEmailAction:
		return r.handleEmailAction(ctx, msg, user, ref)
	case classify.IntentCRMLead:
		return r.handleCRMLead(ctx, msg, user)
	case classify.IntentAssistantQuery, classify.IntentGeneralConversation:
		return r.handleConversation(ctx, msg, ref)
	default:
		return Failure(fmt.Errorf("dispatch: unknown intent %q", intent))
	}
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && s[maxLen]&0xC0 == 0x80 {
		maxLen--
	}
	return s[:maxLen]
}
