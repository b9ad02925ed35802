package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/nextlevelbuilder/concierge/internal/bus"
	"github.com/nextlevelbuilder/concierge/internal/store"
)

var (
	reAddress = regexp.MustCompile(`[\w.+-]+@[\w-]+\.\w{2,}`)

	// reTemporalHint gates datetime resolution for email actions: only
	// messages that plausibly mention a date/time go through the resolver,
	// so "send the notes to anna@example.com" is not forced to clarify.
	reTemporalHint = regexp.MustCompile(`(?i)\b(today|tonight|tomorrow|monday|tuesday|wednesday|thursday|friday|saturday|sunday|next\s+(week|month)|at\s+\d|in\s+\d+\s+(hour|minute))\b|\d{4}-\d{2}-\d{2}`)
)

// handleEmailAction sends an email to the recipient named in the message.
// A temporal fragment, when present, must resolve; failures come back as
// clarification requests per the calendar rules.
func (r *Router) handleEmailAction(ctx context.Context, msg bus.IncomingMessage, user store.User, ref time.Time) Result {
	if r.mailer == nil {
		return Failure(fmt.Errorf("email: provider not configured"))
	}

	if reTemporalHint.MatchString(msg.Text) {
		if parsed := r.resolver.Resolve(msg.Text, ref); !parsed.OK() {
			return clarifyForReason(parsed.Reason)
		}
	}

	to := reAddress.FindString(msg.Text)
	if to == "" {
		return Clarification("Who should receive this email? Please include an address.")
	}

	subject := synthesizeSubject(msg.Text)
	if err := r.mailer.SendEmail(ctx, to, subject, msg.Text); err != nil {
		return Failure(fmt.Errorf("email: send to %s: %w", to, err))
	}

	slog.Info("email sent", "to", to, "subject", subject)
	return Success(fmt.Sprintf("Email %q sent to %s.", subject, to)).
		WithPayload(map[string]string{"to": to, "subject": subject})
}
