// Package classify maps free-form inbound messages onto the fixed intent set
// that drives dispatch. Classification is deterministic, first match wins,
// and never fails: anything unmatched degrades to a conversational intent.
package classify

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/nextlevelbuilder/concierge/internal/bus"
	"github.com/nextlevelbuilder/concierge/internal/timeparse"
)

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	IntentMailMe              Intent = "mail_me"
	IntentCalendarAction      Intent = "calendar_action"
	IntentEmailAction         Intent = "email_action"
	IntentCRMLead             Intent = "crm_lead"
	IntentAssistantQuery      Intent = "personal_assistant_query"
	IntentGeneralConversation Intent = "general_conversation"
)

// mailMeTrigger is the literal command prefix for the mail-me handler.
const mailMeTrigger = "mail me"

var (
	reCalendarVocab = regexp.MustCompile(`\b(schedule|meeting|event|appointment)\b`)
	reEmailVocab    = regexp.MustCompile(`\b(send|email|compose)\b`)
	reCRMVocab      = regexp.MustCompile(`\b(lead|prospect|inquiry)\b`)

	// A recipient-like token: an address, or "to <name>".
	reEmailAddress = regexp.MustCompile(`[\w.+-]+@[\w-]+\.\w{2,}`)
	reToRecipient  = regexp.MustCompile(`\bto\s+[a-z][\w.-]*`)
)

// Classifier inspects inbound messages and decides which handler owns them.
// It is stateless and safe for concurrent use.
type Classifier struct {
	resolver         *timeparse.Resolver
	assistantEnabled bool
}

// New creates a Classifier. assistantEnabled controls the rule-6 default:
// when false, unmatched messages go to general conversation instead of the
// personal assistant.
func New(resolver *timeparse.Resolver, assistantEnabled bool) *Classifier {
	return &Classifier{resolver: resolver, assistantEnabled: assistantEnabled}
}

// Classify determines the intent of a message against the reference instant.
// Audio transcription happens upstream: callers re-run Classify with the
// transcribed text substituted into the message.
func (c *Classifier) Classify(msg bus.IncomingMessage, ref time.Time) Intent {
	text := strings.ToLower(strings.TrimLeft(msg.Text, " \t\n"))

	intent := c.classifyText(text, ref)
	slog.Debug("message classified",
		"intent", string(intent),
		"sender", msg.SenderID,
		"text_len", len(msg.Text),
	)
	return intent
}

func (c *Classifier) classifyText(text string, ref time.Time) Intent {
	if strings.HasPrefix(text, mailMeTrigger) {
		return IntentMailMe
	}

	// Calendar vocabulary only counts when the message carries a resolvable
	// date/time fragment; bare "nice meeting you" stays conversational.
	if reCalendarVocab.MatchString(text) && c.resolver.Resolve(text, ref).OK() {
		return IntentCalendarAction
	}

	if reEmailVocab.MatchString(text) && hasRecipientToken(text) {
		return IntentEmailAction
	}

	if reCRMVocab.MatchString(text) {
		return IntentCRMLead
	}

	if c.assistantEnabled {
		return IntentAssistantQuery
	}
	return IntentGeneralConversation
}

func hasRecipientToken(text string) bool {
	return reEmailAddress.MatchString(text) || reToRecipient.MatchString(text)
}
