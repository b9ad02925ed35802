package classify

import (
	"testing"
	"time"

	"github.com/nextlevelbuilder/concierge/internal/bus"
	"github.com/nextlevelbuilder/concierge/internal/timeparse"
)

var ref = time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC)

func newClassifier(assistantEnabled bool) *Classifier {
	return New(timeparse.NewResolver(), assistantEnabled)
}

func msg(text string) bus.IncomingMessage {
	return bus.IncomingMessage{Channel: "telegram", SenderID: "+4915112345678", ChatID: "42", Text: text}
}

func TestClassifyMailMe(t *testing.T) {
	cases := []string{
		"mail me buy milk",
		"  mail me the notes from today",
		"Mail me the quote",
	}
	for _, text := range cases {
		if got := newClassifier(true).Classify(msg(text), ref); got != IntentMailMe {
			t.Errorf("Classify(%q) = %s, want %s", text, got, IntentMailMe)
		}
	}
}

func TestClassifyCalendarAction(t *testing.T) {
	c := newClassifier(true)

	got := c.Classify(msg("schedule a meeting tomorrow at 2pm"), ref)
	if got != IntentCalendarAction {
		t.Errorf("got %s, want %s", got, IntentCalendarAction)
	}

	// Calendar vocabulary without a resolvable datetime is not a calendar action.
	got = c.Classify(msg("that was a great meeting"), ref)
	if got == IntentCalendarAction {
		t.Errorf("vocabulary without datetime must not classify as calendar action")
	}
}

func TestClassifyEmailAction(t *testing.T) {
	c := newClassifier(true)

	cases := []string{
		"send the report to anna@example.com",
		"compose a note to bob",
		"email the summary to the board",
	}
	for _, text := range cases {
		if got := c.Classify(msg(text), ref); got != IntentEmailAction {
			t.Errorf("Classify(%q) = %s, want %s", text, got, IntentEmailAction)
		}
	}

	// Email vocabulary without a recipient-like token falls through.
	if got := c.Classify(msg("did you send it yet"), ref); got == IntentEmailAction {
		t.Errorf("vocabulary without recipient must not classify as email action")
	}
}

func TestClassifyCRMLead(t *testing.T) {
	cases := []string{
		"new lead from the trade fair",
		"a prospect called about pricing",
		"client inquiry: kitchen renovation",
	}
	for _, text := range cases {
		if got := newClassifier(true).Classify(msg(text), ref); got != IntentCRMLead {
			t.Errorf("Classify(%q) = %s, want %s", text, got, IntentCRMLead)
		}
	}
}

func TestClassifyDefaultIntent(t *testing.T) {
	text := "how are you doing"

	if got := newClassifier(true).Classify(msg(text), ref); got != IntentAssistantQuery {
		t.Errorf("assistant enabled: got %s, want %s", got, IntentAssistantQuery)
	}
	if got := newClassifier(false).Classify(msg(text), ref); got != IntentGeneralConversation {
		t.Errorf("assistant disabled: got %s, want %s", got, IntentGeneralConversation)
	}
}

func TestClassifyNeverFails(t *testing.T) {
	// Garbage, empty, and whitespace-only inputs all yield a usable intent.
	for _, text := range []string{"", "    ", "!!!", "asdkjh"} {
		got := newClassifier(false).Classify(msg(text), ref)
		if got != IntentGeneralConversation {
			t.Errorf("Classify(%q) = %s, want %s", text, got, IntentGeneralConversation)
		}
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// "mail me" wins even when later vocabulary is present.
	text := "mail me about the meeting tomorrow at 2pm"
	if got := newClassifier(true).Classify(msg(text), ref); got != IntentMailMe {
		t.Errorf("got %s, want %s", got, IntentMailMe)
	}

	// Calendar beats email when both match.
	text = "schedule a meeting tomorrow at 2pm and send the invite to anna@example.com"
	if got := newClassifier(true).Classify(msg(text), ref); got != IntentCalendarAction {
		t.Errorf("got %s, want %s", got, IntentCalendarAction)
	}
}
