package respond

import (
	"errors"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/concierge/internal/bus"
	"github.com/nextlevelbuilder/concierge/internal/classify"
	"github.com/nextlevelbuilder/concierge/internal/dispatch"
)

var inbound = bus.IncomingMessage{Channel: "telegram", SenderID: "+4915112345678", ChatID: "42", Text: "hi"}

func TestAssembleSuccess(t *testing.T) {
	a := NewAssembler(nil)

	res := dispatch.Success("Scheduled \"team sync\" for 2025-06-08 14:00.").
		WithPayload(map[string]string{"event_id": "evt-1"})
	out := a.Assemble(inbound, classify.IntentCalendarAction, res)

	if out.Text != res.Text {
		t.Errorf("success text must pass through verbatim, got %q", out.Text)
	}
	if out.Channel != "telegram" || out.ChatID != "42" {
		t.Errorf("reply not addressed to originating chat: %+v", out)
	}
	if out.Metadata["event_id"] != "evt-1" {
		t.Errorf("payload not carried into metadata: %v", out.Metadata)
	}
	if out.Metadata["intent"] != string(classify.IntentCalendarAction) {
		t.Errorf("intent missing from metadata: %v", out.Metadata)
	}
}

func TestAssembleClarification(t *testing.T) {
	a := NewAssembler(nil)

	res := dispatch.Clarification("Which day did you mean?")
	out := a.Assemble(inbound, classify.IntentCalendarAction, res)

	if out.Text != "Which day did you mean?" {
		t.Errorf("got %q", out.Text)
	}
	if out.Metadata != nil {
		t.Errorf("clarifications carry no metadata, got %v", out.Metadata)
	}
}

func TestAssembleFailureHidesInternalError(t *testing.T) {
	a := NewAssembler(nil)

	res := dispatch.Failure(errors.New("pgx: connection refused to 10.0.3.7:5432"))
	out := a.Assemble(inbound, classify.IntentCRMLead, res)

	if out.Text != fallbackErrorText {
		t.Errorf("got %q, want generic failure text", out.Text)
	}
	if strings.Contains(out.Text, "pgx") || strings.Contains(out.Text, "10.0.3.7") {
		t.Errorf("internal detail leaked to user: %q", out.Text)
	}
}

func TestAssembleEmptySuccessTextFallsBack(t *testing.T) {
	a := NewAssembler(nil)

	out := a.Assemble(inbound, classify.IntentGeneralConversation, dispatch.Success(""))
	if out.Text == "" {
		t.Error("outbound text must never be empty")
	}
}
