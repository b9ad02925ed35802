// Package respond turns dispatch results into the outbound messages sent
// back on the originating channel. Internal error detail stops here; the
// user only ever sees the generic failure text.
package respond

import (
	"log/slog"

	"github.com/nextlevelbuilder/concierge/internal/bus"
	"github.com/nextlevelbuilder/concierge/internal/classify"
	"github.com/nextlevelbuilder/concierge/internal/dispatch"
)

const fallbackErrorText = "Sorry, something went wrong on my side. Please try again in a moment."

// Assembler builds the outbound reply for a handled message.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler returns an Assembler. A nil logger falls back to the default.
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger}
}

// Assemble maps a dispatch result to the outbound message for the channel
// the request arrived on. Failures are logged with their internal detail
// and replaced with a generic user-safe text.
func (a *Assembler) Assemble(msg bus.IncomingMessage, intent classify.Intent, res dispatch.Result) bus.OutboundMessage {
	out := bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
	}

	switch {
	case res.OK:
		out.Text = res.Text
		out.Metadata = payloadMetadata(intent, res.Payload)
	case res.Clarify:
		out.Text = res.Text
	default:
		a.logger.Error("request failed",
			"intent", string(intent),
			"channel", msg.Channel,
			"sender", msg.SenderID,
			"error", res.Err)
		out.Text = fallbackErrorText
	}

	if out.Text == "" {
		out.Text = fallbackErrorText
	}
	return out
}

// payloadMetadata copies the handler payload into outbound metadata with the
// intent attached, for downstream channel adapters that render richer output.
func payloadMetadata(intent classify.Intent, payload map[string]string) map[string]string {
	if len(payload) == 0 {
		return nil
	}
	md := make(map[string]string, len(payload)+1)
	for k, v := range payload {
		md[k] = v
	}
	md["intent"] = string(intent)
	return md
}
