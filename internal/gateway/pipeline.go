package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nextlevelbuilder/concierge/internal/bus"
	"github.com/nextlevelbuilder/concierge/internal/classify"
	"github.com/nextlevelbuilder/concierge/internal/dispatch"
	"github.com/nextlevelbuilder/concierge/internal/store"
)

var tracer = otel.Tracer("concierge/gateway")

const (
	deniedUnknownSender   = "Sorry, I don't recognize this number. Access is by invitation only."
	deniedDisabledSender  = "This account is currently disabled. Please contact your administrator."
	rateLimitedReply      = "You're sending messages very quickly — give me a moment and try again."
	emptyMessageReply     = "I couldn't find any text in that message. What can I do for you?"
	transcriptMetadataKey = "transcript"
)

// Dispatcher executes the handler for a classified intent.
type Dispatcher interface {
	Dispatch(ctx context.Context, intent classify.Intent, msg bus.IncomingMessage, user store.User, ref time.Time) dispatch.Result
}

// Assembler turns a dispatch result into the outbound reply.
type Assembler interface {
	Assemble(msg bus.IncomingMessage, intent classify.Intent, res dispatch.Result) bus.OutboundMessage
}

// Transcriber converts an audio stream to text.
type Transcriber interface {
	Enabled() bool
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

// HandleWebhookEvent runs one inbound message through the full pipeline:
// sender authorization, audio transcription, classification, dispatch, and
// response assembly. It always returns a deliverable reply.
func (s *Server) HandleWebhookEvent(ctx context.Context, msg bus.IncomingMessage) bus.OutboundMessage {
	ctx, span := tracer.Start(ctx, "gateway.handle_message")
	defer span.End()
	span.SetAttributes(
		attribute.String("channel", msg.Channel),
		attribute.String("chat_id", msg.ChatID),
	)

	ref := s.now()

	if !s.limiter.Allow(msg.SenderID) {
		slog.Warn("sender rate limited", "sender", msg.SenderID, "channel", msg.Channel)
		return s.deny(msg, rateLimitedReply)
	}

	user, err := s.stores.Users.LookupUser(ctx, msg.SenderID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("user lookup failed", "sender", msg.SenderID, "error", err)
		}
		return s.deny(msg, deniedUnknownSender)
	}
	if !user.Enabled {
		slog.Info("disabled user rejected", "sender", msg.SenderID, "tenant", user.TenantID)
		return s.deny(msg, deniedDisabledSender)
	}

	if msg.HasAudio() {
		msg = s.transcribeInto(ctx, msg)
	}

	if strings.TrimSpace(msg.Text) == "" {
		return s.deny(msg, emptyMessageReply)
	}
	if s.maxMessageChars > 0 && len(msg.Text) > s.maxMessageChars {
		msg.Text = msg.Text[:s.maxMessageChars]
	}

	_, classifySpan := tracer.Start(ctx, "gateway.classify")
	intent := s.classifier.Classify(msg, ref)
	classifySpan.End()
	span.SetAttributes(attribute.String("intent", string(intent)))

	dispatchCtx, dispatchSpan := tracer.Start(ctx, "gateway.dispatch")
	res := s.dispatcher.Dispatch(dispatchCtx, intent, msg, *user, ref)
	dispatchSpan.End()

	out := s.assembler.Assemble(msg, intent, res)

	slog.Info("message handled",
		"channel", msg.Channel,
		"tenant", user.TenantID,
		"intent", string(intent),
		"ok", res.OK,
		"clarify", res.Clarify,
	)
	return out
}

// transcribeInto replaces the message text with the audio transcript when
// transcription succeeds. Failures degrade to the original text; a voice
// note without STT configured simply stays text-free.
func (s *Server) transcribeInto(ctx context.Context, msg bus.IncomingMessage) bus.IncomingMessage {
	if s.transcriber == nil || !s.transcriber.Enabled() {
		return msg
	}

	ref := msg.AudioRef()
	f, err := os.Open(ref)
	if err != nil {
		slog.Warn("audio attachment unreadable", "ref", ref, "error", err)
		return msg
	}
	defer f.Close()

	transcript, err := s.transcriber.Transcribe(ctx, f, filepath.Base(ref))
	if err != nil {
		slog.Warn("transcription failed", "ref", ref, "error", err)
		return msg
	}
	if transcript == "" {
		return msg
	}

	if msg.Metadata == nil {
		msg.Metadata = map[string]string{}
	}
	msg.Metadata[transcriptMetadataKey] = transcript
	if strings.TrimSpace(msg.Text) == "" {
		msg.Text = transcript
	} else {
		msg.Text = msg.Text + "\n" + transcript
	}
	return msg
}

// deny builds a plain denial reply on the originating channel.
func (s *Server) deny(msg bus.IncomingMessage, text string) bus.OutboundMessage {
	return bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Text:    text,
	}
}
