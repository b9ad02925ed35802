package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/nextlevelbuilder/concierge/internal/bus"
)

// handleConversation forwards the message to the conversational agent with
// the resolved local-time context injected, so the agent can reason about
// relative dates the user mentions.
func (r *Router) handleConversation(ctx context.Context, msg bus.IncomingMessage, ref time.Time) Result {
	if r.assistant == nil {
		return Failure(fmt.Errorf("assistant: provider not configured"))
	}

	localContext := r.resolver.LocalContext(ref)
	reply, err := r.assistant.Reply(ctx, localContext, msg.Text)
	if err != nil {
		return Failure(fmt.Errorf("assistant: %w", err))
	}
	return Success(reply)
}
