package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/concierge/internal/bus"
	"github.com/nextlevelbuilder/concierge/internal/store"
)

const degradedLeadPriority = "Mid"

// handleCRMLead captures a lead from the message. The Extraction Provider
// may fail; the degraded fallback below guarantees a lead is still built
// from the raw message, so capture itself never throws.
func (r *Router) handleCRMLead(ctx context.Context, msg bus.IncomingMessage, user store.User) Result {
	lead := r.extractLeadOrFallback(ctx, msg, user)

	lead.ID = uuid.New()
	lead.TenantID = user.TenantID
	lead.Created = time.Now().UTC()
	if lead.Owner == "" {
		lead.Owner = user.DisplayName
	}

	if r.leads != nil {
		if err := r.leads.SaveLead(ctx, lead); err != nil {
			return Failure(fmt.Errorf("crm: save lead: %w", err))
		}
	}

	return Success(fmt.Sprintf("Lead recorded: %q (owner %s).", lead.Subject, lead.Owner)).
		WithPayload(map[string]string{
			"lead_id":  lead.ID.String(),
			"subject":  lead.Subject,
			"owner":    lead.Owner,
			"priority": lead.Priority,
		})
}

// extractLeadOrFallback asks the Extraction Provider for a structured lead
// and degrades to a raw-message lead on any provider failure.
func (r *Router) extractLeadOrFallback(ctx context.Context, msg bus.IncomingMessage, user store.User) store.Lead {
	if r.extractor != nil {
		lead, err := r.extractor.ExtractLead(ctx, msg.Text, user.DisplayName)
		if err == nil {
			return lead
		}
		slog.Warn("lead extraction failed, using degraded lead", "error", err)
	}

	return store.Lead{
		Subject:  truncate(msg.Text, maxSubjectLen),
		Content:  msg.Text,
		Priority: degradedLeadPriority,
		Owner:    user.DisplayName,
	}
}
