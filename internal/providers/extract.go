package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/concierge/internal/store"
)

const extractSystemPrompt = `Extract a CRM lead from the message. Respond with a single JSON object:
{"subject": "...", "content": "...", "priority": "Low"|"Mid"|"High", "owner": "..."}
subject: short headline. content: the relevant details. priority: your best
estimate of urgency. owner: the responsible person if named, else empty.`

// LeadExtractor turns free-form messages into structured leads via the
// completion client. Callers must treat any error as a signal to fall back
// to degraded capture; extraction is best-effort.
type LeadExtractor struct {
	client *OpenAIClient
}

// NewLeadExtractor builds the extraction backend.
func NewLeadExtractor(client *OpenAIClient) *LeadExtractor {
	return &LeadExtractor{client: client}
}

type extractedLead struct {
	Subject  string `json:"subject"`
	Content  string `json:"content"`
	Priority string `json:"priority"`
	Owner    string `json:"owner"`
}

// ExtractLead asks the model for a structured lead. The decode is strict:
// anything missing a subject comes back as ErrMalformedCompletion.
func (e *LeadExtractor) ExtractLead(ctx context.Context, text, defaultOwner string) (store.Lead, error) {
	raw, err := e.client.CompleteJSON(ctx, extractSystemPrompt, text)
	if err != nil {
		return store.Lead{}, fmt.Errorf("extract lead: %w", err)
	}

	var parsed extractedLead
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&parsed); err != nil {
		return store.Lead{}, fmt.Errorf("extract lead: %w: %v", ErrMalformedCompletion, err)
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return store.Lead{}, fmt.Errorf("extract lead: %w: missing subject", ErrMalformedCompletion)
	}

	lead := store.Lead{
		Subject:  strings.TrimSpace(parsed.Subject),
		Content:  strings.TrimSpace(parsed.Content),
		Priority: normalizePriority(parsed.Priority),
		Owner:    strings.TrimSpace(parsed.Owner),
	}
	if lead.Content == "" {
		lead.Content = text
	}
	if lead.Owner == "" {
		lead.Owner = defaultOwner
	}
	return lead, nil
}

func normalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "low":
		return "Low"
	case "high":
		return "High"
	default:
		return "Mid"
	}
}
