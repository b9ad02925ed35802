// Package store defines the persistence contracts for users, CRM leads, and
// OAuth tokens, with Postgres (managed) and SQLite (standalone) backends.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// User is the authenticated sender context resolved from a phone number.
// Read-only within the pipeline.
type User struct {
	ID            uuid.UUID
	TenantID      string
	DisplayName   string
	Email         string
	Phone         string
	Enabled       bool
	CredentialRef string // opaque handle into the token store
	CreatedAt     time.Time
}

// Lead is a CRM lead record captured from an inbound message.
type Lead struct {
	ID       uuid.UUID         `json:"id"`
	TenantID string            `json:"tenant_id"`
	Subject  string            `json:"subject"`
	Content  string            `json:"content"`
	Priority string            `json:"priority"` // "Low", "Mid", "High"
	Owner    string            `json:"owner"`
	Actions  []string          `json:"actions,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Created  time.Time         `json:"created"`
}

// UserStore resolves and manages users.
type UserStore interface {
	// LookupUser finds a user by phone number (or platform sender ID).
	// Returns ErrNotFound when no user matches.
	LookupUser(ctx context.Context, phone string) (*User, error)
}

// LeadStore persists CRM leads.
type LeadStore interface {
	SaveLead(ctx context.Context, lead Lead) error
}

// TokenStore persists OAuth tokens for the calendar/email provider, keyed by
// the user's credential handle.
type TokenStore interface {
	SaveToken(ctx context.Context, ref string, tok *oauth2.Token) error
	LoadToken(ctx context.Context, ref string) (*oauth2.Token, error)
}

// Stores bundles all persistence backends handed to the gateway.
type Stores struct {
	Users  UserStore
	Leads  LeadStore
	Tokens TokenStore
}

// Config selects and parameterizes the storage backend.
type Config struct {
	Mode        string // "postgres" or "sqlite"
	PostgresDSN string
	SQLitePath  string
}
