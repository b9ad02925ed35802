package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/nextlevelbuilder/concierge/internal/store"
)

// UserStore implements store.UserStore backed by SQLite.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) LookupUser(ctx context.Context, phone string) (*store.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, display_name, email, phone, enabled, credential_ref, created_at
		 FROM users WHERE phone = ?`, phone)

	var u store.User
	var id string
	err := row.Scan(&id, &u.TenantID, &u.DisplayName, &u.Email, &u.Phone,
		&u.Enabled, &u.CredentialRef, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveUser inserts or replaces a user row, for provisioning and tests.
func (s *UserStore) SaveUser(ctx context.Context, u store.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO users (id, tenant_id, display_name, email, phone, enabled, credential_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.TenantID, u.DisplayName, u.Email, u.Phone,
		u.Enabled, u.CredentialRef, u.CreatedAt,
	)
	return err
}

// LeadStore implements store.LeadStore backed by SQLite.
type LeadStore struct {
	db *sql.DB
}

func NewLeadStore(db *sql.DB) *LeadStore {
	return &LeadStore{db: db}
}

func (s *LeadStore) SaveLead(ctx context.Context, lead store.Lead) error {
	actions, err := json.Marshal(lead.Actions)
	if err != nil {
		return err
	}
	fields, err := json.Marshal(lead.Fields)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (id, tenant_id, subject, content, priority, owner, actions, fields, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID.String(), lead.TenantID, lead.Subject, lead.Content, lead.Priority,
		lead.Owner, string(actions), string(fields), lead.Created,
	)
	return err
}

// TokenStore implements store.TokenStore backed by SQLite.
type TokenStore struct {
	db *sql.DB
}

func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

func (s *TokenStore) SaveToken(ctx context.Context, ref string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO oauth_tokens (ref, token, updated_at) VALUES (?, ?, ?)`,
		ref, string(data), time.Now().UTC(),
	)
	return err
}

func (s *TokenStore) LoadToken(ctx context.Context, ref string) (*oauth2.Token, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM oauth_tokens WHERE ref = ?`, ref).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal([]byte(data), tok); err != nil {
		return nil, err
	}
	return tok, nil
}
