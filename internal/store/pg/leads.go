package pg

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/nextlevelbuilder/concierge/internal/store"
)

// LeadStore implements store.LeadStore backed by Postgres.
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
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		lead.ID, lead.TenantID, lead.Subject, lead.Content, lead.Priority,
		lead.Owner, actions, fields, lead.Created,
	)
	return err
}
