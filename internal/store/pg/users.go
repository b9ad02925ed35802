package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nextlevelbuilder/concierge/internal/store"
)

// UserStore implements store.UserStore backed by Postgres.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userSelectCols = `id, tenant_id, display_name, email, phone, enabled, credential_ref, created_at`

func (s *UserStore) LookupUser(ctx context.Context, phone string) (*store.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userSelectCols+` FROM users WHERE phone = $1`, phone)

	var u store.User
	var email, credRef sql.NullString
	err := row.Scan(&u.ID, &u.TenantID, &u.DisplayName, &email, &u.Phone,
		&u.Enabled, &credRef, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Email = email.String
	u.CredentialRef = credRef.String
	return &u, nil
}
