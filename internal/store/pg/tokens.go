package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/oauth2"

	"github.com/nextlevelbuilder/concierge/internal/store"
)

// TokenStore implements store.TokenStore backed by Postgres. Tokens are
// stored as JSON, keyed by the user's credential ref.
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
		`INSERT INTO oauth_tokens (ref, token, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (ref) DO UPDATE SET token = $2, updated_at = $3`,
		ref, data, time.Now().UTC(),
	)
	return err
}

func (s *TokenStore) LoadToken(ctx context.Context, ref string) (*oauth2.Token, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM oauth_tokens WHERE ref = $1`, ref).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, err
	}
	return tok, nil
}
