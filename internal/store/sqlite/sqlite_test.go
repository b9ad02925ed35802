package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/nextlevelbuilder/concierge/internal/store"
)

func openTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserRoundTrip(t *testing.T) {
	users := openTestDB(t)
	ctx := context.Background()

	u := store.User{
		ID:          uuid.New(),
		TenantID:    "acme",
		DisplayName: "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "+4915112345678",
		Enabled:     true,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err := users.SaveUser(ctx, u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	got, err := users.LookupUser(ctx, u.Phone)
	if err != nil {
		t.Fatalf("LookupUser: %v", err)
	}
	if got.ID != u.ID || got.DisplayName != u.DisplayName || !got.Enabled {
		t.Errorf("got %+v, want %+v", got, u)
	}
}

func TestLookupUserNotFound(t *testing.T) {
	users := openTestDB(t)

	_, err := users.LookupUser(context.Background(), "+490000000000")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSaveLead(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer db.Close()
	leads := NewLeadStore(db)

	lead := store.Lead{
		ID:       uuid.New(),
		TenantID: "acme",
		Subject:  "Carport quote",
		Content:  "wants a carport, budget 8k",
		Priority: "High",
		Owner:    "Jane Doe",
		Actions:  []string{"call back"},
		Fields:   map[string]string{"budget": "8000"},
		Created:  time.Now().UTC(),
	}
	if err := leads.SaveLead(context.Background(), lead); err != nil {
		t.Fatalf("SaveLead: %v", err)
	}

	var subject, fields string
	err = db.QueryRow(`SELECT subject, fields FROM leads WHERE id = ?`, lead.ID.String()).
		Scan(&subject, &fields)
	if err != nil {
		t.Fatalf("query lead back: %v", err)
	}
	if subject != "Carport quote" {
		t.Errorf("subject = %q", subject)
	}
	if fields != `{"budget":"8000"}` {
		t.Errorf("fields = %q", fields)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer db.Close()
	tokens := NewTokenStore(db)
	ctx := context.Background()

	tok := &oauth2.Token{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).UTC(),
	}
	if err := tokens.SaveToken(ctx, "user-1", tok); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	got, err := tokens.LoadToken(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if got.AccessToken != "at-1" || got.RefreshToken != "rt-1" {
		t.Errorf("got %+v", got)
	}

	// Overwrite keeps a single row per ref.
	tok.AccessToken = "at-2"
	if err := tokens.SaveToken(ctx, "user-1", tok); err != nil {
		t.Fatalf("SaveToken overwrite: %v", err)
	}
	got, err = tokens.LoadToken(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if got.AccessToken != "at-2" {
		t.Errorf("overwrite not applied, got %q", got.AccessToken)
	}

	if _, err := tokens.LoadToken(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}
