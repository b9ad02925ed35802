// Package google wires Google Calendar and Gmail behind the dispatch
// provider contracts, with OAuth tokens persisted in the token store.
package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"

	"github.com/nextlevelbuilder/concierge/internal/store"
)

// oobRedirectURL is the desktop-app flow fallback when no redirect is
// configured.
const oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// OAuthConfig builds the OAuth2 config used for both the consent flow and
// authenticated API clients.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	if redirectURL == "" {
		redirectURL = oobRedirectURL
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			calendar.CalendarEventsScope,
			gmail.GmailSendScope,
		},
		Endpoint: googleoauth.Endpoint,
	}
}

// Exchange trades an auth code for a token, for the auth command.
func Exchange(ctx context.Context, cfg *oauth2.Config, authCode string) (*oauth2.Token, error) {
	tok, err := cfg.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("google: exchange auth code: %w", err)
	}
	return tok, nil
}

// storeTokenSource refreshes tokens through the OAuth config and writes
// refreshed tokens back to the token store, so long-lived deployments keep
// working past the initial token expiry.
type storeTokenSource struct {
	ctx    context.Context
	cfg    *oauth2.Config
	tokens store.TokenStore
	ref    string
	base   oauth2.TokenSource
	last   *oauth2.Token
}

// TokenSource returns a token source for the user's credential ref.
func TokenSource(ctx context.Context, cfg *oauth2.Config, tokens store.TokenStore, ref string) (oauth2.TokenSource, error) {
	tok, err := tokens.LoadToken(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("google: load token %q: %w", ref, err)
	}
	return &storeTokenSource{
		ctx:    ctx,
		cfg:    cfg,
		tokens: tokens,
		ref:    ref,
		base:   cfg.TokenSource(ctx, tok),
		last:   tok,
	}, nil
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	// Persist refreshed tokens so restarts pick up the new refresh token.
	if s.last == nil || tok.AccessToken != s.last.AccessToken {
		if err := s.tokens.SaveToken(s.ctx, s.ref, tok); err != nil {
			return nil, fmt.Errorf("google: persist refreshed token: %w", err)
		}
		s.last = tok
	}
	return tok, nil
}
