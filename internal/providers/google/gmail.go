package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailClient sends mail through the user's Gmail account.
// Implements the dispatch EmailSender contract.
type GmailClient struct {
	service *gmail.Service
}

// NewGmailClient builds an authenticated Gmail client.
func NewGmailClient(ctx context.Context, ts oauth2.TokenSource) (*GmailClient, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("google: create gmail service: %w", err)
	}
	return &GmailClient{service: service}, nil
}

// SendEmail sends a plain-text message from the authenticated account.
func (g *GmailClient) SendEmail(ctx context.Context, to, subject, body string) error {
	raw := buildRFC822(to, subject, body)
	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	// "me" addresses the authenticated user.
	if _, err := g.service.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("google: send mail to %s: %w", to, err)
	}

	slog.Info("gmail message sent", "to", to, "subject", subject)
	return nil
}

// buildRFC822 assembles a minimal RFC 822 plain-text message.
func buildRFC822(to, subject, body string) string {
	var sb strings.Builder
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return sb.String()
}
