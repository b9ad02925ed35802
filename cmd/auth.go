package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/nextlevelbuilder/concierge/internal/config"
	"github.com/nextlevelbuilder/concierge/internal/providers/google"
)

// authCmd runs the Google OAuth consent flow and stores the resulting
// token under a credential ref.
func authCmd() *cobra.Command {
	var credentialRef string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Calendar and Gmail access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
				return fmt.Errorf("google client not configured; set CONCIERGE_GOOGLE_CLIENT_ID and CONCIERGE_GOOGLE_CLIENT_SECRET")
			}

			stores, err := openStores(cfg)
			if err != nil {
				return err
			}

			oauthCfg := google.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
			url := oauthCfg.AuthCodeURL("state-token",
				oauth2.AccessTypeOffline, oauth2.ApprovalForce)

			fmt.Println("Open this URL in your browser and grant access:")
			fmt.Println()
			fmt.Println("  " + url)
			fmt.Println()
			fmt.Print("Paste the authorization code here: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read auth code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("empty authorization code")
			}

			ctx := context.Background()
			tok, err := google.Exchange(ctx, oauthCfg, code)
			if err != nil {
				return err
			}
			if err := stores.Tokens.SaveToken(ctx, credentialRef, tok); err != nil {
				return fmt.Errorf("save token: %w", err)
			}

			fmt.Printf("Token stored under credential ref %q. The gateway can now use Calendar and Gmail.\n", credentialRef)
			return nil
		},
	}

	cmd.Flags().StringVar(&credentialRef, "ref", defaultCredentialRef, "credential ref to store the token under")
	return cmd
}
