package cmd

import (
	"fmt"
	"time"

	"github.com/joshdurbin/runcoach/internal/auth"
	"github.com/joshdurbin/runcoach/internal/logging"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Authorize with Strava via OAuth",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.cfg.HasStravaCredentials() {
			return fmt.Errorf("missing Strava credentials: set STRAVA_CLIENT_ID and STRAVA_CLIENT_SECRET in the environment or a .env file (get them from https://www.strava.com/settings/api)")
		}

		if !a.cfg.AIConfigured() {
			fmt.Println("Note: no OPENROUTER_API_KEY found - recommendations will be rule-based only.")
		}

		fmt.Println("\n=== Strava Authentication ===")
		fmt.Println("A browser window will open for you to authorize this application.")

		tokens, err := auth.Authenticate(ctx, a.cfg.StravaClientID, a.cfg.StravaClientSecret, a.cfg.StravaRedirectURI)
		if err != nil {
			return fmt.Errorf("OAuth flow failed: %w", err)
		}

		if err := a.storage.SaveFullConfig(ctx, a.cfg.StravaClientID, a.cfg.StravaClientSecret, tokens); err != nil {
			return fmt.Errorf("saving tokens: %w", err)
		}

		logging.Logger.Info().
			Str("expires_at", time.Unix(tokens.ExpiresAt, 0).Format(time.RFC3339)).
			Msg("OAuth authentication successful")

		fmt.Printf("\nSetup complete! Token expires: %s\n",
			time.Unix(tokens.ExpiresAt, 0).Format(time.RFC1123))
		fmt.Println("Run 'runcoach recommend' to get your first recommendation.")

		return nil
	},
}
