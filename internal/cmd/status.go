package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joshdurbin/runcoach/internal/cache"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection and cache status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Println("=== runcoach status ===")

		tokens, err := a.storage.LoadTokens(ctx)
		if err != nil {
			fmt.Println("Strava connected: no (run 'runcoach setup')")
		} else {
			expiry := time.Unix(tokens.ExpiresAt, 0)
			fmt.Printf("Strava connected: yes (token expires %s)\n", humanize.Time(expiry))
		}

		if a.cfg.AIConfigured() {
			fmt.Printf("AI configured:    yes (model %s)\n", a.cfg.AIModel)
		} else {
			fmt.Println("AI configured:    no (rule-based only)")
		}

		entry, err := a.store.Latest(ctx)
		switch {
		case err != nil:
			fmt.Printf("Cache:            unreadable (%v)\n", err)
		case entry == nil:
			fmt.Println("Cache:            empty")
		case entry.Age(time.Now()) < cache.TTL:
			expires := entry.FetchedAt.Add(cache.TTL)
			fmt.Printf("Cache:            fresh, %d runs, refreshes %s\n",
				len(entry.Activities), humanize.Time(expires))
		default:
			fmt.Printf("Cache:            stale (fetched %s, %d runs)\n",
				humanize.Time(entry.FetchedAt), len(entry.Activities))
		}

		return nil
	},
}
