package cmd

import (
	"fmt"
	"os"

	"github.com/joshdurbin/runcoach/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbosity int
	dbPath    string
)

var rootCmd = &cobra.Command{
	Use:   "runcoach",
	Short: "AI running coach - personalized run recommendations from your Strava history",
	Long: `runcoach fetches your recent runs from Strava and suggests when, how long,
and how hard to run today. Recommendations come from a hosted free-tier
language model when an OpenRouter API key is configured, with a
deterministic rule-based fallback; fetched data and the recommendation are
cached for 24 hours to save API calls.

On first use, run 'runcoach setup' to authorize with Strava. Credentials
are read from the environment (or a .env file): STRAVA_CLIENT_ID,
STRAVA_CLIENT_SECRET, and optionally OPENROUTER_API_KEY.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set up logging based on verbosity before any command runs
		logging.Setup(logging.Level(verbosity))
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v for debug, -vv for trace with HTTP headers)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database file (default $RUNCOACH_DB or runcoach.db)")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(clearCacheCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
