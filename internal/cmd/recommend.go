package cmd

import (
	"github.com/joshdurbin/runcoach/internal/coach"
	"github.com/spf13/cobra"
)

var (
	freeOnly    bool
	stalePolicy string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get today's run recommendation",
	Long: `Fetches your recent runs (or reuses data cached within the last 24 hours)
and suggests when, how long, and how hard to run today. With an OpenRouter
API key configured the suggestion comes from a hosted model; --free skips
the model and uses the deterministic rule-based analyzer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		policy, err := coach.ParseStalePolicy(stalePolicy)
		if err != nil {
			return err
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		svc := a.newCoach(policy)

		result, err := svc.Recommend(ctx, !freeOnly)
		if err != nil {
			return err
		}

		printRecommendation(result)
		return nil
	},
}

func init() {
	recommendCmd.Flags().BoolVar(&freeOnly, "free", false, "use rule-based analysis only (no model API call)")
	recommendCmd.Flags().StringVar(&stalePolicy, "stale-policy", string(coach.StaleServe), "what to do when the fetch fails and only stale cache exists: serve|fail")
}
