package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Remove cached activities and recommendation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Clear(ctx); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}

		fmt.Println("Cache cleared.")
		return nil
	},
}
