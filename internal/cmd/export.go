package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joshdurbin/runcoach/internal/coach"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cached activities and recommendation as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		entry, err := a.store.Latest(ctx)
		if err != nil {
			return err
		}
		if entry == nil {
			return coach.NewNoDataError("no data to export, run 'runcoach recommend' first")
		}

		data, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding export: %w", err)
		}

		filename := fmt.Sprintf("running_data_%s.json", time.Now().Format("20060102_150405"))
		if err := os.WriteFile(filename, data, 0o644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}

		fmt.Printf("Data exported to %s\n", filename)
		return nil
	},
}
