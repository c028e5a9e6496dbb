package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Re-imports every player in the workbook",
		Long: `Reads the player names from the first column and re-imports each
player's page concurrently. Players that fail are reported and left
unchanged; the rest are still written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			return runUpdate(cmd, appInstance)
		},
	}
}

func runUpdate(cmd *cobra.Command, appInstance App) error {
	summary, err := appInstance.Update(cmd.Context())
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, f := range summary.Failures {
		fmt.Fprintf(out, "Error updating %s: %v\n", f.Key, f.Err)
	}
	fmt.Fprintf(out, "%d entries have been updated!\n", summary.Succeeded)
	return nil
}
