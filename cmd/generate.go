package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Writes an empty workbook template",
		Long: `Creates the workbook at sheet.path with the styled header row and the
average eDPI and BFI summary cells. An existing workbook is overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			return runGenerate(cmd, appInstance)
		},
	}
}

func runGenerate(cmd *cobra.Command, appInstance App) error {
	if err := appInstance.Generate(); err != nil {
		return fmt.Errorf("generate template: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Template has been generated at %s.\n", appInstance.SheetPath())
	return nil
}
