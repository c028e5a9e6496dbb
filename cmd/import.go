package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/prosettings-sheet/internal/profile"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <player-url>",
		Short: "Imports one player page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			return runImport(cmd, appInstance, args[0])
		},
	}
}

func runImport(cmd *cobra.Command, appInstance App, raw string) error {
	link, err := parsePlayerURL(raw)
	if err != nil {
		return err
	}
	p, err := appInstance.ImportOne(cmd.Context(), link)
	if err != nil {
		return fmt.Errorf("import %s: %w", link, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (eDPI %s, %s, outline %s, BFI %s)\n",
		p.Name, profile.FormatSensitivity(p.Sensitivity), p.Accessory, p.Outline, p.Brightness)
	return nil
}

func parsePlayerURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%q is not a player link or command (use \"help\")", raw)
	}
	return u.String(), nil
}
