package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const shellPrompt = `please insert the link of the player that you want to import, or any command (use "help" for a list of commands): `

const shellHelp = ` - Pasting any player's link from prosettings.net will add a new entry in the first empty row.
 - "generate": Generates the base template into which you can start importing valorant players.
 - "update": Updates all existing entries.
 - "exit": Closes the script.
`

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive loop: paste player links or type commands",
		Args:  cobra.NoArgs,
		RunE:  runShellCommand,
	}
}

func runShellCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	return runShell(cmd, appInstance, cmd.InOrStdin())
}

// runShell reads one command per line until "exit" or end of input. Errors
// from a single command are printed and the loop continues.
func runShell(cmd *cobra.Command, appInstance App, in io.Reader) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, shellPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		var err error
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit":
			return nil
		case "help":
			fmt.Fprint(out, shellHelp)
		case "generate":
			err = runGenerate(cmd, appInstance)
		case "update":
			err = runUpdate(cmd, appInstance)
		default:
			err = runImport(cmd, appInstance, line)
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}
