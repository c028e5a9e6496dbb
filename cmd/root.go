package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/prosettings-sheet/internal/app"
	"github.com/JakeFAU/prosettings-sheet/internal/config"
	"github.com/JakeFAU/prosettings-sheet/internal/logging"
	"github.com/JakeFAU/prosettings-sheet/internal/profile"
	"github.com/JakeFAU/prosettings-sheet/internal/worker"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands will use.
// This allows us to inject a fake app during tests.
type App interface {
	Close()
	Logger() *zap.Logger
	SheetPath() string
	Generate() error
	Update(ctx context.Context) (worker.Summary, error)
	ImportOne(ctx context.Context, url string) (profile.Profile, error)
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(cfgFile string) (App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.WithLevel(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// newRootCmd creates and configures the root command. Without a subcommand
// it starts the interactive shell.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "prosheet",
		Short: "Keeps a spreadsheet of pro player settings in sync with prosettings.net.",
		Long: `prosheet imports player pages into an Excel workbook: one row per player
with eDPI, mousepad, enemy outline color and brightness boost (BFI).
Rows are updated in place when the player already exists and appended
at the first empty row otherwise.`,
		SilenceUsage: true,

		// Build the application once flags are parsed and before any RunE.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},

		RunE: runShellCommand,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, TOML or JSON)")

	cmd.AddCommand(
		newGenerateCmd(),
		newUpdateCmd(),
		newImportCmd(),
		newShellCmd(),
	)
	return cmd
}

// Execute is the main entry point.
func Execute() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		logger, lerr := logging.New(false)
		if lerr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger.Fatal("Command execution failed", zap.Error(err))
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
