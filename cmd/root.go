package cmd

import (
	"os"

	"github.com/siegfried/focuscharge/internal/app"
	"github.com/spf13/cobra"
)

const logLevelEnv = "FOCUSCHARGE_LOG_LEVEL"

// Version is stamped at build time with -ldflags "-X .../cmd.Version=..."
var Version = "dev"

type globalFlags struct {
	home     string
	logLevel string
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "focuscharge",
		Short: "Pomodoro timer that earns break charges",
		Long: "focuscharge runs work/break sessions in the terminal. Every block of " +
			"completed work time earns a break charge that can extend a later break.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&flags.home, "home", "", "data directory (default $FOCUSCHARGE_HOME or the user config dir)")
	defaultLevel := app.DefaultLogLevel
	if v := os.Getenv(logLevelEnv); v != "" {
		defaultLevel = v
	}
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", defaultLevel, "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(flags),
		newStatusCmd(flags),
		newPresetsCmd(flags),
		newSettingsCmd(flags),
		newStatsCmd(flags),
		newLedgerCmd(flags),
	)

	return rootCmd
}

// withApp opens the application for one command and shuts it down afterwards
func withApp(flags *globalFlags, fn func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := app.New(app.Options{
			DataDir:   flags.home,
			LogLevel:  flags.logLevel,
			LogOutput: cmd.ErrOrStderr(),
			Version:   Version,
		})
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := a.Shutdown(); err == nil {
				err = closeErr
			}
		}()
		return fn(cmd, args, a)
	}
}
