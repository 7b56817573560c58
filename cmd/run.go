package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/siegfried/focuscharge/internal/app"
	"github.com/spf13/cobra"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		presetID  string
		autoStart bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the timer in this terminal",
		Long:  "Run the timer in this terminal. Type h and press enter for the key list.",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, a *app.App) error {
			if presetID != "" {
				if _, err := a.SelectPreset(presetID); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), autoStart)
		}),
	}

	cmd.Flags().StringVar(&presetID, "preset", "", "select a preset before starting")
	cmd.Flags().BoolVar(&autoStart, "start", false, "start a work session immediately")
	return cmd
}
