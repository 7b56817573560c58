package cmd

import (
	"fmt"

	"github.com/siegfried/focuscharge/internal/app"
	"github.com/siegfried/focuscharge/internal/config"
	"github.com/spf13/cobra"
)

func newSettingsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change settings",
	}

	cmd.AddCommand(
		newSettingsListCmd(flags),
		newSettingsGetCmd(flags),
		newSettingsSetCmd(flags),
	)

	return cmd
}

func newSettingsListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every setting",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, a *app.App) error {
			s := a.Settings().Get()
			for _, key := range config.Keys() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, s.Get(key))
			}
			return nil
		}),
	}
}

func newSettingsGetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, args []string, a *app.App) error {
			key := args[0]
			if !config.IsKnown(key) {
				return fmt.Errorf("%w: %q", config.ErrUnknownSetting, key)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), a.Settings().Get().Get(key))
			return err
		}),
	}
}

func newSettingsSetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(flags, func(cmd *cobra.Command, args []string, a *app.App) error {
			if err := a.Settings().Set(args[0], args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], a.Settings().Get().Get(args[0]))
			return nil
		}),
	}
}
