package cmd

import (
	"errors"
	"fmt"

	"github.com/siegfried/focuscharge/internal/app"
	"github.com/spf13/cobra"
)

func newLedgerCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Manage the break charge ledger",
	}

	cmd.AddCommand(newLedgerResetCmd(flags))
	return cmd
}

func newLedgerResetCmd(flags *globalFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard every charge and all accumulated work time",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, a *app.App) error {
			if !yes {
				return errors.New("refusing to reset the ledger without --yes")
			}
			if err := a.Ledger().Reset(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Ledger reset")
			return nil
		}),
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
