package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/siegfried/focuscharge/internal/app"
	"github.com/siegfried/focuscharge/internal/preset"
	"github.com/spf13/cobra"
)

func newPresetsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage work/break presets",
	}

	cmd.AddCommand(
		newPresetsListCmd(flags),
		newPresetsSelectCmd(flags),
		newPresetsAddCmd(flags),
		newPresetsUpdateCmd(flags),
		newPresetsRemoveCmd(flags),
	)

	return cmd
}

func newPresetsListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and custom presets",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, a *app.App) error {
			selected := a.Presets().SelectedID()
			var (
				lines   []string
				section preset.Section = "-"
			)
			for _, p := range a.Presets().List() {
				heading := p.Section
				if !p.BuiltIn {
					heading = "Custom"
				}
				if heading != section {
					section = heading
					lines = append(lines, "", string(section))
				}
				lines = append(lines, presetLine(p, p.ID == selected))
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), lipgloss.JoinVertical(lipgloss.Left, lines...))
			return err
		}),
	}
}

func newPresetsSelectCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Make a preset active",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, args []string, a *app.App) error {
			p, err := a.SelectPreset(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Selected %s (%s)\n", p.Name, p.ID)
			return nil
		}),
	}
}

type presetFlags struct {
	name        string
	work        float64
	rest        float64
	description string
}

func (f *presetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "preset name")
	cmd.Flags().Float64Var(&f.work, "work", 25, "work minutes (1-180)")
	cmd.Flags().Float64Var(&f.rest, "break", 5, "break minutes (1-60)")
	cmd.Flags().StringVar(&f.description, "description", "", "short description")
}

func (f *presetFlags) input() preset.Input {
	return preset.Input{
		Name:                 f.name,
		WorkDurationMinutes:  f.work,
		BreakDurationMinutes: f.rest,
		Description:          f.description,
	}
}

func newPresetsAddCmd(flags *globalFlags) *cobra.Command {
	pf := &presetFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a custom preset",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, a *app.App) error {
			p, err := a.Presets().Create(pf.input())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", presetLine(p, false))
			return nil
		}),
	}
	pf.register(cmd)
	return cmd
}

func newPresetsUpdateCmd(flags *globalFlags) *cobra.Command {
	pf := &presetFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a custom preset",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, args []string, a *app.App) error {
			p, err := a.UpdatePreset(args[0], pf.input())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", presetLine(p, false))
			return nil
		}),
	}
	pf.register(cmd)
	return cmd
}

func newPresetsRemoveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a custom preset",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, args []string, a *app.App) error {
			if err := a.DeletePreset(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		}),
	}
}

func presetLine(p preset.Preset, selected bool) string {
	marker := " "
	if selected {
		marker = "*"
	}
	line := fmt.Sprintf("%s %-18s %-26s %3dm / %2dm", marker, p.ID, p.Name, p.WorkDurationMinutes, p.BreakDurationMinutes)
	if p.Description != "" {
		line += "  " + p.Description
	}
	return line
}
