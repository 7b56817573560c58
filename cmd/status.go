package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/siegfried/focuscharge/internal/app"
	"github.com/siegfried/focuscharge/internal/preset"
	"github.com/siegfried/focuscharge/internal/stats"
	"github.com/siegfried/focuscharge/internal/timer"
	"github.com/siegfried/focuscharge/internal/ui"
	"github.com/spf13/cobra"
)

type statusReport struct {
	Preset   preset.Preset       `json:"preset"`
	Charging bool                `json:"breakChargingEnabled"`
	Snapshot timer.Snapshot      `json:"snapshot"`
	Today    *stats.DailySummary `json:"today,omitempty"`
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active preset and break charge balance",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, a *app.App) error {
			report := statusReport{
				Preset:   a.Registry().ActivePreset(),
				Charging: a.Registry().Settings().BreakChargingEnabled(),
				Snapshot: a.Status(),
			}
			if today, err := a.Stats().DailySummary(time.Now()); err == nil {
				report.Today = today
			} else {
				a.Logger().Warn("failed to load today's summary", "error", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return writeStatus(cmd.OutOrStdout(), report)
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")
	return cmd
}

func writeStatus(w io.Writer, r statusReport) error {
	p := r.Preset
	lines := []string{
		fmt.Sprintf("preset: %s (%dm work / %dm break)", p.Name, p.WorkDurationMinutes, p.BreakDurationMinutes),
	}

	if !r.Charging {
		lines = append(lines, "break charging: off")
	} else {
		s := r.Snapshot
		lines = append(lines,
			fmt.Sprintf("charges: %s", humanize.Comma(int64(s.ChargesLeft))),
			fmt.Sprintf("next charge in: %s (%.0f%%)", ui.FormatMinutes(s.TimeLeftTillNextCharge/60), s.ChargeProgressPercentage),
		)
		if s.IsOnCooldown {
			lines = append(lines, fmt.Sprintf("cooldown: %d %s left", s.CooldownBreaksLeft, plural(s.CooldownBreaksLeft, "break", "breaks")))
		} else {
			lines = append(lines, "cooldown: ready")
		}
	}

	if t := r.Today; t != nil {
		lines = append(lines, fmt.Sprintf("today: %d work, %d breaks, %s focused",
			t.WorkSessionsCompleted, t.BreakSessionsCompleted, ui.FormatMinutes(t.WorkMinutes)))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
