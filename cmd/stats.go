package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/siegfried/focuscharge/internal/app"
	"github.com/siegfried/focuscharge/internal/stats"
	"github.com/siegfried/focuscharge/internal/ui"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func newStatsCmd(flags *globalFlags) *cobra.Command {
	var (
		date   string
		recent int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show session history",
		RunE: withApp(flags, func(cmd *cobra.Command, _ []string, a *app.App) error {
			day := time.Now()
			if date != "" {
				parsed, err := time.ParseInLocation(dateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
				}
				day = parsed
			}

			summary, err := a.Stats().DailySummary(day)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s\n", day.Format(dateLayout))
			_, _ = fmt.Fprintf(out, "  focused:    %s\n", ui.FormatMinutes(summary.WorkMinutes))
			_, _ = fmt.Fprintf(out, "  work:       %d completed\n", summary.WorkSessionsCompleted)
			_, _ = fmt.Fprintf(out, "  breaks:     %d completed\n", summary.BreakSessionsCompleted)
			_, _ = fmt.Fprintf(out, "  stopped:    %d\n", summary.SessionsStopped)
			_, _ = fmt.Fprintf(out, "  charges:    %d used\n", summary.ChargesUsed)
			_, _ = fmt.Fprintf(out, "  completion: %.0f%%\n", summary.CompletionRate)

			if recent <= 0 {
				return nil
			}
			records, err := a.Stats().Recent(recent)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, "recent:")
			if len(records) == 0 {
				_, _ = fmt.Fprintln(out, "  none")
			}
			for _, rec := range records {
				_, _ = fmt.Fprintf(out, "  %s\n", sessionLine(rec))
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&date, "date", "", "day to summarize (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&recent, "recent", 10, "number of recent sessions to list (0 hides them)")
	return cmd
}

func sessionLine(rec stats.SessionRecord) string {
	state := "completed"
	if !rec.Completed {
		state = "stopped"
	}
	line := fmt.Sprintf("%-10s %-9s %s (%s)", rec.Kind, state, ui.FormatClock(int(rec.ActiveDuration().Seconds())), humanize.Time(rec.EndedAt))
	if rec.ChargeUsed {
		line += " +charge"
	}
	return line
}
