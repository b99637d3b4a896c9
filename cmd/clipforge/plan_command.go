package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"clipforge/internal/analysis"
	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/notifications"
	"clipforge/internal/queue"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <file>",
		Short: "Analyze a recording and print the clip plan without rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("inspect source %q: %w", path, err)
			}

			base := filepath.Base(path)
			item := &queue.Item{
				SourcePath: path,
				Title:      strings.TrimSuffix(base, filepath.Ext(base)),
			}

			handler := analysis.NewHandler(cfg, logging.NewNop(), notifications.NewNoop())
			if err := handler.Prepare(cmd.Context(), item); err != nil {
				return err
			}
			if err := handler.Execute(cmd.Context(), item); err != nil {
				return err
			}

			report, err := analysis.ParseReport(item.PlanJSON)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Source: %s (%s, %s)\n", path,
				formatClock(report.DurationSec), humanize.IBytes(uint64(info.Size())))
			fmt.Fprintf(out, "Silence threshold: %.3f\n", report.Threshold)
			if report.DroppedBoring > 0 {
				fmt.Fprintf(out, "Dropped as boring: %d\n", report.DroppedBoring)
			}

			rows := make([][]string, 0, len(report.Plans))
			for _, plan := range report.Plans {
				cuts := make([]string, 0, len(plan.Ranges))
				for _, r := range plan.Ranges {
					cuts = append(cuts, fmt.Sprintf("%s-%s", formatClock(r.Start), formatClock(r.End)))
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", plan.Index),
					formatClock(plan.Segment.Start),
					formatClock(plan.Segment.End),
					fmt.Sprintf("%.1fs", plan.Duration()),
					strings.Join(cuts, " "),
				})
			}
			table := renderTable(
				[]string{"Clip", "Start", "End", "Length", "Cut Order"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
			)
			fmt.Fprintln(out, table)
			return nil
		},
	}
}

func formatClock(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
