package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newHistoryCmd(g *globals) *cobra.Command {
	var (
		limit int
		runID string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded verification runs, or the rows of one run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if runID != "" {
				run, rows, err := g.app.Verify.RunResults(cmd.Context(), runID)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "run %s  %s  %s  overall %.1f%%\n", run.ID, run.Status, run.Source, run.OverallSuccessRate)
				t := tablewriter.NewTable(w)
				t.Header("#", "Item#", "Layout File", "Status", "Matched", "Total", "Missing")
				for _, r := range rows {
					if err := t.Append(r.Seq+1, r.Identifier, r.Document, r.Status, r.MatchedFields, r.TotalFields, strings.Join(r.Missing, ", ")); err != nil {
						return err
					}
				}
				return t.Render()
			}

			runs, err := g.app.Verify.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			t := tablewriter.NewTable(w)
			t.Header("Run", "Started", "Status", "Source", "Layouts", "Complete", "Overall")
			for _, r := range runs {
				if err := t.Append(r.ID.String(), r.StartedAt.Local().Format(time.DateTime), r.Status, r.Source,
					r.DocumentsSupplied, r.Complete, fmt.Sprintf("%.1f%%", r.OverallSuccessRate)); err != nil {
					return err
				}
			}
			return t.Render()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "show the stored rows of this run")
	return cmd
}
