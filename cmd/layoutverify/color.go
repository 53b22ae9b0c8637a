package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/layout-verifier/internal/export"
)

func newColorCmd(g *globals) *cobra.Command {
	f := &batchFlags{}
	var output string
	cmd := &cobra.Command{
		Use:   "color [layout files...]",
		Short: "Verify layouts and color the workbook cells green, red or yellow",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := runBatch(cmd, g, f, args)
			if err != nil {
				return err
			}
			p, err := g.profile()
			if err != nil {
				return err
			}
			res, err := export.NewColorizer(g.logger).Color(cmd.Context(), export.ColorRequest{
				Workbook:         f.workbook,
				Output:           output,
				Sheet:            p.Sheet,
				IdentifierColumn: p.IdentifierColumn,
				Columns:          p.Columns,
				Summary:          summary,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "colored %s: %d products (%d green, %d red, %d yellow), %d not in any layout\n",
				res.Output, res.ProductsFound, res.Green, res.Red, res.Yellow, res.ProductsNotFound)
			if f.out != "" {
				return writeReport(cmd, summary, f.format, f.out)
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&output, "output", "", "colored workbook path (default: overwrite --workbook)")
	return cmd
}
