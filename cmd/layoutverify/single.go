package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/layout-verifier/internal/entity"
	"github.com/joseph-ayodele/layout-verifier/internal/report"
	"github.com/joseph-ayodele/layout-verifier/internal/services/verify"
)

func newSingleCmd(g *globals) *cobra.Command {
	var workbook, identifier string
	cmd := &cobra.Command{
		Use:   "single <layout file>",
		Short: "Verify one layout; exits 2 when fields are missing, 3 when no record matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.profile()
			if err != nil {
				return err
			}
			resp, err := g.app.Verify.VerifySingle(cmd.Context(), verify.SingleRequest{
				Workbook:           workbook,
				Profile:            p,
				Document:           args[0],
				IdentifierOverride: identifier,
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if resp.Unresolved != nil {
				return exitError{code: 3, msg: fmt.Sprintf("no record for %s: %s", resp.Unresolved.Document, resp.Unresolved.Reason)}
			}
			printResult(w, resp.Result)
			if !resp.Result.Complete() {
				return exitError{code: 2}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&workbook, "workbook", "", "catalog workbook (.xlsx, .xlsm) (required)")
	cmd.Flags().StringVar(&identifier, "identifier", "", "record identifier to use instead of the file name")
	_ = cmd.MarkFlagRequired("workbook")
	return cmd
}

func printResult(w io.Writer, r *entity.ProductVerificationResult) {
	fmt.Fprintf(w, "%s  %s  %s  %s\n", r.Identifier, r.Document, report.Status(r), report.RateText(r))
	if r.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", r.Error)
	}
	for _, f := range r.Fields {
		mark := "✗"
		if f.Matched {
			mark = "✓"
		}
		fmt.Fprintf(w, "  %s %-30s %q (%s)\n", mark, f.Field, f.Expected, f.Strategy)
	}
}
