package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/layout-verifier/internal/entity"
	"github.com/joseph-ayodele/layout-verifier/internal/report"
	"github.com/joseph-ayodele/layout-verifier/internal/services/verify"
)

type batchFlags struct {
	workbook  string
	dir       string
	recursive bool
	format    string
	out       string
	record    bool
	failOn    bool
}

func (f *batchFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.workbook, "workbook", "", "catalog workbook (.xlsx, .xlsm) (required)")
	fl.StringVar(&f.dir, "dir", "", "directory of layout files")
	fl.BoolVar(&f.recursive, "recursive", false, "scan --dir recursively")
	fl.StringVar(&f.format, "format", string(report.FormatTable), "report format: "+strings.Join(report.Names(), ", "))
	fl.StringVar(&f.out, "out", "", "write the report to this file instead of stdout")
	fl.BoolVar(&f.record, "record", true, "store the run in history when DB_DRIVER is set")
	fl.BoolVar(&f.failOn, "fail-on-incomplete", false, "exit 2 unless every layout verified completely")
	_ = cmd.MarkFlagRequired("workbook")
}

func newBatchCmd(g *globals) *cobra.Command {
	f := &batchFlags{}
	cmd := &cobra.Command{
		Use:   "batch [layout files...]",
		Short: "Verify many layouts against the workbook and print a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := runBatch(cmd, g, f, args)
			if err != nil {
				return err
			}
			if err := writeReport(cmd, summary, f.format, f.out); err != nil {
				return err
			}
			if f.failOn && (summary.Complete != summary.DocumentsProcessed || summary.UnresolvedCount > 0) {
				return exitError{code: 2}
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func runBatch(cmd *cobra.Command, g *globals, f *batchFlags, docs []string) (*entity.VerificationSummary, error) {
	p, err := g.profile()
	if err != nil {
		return nil, err
	}
	resp, err := g.app.Verify.VerifyBatch(cmd.Context(), verify.BatchRequest{
		Workbook:  f.workbook,
		Profile:   p,
		Documents: docs,
		Directory: f.dir,
		Recursive: f.recursive,
		Record:    f.record,
	})
	if resp != nil && resp.Summary != nil && err != nil {
		g.logger.Warn("batch interrupted, reporting finished documents", "error", err)
		return resp.Summary, nil
	}
	if err != nil {
		return nil, err
	}
	if resp.Scan.Failed > 0 {
		g.logger.Warn("some directory entries could not be read", "failed", resp.Scan.Failed)
	}
	return resp.Summary, nil
}

func writeReport(cmd *cobra.Command, summary *entity.VerificationSummary, format, out string) error {
	ft, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	opts := report.Options{GeneratedAt: time.Now()}
	if out != "" {
		if err := report.WriteFile(out, summary, ft, opts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", out)
		return nil
	}
	if ft == report.FormatXLSX {
		return errors.New("xlsx reports need --out")
	}
	return report.Render(cmd.OutOrStdout(), summary, ft, opts)
}
