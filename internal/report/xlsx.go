package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

const (
	resultsSheet    = "Results"
	unresolvedSheet = "Unresolved"
)

// RenderXLSX returns a workbook (as bytes) with one row per result and a sheet of unresolved layouts.
func RenderXLSX(s *entity.VerificationSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(unresolvedSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(resultsSheet)
	f.SetActiveSheet(activeIndex)

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	headers := []string{"Item#", "Layout File", "Status", "Total Fields", "Matched", "Missing", "Success Rate", "Missing Fields", "Error"}
	writeRow(f, resultsSheet, 1, toAny(headers))
	_ = f.SetRowStyle(resultsSheet, 1, 1, header)

	row := 2
	for i := range s.Results {
		r := &s.Results[i]
		var rate any = ""
		if v, ok := r.Rate(); ok {
			rate = v
		}
		writeRow(f, resultsSheet, row, []any{
			r.Identifier,
			r.Document,
			Status(r),
			r.TotalFields,
			r.MatchedFields,
			r.MissingFields,
			rate,
			strings.Join(r.Missing, "; "),
			r.Error,
		})
		row++
	}

	writeRow(f, unresolvedSheet, 1, []any{"Layout File", "Identifier", "Reason"})
	_ = f.SetRowStyle(unresolvedSheet, 1, 1, header)
	for i, u := range s.Unresolved {
		writeRow(f, unresolvedSheet, i+2, []any{u.Document, u.Identifier, u.Reason})
	}

	// Widen a few columns
	_ = f.SetColWidth(resultsSheet, "A", "A", 14) // item
	_ = f.SetColWidth(resultsSheet, "B", "B", 40) // file
	_ = f.SetColWidth(resultsSheet, "C", "C", 20) // status
	_ = f.SetColWidth(resultsSheet, "H", "I", 48) // missing, error
	_ = f.SetColWidth(unresolvedSheet, "A", "A", 40)
	_ = f.SetColWidth(unresolvedSheet, "C", "C", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
