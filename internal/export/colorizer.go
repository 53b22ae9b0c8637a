// Package export writes verification outcomes back into the source workbook as cell fills.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

// Fill colors (RGB hex).
const (
	ColorMatched   = "90EE90"
	ColorMissing   = "FFB6B6"
	ColorUnchecked = "FFFACD"
)

type CellColor struct {
	Cell   string `json:"cell"`
	Row    int    `json:"row"`
	Column string `json:"column"`
	Color  string `json:"color"` // "green" | "red" | "yellow"
	Value  string `json:"value"`
}

type ColorRequest struct {
	Workbook         string
	Output           string // empty overwrites Workbook
	Sheet            string // empty -> first sheet
	IdentifierColumn string // empty -> constants.IdentifierColumn
	// Columns are the known columns; cells in them that were not verified turn yellow.
	// Empty -> constants.DefaultColumns plus the summary's columns.
	Columns []string
	Summary *entity.VerificationSummary
}

type ColoringResult struct {
	Workbook         string      `json:"workbook"`
	Output           string      `json:"output"`
	ProductsFound    int         `json:"products_found"`
	ProductsNotFound int         `json:"products_not_found"`
	Green            int         `json:"green"`
	Red              int         `json:"red"`
	Yellow           int         `json:"yellow"`
	Cells            []CellColor `json:"cells"`
}

type Colorizer struct {
	logger *slog.Logger
}

func NewColorizer(logger *slog.Logger) *Colorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Colorizer{logger: logger}
}

// Color paints matched cells green, missing cells red and unchecked non-empty cells yellow.
// Rows of products without a verified layout are left untouched. Existing styles keep everything but the fill.
func (c *Colorizer) Color(ctx context.Context, req ColorRequest) (*ColoringResult, error) {
	if req.Summary == nil {
		return nil, fmt.Errorf("%w: no summary to color", common.ErrInvalidInput)
	}
	if req.IdentifierColumn == "" {
		req.IdentifierColumn = constants.IdentifierColumn
	}
	if req.Output == "" {
		req.Output = req.Workbook
	}

	f, err := excelize.OpenFile(req.Workbook)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := req.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, common.ConfigurationError("sheet %q is empty", sheet)
	}

	known := req.Columns
	if len(known) == 0 {
		known = append(append([]string(nil), constants.DefaultColumns...), req.Summary.Columns...)
	}
	cols := columnIndices(rows[0], append(append([]string(nil), known...), req.IdentifierColumn))
	idIdx, ok := findColumn(cols, req.IdentifierColumn)
	if !ok {
		return nil, common.ConfigurationError("could not find %q column in %s", req.IdentifierColumn, sheet)
	}

	p := &painter{f: f, sheet: sheet, styles: map[styleKey]int{}}
	res := &ColoringResult{Workbook: req.Workbook, Output: req.Output, Cells: make([]CellColor, 0)}

	for _, item := range fieldOutcomes(req.Summary) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := findRow(rows, idIdx, item.id)
		if row == 0 {
			c.logger.Warn("identifier not found in workbook", "identifier", item.id)
			res.ProductsNotFound++
			continue
		}
		res.ProductsFound++

		for _, col := range cols {
			if col.index == idIdx.index {
				continue
			}
			value := valueAt(rows, row, col.index)
			matched, checked := item.fields[col.key]
			var color, name string
			switch {
			case checked && matched:
				color, name = ColorMatched, "green"
				res.Green++
			case checked:
				color, name = ColorMissing, "red"
				res.Red++
			case value != "":
				color, name = ColorUnchecked, "yellow"
				res.Yellow++
			default:
				continue
			}
			cell, err := p.fill(col.index+1, row, color)
			if err != nil {
				return nil, err
			}
			res.Cells = append(res.Cells, CellColor{Cell: cell, Row: row, Column: col.header, Color: name, Value: clip(value, 50)})
		}
	}

	if err := f.SaveAs(req.Output); err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}
	c.logger.Info("workbook colored",
		"output", req.Output,
		"green", res.Green,
		"red", res.Red,
		"yellow", res.Yellow,
		"products_not_found", res.ProductsNotFound,
	)
	return res, nil
}

type column struct {
	key    string
	index  int
	header string
}

// columnIndices returns the known columns present in the header, in sheet order.
func columnIndices(header []string, known []string) []column {
	want := make(map[string]struct{}, len(known))
	for _, k := range known {
		want[constants.ColumnKey(k)] = struct{}{}
	}
	seen := make(map[string]struct{}, len(known))
	var out []column
	for i, h := range header {
		key := constants.ColumnKey(h)
		if _, ok := want[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, column{key: key, index: i, header: strings.TrimSpace(h)})
	}
	return out
}

func findColumn(cols []column, name string) (column, bool) {
	key := constants.ColumnKey(name)
	for _, c := range cols {
		if c.key == key {
			return c, true
		}
	}
	return column{}, false
}

type outcome struct {
	id     string
	fields map[string]bool
}

// fieldOutcomes merges results per identifier in summary order; a field counts as matched when any layout had it.
func fieldOutcomes(s *entity.VerificationSummary) []outcome {
	var out []outcome
	pos := map[string]int{}
	for _, r := range s.Results {
		if r.Status != constants.DocumentStatusVerified {
			continue
		}
		i, ok := pos[r.Identifier]
		if !ok {
			i = len(out)
			pos[r.Identifier] = i
			out = append(out, outcome{id: r.Identifier, fields: map[string]bool{}})
		}
		for _, f := range r.Fields {
			key := constants.ColumnKey(f.Field)
			out[i].fields[key] = out[i].fields[key] || f.Matched
		}
	}
	return out
}

// findRow returns the 1-based sheet row holding id, or 0.
func findRow(rows [][]string, idCol column, id string) int {
	for i := 1; i < len(rows); i++ {
		if idCol.index < len(rows[i]) && strings.TrimSpace(rows[i][idCol.index]) == strings.TrimSpace(id) {
			return i + 1
		}
	}
	return 0
}

func valueAt(rows [][]string, row, col int) string {
	r := rows[row-1]
	if col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

type styleKey struct {
	base  int
	color string
}

// painter swaps fills while keeping fonts, borders and number formats.
type painter struct {
	f      *excelize.File
	sheet  string
	styles map[styleKey]int
}

func (p *painter) fill(col, row int, color string) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	base, err := p.f.GetCellStyle(p.sheet, cell)
	if err != nil {
		return "", err
	}
	key := styleKey{base: base, color: color}
	id, ok := p.styles[key]
	if !ok {
		style, err := p.f.GetStyle(base)
		if err != nil || style == nil {
			style = &excelize.Style{}
		}
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
		if id, err = p.f.NewStyle(style); err != nil {
			return "", fmt.Errorf("new style: %w", err)
		}
		p.styles[key] = id
	}
	return cell, p.f.SetCellStyle(p.sheet, cell, cell, id)
}
