// Package source loads ground-truth product records from spreadsheets.
package source

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

type Options struct {
	Sheet            string // empty -> first sheet
	IdentifierColumn string // empty -> constants.IdentifierColumn
}

// ExcelSource reads one worksheet; row 1 is the header.
type ExcelSource struct {
	opts   Options
	logger *slog.Logger
}

func NewExcelSource(opts Options, logger *slog.Logger) *ExcelSource {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.IdentifierColumn == "" {
		opts.IdentifierColumn = constants.IdentifierColumn
	}
	return &ExcelSource{opts: opts, logger: logger}
}

// Load is a shorthand for NewExcelSource(opts, nil).Load(path).
func Load(path string, opts Options) (*entity.RecordSet, error) {
	return NewExcelSource(opts, nil).Load(path)
}

func (s *ExcelSource) Load(path string) (*entity.RecordSet, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.WorkbookExtensions[ext]; !ok {
		return nil, common.ConfigurationError("record source %s: unsupported workbook extension %q", filepath.Base(path), ext)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, "open record source "+filepath.Base(path), fmt.Errorf("%w: %w", common.ErrConfiguration, err))
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("close workbook", "path", path, "err", cerr)
		}
	}()

	sheet, err := s.sheetName(f)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, common.ConfigurationError("sheet %q has no header row", sheet)
	}

	headers := make([]string, len(rows[0]))
	idIdx := -1
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
		if idIdx < 0 && constants.SameColumn(headers[i], s.opts.IdentifierColumn) {
			idIdx = i
		}
	}
	if idIdx < 0 {
		return nil, common.ConfigurationError("sheet %q has no identifier column %q", sheet, s.opts.IdentifierColumn)
	}

	set := &entity.RecordSet{
		IdentifierColumn: headers[idIdx],
		Columns:          nonEmpty(headers),
		Records:          make([]entity.Record, 0, len(rows)-1),
	}
	skipped := 0
	for i, row := range rows[1:] {
		id := cell(row, idIdx)
		if id == "" || strings.EqualFold(id, "nan") {
			skipped++
			continue
		}
		fields := make(map[string]string, len(headers))
		for c, h := range headers {
			if h == "" {
				continue
			}
			if _, dup := fields[h]; dup {
				continue
			}
			fields[h] = cell(row, c)
		}
		rec := entity.NewRecord(id, fields)
		rec.Row = i + 2
		set.Records = append(set.Records, rec)
	}

	s.logger.Info("record source loaded",
		"path", path,
		"sheet", sheet,
		"records", len(set.Records),
		"skipped_rows", skipped,
		"columns", len(set.Columns),
	)
	return set, nil
}

func (s *ExcelSource) sheetName(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", common.ConfigurationError("workbook has no sheets")
	}
	if s.opts.Sheet == "" {
		return sheets[0], nil
	}
	for _, name := range sheets {
		if strings.EqualFold(name, s.opts.Sheet) {
			return name, nil
		}
	}
	return "", common.ConfigurationError("sheet %q not found (have %s)", s.opts.Sheet, strings.Join(sheets, ", "))
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
