package export

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

func fixture(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"Item#", "EAN", "Name ENG", "origin (next to EAN/barcode)", "Notes"},
		{"12345", "1234567890", "Widget Pro", "Made in EU", "keep"},
		{"777", "42", "Tag", "", ""},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C2", bold))

	path := filepath.Join(t.TempDir(), "products.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func summary() *entity.VerificationSummary {
	s := entity.NewSummary([]string{"EAN", "Name ENG"}, 2)
	r := entity.ProductVerificationResult{
		Identifier: "12345", Document: "12345 Box.pdf", Status: constants.DocumentStatusVerified,
		Fields: []entity.FieldMatchResult{
			{Field: "EAN", Expected: "1234567890", Matched: true, Strategy: constants.StrategyExact},
			{Field: "Name ENG", Expected: "Widget Pro", Strategy: constants.StrategyNone},
		},
	}
	r.Tally()
	s.AddResult(r)
	s.AddResult(entity.ProductVerificationResult{Identifier: "777", Document: "777 Scan.pdf", Status: constants.DocumentStatusExtractionFailed})
	ghost := entity.ProductVerificationResult{Identifier: "00000", Document: "00000 x.pdf", Status: constants.DocumentStatusVerified}
	ghost.Tally()
	s.AddResult(ghost)
	s.Finalize()
	return s
}

func fillOf(t *testing.T, f *excelize.File, cell string) (string, *excelize.Style) {
	t.Helper()
	id, err := f.GetCellStyle("Sheet1", cell)
	require.NoError(t, err)
	st, err := f.GetStyle(id)
	require.NoError(t, err)
	if st == nil || len(st.Fill.Color) == 0 {
		return "", st
	}
	return st.Fill.Color[0], st
}

func TestColor(t *testing.T) {
	in := fixture(t)
	out := filepath.Join(t.TempDir(), "colored.xlsx")

	res, err := NewColorizer(nil).Color(context.Background(), ColorRequest{Workbook: in, Output: out, Summary: summary()})
	require.NoError(t, err)

	assert.Equal(t, 2, res.ProductsFound)
	assert.Equal(t, 1, res.ProductsNotFound)
	assert.Equal(t, 1, res.Green)
	assert.Equal(t, 1, res.Red)
	assert.Equal(t, 1, res.Yellow)
	require.Len(t, res.Cells, 3)
	assert.Equal(t, "B2", res.Cells[0].Cell)
	assert.Equal(t, "C2", res.Cells[1].Cell)
	assert.Equal(t, "D2", res.Cells[2].Cell)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	color, _ := fillOf(t, f, "B2")
	assert.Equal(t, ColorMatched, color)

	color, st := fillOf(t, f, "C2")
	assert.Equal(t, ColorMissing, color)
	require.NotNil(t, st.Font)
	assert.True(t, st.Font.Bold, "existing font survives recoloring")

	color, _ = fillOf(t, f, "D2")
	assert.Equal(t, ColorUnchecked, color)

	for _, cell := range []string{"A2", "E2", "B3", "C3"} {
		color, _ := fillOf(t, f, cell)
		assert.Empty(t, color, cell)
	}
}

func TestColorErrors(t *testing.T) {
	_, err := NewColorizer(nil).Color(context.Background(), ColorRequest{Workbook: fixture(t)})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = NewColorizer(nil).Color(context.Background(), ColorRequest{
		Workbook:         fixture(t),
		IdentifierColumn: "SKU",
		Summary:          summary(),
	})
	assert.True(t, common.IsConfigurationError(err))
}
