package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/layout-verifier/internal/common"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}
	path := filepath.Join(t.TempDir(), "products.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad(t *testing.T) {
	path := writeWorkbook(t, "Products", [][]any{
		{" Item# ", "EAN", "Name ENG", "", "Batch no:"},
		{"12345", 1234567890, "  Widget Pro ", "ignored", "L-1"},
		{"", "999", "No id"},
		{"nan", "999", "Pandas blank"},
		{"777", "", "Tag"},
	})

	set, err := Load(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "Item#", set.IdentifierColumn)
	assert.Equal(t, []string{"Item#", "EAN", "Name ENG", "Batch no:"}, set.Columns)
	require.Len(t, set.Records, 2)

	w := set.Records[0]
	assert.Equal(t, "12345", w.Identifier)
	assert.Equal(t, 2, w.Row)
	assert.Equal(t, "1234567890", w.Value("ean"))
	assert.Equal(t, "Widget Pro", w.Value("NAME ENG"))
	assert.Equal(t, "L-1", w.Value("Batch no:"))

	tag := set.Records[1]
	assert.Equal(t, 5, tag.Row)
	assert.Equal(t, "", tag.Value("Batch no:"), "short rows read as empty")
	assert.False(t, tag.Has("Colour"))

	rec, ok := set.Lookup("777", false)
	require.True(t, ok)
	assert.Equal(t, "Tag", rec.Value("Name ENG"))
}

func TestLoadSheetSelection(t *testing.T) {
	path := writeWorkbook(t, "Master", [][]any{{"SKU", "EAN"}, {"A1", "1"}})

	set, err := Load(path, Options{Sheet: "master", IdentifierColumn: "sku"})
	require.NoError(t, err)
	assert.Equal(t, "SKU", set.IdentifierColumn)
	assert.Len(t, set.Records, 1)

	_, err = Load(path, Options{Sheet: "Other", IdentifierColumn: "SKU"})
	assert.True(t, common.IsConfigurationError(err))
}

func TestLoadConfigurationErrors(t *testing.T) {
	noID := writeWorkbook(t, "Sheet1", [][]any{{"EAN", "Name ENG"}, {"1", "x"}})
	_, err := Load(noID, Options{})
	assert.True(t, common.IsConfigurationError(err), "missing identifier column")

	csv := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(csv, []byte("Item#,EAN\n"), 0o644))
	_, err = Load(csv, Options{})
	assert.True(t, common.IsConfigurationError(err), "unsupported extension")

	_, err = Load(filepath.Join(t.TempDir(), "missing.xlsx"), Options{})
	assert.True(t, common.IsConfigurationError(err), "unreadable workbook")
}
