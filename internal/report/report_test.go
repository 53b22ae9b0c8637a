package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

func sampleSummary() *entity.VerificationSummary {
	s := entity.NewSummary([]string{"EAN", "Name ENG"}, 3)
	s.DocumentsSupplied = 4

	complete := entity.ProductVerificationResult{
		Identifier: "12345", Document: "12345 Box.pdf", Status: constants.DocumentStatusVerified,
		Fields: []entity.FieldMatchResult{
			{Field: "EAN", Expected: "1234567890", Matched: true, Strategy: constants.StrategyNumericNormalized},
			{Field: "Name ENG", Expected: "Widget Pro", Matched: true, Strategy: constants.StrategyTokenized},
		},
	}
	complete.Tally()

	partial := entity.ProductVerificationResult{
		Identifier: "777", Document: "777 Tag, large.pdf", Status: constants.DocumentStatusVerified,
		Fields: []entity.FieldMatchResult{
			{Field: "EAN", Expected: "42|43", Strategy: constants.StrategyNone},
			{Field: "Name ENG", Expected: "Tag", Matched: true, Strategy: constants.StrategyExact},
		},
	}
	partial.Tally()

	failed := entity.ProductVerificationResult{
		Identifier: "555", Document: "555 Scan.pdf", Status: constants.DocumentStatusExtractionFailed,
		Error: "EXTRACTION_ERROR: 555 Scan.pdf: text extraction failed", Fields: []entity.FieldMatchResult{}, Missing: []string{},
	}

	s.AddResult(complete)
	s.AddResult(partial)
	s.AddResult(failed)
	s.AddUnresolved(entity.UnresolvedDocument{Document: "99999 Lid.pdf", Identifier: "99999", Reason: "identity unresolved"})
	s.Finalize()
	return s
}

func TestSummaryCounts(t *testing.T) {
	s := sampleSummary()
	assert.Equal(t, 2, s.DocumentsProcessed)
	assert.Equal(t, 1, s.Complete)
	assert.Equal(t, 1, s.Partial)
	assert.Equal(t, 1, s.ExtractionFailed)
	assert.Equal(t, 1, s.UnresolvedCount)
	assert.InDelta(t, 75.0, s.OverallSuccessRate, 1e-9)
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleSummary(), FormatMarkdown, Options{}))
	out := buf.String()

	assert.Contains(t, out, "# Product Layout Verification Report")
	assert.NotContains(t, out, "Generated:")
	assert.Contains(t, out, "## Summary")
	assert.Contains(t, out, "**Overall success rate:** 75.0%")
	assert.Contains(t, out, "## Layouts Without Record Match")
	assert.Contains(t, out, "99999 Lid.pdf (99999)")
	assert.Contains(t, out, "## Layouts That Could Not Be Read")
	assert.Contains(t, out, "## Products With Missing Fields")
	assert.Contains(t, out, "### Item# 777")
	assert.Contains(t, out, `42\|43`)
	assert.Contains(t, out, "## Fully Verified Products")

	buf.Reset()
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, Render(&buf, sampleSummary(), FormatMarkdown, Options{Title: "Spring labels", GeneratedAt: at}))
	assert.Contains(t, buf.String(), "# Spring labels")
	assert.Contains(t, buf.String(), "2026-03-01 09:30:00")
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleSummary(), FormatCSV, Options{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"12345", "12345 Box.pdf", "2", "2", "0", "100.0%", "COMPLETE", ""}, rows[1])
	assert.Equal(t, []string{"777", "777 Tag, large.pdf", "2", "1", "1", "50.0%", "PARTIAL", "EAN"}, rows[2])
	assert.Equal(t, "EXTRACTION_FAILED", rows[3][6])
	assert.Equal(t, "", rows[3][5])
	assert.Equal(t, []string{"N/A", "99999 Lid.pdf", "0", "0", "0", "0%", "NO_MATCH", ""}, rows[4])
}

func TestRenderJSONAndYAMLAgree(t *testing.T) {
	var js, ys bytes.Buffer
	require.NoError(t, Render(&js, sampleSummary(), FormatJSON, Options{}))
	require.NoError(t, Render(&ys, sampleSummary(), FormatYAML, Options{}))

	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(ys.Bytes(), &fromYAML))
	assert.EqualValues(t, 1, fromYAML["complete"])
	assert.EqualValues(t, 1, fromYAML["unresolved_count"])
	assert.Contains(t, js.String(), `"success_rate": null`)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleSummary(), FormatTable, Options{}))
	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "LAYOUT FILE")
	assert.Contains(t, out, "12345 Box.pdf")
	assert.Contains(t, out, "NO_MATCH")
	assert.Contains(t, out, "overall=75.0%")
}

func TestRenderXLSX(t *testing.T) {
	b, err := RenderXLSX(sampleSummary())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{resultsSheet, unresolvedSheet}, f.GetSheetList())
	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Item#", rows[0][0])
	assert.Equal(t, "777", rows[2][0])
	assert.Equal(t, "PARTIAL", rows[2][2])

	un, err := f.GetRows(unresolvedSheet)
	require.NoError(t, err)
	assert.Equal(t, "99999 Lid.pdf", un[1][0])
}

func TestWriteFileAndParseFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.md")
	require.NoError(t, WriteFile(path, sampleSummary(), FormatMarkdown, Options{}))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "## Summary")

	for in, want := range map[string]Format{"md": FormatMarkdown, ".CSV": FormatCSV, "yml": FormatYAML, "table": FormatTable, "xlsx": FormatXLSX} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
