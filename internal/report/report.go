// Package report renders verification summaries for people and tools.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTable    Format = "table"
	FormatXLSX     Format = "xlsx"
)

var formats = []Format{FormatMarkdown, FormatCSV, FormatJSON, FormatYAML, FormatTable, FormatXLSX}

// Names lists the accepted format names.
func Names() []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

// ParseFormat accepts format names and common file extensions.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "table", "text", "txt":
		return FormatTable, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown report format %q (want one of %s)", s, strings.Join(Names(), ", "))
}

// Options tune rendering. A zero GeneratedAt omits the timestamp so equal summaries render identically.
type Options struct {
	Title       string
	GeneratedAt time.Time
}

func (o Options) title() string {
	if o.Title == "" {
		return "Product Layout Verification Report"
	}
	return o.Title
}

// Render writes the summary in the requested format.
func Render(w io.Writer, s *entity.VerificationSummary, format Format, opts Options) error {
	switch format {
	case FormatMarkdown:
		return renderMarkdown(w, s, opts)
	case FormatCSV:
		return renderCSV(w, s)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		raw, err := json.Marshal(s)
		if err != nil {
			return err
		}
		out, err := yaml.JSONToYAML(raw)
		if err != nil {
			return fmt.Errorf("yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case FormatTable:
		return renderTable(w, s)
	case FormatXLSX:
		b, err := RenderXLSX(s)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	return fmt.Errorf("unknown report format %q", format)
}

// WriteFile renders into path, creating parent directories.
func WriteFile(path string, s *entity.VerificationSummary, format Format, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, s, format, opts); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Status is the per-row label used by tabular formats.
func Status(r *entity.ProductVerificationResult) string {
	switch {
	case r.Status == constants.DocumentStatusExtractionFailed:
		return string(constants.DocumentStatusExtractionFailed)
	case r.Complete():
		return "COMPLETE"
	default:
		return "PARTIAL"
	}
}

// RateText formats a success rate; undefined rates render as "n/a".
func RateText(r *entity.ProductVerificationResult) string {
	if v, ok := r.Rate(); ok {
		return fmt.Sprintf("%.1f%%", v)
	}
	return "n/a"
}
