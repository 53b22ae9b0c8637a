// Package pdftext pulls the embedded text layer out of PDF and Illustrator layouts.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Layout    bool   // pass -layout to keep column positions
	MaxPages  int    // 0 = no limit
}

type Result struct {
	Text     string
	Pages    int
	Format   string // constants.PDF | constants.AI
	Method   string
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: ExecRunner{Logger: logger}, logger: logger}
}

// WithRunner swaps the command runner.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract reads the text layer. Illustrator files are PDF-compatible and go through the same path.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	format := constants.MapExtToFormat(ext)
	if format == "" {
		e.logger.Error("unsupported layout extension", "path", path, "extension", ext)
		return Result{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
	e.logger.Debug("starting text extraction", "path", path, "format", format)

	res := Result{Format: format, Method: "pdf-text"}
	pages, err := pageCount(path)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("page count: %v", err))
	}

	text, warn, err := e.pdfToText(ctx, path)
	res.Warnings = append(res.Warnings, warn...)
	res.Duration = time.Since(start)
	if err != nil {
		return res, fmt.Errorf("pdftotext: %w", err)
	}
	if pages == 0 {
		pages = 1 + strings.Count(strings.TrimRight(text, "\f"), "\f")
	}
	res.Pages = pages
	res.Text = Normalize(text)
	if res.Text == "" {
		return res, fmt.Errorf("%w: %s", common.ErrNoTextLayer, filepath.Base(path))
	}
	e.logger.Debug("text extraction done",
		"path", path,
		"pages", res.Pages,
		"chars", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (string, []string, error) {
	// pdftotext [-layout] -enc UTF-8 -eol unix [-f 1 -l N] <path> -
	args := make([]string, 0, 10)
	if e.cfg.Layout {
		args = append(args, "-layout")
	}
	args = append(args, "-enc", "UTF-8", "-eol", "unix")
	if e.cfg.MaxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, "-")

	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		var warn []string
		if s := strings.TrimSpace(string(errb)); s != "" {
			warn = append(warn, s)
		}
		return "", warn, err
	}
	return string(out), nil, nil
}

// pageCount is best effort; relaxed validation tolerates the quirks of Illustrator output.
func pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(f, conf)
}
