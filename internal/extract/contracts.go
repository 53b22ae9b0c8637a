package extract

import (
	"context"
	"time"
)

// TextExtractor turns a layout file into searchable text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Format   string // "PDF" | "AI" | "TEXT"
	Method   string // "pdf-text" | "static"
	Duration time.Duration
	Warnings []string
}

// Func adapts a plain function to TextExtractor.
type Func func(ctx context.Context, path string) (TextExtractionResult, error)

func (f Func) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	return f(ctx, path)
}
