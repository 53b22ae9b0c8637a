package extract

import (
	"context"

	"github.com/joseph-ayodele/layout-verifier/internal/pdftext"
)

type PDFTextAdapter struct {
	extractor *pdftext.Extractor
}

func NewPDFTextAdapter(e *pdftext.Extractor) *PDFTextAdapter {
	return &PDFTextAdapter{extractor: e}
}

func (a *PDFTextAdapter) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	r, err := a.extractor.Extract(ctx, path)
	return TextExtractionResult{
		Text:     r.Text,
		Pages:    r.Pages,
		Format:   r.Format,
		Method:   r.Method,
		Duration: r.Duration,
		Warnings: r.Warnings,
	}, err
}
