package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/joseph-ayodele/layout-verifier/internal/common"
)

// StaticExtractor serves text that was extracted elsewhere, keyed by path or base name.
type StaticExtractor struct {
	mu    sync.RWMutex
	texts map[string]string
}

func NewStaticExtractor(texts map[string]string) *StaticExtractor {
	cp := make(map[string]string, len(texts))
	for k, v := range texts {
		cp[k] = v
	}
	return &StaticExtractor{texts: cp}
}

func (s *StaticExtractor) Set(path, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[path] = text
}

func (s *StaticExtractor) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return TextExtractionResult{}, err
	}
	s.mu.RLock()
	text, ok := s.texts[path]
	if !ok {
		text, ok = s.texts[filepath.Base(path)]
	}
	s.mu.RUnlock()
	if !ok {
		return TextExtractionResult{}, fmt.Errorf("%w: no text registered for %s", common.ErrNotFound, path)
	}
	if text == "" {
		return TextExtractionResult{}, fmt.Errorf("%w: %s", common.ErrNoTextLayer, filepath.Base(path))
	}
	return TextExtractionResult{Text: text, Pages: 1, Format: "TEXT", Method: "static"}, nil
}
