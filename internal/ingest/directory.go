// Package ingest discovers layout files on disk.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

type ScanOptions struct {
	Extensions []string // lowercase, with or without '.'; empty -> constants.AllowedExtensions
	Recursive  bool
	SkipHidden bool
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// ScanDirectory lists layout files under root sorted by path, so batches do not depend on filesystem order.
func ScanDirectory(ctx context.Context, root string, opts ScanOptions, logger *slog.Logger) ([]entity.Document, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, errors.New("root path is required")
	}
	exts := constants.ExtensionSet(opts.Extensions)

	var docs []entity.Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logger.Warn("scan entry failed", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if path != root {
			if opts.SkipHidden && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() && !opts.Recursive {
				return filepath.SkipDir
			}
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !allowed(path, exts) {
			return nil
		}
		stats.Matched++
		docs = append(docs, entity.Document{Path: path})
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	logger.Debug("layout scan finished", "root", root, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	return docs, stats, nil
}
