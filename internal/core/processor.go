// Package core runs layout verification batches.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/core/async"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
	"github.com/joseph-ayodele/layout-verifier/internal/extract"
	"github.com/joseph-ayodele/layout-verifier/internal/identity"
	"github.com/joseph-ayodele/layout-verifier/internal/matcher"
)

// Processor coordinates identity resolution, text extraction and field verification.
type Processor struct {
	logger             *slog.Logger
	extractor          extract.TextExtractor
	verifier           *Verifier
	pool               *async.Pool
	extractTimeout     time.Duration
	caseInsensitiveIDs bool
}

type ProcessorOption func(*Processor)

// WithExtractTimeout bounds each extraction call; 0 disables the limit.
func WithExtractTimeout(d time.Duration) ProcessorOption {
	return func(p *Processor) { p.extractTimeout = d }
}

// WithCaseInsensitiveIdentifiers folds case when looking up records.
func WithCaseInsensitiveIdentifiers(on bool) ProcessorOption {
	return func(p *Processor) { p.caseInsensitiveIDs = on }
}

func NewProcessor(logger *slog.Logger, extractor extract.TextExtractor, verifier *Verifier, pool *async.Pool, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if pool == nil {
		pool = async.NewPool(logger)
	}
	p := &Processor{
		logger:         logger,
		extractor:      extractor,
		verifier:       verifier,
		pool:           pool,
		extractTimeout: 60 * time.Second,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

type planned struct {
	doc    entity.Document
	record entity.Record
}

// VerifyBatch verifies documents against the record set. Results keep the order documents were supplied.
// Configuration problems fail before any document is touched. When ctx ends mid-batch the summary of
// finished documents is returned with the context error.
func (p *Processor) VerifyBatch(ctx context.Context, set *entity.RecordSet, docs []entity.Document, columns []string) (*entity.VerificationSummary, error) {
	logger := p.logger
	if runID := common.RunIDFromContext(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}
	if set == nil {
		return nil, common.ConfigurationError("no record source supplied")
	}
	if p.verifier == nil || p.extractor == nil {
		return nil, common.ConfigurationError("processor is missing a verifier or extractor")
	}
	idCol := set.IdentifierColumn
	if idCol == "" {
		idCol = constants.IdentifierColumn
	}
	if len(set.Columns) > 0 && !set.HasColumn(idCol) {
		return nil, common.ConfigurationError("record source has no identifier column %q", idCol)
	}
	cols, err := ResolveColumns(columns, set, logger)
	if err != nil {
		return nil, err
	}

	index, dups := set.Index(p.caseInsensitiveIDs)
	for _, d := range dups {
		logger.Warn("duplicate record identifier, keeping first", "identifier", d.Identifier, "row", d.Row)
	}

	summary := entity.NewSummary(cols, len(set.Records))
	summary.DocumentsSupplied = len(docs)

	work := make([]planned, 0, len(docs))
	for _, doc := range docs {
		id, err := identity.ResolveDocument(doc)
		if err != nil {
			logger.Warn("processor.identity.failed", "document", doc.Name(), "err", err)
			summary.AddUnresolved(entity.UnresolvedDocument{Document: doc.Name(), Path: doc.Path, Reason: err.Error()})
			continue
		}
		key := id
		if p.caseInsensitiveIDs {
			key = strings.ToLower(key)
		}
		rec, ok := index[key]
		if !ok {
			err := fmt.Errorf("%w: no record with %s %q", common.ErrIdentityUnresolved, idCol, id)
			logger.Info("processor.identity.unmatched", "document", doc.Name(), "identifier", id)
			summary.AddUnresolved(entity.UnresolvedDocument{Document: doc.Name(), Path: doc.Path, Identifier: id, Reason: err.Error()})
			continue
		}
		work = append(work, planned{doc: doc, record: rec})
	}

	logger.Info("batch started",
		"documents", len(docs),
		"resolved", len(work),
		"unresolved", len(summary.Unresolved),
		"columns", len(cols),
		"workers", p.pool.Workers(),
	)

	outcomes, runErr := async.Map(ctx, p.pool, len(work), func(ctx context.Context, seq int) *entity.ProductVerificationResult {
		return p.verifyOne(ctx, logger, work[seq], cols)
	})
	for _, o := range outcomes {
		if o.Value != nil {
			summary.AddResult(*o.Value)
		}
	}
	summary.Finalize()

	logger.Info("batch finished",
		"processed", summary.DocumentsProcessed,
		"complete", summary.Complete,
		"partial", summary.Partial,
		"unresolved", summary.UnresolvedCount,
		"extraction_failed", summary.ExtractionFailed,
		"overall_success_rate", summary.OverallSuccessRate,
	)
	if runErr != nil {
		return summary, fmt.Errorf("batch interrupted: %w", runErr)
	}
	return summary, nil
}

// verifyOne returns nil when the batch was cancelled while the document was being extracted.
func (p *Processor) verifyOne(ctx context.Context, logger *slog.Logger, w planned, cols []string) *entity.ProductVerificationResult {
	ectx, cancel := common.WithTimeout(ctx, p.extractTimeout)
	res, err := p.extractor.Extract(ectx, w.doc.Path)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("extraction timed out after %s: %w", p.extractTimeout, err)
		}
		logger.Error("processor.extract.failed", "document", w.doc.Name(), "identifier", w.record.Identifier, "err", err)
		return &entity.ProductVerificationResult{
			Identifier: w.record.Identifier,
			Document:   w.doc.Name(),
			Path:       w.doc.Path,
			Status:     constants.DocumentStatusExtractionFailed,
			Error:      common.ExtractionError(w.doc.Name(), err).Error(),
			Fields:     make([]entity.FieldMatchResult, 0),
			Missing:    make([]string, 0),
		}
	}
	for _, warn := range res.Warnings {
		logger.Debug("processor.extract.warning", "document", w.doc.Name(), "warning", warn)
	}

	out := p.verifier.Verify(w.record, w.doc, matcher.Prepare(res.Text), cols)
	out.Pages = res.Pages
	logger.Debug("document verified",
		"document", out.Document,
		"identifier", out.Identifier,
		"matched", out.MatchedFields,
		"total", out.TotalFields,
	)
	return &out
}

// VerifySingle verifies one document against one record, exactly as a one-document batch would.
// It returns nil without error when the document does not resolve to the record.
func (p *Processor) VerifySingle(ctx context.Context, rec entity.Record, doc entity.Document, columns []string) (*entity.ProductVerificationResult, error) {
	set := &entity.RecordSet{IdentifierColumn: constants.IdentifierColumn, Records: []entity.Record{rec}}
	summary, err := p.VerifyBatch(ctx, set, []entity.Document{doc}, columns)
	if summary == nil || len(summary.Results) == 0 {
		return nil, err
	}
	return &summary.Results[0], err
}
