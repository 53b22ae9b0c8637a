// Package verify wires record loading, layout discovery, batch verification and run history together.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/core"
	"github.com/joseph-ayodele/layout-verifier/internal/core/async"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
	"github.com/joseph-ayodele/layout-verifier/internal/extract"
	"github.com/joseph-ayodele/layout-verifier/internal/ingest"
	"github.com/joseph-ayodele/layout-verifier/internal/profile"
	"github.com/joseph-ayodele/layout-verifier/internal/repository"
	"github.com/joseph-ayodele/layout-verifier/internal/source"
)

// Service handles verification business logic for the CLI and the RPC server.
type Service struct {
	extractor      extract.TextExtractor
	pool           *async.Pool
	runs           repository.RunRepository
	extractTimeout time.Duration
	logger         *slog.Logger
}

type Option func(*Service)

// WithRunRepository records every batch; without it batches are not persisted.
func WithRunRepository(r repository.RunRepository) Option {
	return func(s *Service) { s.runs = r }
}

func WithPool(p *async.Pool) Option {
	return func(s *Service) { s.pool = p }
}

func WithExtractTimeout(d time.Duration) Option {
	return func(s *Service) { s.extractTimeout = d }
}

func NewService(extractor extract.TextExtractor, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{extractor: extractor, logger: logger, extractTimeout: 60 * time.Second}
	for _, o := range opts {
		o(s)
	}
	if s.pool == nil {
		s.pool = async.NewPool(logger)
	}
	return s
}

// BatchRequest represents batch verification parameters. Documents and Directory may be combined.
type BatchRequest struct {
	Workbook  string
	Profile   profile.Profile
	Documents []string
	Directory string
	Recursive bool
	Record    bool
}

type BatchResponse struct {
	RunID   uuid.UUID // zero when the run was not recorded
	Summary *entity.VerificationSummary
	Scan    ingest.DirStats
}

// VerifyBatch loads the workbook, collects layouts and verifies them. A cancelled batch returns the partial
// summary together with the context error.
func (s *Service) VerifyBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	v := common.NewValidator().
		Field("workbook", req.Workbook, common.Required, common.FileExists)
	if req.Directory != "" {
		v.Field("directory", req.Directory, common.DirExists)
	}
	validateProfile(v, req.Profile)
	if v.HasErrors() {
		return nil, v.Error()
	}
	if len(req.Documents) == 0 && req.Directory == "" {
		return nil, fmt.Errorf("%w: documents or directory is required", common.ErrInvalidInput)
	}

	set, err := source.NewExcelSource(req.Profile.SourceOptions(), s.logger).Load(req.Workbook)
	if err != nil {
		return nil, err
	}
	docs, stats, err := s.collect(ctx, req)
	if err != nil {
		return nil, err
	}
	proc, err := s.processor(req.Profile)
	if err != nil {
		return nil, err
	}

	resp := &BatchResponse{Scan: stats}
	if req.Record && s.runs != nil {
		run, err := s.runs.Start(ctx, req.Workbook, len(docs))
		if err != nil {
			return nil, err
		}
		resp.RunID = run.ID
		ctx = common.WithRunID(ctx, run.ID.String())
	}

	logger := s.logger
	if reqID := common.RequestIDFromContext(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	logger.Info("starting batch verification", "workbook", req.Workbook, "documents", len(docs), "records", len(set.Records))
	summary, err := proc.VerifyBatch(ctx, set, docs, req.Profile.Columns)
	resp.Summary = summary
	s.record(ctx, resp.RunID, summary, err)
	if err != nil {
		return resp, err
	}
	logger.Info("batch verification completed",
		"processed", summary.DocumentsProcessed,
		"unresolved", summary.UnresolvedCount,
		"extraction_failed", summary.ExtractionFailed,
		"complete", summary.Complete,
		"overall_success_rate", summary.OverallSuccessRate)
	return resp, nil
}

// record finishes the stored run. It runs on a context detached from cancellation so an interrupted
// batch still leaves a CANCELLED row behind.
func (s *Service) record(ctx context.Context, id uuid.UUID, summary *entity.VerificationSummary, batchErr error) {
	if id == uuid.Nil || s.runs == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var err error
	switch {
	case batchErr == nil:
		err = s.runs.Finish(ctx, id, constants.RunStatusCompleted, summary)
	case summary != nil && (errors.Is(batchErr, context.Canceled) || errors.Is(batchErr, context.DeadlineExceeded)):
		err = s.runs.Finish(ctx, id, constants.RunStatusCancelled, summary)
	default:
		err = s.runs.Fail(ctx, id, batchErr.Error())
	}
	if err != nil {
		s.logger.Error("failed to record run", "run_id", id, "error", err)
	}
}

func validateProfile(v *common.Validator, p profile.Profile) {
	v.Field("identifier_column", p.IdentifierColumn, common.Required).
		Field("numeric_policy", p.NumericPolicy, common.OneOf(string(constants.NumericIdentifierLike), string(constants.NumericAll))).
		Field("empty_field_policy", p.EmptyFieldPolicy, common.OneOf(string(constants.EmptyFieldMissing), string(constants.EmptyFieldSkip))).
		Field("min_token_length", p.MinTokenLength, common.Positive)
}

func (s *Service) collect(ctx context.Context, req BatchRequest) ([]entity.Document, ingest.DirStats, error) {
	docs := make([]entity.Document, 0, len(req.Documents))
	for _, p := range req.Documents {
		if p = strings.TrimSpace(p); p != "" {
			docs = append(docs, entity.Document{Path: p})
		}
	}
	var stats ingest.DirStats
	if req.Directory != "" {
		found, st, err := ingest.ScanDirectory(ctx, req.Directory, ingest.ScanOptions{
			Extensions: req.Profile.Extensions(),
			Recursive:  req.Recursive,
			SkipHidden: true,
		}, s.logger)
		if err != nil {
			return nil, stats, fmt.Errorf("scan %s: %w", req.Directory, err)
		}
		stats = st
		docs = append(docs, found...)
	}
	return docs, stats, nil
}

func (s *Service) processor(p profile.Profile) (*core.Processor, error) {
	verifier, err := core.NewVerifier(p.VerifierOptions())
	if err != nil {
		return nil, err
	}
	return core.NewProcessor(s.logger, s.extractor, verifier, s.pool,
		core.WithExtractTimeout(s.extractTimeout),
		core.WithCaseInsensitiveIdentifiers(p.CaseInsensitiveIdentifiers),
	), nil
}

// SingleRequest verifies one layout against the workbook record its identity resolves to.
type SingleRequest struct {
	Workbook           string
	Profile            profile.Profile
	Document           string
	IdentifierOverride string
}

// SingleResponse holds exactly one of Result or Unresolved.
type SingleResponse struct {
	Result     *entity.ProductVerificationResult
	Unresolved *entity.UnresolvedDocument
	Columns    []string
}

func (s *Service) VerifySingle(ctx context.Context, req SingleRequest) (*SingleResponse, error) {
	v := common.NewValidator().
		Field("workbook", req.Workbook, common.Required, common.FileExists).
		Field("document", req.Document, common.Required)
	validateProfile(v, req.Profile)
	if v.HasErrors() {
		return nil, v.Error()
	}

	set, err := source.NewExcelSource(req.Profile.SourceOptions(), s.logger).Load(req.Workbook)
	if err != nil {
		return nil, err
	}
	proc, err := s.processor(req.Profile)
	if err != nil {
		return nil, err
	}
	doc := entity.Document{Path: req.Document, IdentifierOverride: strings.TrimSpace(req.IdentifierOverride)}
	summary, err := proc.VerifyBatch(ctx, set, []entity.Document{doc}, req.Profile.Columns)
	if err != nil {
		return nil, err
	}
	resp := &SingleResponse{Columns: summary.Columns}
	switch {
	case len(summary.Results) > 0:
		resp.Result = &summary.Results[0]
	case len(summary.Unresolved) > 0:
		resp.Unresolved = &summary.Unresolved[0]
	}
	return resp, nil
}

// ListRuns returns recorded runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]entity.Run, error) {
	if s.runs == nil {
		return nil, common.ConfigurationError("run history is not configured")
	}
	return s.runs.List(ctx, limit)
}

func (s *Service) RunResults(ctx context.Context, runID string) (*entity.Run, []entity.RunResult, error) {
	if s.runs == nil {
		return nil, nil, common.ConfigurationError("run history is not configured")
	}
	if err := common.NewValidator().Field("run_id", runID, common.Required, common.UUID).Error(); err != nil {
		return nil, nil, err
	}
	id := uuid.MustParse(runID)
	run, err := s.runs.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.runs.Results(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return run, rows, nil
}
