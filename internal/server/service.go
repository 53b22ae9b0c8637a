// Package server exposes the verification service over gRPC.
package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
	"github.com/joseph-ayodele/layout-verifier/internal/profile"
	"github.com/joseph-ayodele/layout-verifier/internal/services/verify"
)

type VerifierService struct {
	verify *verify.Service
	logger *zap.Logger
}

func NewVerifierService(v *verify.Service, logger *zap.Logger) *VerifierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerifierService{verify: v, logger: logger}
}

// settings are the profile fields a request may carry. An explicit profile path is loaded first and the
// inline fields override it.
type settings struct {
	Profile                    string   `json:"profile"`
	Sheet                      string   `json:"sheet"`
	IdentifierColumn           string   `json:"identifier_column"`
	Columns                    []string `json:"columns"`
	NumericPolicy              string   `json:"numeric_policy"`
	NumericColumns             []string `json:"numeric_columns"`
	MinTokenLength             int      `json:"min_token_length"`
	EmptyFieldPolicy           string   `json:"empty_field_policy"`
	CaseInsensitiveIdentifiers *bool    `json:"case_insensitive_identifiers"`
	LayoutExtensions           []string `json:"layout_extensions"`
}

func (s settings) resolve() (profile.Profile, error) {
	p := profile.Default()
	if s.Profile != "" {
		var err error
		if p, err = profile.Load(s.Profile); err != nil {
			return p, err
		}
	}
	if s.Sheet != "" {
		p.Sheet = s.Sheet
	}
	if s.IdentifierColumn != "" {
		p.IdentifierColumn = s.IdentifierColumn
	}
	if len(s.Columns) > 0 {
		p.Columns = s.Columns
	}
	if s.NumericPolicy != "" {
		p.NumericPolicy = s.NumericPolicy
	}
	if s.NumericColumns != nil {
		p.NumericColumns = s.NumericColumns
	}
	if s.MinTokenLength != 0 {
		p.MinTokenLength = s.MinTokenLength
	}
	if s.EmptyFieldPolicy != "" {
		p.EmptyFieldPolicy = s.EmptyFieldPolicy
	}
	if s.CaseInsensitiveIdentifiers != nil {
		p.CaseInsensitiveIdentifiers = *s.CaseInsensitiveIdentifiers
	}
	if len(s.LayoutExtensions) > 0 {
		p.LayoutExtensions = s.LayoutExtensions
	}
	return p, nil
}

type batchRequest struct {
	settings
	Workbook  string   `json:"workbook"`
	Documents []string `json:"documents"`
	Directory string   `json:"directory"`
	Recursive bool     `json:"recursive"`
	Record    bool     `json:"record"`
}

type batchResponse struct {
	RunID   string                      `json:"run_id,omitempty"`
	Scanned uint32                      `json:"scanned"`
	Summary *entity.VerificationSummary `json:"summary"`
}

func (s *VerifierService) VerifyBatch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	start := time.Now()
	var req batchRequest
	if err := decode(in, &req); err != nil {
		return nil, common.ToStatus(err)
	}
	p, err := req.resolve()
	if err != nil {
		return nil, common.ToStatus(err)
	}
	resp, err := s.verify.VerifyBatch(ctx, verify.BatchRequest{
		Workbook:  req.Workbook,
		Profile:   p,
		Documents: req.Documents,
		Directory: req.Directory,
		Recursive: req.Recursive,
		Record:    req.Record,
	})
	if err != nil {
		s.logger.Warn("verify batch failed", zap.String("workbook", req.Workbook), zap.Error(err))
		return nil, common.ToStatus(err)
	}

	out := batchResponse{Scanned: resp.Scan.Scanned, Summary: resp.Summary}
	if resp.RunID != uuid.Nil {
		out.RunID = resp.RunID.String()
	}
	s.logger.Info("verify batch",
		zap.String("workbook", req.Workbook),
		zap.Int("documents", resp.Summary.DocumentsSupplied),
		zap.Int("complete", resp.Summary.Complete),
		zap.Float64("overall_success_rate", resp.Summary.OverallSuccessRate),
		zap.Duration("took", time.Since(start)))
	return encodeOrInternal(out)
}

type singleRequest struct {
	settings
	Workbook           string `json:"workbook"`
	Document           string `json:"document"`
	IdentifierOverride string `json:"identifier_override"`
}

type singleResponse struct {
	Columns    []string                          `json:"columns"`
	Result     *entity.ProductVerificationResult `json:"result,omitempty"`
	Unresolved *entity.UnresolvedDocument        `json:"unresolved,omitempty"`
}

func (s *VerifierService) VerifySingle(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req singleRequest
	if err := decode(in, &req); err != nil {
		return nil, common.ToStatus(err)
	}
	p, err := req.resolve()
	if err != nil {
		return nil, common.ToStatus(err)
	}
	resp, err := s.verify.VerifySingle(ctx, verify.SingleRequest{
		Workbook:           req.Workbook,
		Profile:            p,
		Document:           req.Document,
		IdentifierOverride: req.IdentifierOverride,
	})
	if err != nil {
		s.logger.Warn("verify single failed", zap.String("document", req.Document), zap.Error(err))
		return nil, common.ToStatus(err)
	}
	return encodeOrInternal(singleResponse{Columns: resp.Columns, Result: resp.Result, Unresolved: resp.Unresolved})
}

type listRunsRequest struct {
	Limit int    `json:"limit"`
	RunID string `json:"run_id"`
}

type listRunsResponse struct {
	Runs    []entity.Run       `json:"runs"`
	Results []entity.RunResult `json:"results,omitempty"`
}

// ListRuns lists recent runs, or one run with its stored rows when run_id is given.
func (s *VerifierService) ListRuns(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listRunsRequest
	if err := decode(in, &req); err != nil {
		return nil, common.ToStatus(err)
	}
	if req.RunID != "" {
		run, rows, err := s.verify.RunResults(ctx, req.RunID)
		if err != nil {
			return nil, common.ToStatus(err)
		}
		return encodeOrInternal(listRunsResponse{Runs: []entity.Run{*run}, Results: rows})
	}
	runs, err := s.verify.ListRuns(ctx, req.Limit)
	if err != nil {
		s.logger.Warn("list runs failed", zap.Error(err))
		return nil, common.ToStatus(err)
	}
	if runs == nil {
		runs = []entity.Run{}
	}
	return encodeOrInternal(listRunsResponse{Runs: runs})
}

func encodeOrInternal(v any) (*structpb.Struct, error) {
	out, err := encode(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}
