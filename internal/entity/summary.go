package entity

import (
	"github.com/joseph-ayodele/layout-verifier/constants"
)

// VerificationSummary aggregates one batch. It carries no timestamps so equal inputs serialize identically.
type VerificationSummary struct {
	Columns            []string                    `json:"columns"`
	Results            []ProductVerificationResult `json:"results"`
	Unresolved         []UnresolvedDocument        `json:"unresolved"`
	DocumentsSupplied  int                         `json:"documents_supplied"`
	DocumentsProcessed int                         `json:"documents_processed"`
	UnresolvedCount    int                         `json:"unresolved_count"`
	ExtractionFailed   int                         `json:"extraction_failed"`
	Complete           int                         `json:"complete"`
	Partial            int                         `json:"partial"`
	RecordsTotal       int                         `json:"records_total"`
	OverallSuccessRate float64                     `json:"overall_success_rate"`
}

// NewSummary returns an empty summary for the given columns.
func NewSummary(columns []string, recordsTotal int) *VerificationSummary {
	return &VerificationSummary{
		Columns:      append([]string(nil), columns...),
		Results:      make([]ProductVerificationResult, 0),
		Unresolved:   make([]UnresolvedDocument, 0),
		RecordsTotal: recordsTotal,
	}
}

func (s *VerificationSummary) AddResult(r ProductVerificationResult) {
	s.Results = append(s.Results, r)
}

func (s *VerificationSummary) AddUnresolved(u UnresolvedDocument) {
	s.Unresolved = append(s.Unresolved, u)
}

// Finalize recomputes every count from Results and Unresolved.
func (s *VerificationSummary) Finalize() {
	s.UnresolvedCount = len(s.Unresolved)
	s.DocumentsProcessed = 0
	s.ExtractionFailed = 0
	s.Complete = 0
	s.Partial = 0

	var sum float64
	var n int
	for i := range s.Results {
		r := &s.Results[i]
		if r.Status == constants.DocumentStatusExtractionFailed {
			s.ExtractionFailed++
			continue
		}
		s.DocumentsProcessed++
		if r.Complete() {
			s.Complete++
		} else {
			s.Partial++
		}
		if rate, ok := r.Rate(); ok {
			sum += rate
			n++
		}
	}
	s.OverallSuccessRate = 0
	if n > 0 {
		s.OverallSuccessRate = sum / float64(n)
	}
}

// Failed returns results whose text could not be extracted.
func (s *VerificationSummary) Failed() []ProductVerificationResult {
	var out []ProductVerificationResult
	for _, r := range s.Results {
		if r.Status == constants.DocumentStatusExtractionFailed {
			out = append(out, r)
		}
	}
	return out
}

// Incomplete returns verified results with at least one missing field.
func (s *VerificationSummary) Incomplete() []ProductVerificationResult {
	var out []ProductVerificationResult
	for _, r := range s.Results {
		if r.Status == constants.DocumentStatusVerified && r.MissingFields > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Verified returns complete results.
func (s *VerificationSummary) Verified() []ProductVerificationResult {
	var out []ProductVerificationResult
	for _, r := range s.Results {
		if r.Complete() {
			out = append(out, r)
		}
	}
	return out
}
