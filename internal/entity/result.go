package entity

import (
	"github.com/joseph-ayodele/layout-verifier/constants"
)

// FieldMatchResult is the outcome of checking one expected value against one corpus.
type FieldMatchResult struct {
	Field         string                  `json:"field"`
	Expected      string                  `json:"expected"`
	Matched       bool                    `json:"matched"`
	Strategy      constants.MatchStrategy `json:"strategy"`
	NotApplicable bool                    `json:"not_applicable,omitempty"`
}

// ProductVerificationResult is the per-document verification outcome.
type ProductVerificationResult struct {
	Identifier    string                   `json:"identifier"`
	Document      string                   `json:"document"`
	Path          string                   `json:"path"`
	Status        constants.DocumentStatus `json:"status"`
	Error         string                   `json:"error,omitempty"`
	Pages         int                      `json:"pages,omitempty"`
	Fields        []FieldMatchResult       `json:"fields"`
	TotalFields   int                      `json:"total_fields"`
	MatchedFields int                      `json:"matched_fields"`
	MissingFields int                      `json:"missing_fields"`
	Missing       []string                 `json:"missing"`
	SuccessRate   *float64                 `json:"success_rate"`
}

// Complete holds for verified results with nothing missing.
func (r *ProductVerificationResult) Complete() bool {
	return r.Status == constants.DocumentStatusVerified && r.MissingFields == 0
}

// Rate returns the success rate and whether it is defined.
func (r *ProductVerificationResult) Rate() (float64, bool) {
	if r.SuccessRate == nil {
		return 0, false
	}
	return *r.SuccessRate, true
}

// Tally recomputes the derived counts from Fields.
func (r *ProductVerificationResult) Tally() {
	r.TotalFields = len(r.Fields)
	r.MatchedFields = 0
	r.Missing = make([]string, 0)
	for _, f := range r.Fields {
		if f.Matched {
			r.MatchedFields++
			continue
		}
		r.Missing = append(r.Missing, f.Field)
	}
	r.MissingFields = len(r.Missing)
	r.SuccessRate = nil
	if r.TotalFields > 0 {
		rate := float64(r.MatchedFields) / float64(r.TotalFields) * 100
		r.SuccessRate = &rate
	}
}

// Found lists the matched field names in column order.
func (r *ProductVerificationResult) Found() []FieldMatchResult {
	out := make([]FieldMatchResult, 0, r.MatchedFields)
	for _, f := range r.Fields {
		if f.Matched {
			out = append(out, f)
		}
	}
	return out
}

// UnresolvedDocument records a document whose identifier matched no record.
type UnresolvedDocument struct {
	Document   string `json:"document"`
	Path       string `json:"path"`
	Identifier string `json:"identifier"`
	Reason     string `json:"reason"`
}
