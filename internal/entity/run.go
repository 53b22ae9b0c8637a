package entity

import (
	"time"

	"github.com/google/uuid"
)

// Run is a persisted batch execution.
type Run struct {
	ID                 uuid.UUID  `json:"id"`
	Source             string     `json:"source"`
	Status             string     `json:"status"`
	StartedAt          time.Time  `json:"started_at"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`
	DocumentsSupplied  int        `json:"documents_supplied"`
	DocumentsProcessed int        `json:"documents_processed"`
	UnresolvedCount    int        `json:"unresolved_count"`
	ExtractionFailed   int        `json:"extraction_failed"`
	Complete           int        `json:"complete"`
	OverallSuccessRate float64    `json:"overall_success_rate"`
	ErrorMessage       *string    `json:"error_message,omitempty"`
}

// RunResult is one stored per-document row of a run.
type RunResult struct {
	RunID         uuid.UUID `json:"run_id"`
	Seq           int       `json:"seq"`
	Identifier    string    `json:"identifier"`
	Document      string    `json:"document"`
	Status        string    `json:"status"`
	MatchedFields int       `json:"matched_fields"`
	TotalFields   int       `json:"total_fields"`
	SuccessRate   *float64  `json:"success_rate,omitempty"`
	Missing       []string  `json:"missing"`
}
