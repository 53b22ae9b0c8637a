package constants

// DocumentStatus is the outcome of verifying one layout document.
type DocumentStatus string

// Stable values (reports and the run store persist these exact strings).
const (
	DocumentStatusVerified         DocumentStatus = "VERIFIED"          // text extracted and fields checked
	DocumentStatusExtractionFailed DocumentStatus = "EXTRACTION_FAILED" // no corpus could be produced
)

// RunStatus is the canonical status for rows in verification_run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusCancelled RunStatus = "CANCELLED"
	RunStatusFailed    RunStatus = "FAILED" // terminal failure before or during the batch
)
