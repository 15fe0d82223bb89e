package types

import "time"

type ValidationStatus string

const (
	StatusValid   ValidationStatus = "valid"
	StatusIssues  ValidationStatus = "issues"
	StatusMissing ValidationStatus = "missing"
	StatusError   ValidationStatus = "error"
	// StatusSkipped marks a category whose run failed before its output was
	// written; any file on disk belongs to an earlier run.
	StatusSkipped ValidationStatus = "skipped"
)

// ValidationReport is the quality-gate result for one processed output file.
type ValidationReport struct {
	Category Category         `json:"category"`
	File     string           `json:"file"`
	Path     string           `json:"path"`
	Status   ValidationStatus `json:"status"`
	Message  string           `json:"message,omitempty"`
	Issues   []string         `json:"issues"`
	Rows     int              `json:"rows"`
}

// CategoryOutcome summarises one category's pass through the pipeline.
type CategoryOutcome struct {
	Category    Category `json:"category"`
	RowsRead    int      `json:"rows_read"`
	RowsSkipped int      `json:"rows_skipped"`
	Identified  int      `json:"identified"`
	CleanedPath string   `json:"cleaned_path,omitempty"`
	OutputPath  string   `json:"output_path,omitempty"`
	Failed      bool     `json:"failed"`
	ErrorKind   string   `json:"error_kind,omitempty"`
	Error       string   `json:"error,omitempty"`
	Hint        string   `json:"hint,omitempty"`
}

// RunSummary is returned by a full pipeline run.
type RunSummary struct {
	RunID      string             `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	Duration   time.Duration      `json:"duration"`
	Outcomes   []CategoryOutcome  `json:"outcomes"`
	Validation []ValidationReport `json:"validation"`
}

// Failed reports whether any category aborted.
func (s RunSummary) Failed() bool {
	for _, o := range s.Outcomes {
		if o.Failed {
			return true
		}
	}
	return false
}
