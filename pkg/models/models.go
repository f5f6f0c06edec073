// pkg/models/models.go
package models

import "time"

// Record is one extracted roster entry. It is stored and passed by value.
type Record struct {
	ProfileURL string `json:"profile_url"`
	FullName   string `json:"full_name"`
	Region     string `json:"region"`
	BirthDate  string `json:"birth_date"`
}

// RowPolicy decides what happens when a data row cannot be parsed
type RowPolicy string

const (
	// RowPolicyAbort fails the whole run on the first malformed row
	RowPolicyAbort RowPolicy = "abort"
	// RowPolicySkip drops the row and records a diagnostic
	RowPolicySkip RowPolicy = "skip"
)

// SettleMode selects how the scraper waits for the table after a page advance
type SettleMode string

const (
	// SettlePoll polls the document until the table body changes
	SettlePoll SettleMode = "poll"
	// SettleFixed sleeps for a fixed delay
	SettleFixed SettleMode = "fixed"
)

// RowError describes a data row that was skipped
type RowError struct {
	Page   int    `json:"page"`
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ScrapeResult summarises a finished run
type ScrapeResult struct {
	RunID      string        `json:"run_id"`
	URL        string        `json:"url"`
	Pages      int           `json:"pages"`
	Records    []Record      `json:"records"`
	Skipped    []RowError    `json:"skipped,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	OutputPath string        `json:"output_path,omitempty"`
}
