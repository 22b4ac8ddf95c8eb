package model

import "time"

// ItemResult pairs a catalog entry with its destination path and outcome.
type ItemResult struct {
	Entry   Entry   `json:"entry"`
	Path    string  `json:"path"`
	Outcome Outcome `json:"outcome"`
}

// Report is everything a run produces: one ItemResult per catalog entry, in
// catalog order, plus run metadata.
type Report struct {
	// RunID identifies the run in logs and rendered reports.
	RunID string `json:"run_id"`

	// Directory is the destination directory the run wrote into.
	Directory string `json:"directory"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Results holds exactly one result per catalog entry.
	Results []ItemResult `json:"results"`
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunSummary is the aggregate view of a Report.
//
// SucceededCount counts both downloaded and skipped entries, since either way
// the file is present. SucceededCount + len(FailedNames) always equals Total.
type RunSummary struct {
	Total           int      `json:"total"`
	SucceededCount  int      `json:"succeeded"`
	DownloadedCount int      `json:"downloaded"`
	SkippedCount    int      `json:"skipped"`
	FailedNames     []string `json:"failed"`
	Bytes           int64    `json:"bytes"`
}

// FailedCount returns the number of hard failures.
func (s RunSummary) FailedCount() int {
	return len(s.FailedNames)
}

// HasFailures reports whether any entry failed.
func (s RunSummary) HasFailures() bool {
	return len(s.FailedNames) > 0
}
