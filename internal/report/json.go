package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/handiism/memefetch/internal/model"
)

// JSONWriter outputs the report as indented JSON.
type JSONWriter struct {
	output io.Writer
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{output: output}
}

type jsonReport struct {
	RunID      string             `json:"run_id"`
	Directory  string             `json:"directory"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	DurationMS int64              `json:"duration_ms"`
	Summary    model.RunSummary   `json:"summary"`
	Results    []model.ItemResult `json:"results"`
}

// Write outputs report as a single JSON document.
func (w *JSONWriter) Write(report *model.Report) error {
	enc := json.NewEncoder(w.output)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		RunID:      report.RunID,
		Directory:  report.Directory,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		DurationMS: report.Duration().Milliseconds(),
		Summary:    Summarize(report.Results),
		Results:    report.Results,
	})
}
