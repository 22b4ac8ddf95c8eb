package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/memefetch/internal/model"
)

var (
	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

// TextWriter writes the human-readable summary.
type TextWriter struct {
	output io.Writer
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{output: output}
}

// Write outputs the summary of report.
func (w *TextWriter) Write(report *model.Report) error {
	_, err := io.WriteString(w.output, RenderText(report))
	return err
}

// RenderText returns the text summary of report as a string.
func RenderText(report *model.Report) string {
	summary := Summarize(report.Results)

	var b strings.Builder
	b.WriteString(ruleStyle.Render(strings.Repeat("=", 50)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Processed: %d\n", summary.Total))
	b.WriteString(successStyle.Render(fmt.Sprintf("Succeeded: %d", summary.SucceededCount)))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" (downloaded %d, skipped %d, %s)",
		summary.DownloadedCount, summary.SkippedCount, formatBytes(summary.Bytes))))
	b.WriteString("\n")

	if summary.HasFailures() {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Failed: %d - %s",
			summary.FailedCount(), strings.Join(summary.FailedNames, ", "))))
		b.WriteString("\n")
		for _, r := range failedResults(report) {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %s: %s", r.Entry.Name, r.Outcome.Reason)))
			b.WriteString("\n")
		}
	}

	if report.Directory != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Saved to %s", report.Directory)))
		b.WriteString("\n")
	}

	return b.String()
}

func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/1024/1024)
	case n >= 1024:
		return fmt.Sprintf("%d KB", n/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
