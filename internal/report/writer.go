package report

import (
	"io"

	"github.com/pkg/errors"

	"github.com/handiism/memefetch/internal/config"
	"github.com/handiism/memefetch/internal/model"
)

// Writer renders a run report to its destination.
type Writer interface {
	Write(report *model.Report) error
}

// NewWriter returns the Writer for format (see config.FormatText and friends).
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case config.FormatText, "":
		return NewTextWriter(output), nil
	case config.FormatJSON:
		return NewJSONWriter(output), nil
	case config.FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, errors.Errorf("unknown report format %q", format)
	}
}

// failedResults returns the failed results in report order.
func failedResults(report *model.Report) []model.ItemResult {
	var failed []model.ItemResult
	for _, r := range report.Results {
		if r.Outcome.Kind == model.OutcomeFailed {
			failed = append(failed, r)
		}
	}
	return failed
}
