package report

import "github.com/handiism/memefetch/internal/model"

// Summarize folds results into a RunSummary. FailedNames keeps the order of
// results.
func Summarize(results []model.ItemResult) model.RunSummary {
	summary := model.RunSummary{
		Total:       len(results),
		FailedNames: []string{},
	}
	for _, r := range results {
		switch r.Outcome.Kind {
		case model.OutcomeSkipped:
			summary.SucceededCount++
			summary.SkippedCount++
		case model.OutcomeSucceeded:
			summary.SucceededCount++
			summary.DownloadedCount++
			summary.Bytes += r.Outcome.ByteSize
		default:
			summary.FailedNames = append(summary.FailedNames, r.Entry.Name)
		}
	}
	return summary
}
