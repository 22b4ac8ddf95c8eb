// Package report summarizes a run and renders the summary.
//
// Summarize folds per-entry results into a model.RunSummary. It is a pure
// function and the only place counts are derived.
//
// Writers render a model.Report:
//   - TextWriter: styled, human-readable summary (default)
//   - JSONWriter: machine-readable summary and per-entry results
//   - MarkdownWriter: a shareable Markdown document
//
// # Usage
//
//	w, err := report.NewWriter(config.FormatText, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	err = w.Write(result)
package report
