package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/handiism/memefetch/internal/model"
)

// MarkdownWriter outputs the report as a Markdown document.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write outputs report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) error {
	summary := Summarize(report.Results)
	md := markdown.NewMarkdown(w.output)

	md.H1("memefetch Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", "`" + report.RunID + "`"},
			{"Directory", "`" + report.Directory + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Processed", strconv.Itoa(summary.Total)},
			{"Succeeded", strconv.Itoa(summary.SucceededCount)},
			{"Downloaded", strconv.Itoa(summary.DownloadedCount)},
			{"Skipped", strconv.Itoa(summary.SkippedCount)},
			{"Failed", strconv.Itoa(summary.FailedCount())},
		},
	})
	md.PlainText("")

	md.H2("Entries")
	md.PlainText("")
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		rows = append(rows, []string{r.Entry.Name, r.Outcome.Kind.String(), detail(r.Outcome)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Outcome", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")

	if summary.HasFailures() {
		md.H2("Failed")
		md.PlainText("")
		md.BulletList(summary.FailedNames...)
		md.PlainText("")
	}

	return md.Build()
}

func detail(o model.Outcome) string {
	switch o.Kind {
	case model.OutcomeSucceeded:
		return strconv.FormatInt(o.ByteSize, 10) + " bytes"
	case model.OutcomeFailed:
		return o.Reason
	default:
		return "already present"
	}
}
