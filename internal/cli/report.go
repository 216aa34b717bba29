package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/rohmanhakim/pypi-scraper/internal/scheduler"
)

var (
	successText = color.New(color.FgGreen).SprintfFunc()
	failureText = color.New(color.FgRed).SprintfFunc()
)

// PrintReport renders the per-run summary: one line of counts, plus a table
// of failures when there are any. The report is the primary observable output
// beyond the written files.
func PrintReport(w io.Writer, report scheduler.Report) {
	fmt.Fprintf(w, "%s  %s  (resolved %d, %d documents already on disk)\n",
		successText("succeeded=%d", report.Succeeded),
		failureText("failed=%d", len(report.Failed)),
		report.TotalResolved,
		report.PriorDocuments,
	)

	if len(report.Failed) == 0 {
		return
	}

	table := tablewriter.NewTable(w)
	table.Header([]string{"Package", "Reason"})
	for _, failure := range report.Failed {
		_ = table.Append([]string{failure.Name, failure.Reason})
	}
	_ = table.Render()
}
