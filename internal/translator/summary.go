package translator

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderSummary formats the per-file results as a terminal table with a
// totals footer.
func RenderSummary(results []*FileResult) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Units", "Failed Batches", "Duration", "Status"})

	var (
		totalUnits  int
		totalFailed int
		succeeded   int
		duration    time.Duration
	)
	for _, r := range results {
		status := "ok"
		switch {
		case r.Err != nil:
			status = "error: " + r.Err.Error()
		case r.FailedBatches > 0:
			status = "degraded"
		}

		t.AppendRow(table.Row{
			r.InputFile,
			r.Units,
			r.FailedBatches,
			r.Duration.Round(time.Millisecond),
			status,
		})

		totalUnits += r.Units
		totalFailed += r.FailedBatches
		duration += r.Duration
		if r.Succeeded() {
			succeeded++
		}
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("%d/%d succeeded", succeeded, len(results)),
		totalUnits,
		totalFailed,
		duration.Round(time.Millisecond),
		"",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})

	return t.Render()
}

// HasFailures reports whether any file produced no output, which drives
// the process exit code.
func HasFailures(results []*FileResult) bool {
	for _, r := range results {
		if !r.Succeeded() {
			return true
		}
	}
	return false
}
