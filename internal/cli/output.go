package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pfrederiksen/du-scraper/internal/logger"
	"github.com/pfrederiksen/du-scraper/internal/runner"
)

// OutputFormat specifies the summary format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Summary is the run report printed after all tasks finish
type Summary struct {
	StartedAt time.Time           `json:"started_at"`
	Tasks     []runner.TaskReport `json:"tasks"`
	Failed    int                 `json:"failed"`
	Records   int                 `json:"records"`
	Metrics   logger.Snapshot     `json:"metrics"`
}

// NewSummary combines a run report with the metrics recorded during it
func NewSummary(report runner.Report, metrics logger.Snapshot) *Summary {
	s := &Summary{
		StartedAt: report.StartedAt,
		Tasks:     report.Tasks,
		Failed:    report.Failed(),
		Metrics:   metrics,
	}
	if s.Tasks == nil {
		s.Tasks = []runner.TaskReport{}
	}
	for _, t := range report.Tasks {
		s.Records += t.Records
	}
	return s
}

// WriteOutput writes the summary in the specified format
func WriteOutput(w io.Writer, s *Summary, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, s)
	case FormatText:
		return writeText(w, s, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, s *Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s)
}

func writeText(w io.Writer, s *Summary, verbose bool) error {
	if len(s.Tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks run.")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Task", "Status", "Records", "Duration", "Output", "Error"})

	for _, tr := range s.Tasks {
		t.AppendRow(table.Row{
			tr.Task,
			tr.Status,
			tr.Records,
			tr.Duration.Round(time.Millisecond).String(),
			tr.Output,
			tr.Error,
		})
	}
	t.AppendFooter(table.Row{"Total", fmt.Sprintf("%d failed", s.Failed), s.Records, "", "", ""})

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.Render()

	if verbose && len(s.Metrics.Counters) > 0 {
		writeCounters(w, s.Metrics.Counters)
	}
	return nil
}

// writeCounters prints counters sorted by name
func writeCounters(w io.Writer, counters map[string]int64) {
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Counter", "Value"})
	for _, name := range names {
		t.AppendRow(table.Row{name, counters[name]})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
