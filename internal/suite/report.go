package suite

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ReportFile is the name of the run report inside the artifacts directory.
const ReportFile = "report.json"

// Status is the outcome of a scenario or step.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StepResult is one executed step.
type StepResult struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// ScenarioResult is one executed scenario.
type ScenarioResult struct {
	Name       string       `json:"name"`
	Tags       []string     `json:"tags,omitempty"`
	Worker     int          `json:"worker"`
	Status     Status       `json:"status"`
	StartTime  time.Time    `json:"startTime"`
	DurationMs int64        `json:"durationMs"`
	Steps      []StepResult `json:"steps,omitempty"`
	Error      string       `json:"error,omitempty"`
	Screenshot string       `json:"screenshot,omitempty"`
}

// Summary holds aggregated counts.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Report is the outcome of one run. Scenarios keep catalogue order
// regardless of the order they finished in.
type Report struct {
	RunID      string           `json:"runId"`
	Status     Status           `json:"status"`
	StartTime  time.Time        `json:"startTime"`
	EndTime    time.Time        `json:"endTime"`
	DurationMs int64            `json:"durationMs"`
	Summary    Summary          `json:"summary"`
	Scenarios  []ScenarioResult `json:"scenarios"`
}

func (r *Report) finish(end time.Time) {
	r.EndTime = end
	r.DurationMs = end.Sub(r.StartTime).Milliseconds()
	r.Summary = Summary{Total: len(r.Scenarios)}
	for _, sc := range r.Scenarios {
		switch sc.Status {
		case StatusPassed:
			r.Summary.Passed++
		case StatusFailed:
			r.Summary.Failed++
		case StatusSkipped:
			r.Summary.Skipped++
		}
	}
	r.Status = StatusPassed
	if r.Summary.Failed > 0 {
		r.Status = StatusFailed
	}
}

// Failed reports whether any scenario failed.
func (r *Report) Failed() bool {
	return r.Summary.Failed > 0
}

// WriteFile writes the report as indented JSON to dir/report.json.
func (r *Report) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	path := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Print writes a human-readable summary.
func (r *Report) Print(w io.Writer) {
	for _, sc := range r.Scenarios {
		mark := "✓"
		switch sc.Status {
		case StatusFailed:
			mark = "✗"
		case StatusSkipped:
			mark = "-"
		}
		fmt.Fprintf(w, "  %s %s (%s)\n", mark, sc.Name, time.Duration(sc.DurationMs)*time.Millisecond)
		if sc.Error != "" {
			fmt.Fprintf(w, "      %s\n", sc.Error)
		}
		if sc.Screenshot != "" {
			fmt.Fprintf(w, "      screenshot: %s\n", sc.Screenshot)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d skipped (%s)\n",
		r.Summary.Passed, r.Summary.Failed, r.Summary.Skipped,
		time.Duration(r.DurationMs)*time.Millisecond)
}
