package suite

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kuitang/hrm-e2e/internal/artifacts"
	"github.com/kuitang/hrm-e2e/internal/browser"
	"github.com/kuitang/hrm-e2e/internal/fixtures"
	"github.com/kuitang/hrm-e2e/internal/logutil"
	"github.com/kuitang/hrm-e2e/internal/obs"
	"github.com/kuitang/hrm-e2e/internal/orangehrm"
	"github.com/kuitang/hrm-e2e/internal/pages"
)

// DefaultScenarioTimeout bounds one scenario; slow scenarios get three
// times as long.
const DefaultScenarioTimeout = 2 * time.Minute

// PageSession is an isolated browser page: its own cookies and storage.
type PageSession interface {
	browser.Driver
	Close() error
}

// Opener creates a fresh PageSession per scenario.
type Opener func(ctx context.Context) (PageSession, error)

// FromLauncher opens each session as a new context of one shared browser.
func FromLauncher(l *browser.Launcher) Opener {
	return func(ctx context.Context) (PageSession, error) {
		s, err := l.NewSession(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Runner executes scenarios with bounded parallelism.
type Runner struct {
	Open        Opener
	Data        fixtures.Provider
	PageOptions pages.Options
	// Artifacts receives failure screenshots; nil disables them.
	Artifacts artifacts.Sink
	Workers   int
	RunID     string
	Timeout   time.Duration
}

// Run executes scenarios and returns the report. A failing scenario never
// stops the others; only cancellation of ctx does.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) *Report {
	runID := r.RunID
	if runID == "" {
		runID = obs.NewRunID()
	}
	ctx = obs.WithRun(ctx, runID)
	log := obs.For(ctx, "suite")

	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	report := &Report{RunID: runID, StartTime: time.Now().UTC(), Scenarios: make([]ScenarioResult, len(scenarios))}
	log.Info("run started", "scenarios", len(scenarios), "workers", workers)

	// Worker ids only label logs and results.
	slots := make(chan int, workers)
	for i := 1; i <= workers; i++ {
		slots <- i
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sc := range scenarios {
		g.Go(func() error {
			worker := <-slots
			defer func() { slots <- worker }()
			if err := gctx.Err(); err != nil {
				report.Scenarios[i] = skipped(sc, worker, err)
				return nil
			}
			report.Scenarios[i] = r.runOne(gctx, sc, worker)
			return nil
		})
	}
	_ = g.Wait()

	report.finish(time.Now().UTC())
	log.Info("run finished",
		"passed", report.Summary.Passed, "failed", report.Summary.Failed,
		"skipped", report.Summary.Skipped, "duration_ms", report.DurationMs)
	return report
}

func skipped(sc Scenario, worker int, cause error) ScenarioResult {
	return ScenarioResult{
		Name:      sc.Name,
		Tags:      sc.Tags,
		Worker:    worker,
		Status:    StatusSkipped,
		StartTime: time.Now().UTC(),
		Error:     cause.Error(),
	}
}

func (r *Runner) scenarioTimeout(sc Scenario) time.Duration {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultScenarioTimeout
	}
	if sc.Slow {
		timeout *= 3
	}
	return timeout
}

func (r *Runner) runOne(ctx context.Context, sc Scenario, worker int) (res ScenarioResult) {
	ctx = obs.WithScenario(ctx, sc.Name, worker)
	ctx, cancel := context.WithTimeout(ctx, r.scenarioTimeout(sc))
	defer cancel()
	log := obs.For(ctx, "suite")

	start := time.Now()
	res = ScenarioResult{Name: sc.Name, Tags: sc.Tags, Worker: worker, StartTime: start.UTC()}
	log.Info("scenario started", "tags", strings.Join(sc.Tags, " "))

	page, err := r.Open(ctx)
	if err != nil {
		res.Status = StatusFailed
		res.Error = fmt.Sprintf("open browser session: %v", err)
		res.DurationMs = time.Since(start).Milliseconds()
		log.Error("scenario failed", "error", err)
		return res
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Warn("close browser session", "error", err)
		}
	}()

	opts := r.PageOptions
	if r.Artifacts != nil {
		opts.Artifacts = r.Artifacts
	}
	set := pages.New(page, opts)
	s := NewSession(orangehrm.New(r.Data, orangehrm.FlowsFrom(set)), set)

	err = runGuarded(ctx, s, sc)
	res.Steps = s.Steps()
	res.DurationMs = time.Since(start).Milliseconds()
	if err == nil {
		res.Status = StatusPassed
		log.Info("scenario passed", "duration_ms", res.DurationMs)
		return res
	}

	res.Status = StatusFailed
	res.Error = err.Error()
	res.Screenshot = r.captureFailure(context.WithoutCancel(ctx), page, sc)
	log.Error("scenario failed", "error", err, "assertion", IsAssertion(err), "duration_ms", res.DurationMs)
	return res
}

// runGuarded runs Before, Body and After. After runs whenever Before was
// attempted, even after a panic; its error is reported only if nothing
// failed earlier. A panic fails the scenario instead of the run.
func runGuarded(ctx context.Context, s *Session, sc Scenario) error {
	err := recovered(ctx, func() error {
		if sc.Before != nil {
			if err := sc.Before(ctx, s); err != nil {
				return err
			}
		}
		if sc.Body != nil {
			return sc.Body(ctx, s)
		}
		return nil
	})
	if sc.After != nil {
		// Teardown still runs when the scenario ran out of time.
		afterErr := recovered(ctx, func() error {
			return sc.After(context.WithoutCancel(ctx), s)
		})
		if afterErr != nil {
			obs.For(ctx, "suite").Warn("teardown failed", "error", afterErr)
			if err == nil {
				err = fmt.Errorf("teardown: %w", afterErr)
			}
		}
	}
	return err
}

// recovered runs fn and turns a panic into an error.
func recovered(ctx context.Context, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			obs.For(ctx, "suite").Error("scenario panicked", "panic", p, "stack", logutil.TruncateForLog(string(debug.Stack()), 4000))
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn()
}

// captureFailure saves a screenshot of the failed scenario's page and
// returns where it went, or "" when it could not be taken.
func (r *Runner) captureFailure(ctx context.Context, page PageSession, sc Scenario) string {
	if r.Artifacts == nil {
		return ""
	}
	log := obs.For(ctx, "suite")
	png, err := page.Screenshot(ctx)
	if err != nil {
		log.Warn("failure screenshot not captured", "error", err)
		return ""
	}
	name := fmt.Sprintf("%s-failure-%d.png", Slug(sc.Name), time.Now().UnixMilli())
	location, err := r.Artifacts.Save(ctx, name, png, "image/png")
	if err != nil {
		log.Warn("failure screenshot not saved", "error", err)
		return ""
	}
	return location
}
