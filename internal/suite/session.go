// Package suite runs OrangeHRM scenarios outside `go test`: each scenario
// gets its own isolated browser session, page objects and facade, runs its
// steps with assertions, and contributes a result to a JSON run report.
package suite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kuitang/hrm-e2e/internal/obs"
	"github.com/kuitang/hrm-e2e/internal/orangehrm"
	"github.com/kuitang/hrm-e2e/internal/pages"
)

// AssertionError is a failed Check or Equal.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return e.Message
}

// IsAssertion reports whether err is a failed assertion rather than an
// error raised by the application or the browser.
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}

// Session is what a scenario body sees: the facade, the page objects
// beneath it, and assertion helpers that record into the scenario result.
type Session struct {
	HRM   *orangehrm.Facade
	Pages *pages.Set

	steps    []StepResult
	failures []string
}

// NewSession binds a session to a page set. Scenarios receive one from the
// runner; tests build their own.
func NewSession(hrm *orangehrm.Facade, set *pages.Set) *Session {
	return &Session{HRM: hrm, Pages: set}
}

// Errorf lets testify's assert package report into the session.
func (s *Session) Errorf(format string, args ...any) {
	s.failures = append(s.failures, fmt.Sprintf(format, args...))
}

func (s *Session) lastFailure(fallback string) error {
	msg := fallback
	if n := len(s.failures); n > 0 {
		msg = strings.TrimSpace(s.failures[n-1])
	}
	return &AssertionError{Message: msg}
}

// Check fails with msg unless ok holds.
func (s *Session) Check(ok bool, msg string) error {
	if assert.True(s, ok, msg) {
		return nil
	}
	return s.lastFailure(msg)
}

// Equal fails with msg unless actual equals expected.
func (s *Session) Equal(expected, actual any, msg string) error {
	if assert.Equal(s, expected, actual, msg) {
		return nil
	}
	return s.lastFailure(msg)
}

// Step runs fn as a named step and records its outcome. The step's error is
// returned unchanged so bodies can stop at the first failed step.
func (s *Session) Step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	log := obs.For(ctx, "suite")
	ctx = obs.WithStep(ctx, name)
	start := time.Now()
	log.Info("step started", "step", name)

	err := fn(ctx)
	res := StepResult{Name: name, Status: StatusPassed, DurationMs: time.Since(start).Milliseconds()}
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		log.Warn("step failed", "step", name, "error", err, "duration_ms", res.DurationMs)
	} else {
		log.Info("step passed", "step", name, "duration_ms", res.DurationMs)
	}
	s.steps = append(s.steps, res)
	return err
}

// Steps returns the recorded step results.
func (s *Session) Steps() []StepResult {
	out := make([]StepResult, len(s.steps))
	copy(out, s.steps)
	return out
}
