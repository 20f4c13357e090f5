package pages

import (
	"context"
	"fmt"
	"time"

	"github.com/kuitang/hrm-e2e/internal/errs"
	"github.com/kuitang/hrm-e2e/internal/fixtures"
	"github.com/kuitang/hrm-e2e/internal/logutil"
)

// FailurePolicy decides what a failed field edit does to the rest of the edit.
type FailurePolicy int

const (
	// Soft failures are logged and the remaining fields still apply.
	Soft FailurePolicy = iota
	// Fatal failures capture a screenshot and abort the edit.
	Fatal
)

func (p FailurePolicy) String() string {
	if p == Fatal {
		return "fatal"
	}
	return "soft"
}

// FieldEdit is one optional field of the personal details form.
type FieldEdit struct {
	Name   string
	Value  string
	Policy FailurePolicy
	Apply  func(ctx context.Context, value string) error
}

// EditResult lists which fields were applied and which were skipped.
type EditResult struct {
	Applied []string
	Skipped []string
}

// personalDetailEdits lists every optional field in form order. Fields with
// an empty value are dropped: absence means "leave untouched".
func (p *AddEmployeePage) personalDetailEdits(data fixtures.Employee) []FieldEdit {
	all := []FieldEdit{
		{Name: "licenseNumber", Value: data.LicenseNumber, Policy: Soft, Apply: p.fillOptional(LicenseNumberInput)},
		{Name: "otherId", Value: data.OtherID, Policy: Soft, Apply: p.fillOptional(OtherIDInput)},
		{Name: "dateOfBirth", Value: data.DateOfBirth, Policy: Soft, Apply: p.setDateOfBirth},
		{Name: "maritalStatus", Value: data.MaritalStatus, Policy: Fatal, Apply: p.selectMaritalStatus},
		{Name: "gender", Value: string(data.Gender), Policy: Soft, Apply: p.selectGender},
		{Name: "testField", Value: data.TestField, Policy: Soft, Apply: p.fillOptional(TestFieldInput)},
	}
	edits := all[:0]
	for _, e := range all {
		if e.Value != "" {
			edits = append(edits, e)
		}
	}
	return edits
}

// ApplyEdits runs each edit in order. Soft failures are logged and
// recorded as skipped; the first fatal failure is handed to onFatal and
// returned.
func ApplyEdits(ctx context.Context, edits []FieldEdit, onFatal func(ctx context.Context, name string, err error)) (EditResult, error) {
	log := pageLogger(ctx, "AddEmployeePage")
	fields := make(map[string]string, len(edits))
	for _, e := range edits {
		fields[e.Name] = e.Value
	}
	log.Debug("applying field edits", "fields", logutil.FormatFieldsForLog(fields))

	var res EditResult
	for _, e := range edits {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		err := e.Apply(ctx, e.Value)
		if err == nil {
			res.Applied = append(res.Applied, e.Name)
			continue
		}
		if e.Policy == Fatal {
			log.Error("field edit failed", "field", e.Name, "policy", e.Policy.String(), "error", err)
			if onFatal != nil {
				onFatal(ctx, e.Name, err)
			}
			return res, fmt.Errorf("edit %s: %w", e.Name, err)
		}
		log.Warn("field edit skipped", "field", e.Name, "policy", e.Policy.String(), "error", err)
		res.Skipped = append(res.Skipped, e.Name)
	}
	return res, nil
}

// captureFailure saves a screenshot of the current page. Capture problems
// are logged, never returned: the original failure is what matters.
func (p *AddEmployeePage) captureFailure(ctx context.Context, name string, _ error) {
	log := pageLogger(ctx, "AddEmployeePage")
	if p.opts.Artifacts == nil {
		return
	}
	png, err := p.d.Screenshot(ctx)
	if err != nil {
		log.Warn("failure screenshot not captured", "field", name, "error", err)
		return
	}
	file := fmt.Sprintf("%s-failure-%d.png", name, time.Now().UnixMilli())
	location, err := p.opts.Artifacts.Save(ctx, file, png, "image/png")
	if err != nil {
		log.Warn("failure screenshot not saved", "field", name, "error", err)
		return
	}
	log.Info("failure screenshot saved", "field", name, "location", location)
}

func unsupported(field, value string) error {
	return errs.New(errs.InvalidArgument, fmt.Sprintf("unsupported %s %q", field, value))
}
