// Package pages holds the OrangeHRM page objects. Each page object wraps the
// locators and interactions of one functional area and implements the flow
// interface the orchestration layer depends on.
//
// Failures follow three tiers:
//   - hard preconditions (wrong page, element never visible) return an error;
//   - racy confirmations (toasts, validation labels) return false on timeout;
//   - optional enrichments (secondary form fields) are logged and skipped.
package pages

import (
	"context"
	"log/slog"
	"time"

	"github.com/kuitang/hrm-e2e/internal/browser"
	"github.com/kuitang/hrm-e2e/internal/fixtures"
	"github.com/kuitang/hrm-e2e/internal/obs"
)

// LoginFlow authenticates a user through the login form.
type LoginFlow interface {
	NavigateToLogin(ctx context.Context) error
	// Login fills and submits the form without judging the outcome.
	Login(ctx context.Context, username, password string) error
	VerifySuccessfulLogin(ctx context.Context) (bool, error)
	VerifyErrorMessage(ctx context.Context) (bool, error)
}

// NavigationFlow moves between top-level sections.
type NavigationFlow interface {
	NavigateToPIM(ctx context.Context) error
	Logout(ctx context.Context) error
	VerifyDashboardLoaded(ctx context.Context) (bool, error)
}

// DirectoryFlow searches the employee directory.
type DirectoryFlow interface {
	ClickAddEmployee(ctx context.Context) error
	// SearchEmployee fills whichever filters are non-empty and submits.
	SearchEmployee(ctx context.Context, name, id string) error
	SearchResultsCount(ctx context.Context) (int, error)
	FirstResultEmployeeName(ctx context.Context) (string, error)
	FirstResultEmployeeID(ctx context.Context) (string, error)
	ClickFirstResult(ctx context.Context) error
	VerifySearchResultsVisible(ctx context.Context) error
}

// PersonFormFlow fills the employee creation form and, after save, the
// personal details form.
type PersonFormFlow interface {
	EnterFirstName(ctx context.Context, firstName string) error
	EnterLastName(ctx context.Context, lastName string) error
	EnterEmployeeID(ctx context.Context, employeeID string) error
	ClickSave(ctx context.Context) error
	AddMinimalEmployee(ctx context.Context, firstName, lastName, employeeID string) error

	VerifySuccessMessage(ctx context.Context, timeout time.Duration) (bool, error)
	VerifyRequiredErrorMessage(ctx context.Context, timeout time.Duration) (bool, error)
	VerifyPersonalDetailsPage(ctx context.Context) (bool, error)
	VerifyEmployeeAddedByURL(ctx context.Context) bool

	FirstNameValue(ctx context.Context) (string, error)
	LastNameValue(ctx context.Context) (string, error)
	EditPersonalDetails(ctx context.Context, data fixtures.Employee) (EditResult, error)
	LicenseNumberValue(ctx context.Context) (string, error)
}

// ArtifactSink stores diagnostic captures and returns where they went.
type ArtifactSink interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Options tunes the waits shared by all page objects.
type Options struct {
	Timeout      time.Duration // hard visibility waits
	ToastTimeout time.Duration // default for soft toast/validation polls
	ShortTimeout time.Duration // optional fields that may not be rendered
	PollInterval time.Duration
	Artifacts    ArtifactSink // optional; failure screenshots are skipped when nil
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.ToastTimeout <= 0 {
		o.ToastTimeout = 15 * time.Second
	}
	if o.ShortTimeout <= 0 {
		o.ShortTimeout = 2 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 250 * time.Millisecond
	}
	return o
}

// Set is the four page objects bound to one driver.
type Set struct {
	Login       *LoginPage
	Dashboard   *DashboardPage
	PIM         *PimPage
	AddEmployee *AddEmployeePage
}

// New binds every page object to d.
func New(d browser.Driver, opts Options) *Set {
	opts = opts.withDefaults()
	return &Set{
		Login:       NewLoginPage(d, opts),
		Dashboard:   NewDashboardPage(d, opts),
		PIM:         NewPimPage(d, opts),
		AddEmployee: NewAddEmployeePage(d, opts),
	}
}

func pageLogger(ctx context.Context, page string) *slog.Logger {
	return obs.For(ctx, "pages").With("page", page)
}
