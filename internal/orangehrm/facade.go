// Package orangehrm composes the page flows into business operations: log
// in as a fixture user, add a uniquely named employee, search the directory
// and verify outcomes. A Facade belongs to one scenario; it remembers the
// last employee it added so verification calls can default to it.
package orangehrm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kuitang/hrm-e2e/internal/errs"
	"github.com/kuitang/hrm-e2e/internal/fixtures"
	"github.com/kuitang/hrm-e2e/internal/logutil"
	"github.com/kuitang/hrm-e2e/internal/obs"
	"github.com/kuitang/hrm-e2e/internal/pages"
)

// Default fixture keys.
const (
	DefaultUserType     = "validUser"
	DefaultEmployeeType = "minimalEmployee"
)

// SearchCriteria filters the employee directory. Empty fields are not
// applied.
type SearchCriteria struct {
	EmployeeName string
	EmployeeID   string
}

// Flows are the page flows a Facade drives.
type Flows struct {
	Login pages.LoginFlow
	Nav   pages.NavigationFlow
	Dir   pages.DirectoryFlow
	Form  pages.PersonFormFlow
}

// FlowsFrom adapts a page object set.
func FlowsFrom(set *pages.Set) Flows {
	return Flows{Login: set.Login, Nav: set.Dashboard, Dir: set.PIM, Form: set.AddEmployee}
}

// Option configures a Facade.
type Option func(*Facade)

// WithClock replaces the wall clock used for uniqueness suffixes.
func WithClock(now func() time.Time) Option {
	return func(f *Facade) { f.now = now }
}

// Facade is not safe for concurrent use by multiple scenarios; give each
// scenario its own.
type Facade struct {
	data  fixtures.Provider
	flows Flows
	now   func() time.Time

	mu         sync.Mutex
	lastSuffix int64
	lastAdded  *fixtures.Employee
}

// New returns a Facade reading fixtures from data and driving flows.
func New(data fixtures.Provider, flows Flows, opts ...Option) *Facade {
	f := &Facade{data: data, flows: flows, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Credentials resolves a user fixture by key.
func (f *Facade) Credentials(ctx context.Context, userType string) (fixtures.Credentials, error) {
	creds, err := f.data.Credentials(userType)
	if err != nil {
		obs.For(ctx, "orangehrm").Error("credentials lookup failed", "user_type", userType, "error", err)
		return fixtures.Credentials{}, err
	}
	obs.For(ctx, "orangehrm").Debug("credentials found",
		"user_type", userType,
		logutil.Attr("username", creds.Username),
		logutil.Attr("password", creds.Password))
	return creds, nil
}

// Employee resolves an employee fixture by key.
func (f *Facade) Employee(ctx context.Context, employeeType string) (fixtures.Employee, error) {
	emp, err := f.data.Employee(employeeType)
	if err != nil {
		obs.For(ctx, "orangehrm").Error("employee lookup failed", "employee_type", employeeType, "error", err)
		return fixtures.Employee{}, err
	}
	return emp, nil
}

// Login signs in as the fixture user and reports whether the dashboard
// loaded.
func (f *Facade) Login(ctx context.Context, userType string) (bool, error) {
	log := obs.For(ctx, "orangehrm")
	log.Info("login", "user_type", userType)
	creds, err := f.Credentials(ctx, userType)
	if err != nil {
		return false, err
	}
	if err := f.flows.Login.NavigateToLogin(ctx); err != nil {
		return false, err
	}
	if err := f.flows.Login.Login(ctx, creds.Username, creds.Password); err != nil {
		return false, err
	}
	ok, err := f.flows.Login.VerifySuccessfulLogin(ctx)
	if err != nil {
		return false, err
	}
	log.Info("login result", "user_type", userType, "ok", ok)
	return ok, nil
}

// UniqueEmployee returns a copy of base with a millisecond timestamp
// appended to both names. Suffixes from one Facade are strictly increasing
// even when the clock stalls or steps back.
func (f *Facade) UniqueEmployee(base fixtures.Employee) fixtures.Employee {
	f.mu.Lock()
	suffix := f.now().UnixMilli()
	if suffix <= f.lastSuffix {
		suffix = f.lastSuffix + 1
	}
	f.lastSuffix = suffix
	f.mu.Unlock()

	unique := base
	unique.FirstName = fmt.Sprintf("%s_%d", base.FirstName, suffix)
	unique.LastName = fmt.Sprintf("%s_%d", base.LastName, suffix)
	return unique
}

// AddEmployee creates a uniquely named copy of the fixture employee through
// the PIM creation form and remembers it as the last added employee. It does
// not check that the save succeeded.
func (f *Facade) AddEmployee(ctx context.Context, employeeType string) (fixtures.Employee, error) {
	log := obs.For(ctx, "orangehrm")
	base, err := f.Employee(ctx, employeeType)
	if err != nil {
		return fixtures.Employee{}, err
	}
	emp := f.UniqueEmployee(base)
	log.Info("add employee", "employee_type", employeeType, "first_name", emp.FirstName, "last_name", emp.LastName)

	if err := f.flows.Nav.NavigateToPIM(ctx); err != nil {
		return fixtures.Employee{}, err
	}
	if err := f.flows.Dir.ClickAddEmployee(ctx); err != nil {
		return fixtures.Employee{}, err
	}
	// The id is left to the application: a fixed fixture id collides on
	// the second run.
	if err := f.flows.Form.AddMinimalEmployee(ctx, emp.FirstName, emp.LastName, ""); err != nil {
		return fixtures.Employee{}, err
	}

	f.mu.Lock()
	cached := emp
	f.lastAdded = &cached
	f.mu.Unlock()
	log.Info("add employee completed", "first_name", emp.FirstName, "last_name", emp.LastName)
	return emp, nil
}

// LastAdded returns the employee most recently added through this facade.
func (f *Facade) LastAdded() (fixtures.Employee, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastAdded == nil {
		return fixtures.Employee{}, false
	}
	return *f.lastAdded, true
}

// SearchEmployee opens PIM and runs a directory search.
func (f *Facade) SearchEmployee(ctx context.Context, c SearchCriteria) error {
	obs.For(ctx, "orangehrm").Info("search employee", "name", c.EmployeeName, "id", c.EmployeeID)
	if err := f.flows.Nav.NavigateToPIM(ctx); err != nil {
		return err
	}
	return f.flows.Dir.SearchEmployee(ctx, c.EmployeeName, c.EmployeeID)
}

// VerifyEmployeeAddedSuccessfully checks the URL first and falls back to the
// success toast only when the browser is not on a details page.
func (f *Facade) VerifyEmployeeAddedSuccessfully(ctx context.Context) (bool, error) {
	log := obs.For(ctx, "orangehrm")
	if f.flows.Form.VerifyEmployeeAddedByURL(ctx) {
		log.Info("employee added", "via", "url")
		return true, nil
	}
	ok, err := f.flows.Form.VerifySuccessMessage(ctx, 0)
	if err != nil {
		return false, err
	}
	log.Info("employee added", "via", "toast", "ok", ok)
	return ok, nil
}

// VerifySearchResults reports whether the search returned at least expected
// rows.
func (f *Facade) VerifySearchResults(ctx context.Context, expected int) (bool, error) {
	n, err := f.flows.Dir.SearchResultsCount(ctx)
	if err != nil {
		return false, err
	}
	ok := n >= expected
	obs.For(ctx, "orangehrm").Info("verify search results", "expected_at_least", expected, "actual", n, "ok", ok)
	return ok, nil
}

// VerifyEmployeeDetails compares the form's name fields with firstName and
// lastName. With both empty it compares against the last added employee;
// supplying exactly one is an error.
func (f *Facade) VerifyEmployeeDetails(ctx context.Context, firstName, lastName string) (bool, error) {
	log := obs.For(ctx, "orangehrm")
	switch {
	case firstName != "" && lastName != "":
	case firstName == "" && lastName == "":
		last, ok := f.LastAdded()
		if !ok {
			return false, errs.New(errs.FailedPrecondition,
				"no employee details provided and no employee has been added")
		}
		firstName, lastName = last.FirstName, last.LastName
		log.Debug("verifying last added employee", "first_name", firstName, "last_name", lastName)
	default:
		return false, errs.New(errs.InvalidArgument,
			"verify employee details needs both first and last name, or neither")
	}

	actualFirst, err := f.flows.Form.FirstNameValue(ctx)
	if err != nil {
		return false, fmt.Errorf("read first name: %w", err)
	}
	actualLast, err := f.flows.Form.LastNameValue(ctx)
	if err != nil {
		return false, fmt.Errorf("read last name: %w", err)
	}
	ok := actualFirst == firstName && actualLast == lastName
	log.Info("verify employee details",
		"want_first", firstName, "want_last", lastName,
		"got_first", actualFirst, "got_last", actualLast, "ok", ok)
	return ok, nil
}

// Logout signs out through the user menu.
func (f *Facade) Logout(ctx context.Context) error {
	obs.For(ctx, "orangehrm").Info("logout")
	return f.flows.Nav.Logout(ctx)
}
