package pages

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kuitang/hrm-e2e/internal/browser"
	"github.com/kuitang/hrm-e2e/internal/errs"
	"github.com/kuitang/hrm-e2e/internal/fixtures"
	"github.com/kuitang/hrm-e2e/internal/wait"
)

// Employee creation and personal details locators. The name inputs are
// shared by both screens.
var (
	FirstNameInput      = browser.CSS("input[name='firstName']")
	LastNameInput       = browser.CSS("input[name='lastName']")
	CreateEmployeeID    = browser.CSS(".orangehrm-employee-form .oxd-input-group:has(label:has-text('Employee Id')) input")
	CreateSaveButton    = browser.CSS(".orangehrm-employee-form button[type='submit']")
	Toast               = browser.CSS(".oxd-toast-container .oxd-toast").First()
	RequiredError       = browser.CSS(".oxd-input-field-error-message").WithText("Required").First()
	PersonalDetailsHead = browser.Role("heading", "Personal Details")

	LicenseNumberInput = browser.CSS(".oxd-input-group:has(label:has-text(\"Driver's License Number\")) input")
	OtherIDInput       = browser.CSS(".oxd-input-group:has(label:has-text('Other Id')) input")
	DateOfBirthInput   = browser.CSS(".oxd-input-group:has(label:has-text('Date of Birth')) input")
	DateOfBirthError   = browser.CSS(".oxd-input-group:has(label:has-text('Date of Birth')) .oxd-input-field-error-message")
	TestFieldInput     = browser.CSS(".oxd-input-group:has(label:has-text('Test_Field')) input")
	MaritalStatusOpen  = browser.CSS(".oxd-input-group:has(label:has-text('Marital Status')) .oxd-select-text")
	MaritalStatusList  = browser.CSS(".oxd-select-dropdown")
	MaritalStatusItems = browser.CSS(".oxd-select-dropdown [role='option']")
	GenderMaleRadio    = browser.CSS("input[type='radio'][value='1']")
	GenderFemaleRadio  = browser.CSS("input[type='radio'][value='2']")
	DetailsSaveButton  = browser.CSS("form:has(label:has-text('Marital Status')) button[type='submit']")
)

var personalDetailsURL = regexp.MustCompile(`/pim/viewPersonalDetails/empNumber/(\d+)`)

// toastConfirmations are the toast texts that count as a successful save.
var toastConfirmations = []string{"Successfully Saved", "Success", "Successful"}

// EmployeeNumberFromURL extracts the numeric employee id from a personal details URL.
func EmployeeNumberFromURL(pageURL string) (string, bool) {
	m := personalDetailsURL.FindStringSubmatch(pageURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// AddEmployeePage covers the creation form and the personal details form it
// leads to.
type AddEmployeePage struct {
	d    browser.Driver
	opts Options
}

var _ PersonFormFlow = (*AddEmployeePage)(nil)

func NewAddEmployeePage(d browser.Driver, opts Options) *AddEmployeePage {
	return &AddEmployeePage{d: d, opts: opts.withDefaults()}
}

func (p *AddEmployeePage) EnterFirstName(ctx context.Context, firstName string) error {
	pageLogger(ctx, "AddEmployeePage").Debug("enter first name", "value", firstName)
	return p.d.Fill(ctx, FirstNameInput, firstName)
}

func (p *AddEmployeePage) EnterLastName(ctx context.Context, lastName string) error {
	pageLogger(ctx, "AddEmployeePage").Debug("enter last name", "value", lastName)
	return p.d.Fill(ctx, LastNameInput, lastName)
}

func (p *AddEmployeePage) EnterEmployeeID(ctx context.Context, employeeID string) error {
	pageLogger(ctx, "AddEmployeePage").Debug("enter employee id", "value", employeeID)
	return p.d.Fill(ctx, CreateEmployeeID, employeeID)
}

// ClickSave submits the creation form and waits for the page to settle.
// Whether a toast shows is left to VerifySuccessMessage's bounded poll.
func (p *AddEmployeePage) ClickSave(ctx context.Context) error {
	if err := p.d.Click(ctx, CreateSaveButton); err != nil {
		return fmt.Errorf("click save: %w", err)
	}
	return p.d.WaitLoad(ctx)
}

// AddMinimalEmployee fills the names, the id when given, and saves. Empty
// names are typed as-is so negative scenarios can trigger validation.
func (p *AddEmployeePage) AddMinimalEmployee(ctx context.Context, firstName, lastName, employeeID string) error {
	pageLogger(ctx, "AddEmployeePage").Info("add minimal employee",
		"first_name", firstName, "last_name", lastName, "employee_id", employeeID)
	if err := p.EnterFirstName(ctx, firstName); err != nil {
		return fmt.Errorf("enter first name: %w", err)
	}
	if err := p.EnterLastName(ctx, lastName); err != nil {
		return fmt.Errorf("enter last name: %w", err)
	}
	if employeeID != "" {
		if err := p.EnterEmployeeID(ctx, employeeID); err != nil {
			return fmt.Errorf("enter employee id: %w", err)
		}
	}
	return p.ClickSave(ctx)
}

// VerifySuccessMessage polls for a toast for up to timeout (ToastTimeout
// when zero). A toast that never shows, or vanishes before it can be read,
// yields false rather than an error.
func (p *AddEmployeePage) VerifySuccessMessage(ctx context.Context, timeout time.Duration) (bool, error) {
	log := pageLogger(ctx, "AddEmployeePage")
	text, ok, err := p.pollText(ctx, Toast, timeout)
	if err != nil || !ok {
		log.Info("success toast not seen", "timeout", p.toastTimeout(timeout).String())
		return false, err
	}
	log.Info("toast", "text", text)
	for _, want := range toastConfirmations {
		if strings.Contains(text, want) {
			return true, nil
		}
	}
	return false, nil
}

// VerifyRequiredErrorMessage polls for a field validation label reading
// exactly "Required". Timing out yields false.
func (p *AddEmployeePage) VerifyRequiredErrorMessage(ctx context.Context, timeout time.Duration) (bool, error) {
	text, ok, err := p.pollText(ctx, RequiredError, timeout)
	if err != nil || !ok {
		pageLogger(ctx, "AddEmployeePage").Info("required label not seen")
		return false, err
	}
	return text == "Required", nil
}

func (p *AddEmployeePage) toastTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return p.opts.ToastTimeout
	}
	return timeout
}

// pollText waits until q is visible, then reads its text. Only parent
// context cancellation is returned as an error.
func (p *AddEmployeePage) pollText(ctx context.Context, q browser.Query, timeout time.Duration) (string, bool, error) {
	seen, err := wait.Until(ctx, p.toastTimeout(timeout), p.opts.PollInterval, func(ctx context.Context) (bool, error) {
		return p.d.IsVisible(ctx, q)
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", false, err
		}
		pageLogger(ctx, "AddEmployeePage").Warn("visibility probe failed", "target", q.String(), "error", err)
		return "", false, nil
	}
	if !seen {
		return "", false, nil
	}
	text, err := p.d.Text(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, nil
	}
	return text, true, nil
}

// VerifyPersonalDetailsPage is a hard gate: it fails unless the personal
// details heading shows.
func (p *AddEmployeePage) VerifyPersonalDetailsPage(ctx context.Context) (bool, error) {
	if err := p.d.WaitVisible(ctx, PersonalDetailsHead, p.opts.Timeout); err != nil {
		return false, errs.Wrap(errs.FailedPrecondition, "not on the personal details page", err)
	}
	return true, nil
}

// VerifyEmployeeAddedByURL reports whether the browser is on a specific
// employee's personal details page.
func (p *AddEmployeePage) VerifyEmployeeAddedByURL(ctx context.Context) bool {
	current := p.d.URL()
	empNumber, ok := EmployeeNumberFromURL(current)
	pageLogger(ctx, "AddEmployeePage").Info("verify employee added by url", "url", current, "emp_number", empNumber, "ok", ok)
	return ok
}

func (p *AddEmployeePage) FirstNameValue(ctx context.Context) (string, error) {
	return p.d.InputValue(ctx, FirstNameInput)
}

func (p *AddEmployeePage) LastNameValue(ctx context.Context) (string, error) {
	return p.d.InputValue(ctx, LastNameInput)
}

// EditPersonalDetails applies every non-empty optional field of data, then
// saves the personal details form. Soft field failures are skipped; a
// marital status failure aborts the edit before saving.
func (p *AddEmployeePage) EditPersonalDetails(ctx context.Context, data fixtures.Employee) (EditResult, error) {
	log := pageLogger(ctx, "AddEmployeePage")
	log.Info("edit personal details",
		"license_number", data.LicenseNumber, "other_id", data.OtherID,
		"marital_status", data.MaritalStatus, "date_of_birth", data.DateOfBirth,
		"gender", string(data.Gender))

	res, err := ApplyEdits(ctx, p.personalDetailEdits(data), p.captureFailure)
	if err != nil {
		return res, err
	}
	if err := p.d.Click(ctx, DetailsSaveButton); err != nil {
		return res, fmt.Errorf("save personal details: %w", err)
	}
	if err := p.d.WaitLoad(ctx); err != nil {
		return res, err
	}
	log.Info("personal details saved", "applied", res.Applied, "skipped", res.Skipped)
	return res, nil
}

// LicenseNumberValue reads the driver's license field. The field is not
// rendered on every layout, so a field that does not show within
// ShortTimeout reads as empty.
func (p *AddEmployeePage) LicenseNumberValue(ctx context.Context) (string, error) {
	if err := p.d.WaitVisible(ctx, LicenseNumberInput, p.opts.ShortTimeout); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		pageLogger(ctx, "AddEmployeePage").Info("license number field not found", "error", err)
		return "", nil
	}
	return p.d.InputValue(ctx, LicenseNumberInput)
}

// fillOptional returns an edit that fills q if it renders within
// ShortTimeout.
func (p *AddEmployeePage) fillOptional(q browser.Query) func(ctx context.Context, value string) error {
	return func(ctx context.Context, value string) error {
		if err := p.d.WaitVisible(ctx, q, p.opts.ShortTimeout); err != nil {
			return err
		}
		return p.d.Fill(ctx, q, value)
	}
}

// setDateOfBirth replaces the date input's content; the picker keeps the
// old value unless the input is cleared first. A value the form flags as
// invalid is cleared again and reported.
func (p *AddEmployeePage) setDateOfBirth(ctx context.Context, value string) error {
	if err := p.d.WaitVisible(ctx, DateOfBirthInput, p.opts.ShortTimeout); err != nil {
		return err
	}
	if err := p.d.Click(ctx, DateOfBirthInput); err != nil {
		return err
	}
	if err := p.d.Fill(ctx, DateOfBirthInput, ""); err != nil {
		return err
	}
	if err := p.d.Fill(ctx, DateOfBirthInput, value); err != nil {
		return err
	}
	// A date in the wrong layout fills fine but blocks the save; clear it.
	invalid, err := p.d.IsVisible(ctx, DateOfBirthError)
	if err != nil || !invalid {
		return err
	}
	if err := p.d.Fill(ctx, DateOfBirthInput, ""); err != nil {
		return err
	}
	return unsupported("date of birth", value)
}

// selectMaritalStatus drives the custom dropdown: open it, pick the option
// whose text is exactly status, and wait for the list to close.
func (p *AddEmployeePage) selectMaritalStatus(ctx context.Context, status string) error {
	if err := p.d.WaitVisible(ctx, MaritalStatusOpen, p.opts.Timeout); err != nil {
		return fmt.Errorf("locate marital status dropdown: %w", err)
	}
	if err := p.d.ScrollIntoView(ctx, MaritalStatusOpen); err != nil {
		return fmt.Errorf("scroll to marital status dropdown: %w", err)
	}
	if err := p.d.Click(ctx, MaritalStatusOpen); err != nil {
		return fmt.Errorf("open marital status dropdown: %w", err)
	}
	if err := p.d.WaitVisible(ctx, MaritalStatusList, p.opts.Timeout); err != nil {
		return fmt.Errorf("marital status options did not open: %w", err)
	}

	n, err := p.d.Count(ctx, MaritalStatusItems)
	if err != nil {
		return fmt.Errorf("count marital status options: %w", err)
	}
	option := browser.Query{}
	for i := 0; i < n; i++ {
		text, err := p.d.Text(ctx, MaritalStatusItems.Nth(i))
		if err != nil {
			return fmt.Errorf("read marital status option %d: %w", i, err)
		}
		if text == status {
			option = MaritalStatusItems.Nth(i)
			break
		}
	}
	if option.IsZero() {
		return errs.New(errs.NotFound, fmt.Sprintf("marital status option %q not offered", status))
	}
	if err := p.d.Click(ctx, option); err != nil {
		return fmt.Errorf("select marital status %q: %w", status, err)
	}
	if err := p.d.WaitHidden(ctx, MaritalStatusList, p.opts.Timeout); err != nil {
		return fmt.Errorf("marital status options did not close: %w", err)
	}
	return nil
}

func (p *AddEmployeePage) selectGender(ctx context.Context, value string) error {
	var radio browser.Query
	switch fixtures.Gender(value) {
	case fixtures.GenderMale:
		radio = GenderMaleRadio
	case fixtures.GenderFemale:
		radio = GenderFemaleRadio
	default:
		return unsupported("gender", value)
	}
	return p.d.Check(ctx, radio)
}
