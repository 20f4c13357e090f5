package pages

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuitang/hrm-e2e/internal/browser/browsertest"
	"github.com/kuitang/hrm-e2e/internal/errs"
	"github.com/kuitang/hrm-e2e/internal/fixtures"
)

var fastOpts = Options{
	Timeout:      50 * time.Millisecond,
	ToastTimeout: 40 * time.Millisecond,
	ShortTimeout: 10 * time.Millisecond,
	PollInterval: 2 * time.Millisecond,
}

type memSink struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (s *memSink) Save(_ context.Context, name string, _ []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.names = append(s.names, name)
	return "mem://" + name, nil
}

func loginDriver() *browsertest.Driver {
	return browsertest.New().
		Set(LoginUsernameInput, browsertest.Element{Visible: true}).
		Set(LoginPasswordInput, browsertest.Element{Visible: true}).
		Set(LoginSubmitButton, browsertest.Element{Visible: true})
}

func TestLoginPage_LoginFillsAndSubmits(t *testing.T) {
	ctx := context.Background()
	d := loginDriver()
	p := NewLoginPage(d, fastOpts)

	require.NoError(t, p.NavigateToLogin(ctx))
	require.NoError(t, p.Login(ctx, "Admin", "admin123"))

	gotos := d.ActionsOf("goto")
	require.Len(t, gotos, 1)
	assert.Equal(t, LoginPath, gotos[0].Target)

	fills := d.ActionsOf("fill")
	require.Len(t, fills, 2)
	assert.Equal(t, "Admin", fills[0].Value)
	assert.Equal(t, "admin123", fills[1].Value)
	assert.True(t, d.Did("click", LoginSubmitButton))
	assert.NotEmpty(t, d.ActionsOf("wait_load"))
}

func TestLoginPage_LoginMissingFieldFails(t *testing.T) {
	d := browsertest.New()
	err := NewLoginPage(d, fastOpts).Login(context.Background(), "Admin", "admin123")
	require.Error(t, err)
	assert.True(t, errs.IsTimeout(err))
}

func TestLoginPage_VerifySuccessfulLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("dashboard", func(t *testing.T) {
		d := browsertest.New().Set(DashboardBreadcrumb, browsertest.Element{Visible: true, Text: " Dashboard "})
		ok, err := NewLoginPage(d, fastOpts).VerifySuccessfulLogin(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("other module", func(t *testing.T) {
		d := browsertest.New().Set(DashboardBreadcrumb, browsertest.Element{Visible: true, Text: "PIM"})
		ok, err := NewLoginPage(d, fastOpts).VerifySuccessfulLogin(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("never shows", func(t *testing.T) {
		ok, err := NewLoginPage(browsertest.New(), fastOpts).VerifySuccessfulLogin(ctx)
		require.Error(t, err)
		assert.False(t, ok)
	})
}

func TestLoginPage_VerifyErrorMessage(t *testing.T) {
	ctx := context.Background()

	d := browsertest.New().Set(LoginErrorBanner, browsertest.Element{Visible: true, Text: "Invalid credentials"})
	ok, err := NewLoginPage(d, fastOpts).VerifyErrorMessage(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewLoginPage(browsertest.New(), fastOpts).VerifyErrorMessage(ctx)
	require.Error(t, err)
	assert.False(t, ok)
}

func TestDashboardPage(t *testing.T) {
	ctx := context.Background()
	d := browsertest.New().
		Set(PIMMenuLink, browsertest.Element{Visible: true}).
		Set(UserDropdown, browsertest.Element{Visible: true}).
		Set(LogoutMenuItem, browsertest.Element{Visible: true}).
		SetTitle("OrangeHRM - Dashboard")
	p := NewDashboardPage(d, fastOpts)

	ok, err := p.VerifyDashboardLoaded(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, p.NavigateToPIM(ctx))
	assert.True(t, d.Did("click", PIMMenuLink))

	require.NoError(t, p.Logout(ctx))
	clicks := d.ActionsOf("click")
	require.Len(t, clicks, 3)
	assert.Equal(t, UserDropdown.String(), clicks[1].Target)
	assert.Equal(t, LogoutMenuItem.String(), clicks[2].Target)

	d.SetTitle("OrangeHRM")
	ok, err = p.VerifyDashboardLoaded(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func pimDriver() *browsertest.Driver {
	return browsertest.New().
		Set(EmployeeNameFilter, browsertest.Element{Visible: true}).
		Set(EmployeeIDFilter, browsertest.Element{Visible: true}).
		Set(SearchButton, browsertest.Element{Visible: true}).
		Set(AddEmployeeButton, browsertest.Element{Visible: true})
}

// staleList scripts the unfiltered list PIM shows before a search lands.
func staleList(d *browsertest.Driver) *browsertest.Driver {
	return d.Set(ResultsTable, browsertest.Element{Visible: true}).
		Set(ResultRows, browsertest.Element{Visible: true, Count: 5}).
		Set(FirstResultID, browsertest.Element{Visible: true, Text: "0001"}).
		Set(FirstResultName, browsertest.Element{Visible: true, Text: "Paul Collings"})
}

func TestPimPage_SearchSkipsEmptyFilters(t *testing.T) {
	ctx := context.Background()
	d := pimDriver().OnClick(SearchButton, func(d *browsertest.Driver) {
		d.Set(NoRecordsFound, browsertest.Element{Visible: true})
	})
	p := NewPimPage(d, fastOpts)

	require.NoError(t, p.SearchEmployee(ctx, "", ""))
	assert.Empty(t, d.ActionsOf("fill"))
	assert.True(t, d.Did("click", SearchButton))

	require.NoError(t, p.SearchEmployee(ctx, "", "0042"))
	fills := d.ActionsOf("fill")
	require.Len(t, fills, 1)
	assert.Equal(t, EmployeeIDFilter.String(), fills[0].Target)
	assert.Equal(t, "0042", fills[0].Value)
}

func TestPimPage_SearchWaitsForSpinner(t *testing.T) {
	d := pimDriver().Set(LoadingSpinner, browsertest.Element{Visible: true})
	err := NewPimPage(d, fastOpts).SearchEmployee(context.Background(), "Peter", "")
	require.Error(t, err)
	assert.True(t, errs.IsTimeout(err))
}

func TestPimPage_SearchWaitsThroughLateSpinner(t *testing.T) {
	d := staleList(pimDriver()).
		Set(LoadingSpinner, browsertest.Element{VisibleAfter: 2, HideAfter: 2})

	require.NoError(t, NewPimPage(d, fastOpts).SearchEmployee(context.Background(), "NonExistentEmployee12345", ""))

	spinner, _ := d.Element(LoadingSpinner)
	assert.Zero(t, spinner.VisibleAfter, "search returned before the spinner showed")
	assert.Zero(t, spinner.HideAfter, "search returned while the spinner was up")
	assert.False(t, spinner.Visible)
}

func TestPimPage_SearchIgnoresStaleRows(t *testing.T) {
	ctx := context.Background()

	d := staleList(pimDriver())
	err := NewPimPage(d, fastOpts).SearchEmployee(ctx, "NonExistentEmployee12345", "")
	require.Error(t, err, "the unfiltered list must not count as the result")
	assert.True(t, errs.IsTimeout(err))

	d = staleList(pimDriver()).OnClick(SearchButton, func(d *browsertest.Driver) {
		d.Set(NoRecordsFound, browsertest.Element{Visible: true})
	})
	require.NoError(t, NewPimPage(d, fastOpts).SearchEmployee(ctx, "NonExistentEmployee12345", ""))

	d = staleList(pimDriver()).OnClick(SearchButton, func(d *browsertest.Driver) {
		d.Set(ResultRows, browsertest.Element{Visible: true, Count: 1}).
			Set(FirstResultName, browsertest.Element{Visible: true, Text: "Peter Mac"})
	})
	require.NoError(t, NewPimPage(d, fastOpts).SearchEmployee(ctx, "peter anderson", ""))

	d = staleList(pimDriver()).OnClick(SearchButton, func(d *browsertest.Driver) {
		d.Set(FirstResultID, browsertest.Element{Visible: true, Text: "0042"})
	})
	require.NoError(t, NewPimPage(d, fastOpts).SearchEmployee(ctx, "", "0042"))
}

func TestPimPage_Results(t *testing.T) {
	ctx := context.Background()
	d := pimDriver()
	p := NewPimPage(d, fastOpts)

	n, err := p.SearchResultsCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.Error(t, p.VerifySearchResultsVisible(ctx))

	d.Set(ResultsTable, browsertest.Element{Visible: true}).
		Set(ResultRows, browsertest.Element{Visible: true, Count: 3}).
		Set(FirstResultID, browsertest.Element{Visible: true, Text: "0042"}).
		Set(FirstResultName, browsertest.Element{Visible: true, Text: "Peter Mac"})

	n, err = p.SearchResultsCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, p.VerifySearchResultsVisible(ctx))

	id, err := p.FirstResultEmployeeID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0042", id)
	name, err := p.FirstResultEmployeeName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Peter Mac", name)

	require.NoError(t, p.ClickFirstResult(ctx))
	assert.True(t, d.Did("click", FirstResultName))
}

func TestAddEmployeePage_AddMinimalEmployee(t *testing.T) {
	ctx := context.Background()
	d := browsertest.New().
		Set(FirstNameInput, browsertest.Element{Visible: true}).
		Set(LastNameInput, browsertest.Element{Visible: true}).
		Set(CreateEmployeeID, browsertest.Element{Visible: true, Value: "0099"}).
		Set(CreateSaveButton, browsertest.Element{Visible: true})
	p := NewAddEmployeePage(d, fastOpts)

	require.NoError(t, p.AddMinimalEmployee(ctx, "Auto", "Tester_1", ""))
	assert.False(t, d.Did("fill", CreateEmployeeID), "empty id keeps the generated one")
	assert.True(t, d.Did("click", CreateSaveButton))

	first, err := p.FirstNameValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Auto", first)
	last, err := p.LastNameValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Tester_1", last)

	require.NoError(t, p.AddMinimalEmployee(ctx, "", "Tester_2", "0100"))
	el, _ := d.Element(CreateEmployeeID)
	assert.Equal(t, "0100", el.Value)
}

func TestAddEmployeePage_VerifySuccessMessage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		toast *browsertest.Element
		want  bool
	}{
		{name: "saved", toast: &browsertest.Element{Visible: true, Text: "Success\nSuccessfully Saved"}, want: true},
		{name: "appears late", toast: &browsertest.Element{VisibleAfter: 3, Text: "Successfully Updated"}, want: true},
		{name: "error toast", toast: &browsertest.Element{Visible: true, Text: "Error\nFailed to Save"}, want: false},
		{name: "never appears", toast: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := browsertest.New()
			if tt.toast != nil {
				d.Set(Toast, *tt.toast)
			}
			got, err := NewAddEmployeePage(d, fastOpts).VerifySuccessMessage(ctx, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddEmployeePage_VerifySuccessMessageCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAddEmployeePage(browsertest.New(), fastOpts).VerifySuccessMessage(ctx, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAddEmployeePage_VerifyRequiredErrorMessage(t *testing.T) {
	ctx := context.Background()

	d := browsertest.New().Set(RequiredError, browsertest.Element{Visible: true, Text: "Required"})
	ok, err := NewAddEmployeePage(d, fastOpts).VerifyRequiredErrorMessage(ctx, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewAddEmployeePage(browsertest.New(), fastOpts).VerifyRequiredErrorMessage(ctx, 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddEmployeePage_PersonalDetailsGate(t *testing.T) {
	ctx := context.Background()

	ok, err := NewAddEmployeePage(browsertest.New(), fastOpts).VerifyPersonalDetailsPage(ctx)
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, errs.Is(err, errs.FailedPrecondition))

	d := browsertest.New().Set(PersonalDetailsHead, browsertest.Element{Visible: true})
	ok, err = NewAddEmployeePage(d, fastOpts).VerifyPersonalDetailsPage(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEmployeeNumberFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://opensource-demo.orangehrmlive.com/web/index.php/pim/viewPersonalDetails/empNumber/42", "42", true},
		{"/web/index.php/pim/viewPersonalDetails/empNumber/7/", "7", true},
		{"/web/index.php/pim/viewPersonalDetails/empNumber/", "", false},
		{"/web/index.php/pim/addEmployee", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := EmployeeNumberFromURL(tt.url)
		assert.Equal(t, tt.ok, ok, tt.url)
		assert.Equal(t, tt.want, got, tt.url)
	}

	d := browsertest.New().SetURL(tests[0].url)
	assert.True(t, NewAddEmployeePage(d, fastOpts).VerifyEmployeeAddedByURL(context.Background()))
	d.SetURL(tests[3].url)
	assert.False(t, NewAddEmployeePage(d, fastOpts).VerifyEmployeeAddedByURL(context.Background()))
}

var maritalOptions = []string{"-- Select --", "Single", "Married", "Other"}

// detailsDriver scripts a personal details form. The test field is not
// rendered, matching instances without that custom field.
func detailsDriver() *browsertest.Driver {
	d := browsertest.New().
		Set(LicenseNumberInput, browsertest.Element{Visible: true}).
		Set(OtherIDInput, browsertest.Element{Visible: true}).
		Set(DateOfBirthInput, browsertest.Element{Visible: true, Value: "1970-01-01"}).
		Set(MaritalStatusOpen, browsertest.Element{Visible: true}).
		Set(MaritalStatusList, browsertest.Element{}).
		Set(MaritalStatusItems, browsertest.Element{Visible: true, Count: len(maritalOptions)}).
		Set(GenderMaleRadio, browsertest.Element{Visible: true}).
		Set(GenderFemaleRadio, browsertest.Element{Visible: true}).
		Set(DetailsSaveButton, browsertest.Element{Visible: true})
	d.OnClick(MaritalStatusOpen, func(d *browsertest.Driver) {
		d.Set(MaritalStatusList, browsertest.Element{Visible: true})
	})
	for i, text := range maritalOptions {
		opt := MaritalStatusItems.Nth(i)
		d.Set(opt, browsertest.Element{Visible: true, Text: text})
		d.OnClick(opt, func(d *browsertest.Driver) {
			d.Set(MaritalStatusList, browsertest.Element{})
		})
	}
	return d
}

func fullEmployee() fixtures.Employee {
	return fixtures.Employee{
		FirstName:     "Peter",
		LastName:      "Anderson",
		LicenseNumber: "LIC-2024-0001",
		OtherID:       "OID-7781",
		MaritalStatus: "Single",
		DateOfBirth:   "1985-15-05",
		Gender:        fixtures.GenderMale,
		TestField:     "custom",
	}
}

func TestAddEmployeePage_EditPersonalDetails(t *testing.T) {
	ctx := context.Background()
	d := detailsDriver()
	sink := &memSink{}
	opts := fastOpts
	opts.Artifacts = sink
	p := NewAddEmployeePage(d, opts)

	res, err := p.EditPersonalDetails(ctx, fullEmployee())
	require.NoError(t, err)
	assert.Equal(t, []string{"licenseNumber", "otherId", "dateOfBirth", "maritalStatus", "gender"}, res.Applied)
	assert.Equal(t, []string{"testField"}, res.Skipped)

	assert.True(t, d.Did("click", MaritalStatusItems.Nth(1)), "exact match picks Single")
	assert.True(t, d.Did("scroll", MaritalStatusOpen))
	assert.True(t, d.Did("wait_hidden", MaritalStatusList))
	assert.True(t, d.Did("check", GenderMaleRadio))
	assert.False(t, d.Did("check", GenderFemaleRadio))
	assert.True(t, d.Did("click", DetailsSaveButton))
	assert.Empty(t, sink.names)

	dob, _ := d.Element(DateOfBirthInput)
	assert.Equal(t, "1985-15-05", dob.Value)

	license, err := p.LicenseNumberValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "LIC-2024-0001", license)
}

func TestAddEmployeePage_EditSkipsEmptyFields(t *testing.T) {
	d := detailsDriver()
	res, err := NewAddEmployeePage(d, fastOpts).EditPersonalDetails(context.Background(), fixtures.Employee{LicenseNumber: "L-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"licenseNumber"}, res.Applied)
	assert.Empty(t, res.Skipped)
	assert.False(t, d.Did("click", MaritalStatusOpen))
	assert.True(t, d.Did("click", DetailsSaveButton))
}

func TestAddEmployeePage_EditSoftFailuresAreIndependent(t *testing.T) {
	d := detailsDriver().Remove(LicenseNumberInput).Remove(OtherIDInput)
	emp := fullEmployee()
	emp.Gender = "Unknown"

	res, err := NewAddEmployeePage(d, fastOpts).EditPersonalDetails(context.Background(), emp)
	require.NoError(t, err)
	assert.Equal(t, []string{"dateOfBirth", "maritalStatus"}, res.Applied)
	assert.Equal(t, []string{"licenseNumber", "otherId", "gender", "testField"}, res.Skipped)
	assert.True(t, d.Did("click", DetailsSaveButton))
}

func TestAddEmployeePage_EditRejectedDateIsClearedAndSkipped(t *testing.T) {
	d := detailsDriver()
	d.OnClick(DateOfBirthInput, func(d *browsertest.Driver) {
		d.Set(DateOfBirthError, browsertest.Element{Visible: true, Text: "Should be a valid date in yyyy-dd-mm format"})
	})
	emp := fullEmployee()
	emp.DateOfBirth = "1985-05-15"

	res, err := NewAddEmployeePage(d, fastOpts).EditPersonalDetails(context.Background(), emp)
	require.NoError(t, err)
	assert.Contains(t, res.Skipped, "dateOfBirth")
	assert.NotContains(t, res.Applied, "dateOfBirth")
	assert.Contains(t, res.Applied, "maritalStatus", "later fields still apply")

	dob, _ := d.Element(DateOfBirthInput)
	assert.Empty(t, dob.Value, "rejected date must not block the save")
	assert.True(t, d.Did("click", DetailsSaveButton))
}

func TestAddEmployeePage_EditMaritalStatusIsFatal(t *testing.T) {
	ctx := context.Background()
	d := detailsDriver()
	sink := &memSink{}
	opts := fastOpts
	opts.Artifacts = sink

	emp := fullEmployee()
	emp.MaritalStatus = "Widowed"
	res, err := NewAddEmployeePage(d, opts).EditPersonalDetails(ctx, emp)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.NotFound))
	assert.Equal(t, []string{"licenseNumber", "otherId", "dateOfBirth"}, res.Applied)

	assert.False(t, d.Did("click", DetailsSaveButton))
	assert.False(t, d.Did("check", GenderMaleRadio), "fields after the fatal one are not applied")
	assert.Equal(t, 1, d.Screenshots())
	require.Len(t, sink.names, 1)
	assert.Contains(t, sink.names[0], "maritalStatus-failure-")
}

func TestAddEmployeePage_EditFatalWithoutSink(t *testing.T) {
	d := detailsDriver().Remove(MaritalStatusOpen)
	_, err := NewAddEmployeePage(d, fastOpts).EditPersonalDetails(context.Background(), fixtures.Employee{MaritalStatus: "Single"})
	require.Error(t, err)
	assert.Zero(t, d.Screenshots())
}

func TestAddEmployeePage_CaptureFailureIsBestEffort(t *testing.T) {
	d := detailsDriver().Remove(MaritalStatusOpen)
	d.ShotErr = errors.New("page crashed")
	opts := fastOpts
	opts.Artifacts = &memSink{}

	_, err := NewAddEmployeePage(d, opts).EditPersonalDetails(context.Background(), fixtures.Employee{MaritalStatus: "Single"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "page crashed")
}

func TestAddEmployeePage_LicenseNumberMissing(t *testing.T) {
	got, err := NewAddEmployeePage(browsertest.New(), fastOpts).LicenseNumberValue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplyEdits_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran []string
	edits := []FieldEdit{
		{Name: "a", Value: "1", Apply: func(context.Context, string) error { ran = append(ran, "a"); cancel(); return nil }},
		{Name: "b", Value: "2", Apply: func(context.Context, string) error { ran = append(ran, "b"); return nil }},
	}
	res, err := ApplyEdits(ctx, edits, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, ran)
	assert.Equal(t, []string{"a"}, res.Applied)
}

func TestNewSetSharesDriver(t *testing.T) {
	d := loginDriver()
	set := New(d, Options{})
	require.NotNil(t, set.Login)
	require.NotNil(t, set.Dashboard)
	require.NotNil(t, set.PIM)
	require.NotNil(t, set.AddEmployee)
	assert.Equal(t, 10*time.Second, set.Login.opts.Timeout)
	assert.Equal(t, 15*time.Second, set.AddEmployee.opts.ToastTimeout)
}
