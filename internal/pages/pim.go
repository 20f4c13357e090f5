package pages

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kuitang/hrm-e2e/internal/browser"
	"github.com/kuitang/hrm-e2e/internal/errs"
	"github.com/kuitang/hrm-e2e/internal/wait"
)

// PIM employee list locators. Result columns are: select, Id, First (&
// Middle) Name, Last Name, Job Title, ...
var (
	AddEmployeeButton  = browser.RoleMatching("button", regexp.MustCompile(`(?i)add`)).First()
	EmployeeNameFilter = browser.CSS(".oxd-input-group:has(label:has-text('Employee Name')) input").First()
	EmployeeIDFilter   = browser.CSS(".oxd-input-group:has(label:has-text('Employee Id')) input").First()
	SearchButton       = browser.RoleMatching("button", regexp.MustCompile(`(?i)search`)).First()
	ResultsTable       = browser.CSS(".oxd-table")
	ResultRows         = browser.CSS(".oxd-table-body .oxd-table-card")
	FirstResultID      = browser.CSS(".oxd-table-body .oxd-table-card .oxd-table-cell:nth-child(2)").First()
	FirstResultName    = browser.CSS(".oxd-table-body .oxd-table-card .oxd-table-cell:nth-child(3)").First()
	LoadingSpinner     = browser.CSS(".oxd-loading-spinner")
	NoRecordsFound     = browser.CSS(".orangehrm-horizontal-padding .oxd-text--span").WithText("No Records Found")
)

// PimPage is the PIM employee list with its search filters.
type PimPage struct {
	d    browser.Driver
	opts Options
}

var _ DirectoryFlow = (*PimPage)(nil)

func NewPimPage(d browser.Driver, opts Options) *PimPage {
	return &PimPage{d: d, opts: opts.withDefaults()}
}

func (p *PimPage) ClickAddEmployee(ctx context.Context) error {
	pageLogger(ctx, "PimPage").Debug("click add employee")
	if err := p.d.Click(ctx, AddEmployeeButton); err != nil {
		return fmt.Errorf("click add employee: %w", err)
	}
	return p.d.WaitLoad(ctx)
}

// SearchEmployee submits the search form. Empty filters are left alone, so
// calling it with neither lists everyone.
func (p *PimPage) SearchEmployee(ctx context.Context, name, id string) error {
	pageLogger(ctx, "PimPage").Info("search employee", "name", name, "id", id)
	if name != "" {
		if err := p.d.Fill(ctx, EmployeeNameFilter, name); err != nil {
			return fmt.Errorf("fill employee name filter: %w", err)
		}
	}
	if id != "" {
		if err := p.d.Fill(ctx, EmployeeIDFilter, id); err != nil {
			return fmt.Errorf("fill employee id filter: %w", err)
		}
	}
	if err := p.d.Click(ctx, SearchButton); err != nil {
		return fmt.Errorf("click search: %w", err)
	}
	if err := p.d.WaitLoad(ctx); err != nil {
		return err
	}
	return p.waitForResults(ctx, name, id)
}

// waitForResults polls until the list shows the new query. The list
// reloads over XHR and keeps the previous rows until then, so the search is
// settled once the spinner has come and gone, "No Records Found" shows, or
// the first row matches the filter.
func (p *PimPage) waitForResults(ctx context.Context, name, id string) error {
	sawSpinner := false
	settled, err := wait.Until(ctx, p.opts.Timeout, p.opts.PollInterval, func(ctx context.Context) (bool, error) {
		spinning, err := p.d.IsVisible(ctx, LoadingSpinner)
		if err != nil {
			return false, err
		}
		if spinning {
			sawSpinner = true
			return false, nil
		}
		if sawSpinner {
			return true, nil
		}
		if empty, err := p.d.IsVisible(ctx, NoRecordsFound); err != nil || empty {
			return empty, err
		}
		return p.firstRowMatches(ctx, name, id)
	})
	if err != nil {
		return fmt.Errorf("wait for search results: %w", err)
	}
	if !settled {
		return errs.New(errs.Timeout, "search results did not settle")
	}
	return nil
}

// firstRowMatches reports whether the first result row fits the filters.
// The name cell holds first and middle names, so only the filter's first
// word is checked.
func (p *PimPage) firstRowMatches(ctx context.Context, name, id string) (bool, error) {
	n, err := p.d.Count(ctx, ResultRows)
	if err != nil || n == 0 {
		return false, err
	}
	if id != "" {
		got, err := p.d.Text(ctx, FirstResultID)
		if err != nil || !strings.Contains(got, id) {
			return false, nil
		}
	}
	if words := strings.Fields(name); len(words) > 0 {
		got, err := p.d.Text(ctx, FirstResultName)
		if err != nil || !strings.Contains(strings.ToLower(got), strings.ToLower(words[0])) {
			return false, nil
		}
	}
	return true, nil
}

// SearchResultsCount returns the number of rendered result rows; zero means
// no matches.
func (p *PimPage) SearchResultsCount(ctx context.Context) (int, error) {
	n, err := p.d.Count(ctx, ResultRows)
	if err != nil {
		return 0, err
	}
	pageLogger(ctx, "PimPage").Info("search results", "count", n)
	return n, nil
}

// FirstResultEmployeeName returns the first row's name cell. Check
// SearchResultsCount first: with no rows the read waits and fails.
func (p *PimPage) FirstResultEmployeeName(ctx context.Context) (string, error) {
	return p.d.Text(ctx, FirstResultName)
}

// FirstResultEmployeeID returns the first row's id cell.
func (p *PimPage) FirstResultEmployeeID(ctx context.Context) (string, error) {
	return p.d.Text(ctx, FirstResultID)
}

// ClickFirstResult opens the first result's personal details.
func (p *PimPage) ClickFirstResult(ctx context.Context) error {
	if err := p.d.Click(ctx, FirstResultName); err != nil {
		return fmt.Errorf("open first result: %w", err)
	}
	return p.d.WaitLoad(ctx)
}

func (p *PimPage) VerifySearchResultsVisible(ctx context.Context) error {
	if err := p.d.WaitVisible(ctx, ResultsTable, p.opts.Timeout); err != nil {
		return fmt.Errorf("search results table not visible: %w", err)
	}
	return nil
}
