package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/kuitang/hrm-e2e/internal/browser"
)

// Dashboard and top bar locators.
var (
	PIMMenuLink    = browser.Role("link", "PIM")
	UserDropdown   = browser.CSS(".oxd-userdropdown-tab")
	LogoutMenuItem = browser.Role("menuitem", "Logout")
)

// DashboardPage is the shell around every authenticated screen: side menu
// and user menu.
type DashboardPage struct {
	d    browser.Driver
	opts Options
}

var _ NavigationFlow = (*DashboardPage)(nil)

func NewDashboardPage(d browser.Driver, opts Options) *DashboardPage {
	return &DashboardPage{d: d, opts: opts.withDefaults()}
}

func (p *DashboardPage) NavigateToPIM(ctx context.Context) error {
	pageLogger(ctx, "DashboardPage").Debug("navigate to PIM")
	if err := p.d.Click(ctx, PIMMenuLink); err != nil {
		return fmt.Errorf("open PIM: %w", err)
	}
	return p.d.WaitLoad(ctx)
}

func (p *DashboardPage) Logout(ctx context.Context) error {
	log := pageLogger(ctx, "DashboardPage")
	log.Debug("logout")
	if err := p.d.Click(ctx, UserDropdown); err != nil {
		return fmt.Errorf("open user menu: %w", err)
	}
	if err := p.d.Click(ctx, LogoutMenuItem); err != nil {
		return fmt.Errorf("click logout: %w", err)
	}
	if err := p.d.WaitLoad(ctx); err != nil {
		return err
	}
	log.Info("logout completed")
	return nil
}

func (p *DashboardPage) VerifyDashboardLoaded(ctx context.Context) (bool, error) {
	title, err := p.d.Title(ctx)
	if err != nil {
		return false, err
	}
	pageLogger(ctx, "DashboardPage").Debug("page title", "title", title)
	return strings.Contains(title, "Dashboard"), nil
}
