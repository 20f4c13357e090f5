package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/kuitang/hrm-e2e/internal/browser"
	"github.com/kuitang/hrm-e2e/internal/logutil"
)

// LoginPath is the login screen, relative to the application base URL.
const LoginPath = "/web/index.php/auth/login"

// Login page locators.
var (
	LoginUsernameInput  = browser.CSS("input[name='username']")
	LoginPasswordInput  = browser.CSS("input[name='password']")
	LoginSubmitButton   = browser.CSS("button[type='submit']")
	LoginErrorBanner    = browser.CSS(".oxd-alert-content-text")
	DashboardBreadcrumb = browser.CSS(".oxd-topbar-header-breadcrumb-module")
)

// LoginPage is the login screen.
type LoginPage struct {
	d    browser.Driver
	opts Options
}

var _ LoginFlow = (*LoginPage)(nil)

func NewLoginPage(d browser.Driver, opts Options) *LoginPage {
	return &LoginPage{d: d, opts: opts.withDefaults()}
}

func (p *LoginPage) NavigateToLogin(ctx context.Context) error {
	pageLogger(ctx, "LoginPage").Debug("navigate to login")
	if err := p.d.Goto(ctx, LoginPath); err != nil {
		return fmt.Errorf("navigate to login: %w", err)
	}
	return nil
}

func (p *LoginPage) EnterUsername(ctx context.Context, username string) error {
	return p.d.Fill(ctx, LoginUsernameInput, username)
}

func (p *LoginPage) EnterPassword(ctx context.Context, password string) error {
	return p.d.Fill(ctx, LoginPasswordInput, password)
}

func (p *LoginPage) ClickLogin(ctx context.Context) error {
	if err := p.d.Click(ctx, LoginSubmitButton); err != nil {
		return err
	}
	return p.d.WaitLoad(ctx)
}

func (p *LoginPage) Login(ctx context.Context, username, password string) error {
	pageLogger(ctx, "LoginPage").Info("login",
		logutil.Attr("username", username),
		logutil.Attr("password", password),
	)
	if err := p.EnterUsername(ctx, username); err != nil {
		return fmt.Errorf("enter username: %w", err)
	}
	if err := p.EnterPassword(ctx, password); err != nil {
		return fmt.Errorf("enter password: %w", err)
	}
	if err := p.ClickLogin(ctx); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	return nil
}

// VerifySuccessfulLogin waits for the dashboard breadcrumb. It is an error
// if the breadcrumb never shows; otherwise it reports whether it reads
// "Dashboard".
func (p *LoginPage) VerifySuccessfulLogin(ctx context.Context) (bool, error) {
	if err := p.d.WaitVisible(ctx, DashboardBreadcrumb, p.opts.Timeout); err != nil {
		return false, fmt.Errorf("dashboard header not visible after login: %w", err)
	}
	text, err := p.d.Text(ctx, DashboardBreadcrumb)
	if err != nil {
		return false, fmt.Errorf("read dashboard header: %w", err)
	}
	pageLogger(ctx, "LoginPage").Info("dashboard header", "text", text)
	return strings.Contains(text, "Dashboard"), nil
}

// VerifyErrorMessage waits for the login error banner.
func (p *LoginPage) VerifyErrorMessage(ctx context.Context) (bool, error) {
	if err := p.d.WaitVisible(ctx, LoginErrorBanner, p.opts.Timeout); err != nil {
		return false, fmt.Errorf("login error banner not visible: %w", err)
	}
	return true, nil
}
