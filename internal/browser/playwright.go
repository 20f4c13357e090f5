package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/hrm-e2e/internal/errs"
	"github.com/kuitang/hrm-e2e/internal/wait"
)

// Page implements Driver on a Playwright page.
type Page struct {
	page    playwright.Page
	baseURL string
	timeout time.Duration
}

var _ Driver = (*Page)(nil)

// NewPage wraps page. Relative paths passed to Goto are resolved against
// baseURL; timeout bounds every wait that has no explicit timeout.
func NewPage(page playwright.Page, baseURL string, timeout time.Duration) *Page {
	page.SetDefaultTimeout(float64(timeout.Milliseconds()))
	page.SetDefaultNavigationTimeout(float64(timeout.Milliseconds()))
	return &Page{
		page:    page,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// Raw returns the underlying Playwright page.
func (p *Page) Raw() playwright.Page {
	return p.page
}

func (p *Page) locate(q Query) playwright.Locator {
	var loc playwright.Locator
	if q.role != "" {
		opts := playwright.PageGetByRoleOptions{}
		if q.pattern != nil {
			opts.Name = q.pattern
		} else {
			opts.Name = q.name
			opts.Exact = playwright.Bool(q.exact)
		}
		loc = p.page.GetByRole(playwright.AriaRole(q.role), opts)
	} else {
		loc = p.page.Locator(q.css)
	}
	if q.hasText != "" {
		loc = loc.Filter(playwright.LocatorFilterOptions{HasText: q.hasText})
	}
	if q.nth > 0 {
		loc = loc.Nth(q.nth - 1)
	}
	return loc
}

// budget converts the effective timeout to Playwright milliseconds. A zero
// value would disable Playwright's timeout, so it never returns less than 1.
func (p *Page) budget(ctx context.Context, limit time.Duration) *float64 {
	if limit <= 0 {
		limit = p.timeout
	}
	ms := wait.Remaining(ctx, limit).Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return playwright.Float(float64(ms))
}

func wrap(op string, target fmt.Stringer, err error) error {
	if err == nil {
		return nil
	}
	what := op
	if target != nil {
		what = fmt.Sprintf("%s %s", op, target)
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return errs.Wrap(errs.Timeout, what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

type pathTarget string

func (t pathTarget) String() string { return string(t) }

func (p *Page) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return p.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (p *Page) Goto(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Goto(p.resolve(path), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   p.budget(ctx, 0),
	})
	return wrap("goto", pathTarget(path), err)
}

func (p *Page) WaitLoad(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: p.budget(ctx, 0),
	})
	return wrap("wait for load", nil, err)
}

func (p *Page) Fill(ctx context.Context, q Query, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.locate(q).Fill(value, playwright.LocatorFillOptions{Timeout: p.budget(ctx, 0)})
	return wrap("fill", q, err)
}

func (p *Page) Click(ctx context.Context, q Query) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.locate(q).Click(playwright.LocatorClickOptions{Timeout: p.budget(ctx, 0)})
	return wrap("click", q, err)
}

// Check ticks a checkbox or radio. OrangeHRM hides the native inputs behind
// styled labels, so the action is forced.
func (p *Page) Check(ctx context.Context, q Query) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.locate(q).Check(playwright.LocatorCheckOptions{
		Force:   playwright.Bool(true),
		Timeout: p.budget(ctx, 0),
	})
	return wrap("check", q, err)
}

func (p *Page) ScrollIntoView(ctx context.Context, q Query) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.locate(q).ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
		Timeout: p.budget(ctx, 0),
	})
	return wrap("scroll", q, err)
}

func (p *Page) WaitVisible(ctx context.Context, q Query, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.locate(q).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: p.budget(ctx, timeout),
	})
	return wrap("wait visible", q, err)
}

func (p *Page) WaitHidden(ctx context.Context, q Query, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.locate(q).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: p.budget(ctx, timeout),
	})
	return wrap("wait hidden", q, err)
}

func (p *Page) IsVisible(ctx context.Context, q Query) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	visible, err := p.locate(q).IsVisible()
	return visible, wrap("is visible", q, err)
}

func (p *Page) Text(ctx context.Context, q Query) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := p.locate(q).TextContent(playwright.LocatorTextContentOptions{Timeout: p.budget(ctx, 0)})
	return strings.TrimSpace(text), wrap("read text", q, err)
}

func (p *Page) InputValue(ctx context.Context, q Query) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, err := p.locate(q).InputValue(playwright.LocatorInputValueOptions{Timeout: p.budget(ctx, 0)})
	return value, wrap("read value", q, err)
}

func (p *Page) Attribute(ctx context.Context, q Query, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, err := p.locate(q).GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: p.budget(ctx, 0)})
	return value, wrap("read attribute "+name, q, err)
}

func (p *Page) Count(ctx context.Context, q Query) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.locate(q).Count()
	return n, wrap("count", q, err)
}

func (p *Page) URL() string {
	return p.page.URL()
}

func (p *Page) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	title, err := p.page.Title()
	return title, wrap("read title", nil, err)
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
		Timeout:  p.budget(ctx, 0),
	})
	return data, wrap("screenshot", nil, err)
}
