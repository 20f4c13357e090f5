package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/hrm-e2e/internal/errs"
	"github.com/kuitang/hrm-e2e/internal/obs"
)

// LaunchOptions configures the shared browser process.
type LaunchOptions struct {
	Engine   string // chromium, firefox or webkit
	Headless bool
	SlowMo   time.Duration
	BaseURL  string
	Timeout  time.Duration
}

// Launcher owns one Playwright driver and one browser process. Sessions it
// hands out are isolated browser contexts: no cookies, storage or pages are
// shared between them.
type Launcher struct {
	opts LaunchOptions

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

// Launch starts Playwright and the configured browser engine. It returns an
// errs.Unavailable error when Playwright or the browser is not installed.
func Launch(opts LaunchOptions) (*Launcher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "playwright not available", err)
	}

	var engine playwright.BrowserType
	switch opts.Engine {
	case "", "chromium":
		engine = pw.Chromium
	case "firefox":
		engine = pw.Firefox
	case "webkit":
		engine = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, errs.New(errs.InvalidArgument, fmt.Sprintf("unknown browser engine %q", opts.Engine))
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.SlowMo > 0 {
		launch.SlowMo = playwright.Float(float64(opts.SlowMo.Milliseconds()))
	}
	browser, err := engine.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, errs.Wrap(errs.Unavailable, "could not launch browser", err)
	}

	obs.Pkg("browser").Info("browser launched", "engine", engine.Name(), "headless", opts.Headless, "version", browser.Version())
	return &Launcher{opts: opts, pw: pw, browser: browser}, nil
}

// Session is one isolated browser context with a single page.
type Session struct {
	*Page
	context playwright.BrowserContext
}

// Close closes the session's context and every page in it.
func (s *Session) Close() error {
	return s.context.Close()
}

// NewSession opens a fresh browser context and page.
func (l *Launcher) NewSession(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	browser := l.browser
	l.mu.Unlock()
	if browser == nil {
		return nil, errs.New(errs.FailedPrecondition, "launcher is closed")
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1366, Height: 900},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	return &Session{
		Page:    NewPage(page, l.opts.BaseURL, l.opts.Timeout),
		context: bctx,
	}, nil
}

// Close stops the browser and the Playwright driver.
func (l *Launcher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var closeErr error
	if l.browser != nil {
		closeErr = errors.Join(closeErr, l.browser.Close())
		l.browser = nil
	}
	if l.pw != nil {
		closeErr = errors.Join(closeErr, l.pw.Stop())
		l.pw = nil
	}
	return closeErr
}
