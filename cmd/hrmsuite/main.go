// hrmsuite runs the OrangeHRM end-to-end scenarios against a live instance.
//
//	hrmsuite run --tag @smoke --workers 4
//	hrmsuite list --tag regression
//	hrmsuite check
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/kuitang/hrm-e2e/internal/artifacts"
	"github.com/kuitang/hrm-e2e/internal/browser"
	"github.com/kuitang/hrm-e2e/internal/config"
	"github.com/kuitang/hrm-e2e/internal/fixtures"
	"github.com/kuitang/hrm-e2e/internal/obs"
	"github.com/kuitang/hrm-e2e/internal/pages"
	"github.com/kuitang/hrm-e2e/internal/suite"
)

// Version is set at build time.
var Version = "dev"

var envFileFlag = &cli.StringFlag{
	Name:  "env-file",
	Usage: "Load variables from this .env file (default: .env when present)",
}

var tagFlag = &cli.StringSliceFlag{
	Name:    "tag",
	Aliases: []string{"t"},
	Usage:   "Only scenarios with this tag, e.g. @smoke (repeatable)",
}

var runFlags = []cli.Flag{
	envFileFlag,
	tagFlag,
	&cli.StringFlag{Name: "base-url", Usage: "OrangeHRM base URL (overrides HRM_BASE_URL)"},
	&cli.StringFlag{Name: "browser", Aliases: []string{"b"}, Usage: "chromium, firefox or webkit"},
	&cli.BoolFlag{Name: "headed", Usage: "Show the browser window"},
	&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Scenarios run in parallel"},
	&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "hrmsuite",
		Usage:     "End-to-end UI scenarios for OrangeHRM",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run scenarios in isolated browser sessions",
				Flags:  runFlags,
				Action: runAction,
			},
			{
				Name:   "list",
				Usage:  "List scenarios and their tags",
				Flags:  []cli.Flag{tagFlag},
				Action: listAction,
			},
			{
				Name:   "check",
				Usage:  "Validate configuration and fixtures without starting a browser",
				Flags:  runFlags,
				Action: checkAction,
			},
		},
	}
}

func overrides(c *cli.Context) config.Overrides {
	return config.Overrides{
		EnvFile:  c.String("env-file"),
		BaseURL:  c.String("base-url"),
		Browser:  c.String("browser"),
		Headed:   c.Bool("headed"),
		Workers:  c.Int("workers"),
		Tags:     c.StringSlice("tag"),
		LogLevel: c.String("log-level"),
	}
}

// setup loads configuration, applies the log level, and loads fixtures and
// the selected scenarios.
func setup(c *cli.Context) (*config.Config, *fixtures.Set, []suite.Scenario, error) {
	cfg, err := config.LoadConfig(overrides(c))
	if err != nil {
		return nil, nil, nil, err
	}
	obs.Init()
	if !obs.SetLevel(cfg.LogLevel) {
		return nil, nil, nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	data, err := fixtures.Load(cfg.FixturesDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load fixtures: %w", err)
	}
	scenarios := suite.Select(suite.Catalogue(), cfg.Tags)
	if len(scenarios) == 0 {
		return nil, nil, nil, fmt.Errorf("no scenarios match tags %s", strings.Join(cfg.Tags, ", "))
	}
	return cfg, data, scenarios, nil
}

func checkAction(c *cli.Context) error {
	cfg, data, scenarios, err := setup(c)
	if err != nil {
		return err
	}
	cfg.PrintSummary(c.App.Writer)
	fmt.Fprintf(c.App.Writer, "Fixtures: users=%s employees=%s\n",
		strings.Join(data.UserTypes(), ","), strings.Join(data.EmployeeTypes(), ","))
	fmt.Fprintf(c.App.Writer, "Scenarios selected: %d\n", len(scenarios))
	return nil
}

func listAction(c *cli.Context) error {
	for _, sc := range suite.Select(suite.Catalogue(), c.StringSlice("tag")) {
		line := fmt.Sprintf("%-60s %s", sc.Name, strings.Join(sc.Tags, " "))
		if sc.Slow {
			line += " (slow)"
		}
		fmt.Fprintln(c.App.Writer, strings.TrimRight(line, " "))
	}
	return nil
}

func runAction(c *cli.Context) error {
	cfg, data, scenarios, err := setup(c)
	if err != nil {
		return err
	}
	cfg.PrintSummary(c.App.ErrWriter)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := obs.NewRunID()
	ctx = obs.WithRun(ctx, runID)
	sink, err := artifacts.Open(ctx, cfg, runID)
	if err != nil {
		return err
	}

	launcher, err := browser.Launch(browser.LaunchOptions{
		Engine:   cfg.Browser,
		Headless: cfg.Headless,
		SlowMo:   cfg.SlowMo,
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.DefaultTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := launcher.Close(); err != nil {
			obs.For(ctx, "main").Warn("browser shutdown", "error", err)
		}
	}()

	runner := &suite.Runner{
		Open: suite.FromLauncher(launcher),
		Data: data,
		PageOptions: pages.Options{
			Timeout:      cfg.DefaultTimeout,
			ToastTimeout: cfg.ToastTimeout,
			ShortTimeout: cfg.ShortTimeout,
			PollInterval: cfg.PollInterval,
		},
		Artifacts: sink,
		Workers:   cfg.Workers,
		RunID:     runID,
	}
	report := runner.Run(ctx, scenarios)

	path, err := report.WriteFile(filepath.Join(cfg.ArtifactsDir, runID))
	if err != nil {
		return err
	}
	uploadReport(ctx, sink, path)

	report.Print(c.App.Writer)
	fmt.Fprintf(c.App.Writer, "run:    %s\nreport: %s\n", obs.RunIDFromContext(ctx), path)
	return exitStatus(ctx, report)
}

// uploadReport copies report.json to the first mirror. Failures are logged.
// The upload ignores cancellation so an interrupted run still ships its
// report.
func uploadReport(ctx context.Context, sink *artifacts.Multi, path string) {
	if len(sink.Mirrors) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	log := obs.For(ctx, "main")
	body, err := os.ReadFile(path)
	if err != nil {
		log.Warn("report not readable", "path", path, "error", err)
		return
	}
	if _, err := sink.Mirrors[0].Save(ctx, suite.ReportFile, body, "application/json"); err != nil {
		log.Warn("report upload failed", "error", err)
	}
}

// exitStatus maps the run outcome to the process exit code. An interrupt
// wins over failures, since scenarios cut short fail with a context error.
func exitStatus(ctx context.Context, report *suite.Report) error {
	if ctx.Err() != nil {
		return cli.Exit("interrupted", 130)
	}
	if report.Failed() {
		return cli.Exit("", 1)
	}
	return nil
}
