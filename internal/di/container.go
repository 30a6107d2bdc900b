package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"signup-e2e/internal/application/port/input"
	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/application/service"
	"signup-e2e/internal/browsercore"
	"signup-e2e/internal/config"
	"signup-e2e/internal/domain/entity"
	"signup-e2e/internal/fixtures"
	"signup-e2e/internal/infrastructure/artifacts"
	"signup-e2e/internal/infrastructure/browser/firefox"
	"signup-e2e/internal/infrastructure/browser/rod"
	"signup-e2e/internal/infrastructure/logger"
	"signup-e2e/internal/infrastructure/markup"
	"signup-e2e/internal/infrastructure/userinteraction"
	"signup-e2e/internal/pages"
	"signup-e2e/internal/suite"
	"signup-e2e/internal/usecase/harness"
	"signup-e2e/internal/usecase/runner"
)

type Container struct {
	Config   *config.Config
	Logger   output.LoggerPort
	Catalog  *pages.Catalog
	Cases    *service.Registry[harness.Case]
	Sessions *service.SessionManager
	Reporter output.ReporterPort
	Harness  *harness.Harness
	Runner   input.SuiteRunner
}

type Options struct {
	// Output receives the colored run report; nil means stdout.
	Output  io.Writer
	NoColor bool
	// Factory replaces the configured browser driver.
	Factory output.BrowserFactory
}

// Browsers maps each supported browser kind to the driver that launches it.
func Browsers(cfg *config.Config) *service.Registry[output.BrowserFactory] {
	reg := service.NewRegistry[output.BrowserFactory]()

	chrome := rod.DefaultConfig()
	chrome.Bin = cfg.BrowserBin
	chrome.Headless = cfg.Headless
	chrome.Timeout = cfg.Timeout()
	chrome.WindowWidth = cfg.Window.Width
	chrome.WindowHeight = cfg.Window.Height
	reg.MustRegister(string(entity.BrowserChrome), rod.Factory(chrome))

	ff := firefox.DefaultConfig()
	ff.Headless = cfg.Headless
	ff.Timeout = cfg.Timeout()
	ff.WindowWidth = cfg.Window.Width
	ff.WindowHeight = cfg.Window.Height
	ff.Install = cfg.InstallBrowsers
	reg.MustRegister(string(entity.BrowserFirefox), firefox.Factory(ff))

	return reg
}

func NewContainer(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.File = cfg.Log.File
	logCfg.Dir = cfg.Log.Dir
	log, err := logger.NewLoggerAdapter(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c, err := build(cfg, log, opts)
	if err != nil {
		_ = log.Close()
		return nil, err
	}
	log.Info("Container ready",
		"browser", cfg.Browser,
		"base_url", cfg.MustBaseURL(),
		"workers", cfg.Workers,
		"cases", len(c.Cases.Names()),
	)
	return c, nil
}

func build(cfg *config.Config, log output.LoggerPort, opts Options) (*Container, error) {
	catalog, err := pages.LoadCatalog(cfg.SelectorFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load selectors: %w", err)
	}

	factory := opts.Factory
	if factory == nil {
		var ok bool
		factory, ok = Browsers(cfg).Get(cfg.Browser)
		if !ok {
			return nil, fmt.Errorf("unsupported browser %q", cfg.Browser)
		}
	}
	sessions := service.NewSessionManager(factory, log)

	cases, err := suite.NewRegistry(suiteSettings(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to register cases: %w", err)
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	reporter := userinteraction.NewConsoleReporter(out, opts.NoColor)

	sanitizer := markup.NewSanitizer(markup.DefaultConfig(), log)
	sink := artifacts.NewFileSink(cfg.ArtifactDir, artifacts.DefaultMaxWidth, log)

	h := harness.New(sessions, sink, reporter, log, harnessOptions(cfg, catalog, sanitizer.Clean))

	return &Container{
		Config:   cfg,
		Logger:   log,
		Catalog:  catalog,
		Cases:    cases,
		Sessions: sessions,
		Reporter: reporter,
		Harness:  h,
		Runner:   runner.New(cases, h, reporter, log, cfg.Workers),
	}, nil
}

func suiteSettings(cfg *config.Config) suite.Settings {
	return suite.Settings{
		StrictSignup: cfg.StrictSignup,
		Login: suite.Credentials{
			Email:    cfg.Login.Email,
			Password: cfg.Login.Password,
		},
		StrengthTerms: cfg.StrengthErrorTerms,
	}
}

func harnessOptions(cfg *config.Config, catalog *pages.Catalog, sanitize func(string) string) harness.Options {
	timings := browsercore.DefaultTimings()
	timings.Timeout = cfg.Timeout()

	return harness.Options{
		Timings: timings,
		Overlay: catalog.Overlay(),
		Pages:   PageOptions(cfg, catalog),
		Data:    fixtures.NewGenerator(cfg.Email.Domain, cfg.Email.Prefix),
		Retry: harness.RetryPolicy{
			Enabled:    cfg.Retry.Enabled,
			MaxRetries: cfg.MaxRetries,
		},
		CaseTimeout: cfg.CaseTimeout(),
		Sanitize:    sanitize,
	}
}

func PageOptions(cfg *config.Config, catalog *pages.Catalog) pages.Options {
	terms := pages.DefaultErrorTerms()
	if len(cfg.EmailErrorTerms) > 0 {
		terms.Email = cfg.EmailErrorTerms
	}
	if len(cfg.PasswordErrorTerms) > 0 {
		terms.Password = cfg.PasswordErrorTerms
	}
	if len(cfg.DuplicateErrorTerms) > 0 {
		terms.Duplicate = cfg.DuplicateErrorTerms
	}
	return pages.Options{
		URLs:       pages.NewURLs(cfg.MustBaseURL(), cfg.LocaleHosts),
		Catalog:    catalog,
		ErrorTerms: terms,
	}
}

func (c *Container) Close() error {
	var errs []error
	if c.Harness != nil {
		errs = append(errs, c.Harness.Close())
	}
	if c.Logger != nil {
		errs = append(errs, c.Logger.Close())
	}
	return errors.Join(errs...)
}
