// Package firefox drives Firefox through Playwright.
package firefox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"net/url"
	"strings"
	"sync"
	"time"

	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/domain/entity"

	"github.com/playwright-community/playwright-go"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

var (
	ErrInvalidURL          = errors.New("invalid url")
	ErrInvalidSelector     = errors.New("invalid selector")
	ErrBrowserNotConnected = errors.New("browser not connected")
)

const (
	defaultTimeout        = 10 * time.Second
	defaultWindowWidth    = 1920
	defaultWindowHeight   = 1080
	browserStartupTimeout = 30 * time.Second
	maxConsoleEntries     = 500
	screenshotQuality     = 90
	blankPageURL          = "about:blank"
)

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	// Timeout bounds every single driver call.
	Timeout      time.Duration
	WindowWidth  int
	WindowHeight int
	// Install downloads the Playwright driver and Firefox build before the first launch.
	Install bool
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Timeout:      defaultTimeout,
		WindowWidth:  defaultWindowWidth,
		WindowHeight: defaultWindowHeight,
	}
}

// BrowserAdapter owns one Playwright driver, one Firefox process and a single page.
type BrowserAdapter struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page

	mu      sync.Mutex
	timeout time.Duration
	console []entity.ConsoleEntry
	closed  bool
}

// Factory returns a BrowserFactory that starts a fresh Firefox per session.
func Factory(cfg BrowserConfig) output.BrowserFactory {
	var installOnce sync.Once
	var installErr error
	return func(ctx context.Context) (output.BrowserPort, error) {
		if cfg.Install {
			installOnce.Do(func() {
				installErr = playwright.Install(&playwright.RunOptions{Browsers: []string{"firefox"}})
			})
			if installErr != nil {
				return nil, fmt.Errorf("install playwright firefox: %w", installErr)
			}
		}
		return NewBrowserAdapter(ctx, cfg)
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.WindowWidth <= 0 || cfg.WindowHeight <= 0 {
		cfg.WindowWidth, cfg.WindowHeight = defaultWindowWidth, defaultWindowHeight
	}

	pw, err := playwright.Run(&playwright.RunOptions{Browsers: []string{"firefox"}})
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Firefox.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		SlowMo:   playwright.Float(float64(cfg.SlowMotion.Milliseconds())),
		Timeout:  millis(startupBudget(ctx)),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: cfg.WindowWidth, Height: cfg.WindowHeight},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	page.SetDefaultTimeout(float64(cfg.Timeout.Milliseconds()))

	b := &BrowserAdapter{
		pw:      pw,
		browser: browser,
		bctx:    bctx,
		page:    page,
		timeout: cfg.Timeout,
	}
	page.OnConsole(func(msg playwright.ConsoleMessage) {
		b.record(msg.Type(), msg.Text())
	})
	return b, nil
}

func startupBudget(ctx context.Context) time.Duration {
	budget := browserStartupTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < budget {
			budget = left
		}
	}
	return budget
}

func millis(d time.Duration) *float64 {
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return playwright.Float(float64(d.Milliseconds()))
}

func (b *BrowserAdapter) record(level, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.console) >= maxConsoleEntries {
		b.console = b.console[1:]
	}
	b.console = append(b.console, entity.ConsoleEntry{Level: level, Text: text, Time: time.Now()})
}

func (b *BrowserAdapter) Kind() entity.BrowserKind {
	return entity.BrowserFirefox
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && b.page != nil
}

func (b *BrowserAdapter) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	b.mu.Lock()
	b.timeout = d
	b.mu.Unlock()
}

func (b *BrowserAdapter) GetTimeout() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timeout
}

// budget is the per-call timeout, shortened to the context deadline.
func (b *BrowserAdapter) budget(ctx context.Context) (time.Duration, error) {
	if !b.IsReady() {
		return 0, ErrBrowserNotConnected
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return callBudget(ctx, b.GetTimeout())
}

func callBudget(ctx context.Context, timeout time.Duration) (time.Duration, error) {
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		if left < timeout {
			timeout = left
		}
	}
	return timeout, nil
}

func validateURL(raw string) error {
	if raw == blankPageURL {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, rawURL string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}
	timeout, err := b.budget(ctx)
	if err != nil {
		return err
	}
	_, err = b.page.Goto(rawURL, playwright.PageGotoOptions{
		Timeout:   millis(timeout),
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) CurrentURL(ctx context.Context) (string, error) {
	if _, err := b.budget(ctx); err != nil {
		return "", err
	}
	return b.page.URL(), nil
}

func (b *BrowserAdapter) Title(ctx context.Context) (string, error) {
	if _, err := b.budget(ctx); err != nil {
		return "", err
	}
	title, err := b.page.Title()
	if err != nil {
		return "", fmt.Errorf("failed to get title: %w", err)
	}
	return title, nil
}

// locatorString renders a selector in Playwright's engine=expr form.
func locatorString(sel entity.Selector) (string, error) {
	if !sel.By.Valid() || strings.TrimSpace(sel.Expr) == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidSelector, sel)
	}
	expr, xpath := sel.Query()
	if xpath {
		return "xpath=" + expr, nil
	}
	return "css=" + expr, nil
}

// Find counts matches in the DOM as it is now; it never waits for the element.
func (b *BrowserAdapter) Find(ctx context.Context, sel entity.Selector) (output.ElementPort, error) {
	query, err := locatorString(sel)
	if err != nil {
		return nil, err
	}
	if _, err := b.budget(ctx); err != nil {
		return nil, err
	}
	loc := b.page.Locator(query)
	n, err := loc.Count()
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", sel, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: %w", sel, output.ErrNoElement)
	}
	return &elementAdapter{loc: loc.First(), owner: b}, nil
}

func (b *BrowserAdapter) FindAll(ctx context.Context, sel entity.Selector) ([]output.ElementPort, error) {
	query, err := locatorString(sel)
	if err != nil {
		return nil, err
	}
	if _, err := b.budget(ctx); err != nil {
		return nil, err
	}
	locs, err := b.page.Locator(query).All()
	if err != nil {
		return nil, fmt.Errorf("find all %s: %w", sel, err)
	}
	result := make([]output.ElementPort, 0, len(locs))
	for _, loc := range locs {
		result = append(result, &elementAdapter{loc: loc, owner: b})
	}
	return result, nil
}

func (b *BrowserAdapter) PressKey(ctx context.Context, key entity.Key) error {
	if _, err := b.budget(ctx); err != nil {
		return err
	}
	switch key {
	case entity.KeyEscape, entity.KeyEnter:
	default:
		return fmt.Errorf("unsupported key %q", key)
	}
	if err := b.page.Keyboard().Press(string(key)); err != nil {
		return fmt.Errorf("press %s: %w", key, err)
	}
	return nil
}

func (b *BrowserAdapter) ClearCookies(ctx context.Context) error {
	if _, err := b.budget(ctx); err != nil {
		return err
	}
	if err := b.bctx.ClearCookies(); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	return nil
}

const clearStorageJS = `() => {
	try { window.localStorage.clear(); } catch (e) {}
	try { window.sessionStorage.clear(); } catch (e) {}
}`

func (b *BrowserAdapter) ClearStorage(ctx context.Context) error {
	if _, err := b.budget(ctx); err != nil {
		return err
	}
	if _, err := b.page.Evaluate(clearStorageJS); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	timeout, err := b.budget(ctx)
	if err != nil {
		return nil, err
	}
	data, err := b.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
		Type:     playwright.ScreenshotTypeJpeg,
		Quality:  playwright.Int(screenshotQuality),
		Timeout:  millis(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}
	return &entity.Screenshot{
		Data:   data,
		Format: "jpeg",
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

func (b *BrowserAdapter) ConsoleEntries(ctx context.Context) ([]entity.ConsoleEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]entity.ConsoleEntry, len(b.console))
	copy(out, b.console)
	return out, nil
}

func (b *BrowserAdapter) HTML(ctx context.Context) (string, error) {
	if _, err := b.budget(ctx); err != nil {
		return "", err
	}
	html, err := b.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

// Close stops Firefox and the driver. It is safe to call twice.
func (b *BrowserAdapter) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var errs []error
	if b.bctx != nil {
		errs = append(errs, b.bctx.Close())
	}
	if b.browser != nil {
		errs = append(errs, b.browser.Close())
	}
	if b.pw != nil {
		errs = append(errs, b.pw.Stop())
	}
	return errors.Join(errs...)
}
