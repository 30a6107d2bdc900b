package rod

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

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

var (
	ErrInvalidURL          = errors.New("invalid url")
	ErrInvalidSelector     = errors.New("invalid selector")
	ErrBrowserNotConnected = errors.New("browser not connected")
)

const (
	defaultSlowMotion     = 0
	defaultTimeout        = 10 * time.Second
	defaultWindowWidth    = 1920
	defaultWindowHeight   = 1080
	browserStartupTimeout = 30 * time.Second
	maxConsoleEntries     = 500
	screenshotQuality     = 90
	blankPageURL          = "about:blank"
)

type BrowserConfig struct {
	// Bin is the Chromium executable; empty lets the launcher find or fetch one.
	Bin        string
	Headless   bool
	SlowMotion time.Duration
	// Timeout bounds every single driver call.
	Timeout                 time.Duration
	NoSandbox               bool
	DevTools                bool
	DisableSecurityFeatures bool
	WindowWidth             int
	WindowHeight            int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:     false,
		SlowMotion:   defaultSlowMotion,
		Timeout:      defaultTimeout,
		WindowWidth:  defaultWindowWidth,
		WindowHeight: defaultWindowHeight,
	}
}

// BrowserAdapter drives one Chromium process with a single page.
type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration

	stopEvents context.CancelFunc

	mu      sync.Mutex
	console []entity.ConsoleEntry
	closed  bool
}

// Factory returns a BrowserFactory that launches a fresh Chromium per session.
func Factory(cfg BrowserConfig) output.BrowserFactory {
	return func(ctx context.Context) (output.BrowserPort, error) {
		return NewBrowserAdapter(ctx, cfg)
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.WindowWidth <= 0 || cfg.WindowHeight <= 0 {
		cfg.WindowWidth, cfg.WindowHeight = defaultWindowWidth, defaultWindowHeight
	}

	startup, cancel := context.WithTimeout(ctx, browserStartupTimeout)
	defer cancel()

	l := launcher.New().
		Context(startup).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain").
		Set("window-size", fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight))
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.DisableSecurityFeatures {
		l = l.Set("disable-web-security").
			Set("allow-running-insecure-content")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: blankPageURL})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.WindowWidth,
		Height:            cfg.WindowHeight,
		DeviceScaleFactor: 1,
	})

	b := &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
	}
	b.watchConsole()
	return b, nil
}

// watchConsole records console API calls and browser log entries until Close.
func (b *BrowserAdapter) watchConsole() {
	ctx, cancel := context.WithCancel(context.Background())
	b.stopEvents = cancel

	wait := b.page.Context(ctx).EachEvent(
		func(e *proto.RuntimeConsoleAPICalled) {
			parts := make([]string, 0, len(e.Args))
			for _, arg := range e.Args {
				if arg == nil {
					continue
				}
				if !arg.Value.Nil() {
					parts = append(parts, arg.Value.Str())
				} else {
					parts = append(parts, arg.Description)
				}
			}
			b.record(string(e.Type), strings.Join(parts, " "))
		},
		func(e *proto.LogEntryAdded) {
			if e.Entry != nil {
				b.record(string(e.Entry.Level), e.Entry.Text)
			}
		},
	)
	go wait()
}

func (b *BrowserAdapter) record(level, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.console) >= maxConsoleEntries {
		b.console = b.console[1:]
	}
	b.console = append(b.console, entity.ConsoleEntry{Level: level, Text: text, Time: time.Now()})
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && b.browser != nil && b.page != nil
}

func (b *BrowserAdapter) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timeout = d
}

func (b *BrowserAdapter) GetTimeout() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timeout
}

// pageFor returns the page bound to ctx and the per-call timeout.
func (b *BrowserAdapter) pageFor(ctx context.Context) (*rod.Page, error) {
	if !b.IsReady() {
		return nil, ErrBrowserNotConnected
	}
	return b.page.Context(ctx).Timeout(b.GetTimeout()), nil
}

func (b *BrowserAdapter) Kind() entity.BrowserKind {
	return entity.BrowserChrome
}

func validateURL(raw string) error {
	if raw == blankPageURL {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, rawURL string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}
	page, err := b.pageFor(ctx)
	if err != nil {
		return err
	}
	if err := page.Navigate(rawURL); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) CurrentURL(ctx context.Context) (string, error) {
	page, err := b.pageFor(ctx)
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (b *BrowserAdapter) Title(ctx context.Context) (string, error) {
	page, err := b.pageFor(ctx)
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.Title, nil
}

func checkSelector(sel entity.Selector) error {
	if !sel.By.Valid() || strings.TrimSpace(sel.Expr) == "" {
		return fmt.Errorf("%w: %s", ErrInvalidSelector, sel)
	}
	return nil
}

// Find looks at the DOM as it is now; it never waits for the element.
func (b *BrowserAdapter) Find(ctx context.Context, sel entity.Selector) (output.ElementPort, error) {
	if err := checkSelector(sel); err != nil {
		return nil, err
	}
	page, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}
	page = page.Sleeper(rod.NotFoundSleeper)

	expr, xpath := sel.Query()
	var el *rod.Element
	if xpath {
		el, err = page.ElementX(expr)
	} else {
		el, err = page.Element(expr)
	}
	if err != nil {
		var notFound *rod.ElementNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%s: %w", sel, output.ErrNoElement)
		}
		return nil, fmt.Errorf("find %s: %w", sel, err)
	}
	return &elementAdapter{el: el, page: b.page, timeout: b.GetTimeout()}, nil
}

func (b *BrowserAdapter) FindAll(ctx context.Context, sel entity.Selector) ([]output.ElementPort, error) {
	if err := checkSelector(sel); err != nil {
		return nil, err
	}
	page, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}

	expr, xpath := sel.Query()
	var els rod.Elements
	if xpath {
		els, err = page.ElementsX(expr)
	} else {
		els, err = page.Elements(expr)
	}
	if err != nil {
		return nil, fmt.Errorf("find all %s: %w", sel, err)
	}

	timeout := b.GetTimeout()
	result := make([]output.ElementPort, 0, len(els))
	for _, el := range els {
		result = append(result, &elementAdapter{el: el, page: b.page, timeout: timeout})
	}
	return result, nil
}

func (b *BrowserAdapter) PressKey(ctx context.Context, key entity.Key) error {
	page, err := b.pageFor(ctx)
	if err != nil {
		return err
	}
	var k input.Key
	switch key {
	case entity.KeyEscape:
		k = input.Escape
	case entity.KeyEnter:
		k = input.Enter
	default:
		return fmt.Errorf("unsupported key %q", key)
	}
	if err := page.Keyboard.Press(k); err != nil {
		return fmt.Errorf("press %s: %w", key, err)
	}
	return nil
}

func (b *BrowserAdapter) ClearCookies(ctx context.Context) error {
	if !b.IsReady() {
		return ErrBrowserNotConnected
	}
	if err := b.browser.Context(ctx).SetCookies(nil); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	return nil
}

const clearStorageJS = `() => {
	try { window.localStorage.clear(); } catch (e) {}
	try { window.sessionStorage.clear(); } catch (e) {}
}`

func (b *BrowserAdapter) ClearStorage(ctx context.Context) error {
	page, err := b.pageFor(ctx)
	if err != nil {
		return err
	}
	if _, err := page.Eval(clearStorageJS); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	page, err := b.pageFor(ctx)
	if err != nil {
		return nil, err
	}
	data, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(screenshotQuality),
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
	page, err := b.pageFor(ctx)
	if err != nil {
		return "", err
	}
	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

// Close shuts the browser down and removes its profile. It is safe to call twice.
func (b *BrowserAdapter) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if b.stopEvents != nil {
		b.stopEvents()
	}
	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
	return err
}

func pointerToString(s *string) string {
	if s != nil {
		return *s
	}
	return ""
}
