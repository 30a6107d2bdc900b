// Package fake is an in-memory BrowserPort. Elements are registered under
// selectors and page behaviour is scripted with hooks.
package fake

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/domain/entity"
)

var _ output.BrowserPort = (*Browser)(nil)

var ErrClosed = errors.New("fake browser closed")

type Browser struct {
	mu       sync.Mutex
	kind     entity.BrowserKind
	url      string
	title    string
	html     string
	elements map[entity.Selector][]*Element
	console  []entity.ConsoleEntry
	routes   map[string]func(b *Browser)
	keys     []entity.Key
	closed   bool

	cookieClears  int
	storageClears int
	navigations   []string
	finds         map[entity.Selector]int

	// OnKey runs after a key press is recorded.
	OnKey func(b *Browser, key entity.Key)
	// URLErr makes CurrentURL fail, which is how an unresponsive session looks.
	URLErr        error
	ScreenshotErr error
	ConsoleErr    error
	HTMLErr       error
}

func New() *Browser {
	return &Browser{
		kind:     entity.BrowserChrome,
		url:      "about:blank",
		html:     "<html><body></body></html>",
		elements: make(map[entity.Selector][]*Element),
		routes:   make(map[string]func(b *Browser)),
		finds:    make(map[entity.Selector]int),
	}
}

// Route registers a hook that renders a page when url is navigated to.
func (b *Browser) Route(url string, render func(b *Browser)) *Browser {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[url] = render
	return b
}

// Put registers els under sel, replacing what was there.
func (b *Browser) Put(sel entity.Selector, els ...*Element) *Browser {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.elements[sel] = els
	return b
}

func (b *Browser) Remove(sel entity.Selector) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.elements, sel)
}

// Reset drops all rendered elements, like leaving the page.
func (b *Browser) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.elements = make(map[entity.Selector][]*Element)
}

func (b *Browser) SetURL(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.url = url
}

func (b *Browser) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.title = title
}

func (b *Browser) SetHTML(html string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.html = html
}

func (b *Browser) SetKind(kind entity.BrowserKind) {
	b.kind = kind
}

func (b *Browser) Log(level, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.console = append(b.console, entity.ConsoleEntry{Level: level, Text: text, Time: time.Now()})
}

func (b *Browser) Kind() entity.BrowserKind {
	return b.kind
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.url = url
	b.navigations = append(b.navigations, url)
	render := b.routes[url]
	b.mu.Unlock()

	if render != nil {
		b.Reset()
		render(b)
	}
	return nil
}

func (b *Browser) CurrentURL(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", ErrClosed
	}
	if b.URLErr != nil {
		return "", b.URLErr
	}
	return b.url, nil
}

func (b *Browser) Title(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.title, nil
}

func (b *Browser) Find(ctx context.Context, sel entity.Selector) (output.ElementPort, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finds[sel]++
	if b.closed {
		return nil, ErrClosed
	}
	els := b.elements[sel]
	if len(els) == 0 {
		return nil, fmt.Errorf("%s: %w", sel, output.ErrNoElement)
	}
	return els[0], nil
}

func (b *Browser) FindAll(ctx context.Context, sel entity.Selector) ([]output.ElementPort, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finds[sel]++
	els := b.elements[sel]
	result := make([]output.ElementPort, len(els))
	for i, el := range els {
		result[i] = el
	}
	return result, nil
}

func (b *Browser) PressKey(ctx context.Context, key entity.Key) error {
	b.mu.Lock()
	b.keys = append(b.keys, key)
	hook := b.OnKey
	b.mu.Unlock()
	if hook != nil {
		hook(b, key)
	}
	return nil
}

func (b *Browser) ClearCookies(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cookieClears++
	return nil
}

func (b *Browser) ClearStorage(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.storageClears++
	return nil
}

func (b *Browser) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	if b.ScreenshotErr != nil {
		return nil, b.ScreenshotErr
	}
	return &entity.Screenshot{Data: []byte("fake-png"), Format: "png", Width: 1, Height: 1}, nil
}

func (b *Browser) ConsoleEntries(ctx context.Context) ([]entity.ConsoleEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ConsoleErr != nil {
		return nil, b.ConsoleErr
	}
	out := make([]entity.ConsoleEntry, len(b.console))
	copy(out, b.console)
	return out, nil
}

func (b *Browser) HTML(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.HTMLErr != nil {
		return "", b.HTMLErr
	}
	return b.html, nil
}

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *Browser) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Browser) Keys() []entity.Key {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]entity.Key(nil), b.keys...)
}

func (b *Browser) Navigations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.navigations...)
}

func (b *Browser) FindCount(sel entity.Selector) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finds[sel]
}

// Queried lists the selectors Find or FindAll was called with, sorted.
func (b *Browser) Queried() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.finds))
	for sel := range b.finds {
		out = append(out, sel.String())
	}
	sort.Strings(out)
	return out
}

func (b *Browser) CookieClears() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cookieClears
}

func (b *Browser) StorageClears() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.storageClears
}
