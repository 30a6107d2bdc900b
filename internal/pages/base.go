// Package pages models the account pages of the application under test.
// Page objects never own the session; they act through a browsercore.Core.
package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/browsercore"
	"signup-e2e/internal/domain/entity"
)

const (
	defaultProbe        = 2 * time.Second
	defaultRedirectWait = 5 * time.Second
)

// ErrorTerms are the lowercase keywords used to attribute a visible error
// message to a field.
type ErrorTerms struct {
	Email     []string
	Password  []string
	Duplicate []string
}

func DefaultErrorTerms() ErrorTerms {
	return ErrorTerms{
		Email:     []string{"email", "invalid", "format"},
		Password:  []string{"password", "weak", "strong", "characters"},
		Duplicate: []string{"already", "exists", "registered"},
	}
}

type Options struct {
	URLs       URLs
	Catalog    *Catalog
	ErrorTerms ErrorTerms
	// Probe bounds each candidate selector in visibility and state queries.
	Probe time.Duration
	// RedirectWait bounds the post-submit redirect checks.
	RedirectWait time.Duration
}

func (o Options) withDefaults() Options {
	if o.Catalog == nil {
		o.Catalog = MustDefaultCatalog()
	}
	if o.Probe <= 0 {
		o.Probe = defaultProbe
	}
	if o.RedirectWait <= 0 {
		o.RedirectWait = defaultRedirectWait
	}
	if len(o.ErrorTerms.Email) == 0 && len(o.ErrorTerms.Password) == 0 && len(o.ErrorTerms.Duplicate) == 0 {
		o.ErrorTerms = DefaultErrorTerms()
	}
	return o
}

type field struct {
	name     string
	strategy entity.Strategy
	secret   bool
}

type page struct {
	core *browsercore.Core
	opts Options
	log  output.LoggerPort
	name string
}

func newPage(core *browsercore.Core, opts Options, name string) page {
	return page{
		core: core,
		opts: opts.withDefaults(),
		log:  core.Logger().WithField("page", name),
		name: name,
	}
}

func (p *page) strategy(element string) entity.Strategy {
	return p.opts.Catalog.Strategy(p.name, element)
}

func (p *page) common(element string) entity.Strategy {
	return p.opts.Catalog.Strategy("common", element)
}

func (p *page) open(ctx context.Context, url string) error {
	p.log.Info("Opening page", "url", url)
	if err := p.core.Browser().Navigate(ctx, url); err != nil {
		return fmt.Errorf("open %s: %w", p.name, err)
	}
	p.core.DismissBlockingOverlays(ctx)
	return nil
}

// fill locates the field, waits until it accepts input, clears it and types value.
func (p *page) fill(ctx context.Context, f field, value string) error {
	el, err := p.core.Locate(ctx, f.strategy, 0)
	if err != nil {
		return err
	}
	if !p.core.WaitInteractable(ctx, el, 0) {
		p.log.Warn("Field not interactable, typing anyway", "element", f.name)
	}
	if err := el.Clear(ctx); err != nil {
		return fmt.Errorf("clear %s: %w", f.name, err)
	}
	if value != "" {
		if err := el.Type(ctx, value); err != nil {
			return fmt.Errorf("type into %s: %w", f.name, err)
		}
	}
	if f.secret {
		p.log.Debug("Filled field", "element", f.name, "length", len(value))
	} else {
		p.log.Debug("Filled field", "element", f.name, "value", value)
	}
	return nil
}

// setChecked clicks the toggle only when its state differs from want.
func (p *page) setChecked(ctx context.Context, name string, s entity.Strategy, want bool) error {
	el, err := p.core.Locate(ctx, s, 0)
	if err != nil {
		return err
	}
	checked, err := el.Checked(ctx)
	if err != nil {
		return fmt.Errorf("read %s state: %w", name, err)
	}
	if checked == want {
		p.log.Debug("Toggle already in state", "element", name, "checked", want)
		return nil
	}
	if _, err := p.core.Click(ctx, el, name); err != nil {
		return err
	}
	p.log.Info("Toggled", "element", name, "checked", want)
	return nil
}

// submit dismisses overlays, clicks the control and, when the URL stays
// put, logs what the form looked like so the failure can be diagnosed.
func (p *page) submit(ctx context.Context, name string, s entity.Strategy, fields ...field) (browsercore.InteractionResult, error) {
	p.core.DismissBlockingOverlays(ctx)

	el, err := p.core.Locate(ctx, s, 0)
	if err != nil {
		return browsercore.InteractionResult{}, err
	}
	res, err := p.core.Click(ctx, el, name)
	if err != nil {
		return res, err
	}
	if !res.URLChanged {
		p.diagnose(ctx, fields)
	}
	return res, nil
}

func (p *page) diagnose(ctx context.Context, fields []field) {
	for _, f := range fields {
		el, ok := p.findNow(ctx, f.strategy)
		if !ok {
			p.log.Warn("Diagnostics: field missing", "element", f.name)
			continue
		}
		value, _ := el.Value(ctx)
		if f.secret {
			p.log.Warn("Diagnostics: field state", "element", f.name, "length", len(value))
		} else {
			p.log.Warn("Diagnostics: field state", "element", f.name, "value", value)
		}
	}

	if msg := p.visibleText(ctx, p.common("error_messages"), nil); msg != "" {
		p.log.Warn("Diagnostics: validation message", "text", msg)
	}

	entries, err := p.core.Browser().ConsoleEntries(ctx)
	if err != nil {
		p.log.Debug("Diagnostics: console unavailable", "error", err)
		return
	}
	for _, e := range entries {
		if e.IsError() {
			p.log.Warn("Diagnostics: console error", "text", e.Text)
		}
	}
}

func (p *page) findNow(ctx context.Context, s entity.Strategy) (output.ElementPort, bool) {
	for _, sel := range s.Selectors() {
		if el, err := p.core.Browser().Find(ctx, sel); err == nil {
			return el, true
		}
	}
	return nil, false
}

func (p *page) probe(ctx context.Context, s entity.Strategy) (output.ElementPort, bool) {
	el, err := p.core.Locate(ctx, s, p.opts.Probe)
	if err != nil {
		return nil, false
	}
	return el, true
}

func (p *page) isVisible(ctx context.Context, s entity.Strategy) bool {
	el, ok := p.probe(ctx, s)
	if !ok {
		return false
	}
	visible, err := el.Visible(ctx)
	return err == nil && visible
}

func (p *page) isEnabled(ctx context.Context, s entity.Strategy) bool {
	el, ok := p.probe(ctx, s)
	if !ok {
		return false
	}
	enabled, err := el.Enabled(ctx)
	return err == nil && enabled
}

func (p *page) isChecked(ctx context.Context, s entity.Strategy) bool {
	el, ok := p.probe(ctx, s)
	if !ok {
		return false
	}
	checked, err := el.Checked(ctx)
	return err == nil && checked
}

// visibleText returns the text of the first displayed element, across all
// selectors, whose lowercase text contains one of terms. Empty terms accept any text.
func (p *page) visibleText(ctx context.Context, s entity.Strategy, terms []string) string {
	for _, sel := range s.Selectors() {
		els, err := p.core.Browser().FindAll(ctx, sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if visible, err := el.Visible(ctx); err != nil || !visible {
				continue
			}
			text, err := el.Text(ctx)
			text = strings.TrimSpace(text)
			if err != nil || text == "" {
				continue
			}
			if containsAny(strings.ToLower(text), terms) {
				return text
			}
		}
	}
	return ""
}

func containsAny(s string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, t := range terms {
		if t != "" && strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func (p *page) URLContains(ctx context.Context, fragments ...string) bool {
	url := p.core.CurrentURL(ctx)
	for _, f := range fragments {
		if strings.Contains(url, f) {
			return true
		}
	}
	return false
}

// WaitForURLChange waits up to timeout for the URL to differ from from.
func (p *page) WaitForURLChange(ctx context.Context, from string, timeout time.Duration) bool {
	return p.core.Poll(ctx, timeout, func(ctx context.Context) bool {
		return p.core.CurrentURL(ctx) != from
	})
}

func (p *page) waitForURL(ctx context.Context, timeout time.Duration, fragments ...string) bool {
	return p.core.Poll(ctx, timeout, func(ctx context.Context) bool {
		return p.URLContains(ctx, fragments...)
	})
}

func (p *page) waitForURLWithout(ctx context.Context, timeout time.Duration, fragment string) bool {
	return p.core.Poll(ctx, timeout, func(ctx context.Context) bool {
		url := p.core.CurrentURL(ctx)
		return url != "" && !strings.Contains(url, fragment)
	})
}

// ErrorMessage returns the first visible generic validation or alert message, or "".
func (p *page) ErrorMessage(ctx context.Context) string {
	return p.visibleText(ctx, p.common("error_messages"), nil)
}

func (p *page) CurrentURL(ctx context.Context) string {
	return p.core.CurrentURL(ctx)
}

func (p *page) Title(ctx context.Context) string {
	title, err := p.core.Browser().Title(ctx)
	if err != nil {
		return ""
	}
	return title
}

func lower(s string) string {
	return strings.ToLower(s)
}
