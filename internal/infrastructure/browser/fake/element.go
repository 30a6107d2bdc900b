package fake

import (
	"context"
	"sync"

	"signup-e2e/internal/application/port/output"
)

var _ output.ElementPort = (*Element)(nil)

type Element struct {
	mu sync.Mutex

	Name       string
	Hidden     bool
	Disabled   bool
	Obstructed bool
	Selected   bool
	// Toggle flips Selected on every successful click, like a checkbox.
	Toggle bool
	Label  string
	Input  string
	Attrs  map[string]string

	NativeErr  error
	ScriptErr  error
	PointerErr error

	// OnClick runs after any successful click.
	OnClick func()

	clicks   map[string]int
	scrolled int
	clears   int
}

func NewElement(name string) *Element {
	return &Element{Name: name, Attrs: map[string]string{}}
}

func (e *Element) click(kind string, fail error) error {
	e.mu.Lock()
	if fail != nil {
		e.mu.Unlock()
		return fail
	}
	if e.clicks == nil {
		e.clicks = make(map[string]int)
	}
	e.clicks[kind]++
	if e.Toggle {
		e.Selected = !e.Selected
	}
	hook := e.OnClick
	e.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (e *Element) Click(ctx context.Context) error {
	return e.click("native", e.NativeErr)
}

func (e *Element) DispatchClick(ctx context.Context) error {
	return e.click("script", e.ScriptErr)
}

func (e *Element) PointerClick(ctx context.Context) error {
	return e.click("pointer", e.PointerErr)
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scrolled++
	return nil
}

func (e *Element) Interactable(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.Hidden && !e.Disabled && !e.Obstructed, nil
}

func (e *Element) Visible(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.Hidden, nil
}

func (e *Element) Enabled(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.Disabled, nil
}

func (e *Element) Checked(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Selected, nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Label, nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Attrs[name], nil
}

func (e *Element) Value(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Input, nil
}

func (e *Element) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clears++
	e.Input = ""
	return nil
}

func (e *Element) Type(ctx context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Input += text
	return nil
}

func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, n := range e.clicks {
		total += n
	}
	return total
}

func (e *Element) ClicksBy(kind string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks[kind]
}

func (e *Element) Clears() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clears
}

func (e *Element) Scrolled() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scrolled
}

func (e *Element) SetSelected(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Selected = on
}

func (e *Element) SetDisabled(disabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Disabled = disabled
}

func (e *Element) SetHidden(hidden bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Hidden = hidden
}

func (e *Element) SetInput(v string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Input = v
}
