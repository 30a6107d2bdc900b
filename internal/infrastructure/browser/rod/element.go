package rod

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signup-e2e/internal/application/port/output"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

var _ output.ElementPort = (*elementAdapter)(nil)

type elementAdapter struct {
	el      *rod.Element
	page    *rod.Page
	timeout time.Duration
}

func (e *elementAdapter) bound(ctx context.Context) *rod.Element {
	return e.el.Context(ctx).Timeout(e.timeout)
}

func (e *elementAdapter) Click(ctx context.Context) error {
	if err := e.bound(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("native click: %w", err)
	}
	return nil
}

func (e *elementAdapter) DispatchClick(ctx context.Context) error {
	if _, err := e.bound(ctx).Eval(`() => this.click()`); err != nil {
		return fmt.Errorf("script click: %w", err)
	}
	return nil
}

func (e *elementAdapter) PointerClick(ctx context.Context) error {
	el := e.bound(ctx)
	shape, err := el.Shape()
	if err != nil {
		return fmt.Errorf("pointer click: %w", err)
	}
	pt := shape.OnePointInside()
	if pt == nil {
		return errors.New("pointer click: element has no visible area")
	}
	mouse := e.page.Context(ctx).Timeout(e.timeout).Mouse
	if err := mouse.MoveTo(*pt); err != nil {
		return fmt.Errorf("pointer move: %w", err)
	}
	if err := mouse.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("pointer click: %w", err)
	}
	return nil
}

func (e *elementAdapter) ScrollIntoView(ctx context.Context) error {
	return e.bound(ctx).ScrollIntoView()
}

// Interactable reports false, not an error, for elements that are hidden,
// covered or have no size.
func (e *elementAdapter) Interactable(ctx context.Context) (bool, error) {
	_, err := e.bound(ctx).Interactable()
	if err == nil {
		return true, nil
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	var (
		covered     *rod.CoveredError
		notInteract *rod.NotInteractableError
		invisible   *rod.InvisibleShapeError
		noPointer   *rod.NoPointerEventsError
	)
	if errors.As(err, &covered) || errors.As(err, &notInteract) ||
		errors.As(err, &invisible) || errors.As(err, &noPointer) {
		return false, nil
	}
	return false, err
}

func (e *elementAdapter) Visible(ctx context.Context) (bool, error) {
	return e.bound(ctx).Visible()
}

func (e *elementAdapter) Enabled(ctx context.Context) (bool, error) {
	disabled, err := e.bound(ctx).Property("disabled")
	if err != nil {
		return false, err
	}
	return !disabled.Bool(), nil
}

func (e *elementAdapter) Checked(ctx context.Context) (bool, error) {
	checked, err := e.bound(ctx).Property("checked")
	if err != nil {
		return false, err
	}
	return checked.Bool(), nil
}

func (e *elementAdapter) Text(ctx context.Context) (string, error) {
	return e.bound(ctx).Text()
}

func (e *elementAdapter) Attribute(ctx context.Context, name string) (string, error) {
	v, err := e.bound(ctx).Attribute(name)
	if err != nil {
		return "", err
	}
	return pointerToString(v), nil
}

func (e *elementAdapter) Value(ctx context.Context) (string, error) {
	v, err := e.bound(ctx).Property("value")
	if err != nil {
		return "", err
	}
	if v.Nil() {
		return "", nil
	}
	return v.Str(), nil
}

func (e *elementAdapter) Clear(ctx context.Context) error {
	el := e.bound(ctx)
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text: %w", err)
	}
	return el.Input("")
}

func (e *elementAdapter) Type(ctx context.Context, text string) error {
	if err := e.bound(ctx).Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}
