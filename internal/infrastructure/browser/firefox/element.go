package firefox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signup-e2e/internal/application/port/output"

	"github.com/playwright-community/playwright-go"
)

var _ output.ElementPort = (*elementAdapter)(nil)

// actionabilityProbe caps the trial click used to decide whether an element can take a click right now.
const actionabilityProbe = 300 * time.Millisecond

type elementAdapter struct {
	loc   playwright.Locator
	owner *BrowserAdapter
}

func (e *elementAdapter) budget(ctx context.Context) (*float64, error) {
	timeout, err := e.owner.budget(ctx)
	if err != nil {
		return nil, err
	}
	return millis(timeout), nil
}

func (e *elementAdapter) Click(ctx context.Context) error {
	timeout, err := e.budget(ctx)
	if err != nil {
		return err
	}
	if err := e.loc.Click(playwright.LocatorClickOptions{Timeout: timeout}); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

func (e *elementAdapter) DispatchClick(ctx context.Context) error {
	timeout, err := e.budget(ctx)
	if err != nil {
		return err
	}
	if _, err := e.loc.Evaluate("el => el.click()", nil, playwright.LocatorEvaluateOptions{Timeout: timeout}); err != nil {
		return fmt.Errorf("dispatch click: %w", err)
	}
	return nil
}

func (e *elementAdapter) PointerClick(ctx context.Context) error {
	timeout, err := e.budget(ctx)
	if err != nil {
		return err
	}
	box, err := e.loc.BoundingBox(playwright.LocatorBoundingBoxOptions{Timeout: timeout})
	if err != nil {
		return fmt.Errorf("pointer click: %w", err)
	}
	if box == nil {
		return errors.New("pointer click: element has no box")
	}
	x, y := box.X+box.Width/2, box.Y+box.Height/2
	mouse := e.owner.page.Mouse()
	if err := mouse.Move(x, y); err != nil {
		return fmt.Errorf("pointer move: %w", err)
	}
	if err := mouse.Click(x, y); err != nil {
		return fmt.Errorf("pointer click: %w", err)
	}
	return nil
}

func (e *elementAdapter) ScrollIntoView(ctx context.Context) error {
	timeout, err := e.budget(ctx)
	if err != nil {
		return err
	}
	return e.loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{Timeout: timeout})
}

// Interactable runs a trial click, which performs every actionability check without clicking.
func (e *elementAdapter) Interactable(ctx context.Context) (bool, error) {
	timeout, err := e.owner.budget(ctx)
	if err != nil {
		return false, err
	}
	visible, err := e.loc.IsVisible()
	if err != nil || !visible {
		return false, err
	}
	if timeout > actionabilityProbe {
		timeout = actionabilityProbe
	}
	err = e.loc.Click(playwright.LocatorClickOptions{
		Trial:   playwright.Bool(true),
		Timeout: millis(timeout),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (e *elementAdapter) Visible(ctx context.Context) (bool, error) {
	if _, err := e.owner.budget(ctx); err != nil {
		return false, err
	}
	return e.loc.IsVisible()
}

func (e *elementAdapter) Enabled(ctx context.Context) (bool, error) {
	timeout, err := e.budget(ctx)
	if err != nil {
		return false, err
	}
	return e.loc.IsEnabled(playwright.LocatorIsEnabledOptions{Timeout: timeout})
}

func (e *elementAdapter) Checked(ctx context.Context) (bool, error) {
	timeout, err := e.budget(ctx)
	if err != nil {
		return false, err
	}
	return e.loc.IsChecked(playwright.LocatorIsCheckedOptions{Timeout: timeout})
}

func (e *elementAdapter) Text(ctx context.Context) (string, error) {
	timeout, err := e.budget(ctx)
	if err != nil {
		return "", err
	}
	return e.loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: timeout})
}

func (e *elementAdapter) Attribute(ctx context.Context, name string) (string, error) {
	timeout, err := e.budget(ctx)
	if err != nil {
		return "", err
	}
	return e.loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: timeout})
}

func (e *elementAdapter) Value(ctx context.Context) (string, error) {
	timeout, err := e.budget(ctx)
	if err != nil {
		return "", err
	}
	return e.loc.InputValue(playwright.LocatorInputValueOptions{Timeout: timeout})
}

func (e *elementAdapter) Clear(ctx context.Context) error {
	timeout, err := e.budget(ctx)
	if err != nil {
		return err
	}
	return e.loc.Clear(playwright.LocatorClearOptions{Timeout: timeout})
}

func (e *elementAdapter) Type(ctx context.Context, text string) error {
	timeout, err := e.budget(ctx)
	if err != nil {
		return err
	}
	return e.loc.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{Timeout: timeout})
}
