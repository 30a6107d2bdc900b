package browsercore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/domain/entity"
)

// Locate tries each selector of the strategy in order, waiting up to timeout
// for each one, and returns the first element that becomes present.
// A non-positive timeout falls back to the configured default.
func (c *Core) Locate(ctx context.Context, strategy entity.Strategy, timeout time.Duration) (output.ElementPort, error) {
	if timeout <= 0 {
		timeout = c.timings.Timeout
	}

	selectors := strategy.Selectors()
	for i, sel := range selectors {
		var found output.ElementPort
		ok := c.Poll(ctx, timeout, func(ctx context.Context) bool {
			el, err := c.browser.Find(ctx, sel)
			if err != nil {
				if !errors.Is(err, output.ErrNoElement) {
					c.logger.Debug("Find failed", "element", strategy.Name(), "selector", sel.String(), "error", err)
				}
				return false
			}
			found = el
			return true
		})
		if ok {
			if i > 0 {
				c.logger.Debug("Located via fallback selector", "element", strategy.Name(), "selector", sel.String(), "index", i)
			}
			return found, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("locate %s: %w", strategy.Name(), err)
		}
		c.logger.Debug("Selector did not match", "element", strategy.Name(), "selector", sel.String())
	}

	c.logger.Warn("Element not located", "element", strategy.Name(), "tried", len(selectors))
	return nil, &LocationFailure{Name: strategy.Name(), Tried: selectors}
}

// Exists reports whether any selector currently matches. It never waits and never fails.
func (c *Core) Exists(ctx context.Context, strategy entity.Strategy) bool {
	_, ok := c.findNow(ctx, strategy)
	return ok
}

// LocateAll returns every element matched by the first selector that matches anything, without waiting.
func (c *Core) LocateAll(ctx context.Context, strategy entity.Strategy) []output.ElementPort {
	for _, sel := range strategy.Selectors() {
		els, err := c.browser.FindAll(ctx, sel)
		if err != nil || len(els) == 0 {
			continue
		}
		return els
	}
	return nil
}

// VisibleNow reports whether the strategy matches an element that is currently displayed.
func (c *Core) VisibleNow(ctx context.Context, strategy entity.Strategy) bool {
	for _, sel := range strategy.Selectors() {
		el, err := c.browser.Find(ctx, sel)
		if err != nil {
			continue
		}
		if visible, err := el.Visible(ctx); err == nil && visible {
			return true
		}
	}
	return false
}

func (c *Core) findNow(ctx context.Context, strategy entity.Strategy) (output.ElementPort, bool) {
	for _, sel := range strategy.Selectors() {
		el, err := c.browser.Find(ctx, sel)
		if err == nil && el != nil {
			return el, true
		}
	}
	return nil, false
}

// WaitInteractable waits until the element is visible, enabled and unobstructed.
func (c *Core) WaitInteractable(ctx context.Context, el output.ElementPort, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = c.timings.Timeout
	}
	return c.Poll(ctx, timeout, func(ctx context.Context) bool {
		ok, err := el.Interactable(ctx)
		return err == nil && ok
	})
}
