package browsercore

import (
	"context"

	"signup-e2e/internal/domain/entity"
)

type OverlayAction struct {
	Name     string
	Strategy entity.Strategy
}

// OverlayDescriptor says how to recognise a blocking overlay and which
// controls dismiss it, in the order they should be tried.
type OverlayDescriptor struct {
	Container entity.Strategy
	Actions   []OverlayAction
	Escape    bool
	BodyClick bool
}

func (d OverlayDescriptor) Enabled() bool {
	return d.Container.Len() > 0
}

var bodySelector = entity.CSS("body")

// DismissBlockingOverlays removes consent banners and similar overlays if any
// are showing. It is safe to call at any time and never fails.
func (c *Core) DismissBlockingOverlays(ctx context.Context) {
	if !c.overlay.Enabled() {
		return
	}

	dismissed := false
	for round := 0; round < c.timings.OverlayRounds; round++ {
		probe := c.timings.OverlayProbe
		if round > 0 {
			Sleep(ctx, c.timings.OverlayRoundWait)
			// After an empty round a single look is enough.
			if !dismissed {
				probe = 0
			}
		}
		if !c.Poll(ctx, probe, c.overlayShowing) {
			if round == 0 {
				c.logger.Debug("No blocking overlay")
			}
			dismissed = false
			continue
		}
		if !c.dismissOnce(ctx) {
			c.logger.Warn("Overlay dismissal incomplete", "rounds", round+1)
			return
		}
		dismissed = true
	}
}

func (c *Core) dismissOnce(ctx context.Context) bool {
	for _, action := range c.overlay.Actions {
		if c.tryOverlayAction(ctx, action) {
			c.logger.Info("Overlay dismissed", "strategy", action.Name)
			return true
		}
	}

	if c.overlay.Escape {
		if err := c.browser.PressKey(ctx, entity.KeyEscape); err != nil {
			c.logger.Debug("Escape key failed", "error", err)
		} else if c.overlayGone(ctx) {
			c.logger.Info("Overlay dismissed", "strategy", "escape")
			return true
		}
	}

	if c.overlay.BodyClick {
		if body, err := c.browser.Find(ctx, bodySelector); err == nil {
			if err := body.Click(ctx); err != nil {
				c.logger.Debug("Body click failed", "error", err)
			} else if c.overlayGone(ctx) {
				c.logger.Info("Overlay dismissed", "strategy", "body_click")
				return true
			}
		}
	}
	return false
}

func (c *Core) tryOverlayAction(ctx context.Context, action OverlayAction) bool {
	el, ok := c.findNow(ctx, action.Strategy)
	if !ok {
		return false
	}
	if !c.WaitInteractable(ctx, el, c.timings.OverlayControl) {
		c.logger.Debug("Overlay control not interactable", "strategy", action.Name)
		return false
	}
	if err := el.Click(ctx); err != nil {
		c.logger.Debug("Overlay control click failed", "strategy", action.Name, "error", err)
		return false
	}
	if !c.overlayGone(ctx) {
		c.logger.Debug("Overlay persisted after click", "strategy", action.Name)
		return false
	}
	return true
}

func (c *Core) overlayShowing(ctx context.Context) bool {
	return c.VisibleNow(ctx, c.overlay.Container)
}

func (c *Core) overlayGone(ctx context.Context) bool {
	return c.Poll(ctx, c.timings.OverlayGone, func(ctx context.Context) bool {
		return !c.overlayShowing(ctx)
	})
}
