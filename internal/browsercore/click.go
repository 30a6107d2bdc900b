package browsercore

import (
	"context"
	"time"

	"signup-e2e/internal/application/port/output"
)

type ClickStrategy string

const (
	ClickNative  ClickStrategy = "native"
	ClickScript  ClickStrategy = "script"
	ClickPointer ClickStrategy = "pointer"
)

var clickOrder = []ClickStrategy{ClickNative, ClickScript, ClickPointer}

type InteractionResult struct {
	Strategy   ClickStrategy
	URLBefore  string
	URLAfter   string
	URLChanged bool
	Elapsed    time.Duration
}

// Click scrolls el into view, waits for it to become interactable and then
// tries native, script and pointer clicks in that order. URLChanged is
// advisory; a click that does not navigate is still a success.
func (c *Core) Click(ctx context.Context, el output.ElementPort, name string) (InteractionResult, error) {
	start := time.Now()
	log := c.logger.WithField("element", name)

	res := InteractionResult{URLBefore: c.CurrentURL(ctx)}

	if err := el.ScrollIntoView(ctx); err != nil {
		log.Debug("Scroll into view failed", "error", err)
	}
	if !c.WaitInteractable(ctx, el, c.timings.Timeout) {
		log.Warn("Element not interactable before click, trying anyway")
	}

	causes := make(map[ClickStrategy]error, len(clickOrder))
	for _, strategy := range clickOrder {
		err := c.clickWith(ctx, el, strategy)
		if err == nil {
			res.Strategy = strategy
			break
		}
		causes[strategy] = err
		log.Debug("Click strategy failed", "strategy", string(strategy), "error", err)
		if ctx.Err() != nil {
			break
		}
	}
	if res.Strategy == "" {
		log.Error("All click strategies failed")
		return res, &InteractionFailure{Name: name, Causes: causes}
	}

	Sleep(ctx, c.timings.ClickSettle)
	res.URLAfter = c.CurrentURL(ctx)
	res.URLChanged = res.URLAfter != res.URLBefore
	res.Elapsed = time.Since(start)

	log.Info("Clicked",
		"strategy", string(res.Strategy),
		"url_changed", res.URLChanged,
		"url", res.URLAfter,
	)
	return res, nil
}

func (c *Core) clickWith(ctx context.Context, el output.ElementPort, strategy ClickStrategy) error {
	switch strategy {
	case ClickNative:
		return el.Click(ctx)
	case ClickScript:
		return el.DispatchClick(ctx)
	default:
		return el.PointerClick(ctx)
	}
}
