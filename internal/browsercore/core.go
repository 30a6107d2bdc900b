// Package browsercore holds the interaction layer every page object goes
// through: selector fallback, overlay dismissal and the click primitive.
package browsercore

import (
	"context"
	"time"

	"signup-e2e/internal/application/port/output"

	"k8s.io/apimachinery/pkg/util/wait"
)

const (
	defaultTimeout          = 10 * time.Second
	defaultPollInterval     = 250 * time.Millisecond
	defaultOverlayProbe     = 2 * time.Second
	defaultOverlayControl   = 2 * time.Second
	defaultOverlayGone      = 3 * time.Second
	defaultOverlayRounds    = 2
	defaultOverlayRoundWait = 500 * time.Millisecond
	defaultClickSettle      = time.Second
)

type Timings struct {
	Timeout          time.Duration
	PollInterval     time.Duration
	OverlayProbe     time.Duration
	OverlayControl   time.Duration
	OverlayGone      time.Duration
	OverlayRounds    int
	OverlayRoundWait time.Duration
	ClickSettle      time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		Timeout:          defaultTimeout,
		PollInterval:     defaultPollInterval,
		OverlayProbe:     defaultOverlayProbe,
		OverlayControl:   defaultOverlayControl,
		OverlayGone:      defaultOverlayGone,
		OverlayRounds:    defaultOverlayRounds,
		OverlayRoundWait: defaultOverlayRoundWait,
		ClickSettle:      defaultClickSettle,
	}
}

func (t Timings) withDefaults() Timings {
	d := DefaultTimings()
	if t.Timeout <= 0 {
		t.Timeout = d.Timeout
	}
	if t.PollInterval <= 0 {
		t.PollInterval = d.PollInterval
	}
	if t.OverlayProbe <= 0 {
		t.OverlayProbe = d.OverlayProbe
	}
	if t.OverlayControl <= 0 {
		t.OverlayControl = d.OverlayControl
	}
	if t.OverlayGone <= 0 {
		t.OverlayGone = d.OverlayGone
	}
	if t.OverlayRounds <= 0 {
		t.OverlayRounds = d.OverlayRounds
	}
	if t.OverlayRoundWait <= 0 {
		t.OverlayRoundWait = d.OverlayRoundWait
	}
	if t.ClickSettle <= 0 {
		t.ClickSettle = d.ClickSettle
	}
	return t
}

// Core binds one session to the interaction primitives. It does not own the session.
type Core struct {
	browser output.BrowserPort
	logger  output.LoggerPort
	timings Timings
	overlay OverlayDescriptor
}

func New(browser output.BrowserPort, logger output.LoggerPort, timings Timings, overlay OverlayDescriptor) *Core {
	return &Core{
		browser: browser,
		logger:  logger,
		timings: timings.withDefaults(),
		overlay: overlay,
	}
}

func (c *Core) Browser() output.BrowserPort {
	return c.browser
}

func (c *Core) Logger() output.LoggerPort {
	return c.logger
}

func (c *Core) Timings() Timings {
	return c.timings
}

func (c *Core) CurrentURL(ctx context.Context) string {
	url, err := c.browser.CurrentURL(ctx)
	if err != nil {
		c.logger.Debug("Current url unavailable", "error", err)
		return ""
	}
	return url
}

// Poll evaluates cond until it reports true or timeout passes. A zero or
// negative timeout evaluates cond exactly once.
func (c *Core) Poll(ctx context.Context, timeout time.Duration, cond func(ctx context.Context) bool) bool {
	if timeout <= 0 {
		return cond(ctx)
	}
	err := wait.PollUntilContextTimeout(ctx, c.timings.PollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		return cond(ctx), nil
	})
	return err == nil
}

// Sleep pauses for d unless ctx ends first.
func Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
