package pages

import (
	"context"
	"fmt"

	"signup-e2e/internal/browsercore"
)

type Landing struct {
	page
}

func NewLanding(core *browsercore.Core, opts Options) *Landing {
	return &Landing{page: newPage(core, opts, "landing")}
}

func (l *Landing) Open(ctx context.Context) error {
	if err := l.open(ctx, l.opts.URLs.Landing()); err != nil {
		return err
	}
	return l.WaitForLoad(ctx)
}

func (l *Landing) WaitForLoad(ctx context.Context) error {
	ok := l.core.Poll(ctx, l.core.Timings().Timeout, func(ctx context.Context) bool {
		return l.Title(ctx) != "" || l.core.Exists(ctx, l.strategy("try_for_free"))
	})
	if !ok {
		return fmt.Errorf("landing page did not load (url %s)", l.CurrentURL(ctx))
	}
	return nil
}

func (l *Landing) IsTryForFreeVisible(ctx context.Context) bool {
	return l.isVisible(ctx, l.strategy("try_for_free"))
}

// ClickTryForFree follows the call to action and returns the registration
// page bound to the same session.
func (l *Landing) ClickTryForFree(ctx context.Context) (*Registration, error) {
	l.core.DismissBlockingOverlays(ctx)
	el, err := l.core.Locate(ctx, l.strategy("try_for_free"), 0)
	if err != nil {
		return nil, err
	}
	if _, err := l.core.Click(ctx, el, "try_for_free"); err != nil {
		return nil, err
	}
	if !l.waitForURL(ctx, l.core.Timings().Timeout, "sign-up", "create-account") {
		return nil, fmt.Errorf("try for free did not reach sign-up (url %s)", l.CurrentURL(ctx))
	}

	reg := NewRegistration(l.core, l.opts)
	l.core.DismissBlockingOverlays(ctx)
	if err := reg.WaitForLoad(ctx); err != nil {
		return nil, err
	}
	return reg, nil
}

// ClickSignIn follows the sign-in link and returns the login page.
func (l *Landing) ClickSignIn(ctx context.Context) (*Login, error) {
	l.core.DismissBlockingOverlays(ctx)
	el, err := l.core.Locate(ctx, l.common("sign_in_link"), 0)
	if err != nil {
		return nil, err
	}
	if _, err := l.core.Click(ctx, el, "sign_in_link"); err != nil {
		return nil, err
	}
	if !l.waitForURL(ctx, l.core.Timings().Timeout, "sign-in", "login") {
		return nil, fmt.Errorf("sign-in link did not reach sign-in (url %s)", l.CurrentURL(ctx))
	}
	return NewLogin(l.core, l.opts), nil
}
