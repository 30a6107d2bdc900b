package pages

import (
	"context"
	"fmt"
	"strings"

	"signup-e2e/internal/browsercore"
)

type Login struct {
	page
}

func NewLogin(core *browsercore.Core, opts Options) *Login {
	return &Login{page: newPage(core, opts, "login")}
}

func (l *Login) emailField() field {
	return field{name: "email_field", strategy: l.strategy("email_field")}
}

func (l *Login) passwordField() field {
	return field{name: "password_field", strategy: l.strategy("password_field"), secret: true}
}

// Open goes to the sign-in page directly, or through the landing page's
// sign-in link when viaLanding is set, the way a visitor would.
func (l *Login) Open(ctx context.Context, viaLanding bool) error {
	if viaLanding {
		landing := NewLanding(l.core, l.opts)
		if err := landing.Open(ctx); err != nil {
			return err
		}
		if _, err := landing.ClickSignIn(ctx); err != nil {
			l.log.Warn("Sign-in link failed, opening sign-in directly", "error", err)
		} else {
			return l.WaitForLoad(ctx)
		}
	}
	if err := l.open(ctx, l.opts.URLs.Login()); err != nil {
		return err
	}
	return l.WaitForLoad(ctx)
}

// WaitForLoad accepts a sign-in title, a sign-in URL or a rendered email field.
func (l *Login) WaitForLoad(ctx context.Context) error {
	ok := l.core.Poll(ctx, l.core.Timings().Timeout, func(ctx context.Context) bool {
		return strings.Contains(lower(l.Title(ctx)), "sign") ||
			l.URLContains(ctx, "sign-in") ||
			l.core.Exists(ctx, l.strategy("email_field"))
	})
	if !ok {
		return fmt.Errorf("login page did not load (url %s)", l.CurrentURL(ctx))
	}
	return nil
}

func (l *Login) EnterEmail(ctx context.Context, email string) error {
	return l.fill(ctx, l.emailField(), email)
}

func (l *Login) EnterPassword(ctx context.Context, password string) error {
	return l.fill(ctx, l.passwordField(), password)
}

func (l *Login) Login(ctx context.Context) (browsercore.InteractionResult, error) {
	return l.submit(ctx, "login_button", l.strategy("login_button"), l.emailField(), l.passwordField())
}

// IsLoginSuccessful waits briefly for the browser to leave the sign-in page.
func (l *Login) IsLoginSuccessful(ctx context.Context) bool {
	return l.core.Poll(ctx, l.opts.RedirectWait, func(ctx context.Context) bool {
		url := l.core.CurrentURL(ctx)
		return url != "" && !strings.Contains(url, "sign-in") && !strings.Contains(url, "login")
	})
}

func (l *Login) IsEmailFieldVisible(ctx context.Context) bool {
	return l.isVisible(ctx, l.strategy("email_field"))
}

func (l *Login) IsPasswordFieldVisible(ctx context.Context) bool {
	return l.isVisible(ctx, l.strategy("password_field"))
}

func (l *Login) IsLoginButtonEnabled(ctx context.Context) bool {
	return l.isEnabled(ctx, l.strategy("login_button"))
}

func (l *Login) AreLoginFieldsVisible(ctx context.Context) bool {
	return l.IsEmailFieldVisible(ctx) && l.IsPasswordFieldVisible(ctx)
}
