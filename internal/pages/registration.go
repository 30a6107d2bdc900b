package pages

import (
	"context"
	"fmt"

	"signup-e2e/internal/browsercore"
	"signup-e2e/internal/domain/entity"
)

type Registration struct {
	page
}

func NewRegistration(core *browsercore.Core, opts Options) *Registration {
	return &Registration{page: newPage(core, opts, "registration")}
}

func (r *Registration) emailField() field {
	return field{name: "email_field", strategy: r.strategy("email_field")}
}

func (r *Registration) passwordField() field {
	return field{name: "password_field", strategy: r.strategy("password_field"), secret: true}
}

func (r *Registration) Open(ctx context.Context) error {
	if err := r.open(ctx, r.opts.URLs.Registration()); err != nil {
		return err
	}
	return r.WaitForLoad(ctx)
}

func (r *Registration) WaitForLoad(ctx context.Context) error {
	if _, err := r.core.Locate(ctx, r.strategy("email_field"), 0); err != nil {
		return fmt.Errorf("registration page did not load: %w", err)
	}
	return nil
}

func (r *Registration) EnterEmail(ctx context.Context, email string) error {
	return r.fill(ctx, r.emailField(), email)
}

func (r *Registration) EnterPassword(ctx context.Context, password string) error {
	return r.fill(ctx, r.passwordField(), password)
}

func (r *Registration) SetMarketingConsent(ctx context.Context, checked bool) error {
	return r.setChecked(ctx, "marketing_checkbox", r.strategy("marketing_checkbox"), checked)
}

func (r *Registration) IsMarketingConsentChecked(ctx context.Context) bool {
	return r.isChecked(ctx, r.strategy("marketing_checkbox"))
}

// CreateAccount submits the form. URLChanged on the result hints at a redirect;
// use IsRedirectedAfterSignUp for the authoritative check.
func (r *Registration) CreateAccount(ctx context.Context) (browsercore.InteractionResult, error) {
	return r.submit(ctx, "create_account_button", r.strategy("create_account_button"), r.emailField(), r.passwordField())
}

func (r *Registration) IsCreateAccountEnabled(ctx context.Context) bool {
	return r.isEnabled(ctx, r.strategy("create_account_button"))
}

func (r *Registration) IsGoogleButtonPresent(ctx context.Context) bool {
	return r.core.Exists(ctx, r.strategy("google_button"))
}

// GoogleButtonState reports whether the OAuth button is displayed and enabled.
func (r *Registration) GoogleButtonState(ctx context.Context) (displayed, enabled bool) {
	el, ok := r.probe(ctx, r.strategy("google_button"))
	if !ok {
		return false, false
	}
	displayed, _ = el.Visible(ctx)
	enabled, _ = el.Enabled(ctx)
	return displayed, enabled
}

func (r *Registration) ClickGoogleButton(ctx context.Context) (browsercore.InteractionResult, error) {
	el, err := r.core.Locate(ctx, r.strategy("google_button"), 0)
	if err != nil {
		return browsercore.InteractionResult{}, err
	}
	return r.core.Click(ctx, el, "google_button")
}

func (r *Registration) EmailErrorMessage(ctx context.Context) string {
	return r.visibleText(ctx, r.strategy("field_errors"), r.opts.ErrorTerms.Email)
}

func (r *Registration) PasswordErrorMessage(ctx context.Context) string {
	return r.visibleText(ctx, r.strategy("field_errors"), r.opts.ErrorTerms.Password)
}

// GeneralErrorMessage returns any visible form error regardless of wording.
func (r *Registration) GeneralErrorMessage(ctx context.Context) string {
	if msg := r.ErrorMessage(ctx); msg != "" {
		return msg
	}
	return r.visibleText(ctx, r.strategy("field_errors"), nil)
}

// DuplicateAccountMessage returns a visible error that says the address is taken.
func (r *Registration) DuplicateAccountMessage(ctx context.Context) string {
	if msg := r.visibleText(ctx, r.common("error_messages"), r.opts.ErrorTerms.Duplicate); msg != "" {
		return msg
	}
	return r.visibleText(ctx, r.strategy("field_errors"), r.opts.ErrorTerms.Duplicate)
}

// IsRedirectedAfterSignUp waits briefly for the browser to leave the registration form.
func (r *Registration) IsRedirectedAfterSignUp(ctx context.Context) bool {
	return r.waitForURLWithout(ctx, r.opts.RedirectWait, "create-account")
}

func (r *Registration) IsEmailFieldVisible(ctx context.Context) bool {
	return r.isVisible(ctx, r.strategy("email_field"))
}

func (r *Registration) IsPasswordFieldVisible(ctx context.Context) bool {
	return r.isVisible(ctx, r.strategy("password_field"))
}

func (r *Registration) accountOption(t entity.AccountType) (entity.Strategy, error) {
	switch t {
	case entity.AccountPersonal:
		return r.strategy("personal_option"), nil
	case entity.AccountWork:
		return r.strategy("work_option"), nil
	}
	return entity.Strategy{}, fmt.Errorf("unknown account type %q", t)
}

func (r *Registration) IsAccountTypeAvailable(ctx context.Context, t entity.AccountType) bool {
	s, err := r.accountOption(t)
	if err != nil {
		return false
	}
	return r.isVisible(ctx, s)
}

func (r *Registration) SelectAccountType(ctx context.Context, t entity.AccountType) error {
	s, err := r.accountOption(t)
	if err != nil {
		return err
	}
	el, err := r.core.Locate(ctx, s, 0)
	if err != nil {
		return err
	}
	_, err = r.core.Click(ctx, el, string(t)+"_option")
	return err
}

func (r *Registration) IsBookDemoAvailable(ctx context.Context) bool {
	return r.isVisible(ctx, r.strategy("book_demo"))
}

func (r *Registration) ClickBookDemo(ctx context.Context) (browsercore.InteractionResult, error) {
	el, err := r.core.Locate(ctx, r.strategy("book_demo"), 0)
	if err != nil {
		return browsercore.InteractionResult{}, err
	}
	return r.core.Click(ctx, el, "book_demo")
}

// IsDemoPageLoaded waits for a URL or title that mentions a demo.
func (r *Registration) IsDemoPageLoaded(ctx context.Context) bool {
	return r.core.Poll(ctx, r.opts.RedirectWait, func(ctx context.Context) bool {
		return r.URLContains(ctx, "demo") || containsAny(lower(r.Title(ctx)), []string{"demo"})
	})
}
