package suite

import (
	"context"
	"strings"
	"time"

	"signup-e2e/internal/domain/entity"
	"signup-e2e/internal/fixtures"
	"signup-e2e/internal/pages"
	"signup-e2e/internal/usecase/harness"
)

var registrationPaths = []string{"create-account", "sign-up"}

func mentionsStrength(msg string, terms []string) bool {
	lowered := strings.ToLower(msg)
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func signupCases(s Settings) []harness.Case {
	return []harness.Case{
		{
			Name:   "page_accessibility",
			Groups: []string{GroupSmoke, GroupCritical},
			Setup:  openRegistration,
			Body:   pageAccessibility,
		},
		{
			Name:   "landing_navigation_account_type",
			Groups: []string{GroupNavigation, GroupUI},
			Body:   landingNavigationAccountType,
		},
		{
			Name:   "signup_unique_email_redirects",
			Groups: []string{GroupPositive},
			Setup:  openRegistration,
			Body:   signupUniqueEmailRedirects,
		},
		{
			Name:   "create_real_account",
			Groups: []string{GroupPositive, GroupRealAccount},
			Setup:  openRegistration,
			Body:   createRealAccount(s),
		},
		{
			Name:   "invalid_email_format",
			Groups: []string{GroupNegative, GroupValidation},
			Setup:  openRegistration,
			Body:   invalidEmailFormat(s),
		},
		{
			Name:   "weak_password",
			Groups: []string{GroupNegative, GroupValidation},
			Setup:  openRegistration,
			Body:   weakPassword(s),
		},
		{
			Name:   "duplicate_email",
			Groups: []string{GroupNegative, GroupValidation},
			Setup:  openRegistration,
			Body:   duplicateEmail(s),
		},
		{
			Name:   "google_button",
			Groups: []string{GroupIntegration, GroupOAuth},
			Setup:  openRegistration,
			Body:   googleButton,
		},
		{
			Name:   "missing_email",
			Groups: []string{GroupNegative, GroupValidation},
			Setup:  openRegistration,
			Body:   missingEmail(s),
		},
		{
			Name:   "missing_password",
			Groups: []string{GroupNegative, GroupValidation},
			Setup:  openRegistration,
			Body:   missingPassword(s),
		},
		{
			Name:   "marketing_consent_toggle",
			Groups: []string{GroupUI, GroupRegression},
			Setup:  openRegistration,
			Body:   marketingConsentToggle,
		},
		{
			Name:   "special_characters",
			Groups: []string{GroupSecurity, GroupRegression},
			Setup:  openRegistration,
			Body:   specialCharacters,
		},
		{
			Name:   "submission_timing",
			Groups: []string{GroupPerformance, GroupRegression},
			Setup:  openRegistration,
			Body:   submissionTiming(s),
		},
		{
			Name:   "email_domain_variations",
			Groups: []string{GroupEdgeCase, GroupValidation},
			Setup:  openRegistration,
			Body:   emailDomainVariations,
		},
	}
}

func fillSignup(ctx context.Context, reg *pages.Registration, email, password string) error {
	return firstErr(
		func() error { return reg.EnterEmail(ctx, email) },
		func() error { return reg.EnterPassword(ctx, password) },
	)
}

func clearSignup(ctx context.Context, reg *pages.Registration) error {
	return fillSignup(ctx, reg, "", "")
}

func pageAccessibility(ctx context.Context, env *harness.Env) error {
	reg := env.Registration()
	url := reg.CurrentURL(ctx)
	return firstErr(
		func() error {
			return expect(reg.URLContains(ctx, registrationPaths...), "url %q is not a sign-up page", url)
		},
		func() error { return expect(reg.IsEmailFieldVisible(ctx), "email field not visible") },
		func() error { return expect(reg.IsPasswordFieldVisible(ctx), "password field not visible") },
	)
}

func landingNavigationAccountType(ctx context.Context, env *harness.Env) error {
	landing := env.Landing()
	if err := landing.Open(ctx); err != nil {
		return err
	}
	if err := expect(landing.IsTryForFreeVisible(ctx), "try for free not visible on landing page"); err != nil {
		return err
	}

	reg, err := landing.ClickTryForFree(ctx)
	if err != nil {
		return err
	}

	personal := reg.IsAccountTypeAvailable(ctx, entity.AccountPersonal)
	work := reg.IsAccountTypeAvailable(ctx, entity.AccountWork)
	env.Log.Info("Account type options",
		"personal", personal,
		"work", work,
		"book_demo", reg.IsBookDemoAvailable(ctx),
	)

	if personal {
		if err := reg.SelectAccountType(ctx, entity.AccountPersonal); err != nil {
			return err
		}
		env.Log.Info("Personal option selected", "book_demo", reg.IsBookDemoAvailable(ctx))
	}

	// Start the work flow from a fresh form.
	if err := env.Core.Browser().Navigate(ctx, reg.CurrentURL(ctx)); err != nil {
		return err
	}
	if err := reg.WaitForLoad(ctx); err != nil {
		return err
	}

	if !work || !reg.IsAccountTypeAvailable(ctx, entity.AccountWork) {
		return nil
	}
	if err := reg.SelectAccountType(ctx, entity.AccountWork); err != nil {
		return err
	}
	if !reg.IsBookDemoAvailable(ctx) {
		env.Log.Info("Book demo hidden after work selection")
		return nil
	}
	if _, err := reg.ClickBookDemo(ctx); err != nil {
		return err
	}
	return expect(reg.IsDemoPageLoaded(ctx), "demo page did not load after book demo")
}

func signupUniqueEmailRedirects(ctx context.Context, env *harness.Env) error {
	reg := env.Registration()
	user := env.Data.NewUser()
	env.Log.Info("Signing up", "user", user.String())

	if err := fillSignup(ctx, reg, user.Email, user.Password); err != nil {
		return err
	}
	before := reg.CurrentURL(ctx)
	if _, err := reg.CreateAccount(ctx); err != nil {
		return err
	}
	return expect(reg.IsRedirectedAfterSignUp(ctx), "still on %q after sign-up", before)
}

// createRealAccount registers on the configured domain. Without strict mode a
// form that does not redirect only logs a warning.
func createRealAccount(s Settings) harness.Func {
	return func(ctx context.Context, env *harness.Env) error {
		reg := env.Registration()
		user := env.Data.RealUser("")
		env.Log.Info("Creating real account", "user", user.String())

		if err := fillSignup(ctx, reg, user.Email, user.Password); err != nil {
			return err
		}
		if err := reg.SetMarketingConsent(ctx, true); err != nil {
			env.Log.Info("Marketing consent not available", "error", err)
		}
		if _, err := reg.CreateAccount(ctx); err != nil {
			return err
		}

		redirected := reg.IsRedirectedAfterSignUp(ctx)
		url := reg.CurrentURL(ctx)
		env.Log.Info("Sign-up result", "url", url, "landing", signupLanding(url))
		if redirected {
			return nil
		}
		if s.StrictSignup {
			return expect(false, "account %s stayed on %q: %s", user.Email, url, reg.GeneralErrorMessage(ctx))
		}
		env.Log.Warn("Account creation unclear, stayed on sign-up page", "email", user.Email, "error", reg.GeneralErrorMessage(ctx))
		return nil
	}
}

func signupLanding(url string) string {
	switch {
	case strings.Contains(url, "/teams"), strings.Contains(url, "/workspace"):
		return "workspace"
	case strings.Contains(url, "/verify"), strings.Contains(url, "/confirmation"):
		return "email verification"
	case strings.Contains(url, "/welcome"), strings.Contains(url, "/onboarding"):
		return "onboarding"
	case strings.Contains(url, "create-account"):
		return "sign-up form"
	}
	return "other"
}

func invalidEmailFormat(s Settings) harness.Func {
	return func(ctx context.Context, env *harness.Env) error {
		reg := env.Registration()
		if err := fillSignup(ctx, reg, fixtures.InvalidEmail, env.Data.StrongPassword()); err != nil {
			return err
		}
		env.Core.Poll(ctx, s.ValidationWait, func(ctx context.Context) bool {
			return reg.EmailErrorMessage(ctx) != ""
		})
		if _, err := reg.CreateAccount(ctx); err != nil {
			return err
		}
		env.Core.Poll(ctx, s.ValidationWait, func(ctx context.Context) bool {
			return reg.EmailErrorMessage(ctx) != "" ||
				reg.GeneralErrorMessage(ctx) != "" ||
				!reg.URLContains(ctx, registrationPaths...)
		})

		emailErr := reg.EmailErrorMessage(ctx)
		generalErr := reg.GeneralErrorMessage(ctx)
		stayed := reg.URLContains(ctx, registrationPaths...)
		env.Log.Info("Invalid email result", "email_error", emailErr, "general_error", generalErr, "stayed", stayed)
		return expect(emailErr != "" || stayed,
			"invalid email %q neither showed an email error nor stayed on the form", fixtures.InvalidEmail)
	}
}

func weakPassword(s Settings) harness.Func {
	return func(ctx context.Context, env *harness.Env) error {
		reg := env.Registration()
		if err := fillSignup(ctx, reg, env.Data.UniqueEmail(), fixtures.WeakPassword); err != nil {
			return err
		}
		if _, err := reg.CreateAccount(ctx); err != nil {
			return err
		}

		var msg string
		env.Core.Poll(ctx, s.ValidationWait, func(ctx context.Context) bool {
			msg = reg.PasswordErrorMessage(ctx)
			return msg != ""
		})
		if err := expect(msg != "", "no password error for weak password"); err != nil {
			return err
		}
		return expect(mentionsStrength(msg, s.StrengthTerms), "password error %q does not mention strength", msg)
	}
}

func duplicateEmail(s Settings) harness.Func {
	return func(ctx context.Context, env *harness.Env) error {
		reg := env.Registration()
		if err := fillSignup(ctx, reg, fixtures.DuplicateEmail, env.Data.StrongPassword()); err != nil {
			return err
		}
		if _, err := reg.CreateAccount(ctx); err != nil {
			return err
		}

		var dup string
		env.Core.Poll(ctx, s.ValidationWait, func(ctx context.Context) bool {
			dup = reg.DuplicateAccountMessage(ctx)
			return dup != ""
		})
		if dup != "" {
			return nil
		}
		general, emailErr := reg.GeneralErrorMessage(ctx), reg.EmailErrorMessage(ctx)
		if err := expect(general != "" || emailErr != "", "no error shown for duplicate email"); err != nil {
			return err
		}
		return expect(false, "error %q does not say the address is taken", strings.TrimSpace(general+" "+emailErr))
	}
}

func googleButton(ctx context.Context, env *harness.Env) error {
	reg := env.Registration()
	if err := expect(reg.IsGoogleButtonPresent(ctx), "google button not present"); err != nil {
		return err
	}
	displayed, enabled := reg.GoogleButtonState(ctx)
	return expect(displayed && enabled, "google button displayed=%t enabled=%t", displayed, enabled)
}

func missingEmail(s Settings) harness.Func {
	return func(ctx context.Context, env *harness.Env) error {
		reg := env.Registration()
		if err := reg.EnterPassword(ctx, env.Data.StrongPassword()); err != nil {
			return err
		}
		if reg.IsCreateAccountEnabled(ctx) {
			if _, err := reg.CreateAccount(ctx); err != nil {
				return err
			}
		}

		var emailErr string
		env.Core.Poll(ctx, s.ValidationWait, func(ctx context.Context) bool {
			emailErr = reg.EmailErrorMessage(ctx)
			return emailErr != ""
		})
		enabled := reg.IsCreateAccountEnabled(ctx)
		return expect(emailErr != "" || !enabled, "empty email accepted: no error and submit enabled")
	}
}

func missingPassword(s Settings) harness.Func {
	return func(ctx context.Context, env *harness.Env) error {
		reg := env.Registration()
		if err := reg.EnterEmail(ctx, env.Data.UniqueEmail()); err != nil {
			return err
		}
		if reg.IsCreateAccountEnabled(ctx) {
			if _, err := reg.CreateAccount(ctx); err != nil {
				return err
			}
		}

		var passwordErr string
		env.Core.Poll(ctx, s.ValidationWait, func(ctx context.Context) bool {
			passwordErr = reg.PasswordErrorMessage(ctx)
			return passwordErr != ""
		})
		enabled := reg.IsCreateAccountEnabled(ctx)
		return expect(passwordErr != "" || !enabled, "empty password accepted: no error and submit enabled")
	}
}

func marketingConsentToggle(ctx context.Context, env *harness.Env) error {
	reg := env.Registration()
	env.Log.Info("Marketing consent initial state", "checked", reg.IsMarketingConsentChecked(ctx))

	return firstErr(
		func() error { return reg.SetMarketingConsent(ctx, true) },
		func() error { return expect(reg.IsMarketingConsentChecked(ctx), "consent not checked after opting in") },
		func() error { return reg.SetMarketingConsent(ctx, false) },
		func() error {
			return expect(!reg.IsMarketingConsentChecked(ctx), "consent still checked after opting out")
		},
		func() error { return fillSignup(ctx, reg, env.Data.UniqueEmail(), env.Data.StrongPassword()) },
		func() error { return reg.SetMarketingConsent(ctx, false) },
		func() error {
			return expect(reg.IsCreateAccountEnabled(ctx), "submit disabled without marketing consent")
		},
	)
}

func specialCharacters(ctx context.Context, env *harness.Env) error {
	reg := env.Registration()
	for _, email := range fixtures.SpecialCharacterEmails {
		if err := fillSignup(ctx, reg, email, fixtures.InjectionPasswords[0]); err != nil {
			return err
		}
		accepted := reg.IsCreateAccountEnabled(ctx)
		env.Log.Info("Special character email", "email", email, "accepted", accepted)
		if err := expect(accepted, "submit disabled for valid address %q", email); err != nil {
			return err
		}
		if err := clearSignup(ctx, reg); err != nil {
			return err
		}
	}

	for _, password := range fixtures.InjectionPasswords[1:] {
		if err := fillSignup(ctx, reg, env.Data.UniqueEmail(), password); err != nil {
			return err
		}
		if err := expect(reg.IsEmailFieldVisible(ctx) && reg.URLContains(ctx, registrationPaths...),
			"form broke after typing password %q", password); err != nil {
			return err
		}
		if err := clearSignup(ctx, reg); err != nil {
			return err
		}
	}
	return nil
}

func submissionTiming(s Settings) harness.Func {
	return func(ctx context.Context, env *harness.Env) error {
		reg := env.Registration()
		start := time.Now()

		if err := fillSignup(ctx, reg, env.Data.UniqueEmail(), env.Data.StrongPassword()); err != nil {
			return err
		}
		if _, err := reg.CreateAccount(ctx); err != nil {
			return err
		}
		disabled := env.Core.Poll(ctx, defaultDisableWait, func(ctx context.Context) bool {
			return !reg.IsCreateAccountEnabled(ctx)
		})

		elapsed := time.Since(start)
		env.Log.Info("Submission timing", "elapsed", elapsed.Round(time.Millisecond).String(), "submit_disabled", disabled)
		return expect(elapsed < s.SubmitBudget, "submission took %s, budget %s", elapsed.Round(time.Millisecond), s.SubmitBudget)
	}
}

func emailDomainVariations(ctx context.Context, env *harness.Env) error {
	reg := env.Registration()
	password := env.Data.StrongPassword()
	for _, domain := range fixtures.EmailDomains {
		if err := fillSignup(ctx, reg, env.Data.UniqueEmailWithDomain(domain), password); err != nil {
			return err
		}
		if err := expect(reg.IsCreateAccountEnabled(ctx), "submit disabled for domain %s", domain); err != nil {
			return err
		}
		if err := clearSignup(ctx, reg); err != nil {
			return err
		}
	}
	return nil
}
