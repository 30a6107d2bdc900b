package suite

import (
	"context"

	"signup-e2e/internal/fixtures"
	"signup-e2e/internal/usecase/harness"
)

var loginPaths = []string{"sign-in", "login"}

func loginCases(s Settings) []harness.Case {
	return []harness.Case{
		{
			Name:   "login_page_accessibility",
			Groups: []string{GroupLogin, GroupSmoke, GroupCritical},
			Setup:  openLogin,
			Body:   loginPageAccessibility,
		},
		{
			Name:   "login_via_landing",
			Groups: []string{GroupLogin, GroupNavigation},
			Body:   loginViaLanding,
		},
		{
			Name:   "login_invalid_credentials",
			Groups: []string{GroupLogin, GroupNegative, GroupValidation},
			Setup:  openLogin,
			Body:   loginInvalidCredentials(s),
		},
		{
			Name:   "login_empty_fields",
			Groups: []string{GroupLogin, GroupNegative, GroupValidation},
			Setup:  openLogin,
			Body:   loginEmptyFields(s),
		},
		{
			Name:   "login_ui_elements",
			Groups: []string{GroupLogin, GroupUI, GroupRegression},
			Setup:  openLogin,
			Body:   loginUIElements,
		},
		{
			Name:   "login_valid_account",
			Groups: []string{GroupLogin, GroupPositive, GroupIntegration},
			Setup:  openLogin,
			Body:   loginValidAccount(s),
		},
	}
}

func loginPageAccessibility(ctx context.Context, env *harness.Env) error {
	login := env.Login()
	return firstErr(
		func() error {
			return expect(login.URLContains(ctx, loginPaths...), "url %q is not a login page", login.CurrentURL(ctx))
		},
		func() error { return expect(login.AreLoginFieldsVisible(ctx), "login fields not visible") },
		func() error { return expect(login.IsLoginButtonEnabled(ctx), "login button disabled") },
	)
}

func loginViaLanding(ctx context.Context, env *harness.Env) error {
	login := env.Login()
	if err := login.Open(ctx, true); err != nil {
		return err
	}
	return expect(login.AreLoginFieldsVisible(ctx), "login fields not visible after landing navigation")
}

func loginInvalidCredentials(s Settings) harness.Func {
	return func(ctx context.Context, env *harness.Env) error {
		login := env.Login()
		err := firstErr(
			func() error { return login.EnterEmail(ctx, fixtures.InvalidEmail) },
			func() error { return login.EnterPassword(ctx, "somepassword") },
			func() error { _, err := login.Login(ctx); return err },
		)
		if err != nil {
			return err
		}

		var msg string
		env.Core.Poll(ctx, s.ValidationWait, func(ctx context.Context) bool {
			msg = login.ErrorMessage(ctx)
			return msg != ""
		})
		env.Log.Info("Invalid login result", "error_message", msg)
		return expect(msg != "", "no error shown for invalid credentials")
	}
}

func loginEmptyFields(s Settings) harness.Func {
	return func(ctx context.Context, env *harness.Env) error {
		login := env.Login()
		if _, err := login.Login(ctx); err != nil {
			return err
		}

		var msg string
		env.Core.Poll(ctx, s.ValidationWait, func(ctx context.Context) bool {
			msg = login.ErrorMessage(ctx)
			return msg != ""
		})
		stayed := login.URLContains(ctx, loginPaths...)
		env.Log.Info("Empty login result", "error_message", msg, "stayed", stayed)
		return expect(msg != "" || stayed, "empty login left the page without an error")
	}
}

func loginUIElements(ctx context.Context, env *harness.Env) error {
	login := env.Login()
	return firstErr(
		func() error { return expect(login.IsEmailFieldVisible(ctx), "email field not visible") },
		func() error { return expect(login.IsPasswordFieldVisible(ctx), "password field not visible") },
		func() error { return expect(login.IsLoginButtonEnabled(ctx), "login button disabled") },
		func() error { return login.EnterEmail(ctx, "test@example.com") },
		func() error { return login.EnterPassword(ctx, "testpassword") },
	)
}

func loginValidAccount(s Settings) harness.Func {
	return func(ctx context.Context, env *harness.Env) error {
		if s.Login.Email == "" || s.Login.Password == "" {
			return harness.Skip("no login account configured")
		}
		login := env.Login()
		err := firstErr(
			func() error { return login.EnterEmail(ctx, s.Login.Email) },
			func() error { return login.EnterPassword(ctx, s.Login.Password) },
			func() error { _, err := login.Login(ctx); return err },
		)
		if err != nil {
			return err
		}
		if login.IsLoginSuccessful(ctx) {
			return nil
		}
		return expect(false, "login as %s failed: %s", s.Login.Email, login.ErrorMessage(ctx))
	}
}
