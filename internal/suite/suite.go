// Package suite defines the registration and login scenarios run against the
// application under test. Cases only talk to page objects; the harness owns
// sessions, retries and artifacts.
package suite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signup-e2e/internal/application/service"
	"signup-e2e/internal/usecase/harness"
)

// ErrExpectation marks a failed assertion about the application's behavior.
var ErrExpectation = errors.New("expectation failed")

const (
	GroupSmoke       = "smoke"
	GroupCritical    = "critical"
	GroupNavigation  = "navigation"
	GroupUI          = "ui"
	GroupPositive    = "positive"
	GroupRealAccount = "real-accounts"
	GroupNegative    = "negative"
	GroupValidation  = "validation"
	GroupIntegration = "integration"
	GroupOAuth       = "oauth"
	GroupRegression  = "regression"
	GroupSecurity    = "security"
	GroupPerformance = "performance"
	GroupEdgeCase    = "edge-case"
	GroupLogin       = "login"
	GroupBusiness    = "business"
)

const (
	defaultValidationWait = 2 * time.Second
	defaultSubmitBudget   = 15 * time.Second
	defaultDisableWait    = time.Second
)

// DefaultStrengthTerms are the words a weak-password message is expected to contain.
func DefaultStrengthTerms() []string {
	return []string{"weak", "strong", "short", "characters", "at least", "length"}
}

type Credentials struct {
	Email    string
	Password string
}

type Settings struct {
	// StrictSignup fails create_real_account when the form does not redirect.
	StrictSignup bool
	// Login is an existing account for login_valid_account; empty skips that case.
	Login Credentials
	// ValidationWait bounds the wait for client-side validation messages.
	ValidationWait time.Duration
	// SubmitBudget is the longest a signup submission may take.
	SubmitBudget time.Duration
	// StrengthTerms are lowercase substrings; weak_password passes when its message has one.
	StrengthTerms []string
}

func (s Settings) withDefaults() Settings {
	if s.ValidationWait <= 0 {
		s.ValidationWait = defaultValidationWait
	}
	if s.SubmitBudget <= 0 {
		s.SubmitBudget = defaultSubmitBudget
	}
	if len(s.StrengthTerms) == 0 {
		s.StrengthTerms = DefaultStrengthTerms()
	}
	return s
}

// Cases returns every scenario in run order.
func Cases(s Settings) []harness.Case {
	s = s.withDefaults()
	var cases []harness.Case
	cases = append(cases, signupCases(s)...)
	cases = append(cases, loginCases(s)...)
	cases = append(cases, businessCases(s)...)
	return cases
}

// Register adds every scenario to reg under its name and groups.
func Register(reg *service.Registry[harness.Case], s Settings) error {
	for _, c := range Cases(s) {
		if err := reg.Register(c.Name, c, c.Groups...); err != nil {
			return fmt.Errorf("register %s: %w", c.Name, err)
		}
	}
	return nil
}

func NewRegistry(s Settings) (*service.Registry[harness.Case], error) {
	reg := service.NewRegistry[harness.Case]()
	if err := Register(reg, s); err != nil {
		return nil, err
	}
	return reg, nil
}

func expect(ok bool, format string, args ...any) error {
	if ok {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrExpectation, fmt.Sprintf(format, args...))
}

// firstErr runs steps in order and stops at the first failure.
func firstErr(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func openRegistration(ctx context.Context, env *harness.Env) error {
	return env.Registration().Open(ctx)
}

func openLogin(ctx context.Context, env *harness.Env) error {
	return env.Login().Open(ctx, false)
}
