package harness

import (
	"context"
	"errors"
	"fmt"

	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/browsercore"
	"signup-e2e/internal/fixtures"
	"signup-e2e/internal/pages"
)

// ErrSkipped marks a case that decided it cannot run in this environment.
// Skips are not retried and keep the session.
var ErrSkipped = errors.New("skipped")

func Skip(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSkipped, fmt.Sprintf(format, args...))
}

// Env is what a case sees during one attempt. It is rebuilt per attempt so
// nothing leaks between a failed attempt and its retry.
type Env struct {
	Case    string
	Worker  int
	Attempt int

	Core  *browsercore.Core
	Pages pages.Options
	Data  *fixtures.Generator
	Log   output.LoggerPort
}

func (e *Env) Registration() *pages.Registration {
	return pages.NewRegistration(e.Core, e.Pages)
}

func (e *Env) Login() *pages.Login {
	return pages.NewLogin(e.Core, e.Pages)
}

func (e *Env) Landing() *pages.Landing {
	return pages.NewLanding(e.Core, e.Pages)
}

func (e *Env) Business() *pages.Business {
	return pages.NewBusiness(e.Core, e.Pages)
}

// Func is a case hook. A returned error fails the attempt.
type Func func(ctx context.Context, env *Env) error

type Case struct {
	Name   string
	Groups []string
	// Setup runs before Body on every attempt, typically to open the page under test.
	Setup Func
	Body  Func
}
