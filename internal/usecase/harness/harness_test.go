package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/application/service"
	"signup-e2e/internal/browsercore"
	"signup-e2e/internal/domain/entity"
	"signup-e2e/internal/infrastructure/browser/fake"
	"signup-e2e/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"pgregory.net/rapid"
)

type stored struct {
	name      string
	attempt   int
	artifacts *entity.Artifacts
}

type memorySink struct {
	mu     sync.Mutex
	stored []stored
	err    error
}

func (s *memorySink) Store(ctx context.Context, name string, attempt int, a *entity.Artifacts) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.stored = append(s.stored, stored{name: name, attempt: attempt, artifacts: a})
	return fmt.Sprintf("%s/attempt-%d", name, attempt), nil
}

type recordingReporter struct {
	mu      sync.Mutex
	retries []int
}

func (r *recordingReporter) CaseStarted(string, int) {}

func (r *recordingReporter) CaseRetrying(name string, attempt int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries = append(r.retries, attempt)
}

func (r *recordingReporter) CaseFinished(entity.Outcome) {}

func (r *recordingReporter) Summary([]entity.Outcome) {}

type testRig struct {
	harness  *Harness
	sessions *service.SessionManager
	sink     *memorySink
	reporter *recordingReporter

	mu       sync.Mutex
	browsers []*fake.Browser
}

func (r *testRig) factory(ctx context.Context) (output.BrowserPort, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := fake.New()
	b.SetHTML("<html><body><form id=\"signup\"></form></body></html>")
	b.Log("error", "Uncaught TypeError")
	r.browsers = append(r.browsers, b)
	return b, nil
}

func (r *testRig) provisioned() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.browsers)
}

func newRig(retry RetryPolicy) *testRig {
	rig := &testRig{sink: &memorySink{}, reporter: &recordingReporter{}}
	log := logger.NewNop()
	rig.sessions = service.NewSessionManager(rig.factory, log)
	rig.harness = New(rig.sessions, rig.sink, rig.reporter, log, Options{
		Timings: browsercore.Timings{Timeout: 50 * time.Millisecond, PollInterval: 5 * time.Millisecond, ClickSettle: time.Millisecond},
		Retry:   retry,
	})
	return rig
}

var errAssertion = errors.New("expected redirect")

func failing(calls *int) Func {
	return func(ctx context.Context, env *Env) error {
		*calls++
		return errAssertion
	}
}

func TestHarness_PassReusesAndResetsSession(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	rig := newRig(RetryPolicy{Enabled: true, MaxRetries: 2})

	var seen []output.BrowserPort
	c := Case{Name: "page_accessibility", Body: func(ctx context.Context, env *Env) error {
		seen = append(seen, env.Core.Browser())
		return nil
	}}

	first := rig.harness.Run(ctx, 0, c)
	second := rig.harness.Run(ctx, 0, c)

	assert.True(t, first.Passed())
	assert.True(t, second.Passed())
	assert.Equal(t, 1, first.Attempts)
	assert.Nil(t, first.Artifacts)
	require.Len(t, seen, 2)
	assert.Same(t, seen[0], seen[1])
	assert.Equal(t, 1, rig.provisioned())
	assert.Equal(t, 2, rig.browsers[0].CookieClears())
	assert.Equal(t, 2, rig.browsers[0].StorageClears())
	assert.Empty(t, rig.sink.stored)

	require.NoError(t, rig.harness.Close())
	assert.True(t, rig.browsers[0].Closed())
}

func TestHarness_ExhaustedRetriesKeepFinalArtifacts(t *testing.T) {
	defer goleak.VerifyNone(t)
	rig := newRig(RetryPolicy{Enabled: true, MaxRetries: 2})
	defer rig.harness.Close()

	calls := 0
	out := rig.harness.Run(context.Background(), 0, Case{Name: "weak_password", Body: failing(&calls)})

	assert.Equal(t, entity.StatusFailed, out.Status)
	assert.ErrorIs(t, out.Err, errAssertion)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, rig.reporter.retries)

	assert.Equal(t, 3, rig.provisioned())
	for _, b := range rig.browsers {
		assert.True(t, b.Closed())
	}

	require.Len(t, rig.sink.stored, 3)
	assert.Equal(t, "weak_password/attempt-3", out.ArtifactPath)
	assert.Same(t, rig.sink.stored[2].artifacts, out.Artifacts)
	require.NotNil(t, out.Artifacts.Screenshot)
	assert.Contains(t, out.Artifacts.ConsoleLog, "ERROR Uncaught TypeError")
	assert.Contains(t, out.Artifacts.Markup, `id="signup"`)
}

func TestHarness_FlakyCasePassesOnRetry(t *testing.T) {
	rig := newRig(RetryPolicy{Enabled: true, MaxRetries: 2})
	defer rig.harness.Close()

	calls := 0
	out := rig.harness.Run(context.Background(), 0, Case{Name: "signup", Body: func(ctx context.Context, env *Env) error {
		calls++
		if env.Attempt == 1 {
			return errAssertion
		}
		return nil
	}})

	assert.True(t, out.Passed())
	assert.Equal(t, 2, out.Attempts)
	assert.NoError(t, out.Err)
	assert.Nil(t, out.Artifacts)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, rig.provisioned())
}

func TestHarness_RetryDisabled(t *testing.T) {
	rig := newRig(RetryPolicy{Enabled: false, MaxRetries: 2})
	defer rig.harness.Close()

	calls := 0
	out := rig.harness.Run(context.Background(), 0, Case{Name: "c", Body: failing(&calls)})
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rig.reporter.retries)
}

func TestHarness_PanicBecomesFailure(t *testing.T) {
	rig := newRig(RetryPolicy{})
	defer rig.harness.Close()

	out := rig.harness.Run(context.Background(), 0, Case{Name: "c", Body: func(ctx context.Context, env *Env) error {
		panic("nil page object")
	}})
	assert.Equal(t, entity.StatusFailed, out.Status)
	assert.ErrorContains(t, out.Err, "panic")
}

func TestHarness_SetupFailureSkipsBody(t *testing.T) {
	rig := newRig(RetryPolicy{})
	defer rig.harness.Close()

	bodyRan := false
	out := rig.harness.Run(context.Background(), 0, Case{
		Name:  "c",
		Setup: func(ctx context.Context, env *Env) error { return errors.New("page did not load") },
		Body: func(ctx context.Context, env *Env) error {
			bodyRan = true
			return nil
		},
	})
	assert.False(t, bodyRan)
	assert.ErrorContains(t, out.Err, "setup: page did not load")
}

func TestHarness_SkipIsNotRetried(t *testing.T) {
	rig := newRig(RetryPolicy{Enabled: true, MaxRetries: 2})
	defer rig.harness.Close()

	calls := 0
	out := rig.harness.Run(context.Background(), 0, Case{Name: "business_profile_form", Body: func(ctx context.Context, env *Env) error {
		calls++
		return Skip("business profile not reachable from %s", "staging")
	}})
	assert.Equal(t, entity.StatusSkipped, out.Status)
	assert.ErrorIs(t, out.Err, ErrSkipped)
	assert.ErrorContains(t, out.Err, "not reachable from staging")
	assert.Equal(t, 1, calls)
	assert.False(t, rig.browsers[0].Closed())
}

func TestHarness_CancelledContextStopsRetrying(t *testing.T) {
	rig := newRig(RetryPolicy{Enabled: true, MaxRetries: 5})
	defer rig.harness.Close()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	out := rig.harness.Run(ctx, 0, Case{Name: "c", Body: func(ctx context.Context, env *Env) error {
		calls++
		cancel()
		return ctx.Err()
	}})
	assert.Equal(t, entity.StatusFailed, out.Status)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, out.Err, context.Canceled)
	require.Len(t, rig.sink.stored, 1)
}

func TestHarness_CaseTimeout(t *testing.T) {
	rig := newRig(RetryPolicy{})
	rig.harness.opts.CaseTimeout = 20 * time.Millisecond
	defer rig.harness.Close()

	out := rig.harness.Run(context.Background(), 0, Case{Name: "slow", Body: func(ctx context.Context, env *Env) error {
		<-ctx.Done()
		return ctx.Err()
	}})
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
}

func TestHarness_SinkFailureDoesNotMaskResult(t *testing.T) {
	rig := newRig(RetryPolicy{})
	rig.sink.err = errors.New("disk full")
	defer rig.harness.Close()

	calls := 0
	out := rig.harness.Run(context.Background(), 0, Case{Name: "c", Body: failing(&calls)})
	assert.ErrorIs(t, out.Err, errAssertion)
	assert.Empty(t, out.ArtifactPath)
	assert.NotNil(t, out.Artifacts)
}

func TestHarness_ExecutionsMatchRetryBudget(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		policy := RetryPolicy{
			Enabled:    rapid.Bool().Draw(rt, "enabled"),
			MaxRetries: rapid.IntRange(0, 4).Draw(rt, "max"),
		}
		rig := newRig(policy)
		defer rig.harness.Close()

		calls := 0
		out := rig.harness.Run(context.Background(), 0, Case{Name: "always_fails", Body: failing(&calls)})

		want := 1
		if policy.Enabled {
			want += policy.MaxRetries
		}
		if calls != want || out.Attempts != want {
			rt.Fatalf("calls=%d attempts=%d want %d", calls, out.Attempts, want)
		}
		if len(rig.sink.stored) != want {
			rt.Fatalf("stored %d artifact sets, want %d", len(rig.sink.stored), want)
		}
	})
}

func TestCapture_StepsAreIndependent(t *testing.T) {
	b := fake.New()
	b.ScreenshotErr = errors.New("target crashed")
	b.Log("warning", "deprecated API")
	b.SetHTML("<html><body><p>hi</p></body></html>")

	a := Capture(context.Background(), b, strings.ToUpper)

	assert.Nil(t, a.Screenshot)
	assert.True(t, strings.HasSuffix(a.ConsoleLog, " WARNING deprecated API\n"), a.ConsoleLog)
	assert.Equal(t, "<HTML><BODY><P>HI</P></BODY></HTML>", a.Markup)
	require.Len(t, a.Errors, 1)
	assert.ErrorContains(t, a.Err(), "capture screenshot: target crashed")
}

func TestCapture_PanickingStepIsContained(t *testing.T) {
	b := fake.New()
	b.HTMLErr = errors.New("detached")

	a := Capture(context.Background(), b, func(string) string { panic("unreachable") })
	require.NotNil(t, a.Screenshot)
	require.Len(t, a.Errors, 1)
	assert.ErrorContains(t, a.Errors[0], "capture markup: detached")

	b.HTMLErr = nil
	a = Capture(context.Background(), b, func(string) string { panic("sanitizer bug") })
	require.Len(t, a.Errors, 1)
	assert.ErrorContains(t, a.Errors[0], "capture markup: panic: sanitizer bug")
	assert.NotNil(t, a.Screenshot)
}

func TestFormatConsole(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := FormatConsole([]entity.ConsoleEntry{
		{Level: "error", Text: "boom", Time: ts},
		{Level: "log", Text: "ready"},
	})
	assert.Equal(t, "2026-01-02T03:04:05Z ERROR boom\nLOG ready\n", got)
}
