// Package harness runs one test case against a worker's browser session:
// acquire, set up, execute, then either reset the session or capture
// artifacts, dispose it and retry.
package harness

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/application/service"
	"signup-e2e/internal/browsercore"
	"signup-e2e/internal/domain/entity"
	"signup-e2e/internal/fixtures"
	"signup-e2e/internal/pages"
)

type State string

const (
	StateNotStarted   State = "not_started"
	StateSessionReady State = "session_ready"
	StateExecuting    State = "executing"
	StatePassed       State = "passed"
	StateRetrying     State = "retrying"
	StateFailed       State = "failed"
)

// Sessions is the part of the session manager the harness needs.
type Sessions interface {
	Acquire(ctx context.Context, worker int) (*service.Session, error)
	Release(s *service.Session)
	Reset(ctx context.Context, s *service.Session) error
	Dispose(s *service.Session) error
	Close() error
}

type Options struct {
	Timings browsercore.Timings
	Overlay browsercore.OverlayDescriptor
	Pages   pages.Options
	Data    *fixtures.Generator
	Retry   RetryPolicy
	// CaseTimeout bounds one attempt; zero means no bound beyond the caller's context.
	CaseTimeout time.Duration
	// CaptureTimeout bounds artifact collection after a failure.
	CaptureTimeout time.Duration
	// Sanitize, if set, cleans page markup before it is stored.
	Sanitize func(string) string
}

type Harness struct {
	sessions Sessions
	sink     output.ArtifactSink
	reporter output.ReporterPort
	logger   output.LoggerPort
	opts     Options
}

// New builds a harness. sink and reporter may be nil.
func New(sessions Sessions, sink output.ArtifactSink, reporter output.ReporterPort, logger output.LoggerPort, opts Options) *Harness {
	if opts.Data == nil {
		opts.Data = fixtures.NewGenerator("", "")
	}
	if opts.CaptureTimeout <= 0 {
		opts.CaptureTimeout = defaultCaptureTimeout
	}
	return &Harness{
		sessions: sessions,
		sink:     sink,
		reporter: reporter,
		logger:   logger,
		opts:     opts,
	}
}

type attemptResult struct {
	err       error
	artifacts *entity.Artifacts
	path      string
}

// Run executes c on worker's session until it passes, is skipped, or runs
// out of retries. Only the final attempt's artifacts are reported.
func (h *Harness) Run(ctx context.Context, worker int, c Case) entity.Outcome {
	start := time.Now()
	log := h.logger.WithFields(map[string]any{"case": c.Name, "worker": worker})
	retry := NewRetryState(h.opts.Retry)

	outcome := entity.Outcome{
		Case:   c.Name,
		Groups: c.Groups,
		Worker: worker,
	}

	for {
		attempt := retry.Begin()
		res := h.attempt(ctx, worker, c, attempt, log.WithField("attempt", attempt))
		outcome.Attempts = attempt

		switch {
		case res.err == nil:
			outcome.Status = entity.StatusPassed
			if attempt > 1 {
				log.Info("Case passed after retry", "attempts", attempt)
			}
		case errors.Is(res.err, ErrSkipped):
			outcome.Status = entity.StatusSkipped
			outcome.Err = res.err
			log.Info("Case skipped", "reason", res.err)
		case ctx.Err() == nil && retry.ShouldRetry():
			log.Warn("Case failed, retrying", "state", string(StateRetrying), "remaining", retry.Remaining(), "error", res.err)
			if h.reporter != nil {
				h.reporter.CaseRetrying(c.Name, attempt, res.err)
			}
			continue
		default:
			outcome.Status = entity.StatusFailed
			outcome.Err = res.err
			outcome.Artifacts = res.artifacts
			outcome.ArtifactPath = res.path
			log.Error("Case failed", "state", string(StateFailed), "attempts", attempt, "error", res.err)
		}

		outcome.Duration = time.Since(start)
		return outcome
	}
}

func (h *Harness) attempt(ctx context.Context, worker int, c Case, attempt int, log output.LoggerPort) attemptResult {
	log.Debug("Attempt starting", "state", string(StateNotStarted))

	session, err := h.sessions.Acquire(ctx, worker)
	if err != nil {
		return attemptResult{err: fmt.Errorf("acquire session: %w", err)}
	}
	log.Debug("Session ready", "state", string(StateSessionReady), "uses", session.Uses())

	env := &Env{
		Case:    c.Name,
		Worker:  worker,
		Attempt: attempt,
		Core:    browsercore.New(session.Browser, log, h.opts.Timings, h.opts.Overlay),
		Pages:   h.opts.Pages,
		Data:    h.opts.Data,
		Log:     log,
	}

	log.Debug("Executing", "state", string(StateExecuting))
	err = h.execute(ctx, c, env)

	if err == nil || errors.Is(err, ErrSkipped) {
		h.keep(ctx, session, log)
		if err == nil {
			log.Info("Case passed", "state", string(StatePassed))
		}
		return attemptResult{err: err}
	}

	res := attemptResult{err: err}
	res.artifacts, res.path = h.collect(ctx, c.Name, attempt, session, log)
	if derr := h.sessions.Dispose(session); derr != nil {
		log.Warn("Dispose after failure failed", "error", derr)
	}
	return res
}

// execute runs Setup then Body, turning panics into errors.
func (h *Harness) execute(ctx context.Context, c Case, env *Env) (err error) {
	if h.opts.CaseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.CaseTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			env.Log.Error("Case panicked", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if c.Setup != nil {
		if err := c.Setup(ctx, env); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}
	if c.Body == nil {
		return errors.New("case has no body")
	}
	return c.Body(ctx, env)
}

// keep resets a session that served a passing attempt. A session that cannot
// be reset is disposed instead.
func (h *Harness) keep(ctx context.Context, s *service.Session, log output.LoggerPort) {
	if err := h.sessions.Reset(ctx, s); err != nil {
		log.Warn("Session reset failed, disposing", "error", err)
		if derr := h.sessions.Dispose(s); derr != nil {
			log.Warn("Dispose failed", "error", derr)
		}
		return
	}
	h.sessions.Release(s)
}

func (h *Harness) collect(ctx context.Context, name string, attempt int, s *service.Session, log output.LoggerPort) (*entity.Artifacts, string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.opts.CaptureTimeout)
	defer cancel()

	artifacts := Capture(ctx, s.Browser, h.opts.Sanitize)
	for _, err := range artifacts.Errors {
		log.Warn("Artifact capture step failed", "error", err)
	}
	if h.sink == nil || artifacts.Empty() {
		return artifacts, ""
	}

	path, err := h.sink.Store(ctx, name, attempt, artifacts)
	if err != nil {
		log.Warn("Storing artifacts failed", "error", err)
		return artifacts, ""
	}
	log.Info("Artifacts stored", "path", path)
	return artifacts, path
}

// Close disposes every session; call it at the end of a group.
func (h *Harness) Close() error {
	return h.sessions.Close()
}
