// Package runner dispatches the selected cases across a fixed pool of
// workers, each owning one browser session, and aggregates the outcomes.
package runner

import (
	"context"
	"fmt"
	"time"

	"signup-e2e/internal/application/port/input"
	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/application/service"
	"signup-e2e/internal/domain/entity"
	"signup-e2e/internal/usecase/harness"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

var _ input.SuiteRunner = (*Runner)(nil)

// CaseRunner runs a single case; *harness.Harness satisfies it.
type CaseRunner interface {
	Run(ctx context.Context, worker int, c harness.Case) entity.Outcome
	Close() error
}

type Runner struct {
	cases    *service.Registry[harness.Case]
	harness  CaseRunner
	reporter output.ReporterPort
	logger   output.LoggerPort
	workers  int
}

func New(
	cases *service.Registry[harness.Case],
	h CaseRunner,
	reporter output.ReporterPort,
	logger output.LoggerPort,
	workers int,
) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		cases:    cases,
		harness:  h,
		reporter: reporter,
		logger:   logger,
		workers:  workers,
	}
}

// Run executes every case matching filter. Failing cases never stop the run;
// only cancellation of ctx does, and cases that never started are reported
// as skipped.
func (r *Runner) Run(ctx context.Context, filter input.RunFilter) (*input.RunReport, error) {
	names, err := r.cases.Select(filter)
	if err != nil {
		return nil, err
	}

	report := &input.RunReport{RunID: ulid.Make().String()}
	ctx = output.WithRunID(ctx, report.RunID)
	log := r.logger.WithField("run", report.RunID)
	log.Info("Starting run", "cases", len(names), "workers", r.workers)
	start := time.Now()

	outcomes := make([]entity.Outcome, len(names))
	started := make([]bool, len(names))

	free := make(chan int, r.workers)
	for w := 0; w < r.workers; w++ {
		free <- w
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, name := range names {
		if gctx.Err() != nil {
			break
		}
		c, _ := r.cases.Get(name)
		if c.Name == "" {
			c.Name = name
		}
		if len(c.Groups) == 0 {
			c.Groups = r.cases.GroupsOf(name)
		}
		g.Go(func() error {
			worker := <-free
			defer func() { free <- worker }()
			if gctx.Err() != nil {
				return nil
			}

			started[i] = true
			if r.reporter != nil {
				r.reporter.CaseStarted(c.Name, worker)
			}
			outcome := r.harness.Run(gctx, worker, c)
			outcomes[i] = outcome
			if r.reporter != nil {
				r.reporter.CaseFinished(outcome)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := r.harness.Close(); err != nil {
		log.Warn("Closing sessions failed", "error", err)
	}

	for i, name := range names {
		if !started[i] {
			outcomes[i] = entity.Outcome{
				Case:   name,
				Groups: r.cases.GroupsOf(name),
				Status: entity.StatusSkipped,
				Err:    fmt.Errorf("not started: %w", context.Cause(ctx)),
			}
		}
		switch outcomes[i].Status {
		case entity.StatusPassed:
			report.Passed++
		case entity.StatusFailed:
			report.Failed++
		default:
			report.Skipped++
		}
	}
	report.Outcomes = outcomes

	if r.reporter != nil {
		r.reporter.Summary(outcomes)
	}
	log.Info("Run finished",
		"passed", report.Passed,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}
	return report, nil
}
