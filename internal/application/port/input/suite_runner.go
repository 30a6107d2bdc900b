package input

import (
	"context"

	"signup-e2e/internal/domain/entity"
)

type RunFilter struct {
	Groups []string
	Names  []string
}

type RunReport struct {
	RunID    string
	Outcomes []entity.Outcome
	Passed   int
	Failed   int
	Skipped  int
}

func (r *RunReport) OK() bool {
	return r.Failed == 0
}

type SuiteRunner interface {
	Run(ctx context.Context, filter RunFilter) (*RunReport, error)
}
