package output

import "signup-e2e/internal/domain/entity"

type ReporterPort interface {
	CaseStarted(name string, worker int)
	CaseRetrying(name string, attempt int, err error)
	CaseFinished(outcome entity.Outcome)
	Summary(outcomes []entity.Outcome)
}
