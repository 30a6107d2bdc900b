package entity

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

type Artifacts struct {
	Screenshot *Screenshot
	ConsoleLog string
	Markup     string
	// Errors records capture steps that failed; a failed step never hides the others.
	Errors []error
}

func (a *Artifacts) Empty() bool {
	return a == nil || (a.Screenshot == nil && a.ConsoleLog == "" && a.Markup == "")
}

func (a *Artifacts) Err() error {
	if a == nil {
		return nil
	}
	return errors.Join(a.Errors...)
}

type Outcome struct {
	Case      string
	Groups    []string
	Worker    int
	Status    Status
	Attempts  int
	Err       error
	Artifacts *Artifacts
	// ArtifactPath is where the sink stored Artifacts, if it did.
	ArtifactPath string
	Duration     time.Duration
}

func (o Outcome) Passed() bool {
	return o.Status == StatusPassed
}
