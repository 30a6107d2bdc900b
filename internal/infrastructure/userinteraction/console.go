package userinteraction

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ReporterPort = (*ConsoleReporter)(nil)

const maxErrorLen = 300

// ConsoleReporter prints case progress and the run summary. Workers report
// concurrently, so every write holds the mutex.
type ConsoleReporter struct {
	mu sync.Mutex
	w  io.Writer

	header  *color.Color
	started *color.Color
	passed  *color.Color
	failed  *color.Color
	retry   *color.Color
	dim     *color.Color
}

func NewConsoleReporter(w io.Writer, noColor bool) *ConsoleReporter {
	if w == nil {
		w = color.Output
	}
	r := &ConsoleReporter{
		w:       w,
		header:  color.New(color.FgCyan, color.Bold),
		started: color.New(color.FgCyan),
		passed:  color.New(color.FgGreen),
		failed:  color.New(color.FgRed, color.Bold),
		retry:   color.New(color.FgYellow),
		dim:     color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{r.header, r.started, r.passed, r.failed, r.retry, r.dim} {
			c.DisableColor()
		}
	}
	return r
}

func (r *ConsoleReporter) CaseStarted(name string, worker int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started.Fprintf(r.w, "▶ %s", name)
	r.dim.Fprintf(r.w, " [worker %d]\n", worker)
}

func (r *ConsoleReporter) CaseRetrying(name string, attempt int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retry.Fprintf(r.w, "↻ %s attempt %d failed, retrying\n", name, attempt)
	r.dim.Fprintf(r.w, "   %s\n", truncate(errText(err), maxErrorLen))
}

func (r *ConsoleReporter) CaseFinished(o entity.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch o.Status {
	case entity.StatusPassed:
		r.passed.Fprintf(r.w, "✓ %s", o.Case)
		r.dim.Fprintf(r.w, " (%s%s)\n", round(o.Duration), attemptsNote(o.Attempts))
	case entity.StatusSkipped:
		r.dim.Fprintf(r.w, "- %s skipped: %s\n", o.Case, truncate(errText(o.Err), maxErrorLen))
	default:
		r.failed.Fprintf(r.w, "✗ %s", o.Case)
		r.dim.Fprintf(r.w, " (%s%s)\n", round(o.Duration), attemptsNote(o.Attempts))
		r.failed.Fprintf(r.w, "   %s\n", truncate(errText(o.Err), maxErrorLen))
		if o.ArtifactPath != "" {
			r.dim.Fprintf(r.w, "   artifacts: %s\n", o.ArtifactPath)
		}
	}
}

func (r *ConsoleReporter) Summary(outcomes []entity.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var passed, failed, skipped int
	var failures []entity.Outcome
	for _, o := range outcomes {
		switch o.Status {
		case entity.StatusPassed:
			passed++
		case entity.StatusFailed:
			failed++
			failures = append(failures, o)
		default:
			skipped++
		}
	}

	r.header.Fprintf(r.w, "\n━━━ Summary ━━━\n")
	r.passed.Fprintf(r.w, "passed:  %d\n", passed)
	if failed > 0 {
		r.failed.Fprintf(r.w, "failed:  %d\n", failed)
	} else {
		fmt.Fprintf(r.w, "failed:  %d\n", failed)
	}
	r.dim.Fprintf(r.w, "skipped: %d\n", skipped)

	if len(failures) == 0 {
		return
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].Case < failures[j].Case })
	r.header.Fprintf(r.w, "\nFailed cases\n")
	for _, o := range failures {
		r.failed.Fprintf(r.w, "✗ %s", o.Case)
		if len(o.Groups) > 0 {
			r.dim.Fprintf(r.w, " [%s]", strings.Join(o.Groups, ","))
		}
		fmt.Fprintln(r.w)
	}
}

func attemptsNote(attempts int) string {
	if attempts <= 1 {
		return ""
	}
	return fmt.Sprintf(", %d attempts", attempts)
}

func round(d time.Duration) time.Duration {
	return d.Round(10 * time.Millisecond)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
