package harness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/domain/entity"
)

const defaultCaptureTimeout = 15 * time.Second

type captureStep struct {
	name string
	run  func(ctx context.Context, a *entity.Artifacts) error
}

// Capture collects the screenshot, console log and page markup. Each step is
// guarded on its own: an error or panic is recorded in Artifacts.Errors and
// the remaining steps still run.
func Capture(ctx context.Context, b output.BrowserPort, sanitize func(string) string) *entity.Artifacts {
	a := &entity.Artifacts{}
	steps := []captureStep{
		{"screenshot", func(ctx context.Context, a *entity.Artifacts) error {
			shot, err := b.Screenshot(ctx)
			if err != nil {
				return err
			}
			a.Screenshot = shot
			return nil
		}},
		{"console", func(ctx context.Context, a *entity.Artifacts) error {
			entries, err := b.ConsoleEntries(ctx)
			if err != nil {
				return err
			}
			a.ConsoleLog = FormatConsole(entries)
			return nil
		}},
		{"markup", func(ctx context.Context, a *entity.Artifacts) error {
			html, err := b.HTML(ctx)
			if err != nil {
				return err
			}
			if sanitize != nil {
				html = sanitize(html)
			}
			a.Markup = html
			return nil
		}},
	}

	for _, step := range steps {
		if err := runStep(ctx, step, a); err != nil {
			a.Errors = append(a.Errors, err)
		}
	}
	return a
}

func runStep(ctx context.Context, step captureStep, a *entity.Artifacts) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("capture %s: panic: %v", step.name, r)
		}
	}()
	if err := step.run(ctx, a); err != nil {
		return fmt.Errorf("capture %s: %w", step.name, err)
	}
	return nil
}

// FormatConsole renders console entries one per line.
func FormatConsole(entries []entity.ConsoleEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		if !e.Time.IsZero() {
			sb.WriteString(e.Time.UTC().Format(time.RFC3339Nano))
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.ToUpper(e.Level))
		sb.WriteByte(' ')
		sb.WriteString(e.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}
