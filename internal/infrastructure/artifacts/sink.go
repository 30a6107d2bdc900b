// Package artifacts stores failure artifacts on the local filesystem, one
// directory per run, case and attempt.
package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/oklog/ulid/v2"
)

var _ output.ArtifactSink = (*FileSink)(nil)

const (
	DefaultMaxWidth = 1280
	jpegQuality     = 80

	screenshotBase = "screenshot"
	consoleFile    = "console.log"
	markupFile     = "page.html"
	errorsFile     = "capture-errors.txt"
)

type FileSink struct {
	dir      string
	maxWidth int
	logger   output.LoggerPort
	// fallbackRun is used when the context carries no run id.
	fallbackRun string
}

func NewFileSink(dir string, maxWidth int, logger output.LoggerPort) *FileSink {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	return &FileSink{
		dir:         dir,
		maxWidth:    maxWidth,
		logger:      logger,
		fallbackRun: ulid.Make().String(),
	}
}

// Dir is the directory Store writes to for caseName's attempt under the run in ctx.
func (s *FileSink) Dir(ctx context.Context, caseName string, attempt int) string {
	run := output.RunID(ctx)
	if run == "" {
		run = s.fallbackRun
	}
	return filepath.Join(s.dir, run, safeName(caseName), fmt.Sprintf("attempt-%d", attempt))
}

// Store writes whatever parts of a are present. Each file is written
// independently; the returned error joins every write that failed.
func (s *FileSink) Store(ctx context.Context, caseName string, attempt int, a *entity.Artifacts) (string, error) {
	if a == nil || (a.Empty() && len(a.Errors) == 0) {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := s.Dir(ctx, caseName, attempt)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	var errs []error
	if a.Screenshot != nil && len(a.Screenshot.Data) > 0 {
		if err := s.writeScreenshot(dir, a.Screenshot); err != nil {
			errs = append(errs, err)
		}
	}
	if a.ConsoleLog != "" {
		errs = append(errs, writeFile(dir, consoleFile, a.ConsoleLog))
	}
	if a.Markup != "" {
		errs = append(errs, writeFile(dir, markupFile, a.Markup))
	}
	if len(a.Errors) > 0 {
		var sb strings.Builder
		for _, err := range a.Errors {
			sb.WriteString(err.Error())
			sb.WriteByte('\n')
		}
		errs = append(errs, writeFile(dir, errorsFile, sb.String()))
	}

	if err := errors.Join(errs...); err != nil {
		return dir, err
	}
	return dir, nil
}

// writeScreenshot downscales wide captures. Bytes that do not decode are
// stored untouched.
func (s *FileSink) writeScreenshot(dir string, shot *entity.Screenshot) error {
	ext := extension(shot.Format)
	path := filepath.Join(dir, screenshotBase+ext)

	img, err := imaging.Decode(bytes.NewReader(shot.Data))
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Screenshot decode failed, storing raw bytes", "error", err)
		}
		return writeFile(dir, screenshotBase+ext, string(shot.Data))
	}
	if img.Bounds().Dx() > s.maxWidth {
		img = imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("save screenshot: %w", err)
	}
	return nil
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case "png":
		return ".png"
	default:
		return ".jpg"
	}
}

func writeFile(dir, name, content string) error {
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// safeName turns a case name into a single path element.
func safeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
