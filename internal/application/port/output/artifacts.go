package output

import (
	"context"

	"signup-e2e/internal/domain/entity"
)

// ArtifactSink receives failure artifacts for one attempt of one test case.
type ArtifactSink interface {
	Store(ctx context.Context, caseName string, attempt int, artifacts *entity.Artifacts) (string, error)
}

type runIDKey struct{}

// WithRunID tags ctx with the id of the suite run it belongs to.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
