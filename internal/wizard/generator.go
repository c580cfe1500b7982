package wizard

import (
	"context"

	"github.com/jonathan/strategy-report/internal/types"
)

// Generator is the external generation service. Calls are one-shot; the
// wizard never retries on its own.
type Generator interface {
	Generate(ctx context.Context, analysisID string, step int, humanContext string, answers map[string]string) (types.Framework, error)
	Approve(ctx context.Context, analysisID string, step int) error
	Refine(ctx context.Context, analysisID string, step int, additionalContext string) (types.Framework, error)
}
