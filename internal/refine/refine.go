// Package refine turns raw chat text into clean work-log lines. The LLM
// refiner is optional; a deterministic local cleanup always exists so a
// refinement outage can never block logging.
package refine

import (
	"context"
)

// Refiner rewrites raw text into one or more log-ready lines.
type Refiner interface {
	Refine(ctx context.Context, text string) ([]string, error)
}
