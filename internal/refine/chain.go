package refine

import (
	"context"
	"fmt"
	"log/slog"
)

// Chain tries the primary refiner and falls back to the secondary when the
// primary fails or is absent. Logging a refinement failure is the only
// thing that happens to it; the entry still gets written.
type Chain struct {
	Primary  Refiner
	Fallback Refiner
	Logger   *slog.Logger
}

func (c Chain) Refine(ctx context.Context, text string) ([]string, error) {
	if c.Fallback == nil {
		return nil, fmt.Errorf("fallback refiner is required")
	}
	if c.Primary != nil {
		lines, err := c.Primary.Refine(ctx, text)
		if err == nil {
			return lines, nil
		}
		if c.Logger != nil {
			c.Logger.Warn("refine_fallback", "error", err.Error())
		}
	}
	return c.Fallback.Refine(ctx, text)
}
