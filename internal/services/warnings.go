package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/epeers/dashboard/internal/models"
)

type warningKey struct{}

// WarningCollector gathers the non-fatal issues of one request while it moves
// through the pipeline.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []models.Warning
	seen     map[models.Warning]bool
}

// NewWarningContext attaches a fresh collector to ctx and returns both
func NewWarningContext(ctx context.Context) (context.Context, *WarningCollector) {
	wc := &WarningCollector{seen: make(map[models.Warning]bool)}
	return context.WithValue(ctx, warningKey{}, wc), wc
}

// AddWarning records w on the collector carried by ctx. Identical warnings
// are kept once. Without a collector the warning is dropped.
func AddWarning(ctx context.Context, w models.Warning) {
	wc, ok := ctx.Value(warningKey{}).(*WarningCollector)
	if !ok || wc == nil {
		return
	}
	wc.mu.Lock()
	defer wc.mu.Unlock()
	if wc.seen[w] {
		return
	}
	wc.seen[w] = true
	wc.warnings = append(wc.warnings, w)
}

// Warnf is AddWarning with a formatted message
func Warnf(ctx context.Context, code models.WarningCode, format string, args ...any) {
	AddWarning(ctx, models.Warning{Code: code, Message: fmt.Sprintf(format, args...)})
}

// GetWarnings returns a copy of the collected warnings, in insertion order
func (wc *WarningCollector) GetWarnings() []models.Warning {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	if len(wc.warnings) == 0 {
		return nil
	}
	out := make([]models.Warning, len(wc.warnings))
	copy(out, wc.warnings)
	return out
}
