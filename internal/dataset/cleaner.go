package dataset

import (
	"context"
	"log/slog"

	"marketlens/internal/errors"
)

// Cleaner prepares a parsed table for aggregation.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner. A nil logger falls back to slog.Default.
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger.With(slog.String("component", "cleaner"))}
}

// Clean deduplicates the table by ASIN, keeping the first occurrence,
// then drops records whose revenue is missing. Input order is
// preserved, so running Clean on its own output is a no-op. If nothing
// survives cleaning, an empty-dataset error is returned.
func (c *Cleaner) Clean(ctx context.Context, table Table) (Table, error) {
	seen := make(map[string]struct{}, len(table))
	cleaned := make(Table, 0, len(table))

	var duplicates, missingRevenue int
	for _, rec := range table {
		if _, dup := seen[rec.ASIN]; dup {
			duplicates++
			continue
		}
		seen[rec.ASIN] = struct{}{}

		if !rec.Revenue.Valid {
			missingRevenue++
			continue
		}
		cleaned = append(cleaned, rec)
	}

	c.logger.InfoContext(ctx, "cleaned listing table",
		slog.Int("input_rows", len(table)),
		slog.Int("duplicates_dropped", duplicates),
		slog.Int("missing_revenue_dropped", missingRevenue),
		slog.Int("output_rows", len(cleaned)))

	if len(cleaned) == 0 {
		return nil, errors.NewEmptyDatasetError("no rows remain after cleaning")
	}
	return cleaned, nil
}
