package stats

import (
	"context"

	"github.com/verte-zerg/pagetype/internal/model"
)

// Loader reads the full session history in insertion order.
type Loader interface {
	LoadAll(ctx context.Context) ([]model.StatsRecord, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Records []model.StatsRecord
	Summary Summary
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st Loader, cfg model.StatsConfig) (Report, error) {
	records, err := st.LoadAll(ctx)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(records) > cfg.Last {
		records = records[len(records)-cfg.Last:]
	}
	return Report{
		Records: records,
		Summary: Aggregate(records, cfg.Window),
	}, nil
}
