// Package repo provides the analytics metric-history repository.
package repo

import (
	"context"

	"brandpulse/internal/core/timeseries"
	"brandpulse/internal/modkit/repokit"
	"brandpulse/internal/platform/store"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage reads the persisted metric history for forecasting
type Storage interface {
	MetricHistory(ctx context.Context, campaignID, metricType string) ([]timeseries.Point, error)
}

func (s *pg) MetricHistory(ctx context.Context, campaignID, metricType string) ([]timeseries.Point, error) {
	return store.Many(ctx, s.q, func(r store.Row) (timeseries.Point, error) {
		var p timeseries.Point
		err := r.Scan(&p.At, &p.Value)
		return p, err
	}, `
		SELECT recorded_at, value
		FROM campaign_metrics
		WHERE campaign_id = $1 AND metric_type = $2
		ORDER BY recorded_at ASC`, campaignID, metricType)
}
