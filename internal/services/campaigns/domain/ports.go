package domain

import "context"

// QueryPort reads campaigns and computes KPI snapshots.
// Date bounds arrive as raw ISO-8601 query strings; the service owns
// parsing and validation so every caller rejects bad ranges the same way.
type QueryPort interface {
	List(ctx context.Context, tenantID, startRaw, endRaw string) ([]Campaign, error)
	Get(ctx context.Context, id string) (Campaign, error)
	Delete(ctx context.Context, id string) error

	Metrics(ctx context.Context, id string) (Metrics, error)
	Funnel(ctx context.Context, id string) (Funnel, error)
	AttentionDistribution(ctx context.Context, id string) (AttentionDistribution, error)
	CompletionFunnel(ctx context.Context, id string) (CompletionFunnel, error)
	Timeseries(ctx context.Context, id string) (Timeseries, error)

	AdminAggregate(ctx context.Context) (AdminAggregate, error)
	TenantAggregate(ctx context.Context, tenantID, startRaw, endRaw string) (TenantAggregate, error)
	Compare(ctx context.Context, tenantID string, p1Start, p1End, p2Start, p2End string) (Comparison, error)
}
