package domain

import (
	"context"

	campdomain "brandpulse/internal/services/campaigns/domain"
)

// ManagerPort manages scheduled export definitions
type ManagerPort interface {
	List(ctx context.Context) ([]ScheduledExport, error)
	Get(ctx context.Context, id string) (ScheduledExport, error)
	Create(ctx context.Context, in CreateInput) (ScheduledExport, error)
	Update(ctx context.Context, id string, in UpdateInput) (ScheduledExport, error)
	Delete(ctx context.Context, id string) error

	// Trigger runs the export immediately, outside its schedule
	Trigger(ctx context.Context, id string) error
	History(ctx context.Context, id string) ([]HistoryEntry, error)
	ValidateCron(expr string) CronCheck
}

// RunnerPort drives the cron scheduler in the jobs binary
type RunnerPort interface {
	Run(ctx context.Context) error
}

// CampaignReader is the slice of the campaigns service exports reads
// from. The campaigns query port satisfies it as-is.
type CampaignReader interface {
	Get(ctx context.Context, id string) (campdomain.Campaign, error)
	List(ctx context.Context, tenantID, startRaw, endRaw string) ([]campdomain.Campaign, error)
	Metrics(ctx context.Context, id string) (campdomain.Metrics, error)
	TenantAggregate(ctx context.Context, tenantID, startRaw, endRaw string) (campdomain.TenantAggregate, error)
}
