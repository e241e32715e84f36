package domain

import "context"

// ManagerPort is the tenant-facing webhook management surface
type ManagerPort interface {
	List(ctx context.Context, tenantID string) ([]Webhook, error)
	Create(ctx context.Context, tenantID string, in CreateInput) (Webhook, error)
	Update(ctx context.Context, webhookID string, in UpdateInput) (Webhook, error)
	Delete(ctx context.Context, webhookID string) error
	Deliveries(ctx context.Context, webhookID string, f DeliveryFilter) ([]Delivery, error)
	Stats(ctx context.Context, webhookID string) (Stats, error)
	RetryFailed(ctx context.Context, webhookID string) (int64, error)
}

// TriggerPort queues deliveries for other modules' events
type TriggerPort interface {
	Trigger(ctx context.Context, tenantID, event string, data any) error
}

// RunnerPort is the delivery pump run by the jobs binary
type RunnerPort interface {
	Run(ctx context.Context) error
}
