// Package repo provides the webhooks repository implementation.
package repo

import (
	"context"
	"strings"
	"time"

	"brandpulse/internal/modkit/repokit"
	"brandpulse/internal/platform/store"
	"brandpulse/internal/services/webhooks/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// DueDelivery is a queued delivery joined with its endpoint
type DueDelivery struct {
	domain.Delivery
	URL    string
	Secret string
}

// Storage defines the webhooks repository
type Storage interface {
	ByTenant(ctx context.Context, tenantID string) ([]domain.Webhook, error)
	Get(ctx context.Context, id string) (domain.Webhook, error)
	Insert(ctx context.Context, w domain.Webhook) error
	Update(ctx context.Context, w domain.Webhook) error
	Delete(ctx context.Context, id string) error
	ActiveSubscribed(ctx context.Context, tenantID, event string) ([]domain.Webhook, error)

	InsertDelivery(ctx context.Context, d domain.Delivery) error
	Deliveries(ctx context.Context, webhookID string, f domain.DeliveryFilter) ([]domain.Delivery, error)
	Due(ctx context.Context, now time.Time, limit int) ([]DueDelivery, error)
	MarkSuccess(ctx context.Context, id string, attempts, responseStatus int, body string, at time.Time) error
	MarkRetrying(ctx context.Context, id string, attempts int, errMsg string, nextRetryAt time.Time) error
	MarkFailed(ctx context.Context, id string, attempts int, errMsg string) error
	ResetFailed(ctx context.Context, webhookID string) (int64, error)
	StatusCounts(ctx context.Context, webhookID string) (domain.Stats, error)
}

const webhookCols = `
	id::text, tenant_id::text, url, secret, events,
	COALESCE(description, ''), is_active, created_at, updated_at`

func scanWebhook(r store.Row) (domain.Webhook, error) {
	var w domain.Webhook
	err := r.Scan(
		&w.ID, &w.TenantID, &w.URL, &w.Secret, &w.Events,
		&w.Description, &w.IsActive, &w.CreatedAt, &w.UpdatedAt,
	)
	return w, err
}

func (s *pg) ByTenant(ctx context.Context, tenantID string) ([]domain.Webhook, error) {
	return store.Many(ctx, s.q, scanWebhook, `
		SELECT `+webhookCols+`
		FROM webhooks
		WHERE tenant_id = $1
		ORDER BY created_at DESC`, tenantID)
}

func (s *pg) Get(ctx context.Context, id string) (domain.Webhook, error) {
	return store.One(ctx, s.q, scanWebhook, `
		SELECT `+webhookCols+`
		FROM webhooks
		WHERE id = $1`, id)
}

func (s *pg) Insert(ctx context.Context, w domain.Webhook) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO webhooks (id, tenant_id, url, secret, events, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)`,
		w.ID, w.TenantID, w.URL, w.Secret, w.Events, w.Description, w.IsActive, w.CreatedAt, w.UpdatedAt,
	)
	return err
}

func (s *pg) Update(ctx context.Context, w domain.Webhook) error {
	_, err := s.q.Exec(ctx, `
		UPDATE webhooks
		SET url = $2, events = $3, description = NULLIF($4, ''), is_active = $5, updated_at = $6
		WHERE id = $1`,
		w.ID, w.URL, w.Events, w.Description, w.IsActive, w.UpdatedAt,
	)
	return err
}

// Delete removes the webhook and its delivery history rows
func (s *pg) Delete(ctx context.Context, id string) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM webhook_deliveries WHERE webhook_id = $1`, id); err != nil {
		return err
	}
	_, err := s.q.Exec(ctx, `DELETE FROM webhooks WHERE id = $1`, id)
	return err
}

func (s *pg) ActiveSubscribed(ctx context.Context, tenantID, event string) ([]domain.Webhook, error) {
	return store.Many(ctx, s.q, scanWebhook, `
		SELECT `+webhookCols+`
		FROM webhooks
		WHERE tenant_id = $1
		  AND is_active
		  AND ($2 = ANY(events) OR '*' = ANY(events))`, tenantID, event)
}

const deliveryCols = `
	id::text, webhook_id::text, event, payload, status, attempts, max_attempts,
	next_retry_at, response_status, COALESCE(response_body, ''), COALESCE(error, ''),
	delivered_at, created_at`

func scanDelivery(r store.Row) (domain.Delivery, error) {
	var d domain.Delivery
	err := r.Scan(
		&d.ID, &d.WebhookID, &d.Event, &d.Payload, &d.Status, &d.Attempts, &d.MaxAttempts,
		&d.NextRetryAt, &d.ResponseStatus, &d.ResponseBody, &d.Error,
		&d.DeliveredAt, &d.CreatedAt,
	)
	return d, err
}

func (s *pg) InsertDelivery(ctx context.Context, d domain.Delivery) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO webhook_deliveries (id, webhook_id, event, payload, status, attempts, max_attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.WebhookID, d.Event, d.Payload, d.Status, d.Attempts, d.MaxAttempts, d.CreatedAt,
	)
	return err
}

func (s *pg) Deliveries(ctx context.Context, webhookID string, f domain.DeliveryFilter) ([]domain.Delivery, error) {
	var sb strings.Builder
	args := []any{webhookID}

	sb.WriteString(`
		SELECT ` + deliveryCols + `
		FROM webhook_deliveries
		WHERE webhook_id = $1
	`)
	if f.Status != "" {
		args = append(args, f.Status)
		sb.WriteString("  AND status = $2\n")
	}
	sb.WriteString("ORDER BY created_at DESC\n")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		if f.Status != "" {
			sb.WriteString("LIMIT $3")
		} else {
			sb.WriteString("LIMIT $2")
		}
	}
	return store.Many(ctx, s.q, scanDelivery, sb.String(), args...)
}

// Due leases the pending and retry-ready deliveries for active endpoints
func (s *pg) Due(ctx context.Context, now time.Time, limit int) ([]DueDelivery, error) {
	return store.Many(ctx, s.q, func(r store.Row) (DueDelivery, error) {
		var d DueDelivery
		err := r.Scan(
			&d.ID, &d.WebhookID, &d.Event, &d.Payload, &d.Status, &d.Attempts, &d.MaxAttempts,
			&d.NextRetryAt, &d.ResponseStatus, &d.ResponseBody, &d.Error,
			&d.DeliveredAt, &d.CreatedAt,
			&d.URL, &d.Secret,
		)
		return d, err
	}, `
		SELECT
			d.id::text, d.webhook_id::text, d.event, d.payload, d.status, d.attempts, d.max_attempts,
			d.next_retry_at, d.response_status, COALESCE(d.response_body, ''), COALESCE(d.error, ''),
			d.delivered_at, d.created_at,
			w.url, w.secret
		FROM webhook_deliveries d
		JOIN webhooks w ON w.id = d.webhook_id
		WHERE w.is_active
		  AND d.status IN ($1, $2)
		  AND (d.next_retry_at IS NULL OR d.next_retry_at <= $3)
		ORDER BY d.created_at
		LIMIT $4`, domain.StatusPending, domain.StatusRetrying, now, limit)
}

func (s *pg) MarkSuccess(ctx context.Context, id string, attempts, responseStatus int, body string, at time.Time) error {
	_, err := s.q.Exec(ctx, `
		UPDATE webhook_deliveries
		SET status = $2, attempts = $3, response_status = $4, response_body = $5,
		    delivered_at = $6, error = NULL, next_retry_at = NULL
		WHERE id = $1`,
		id, domain.StatusSuccess, attempts, responseStatus, body, at,
	)
	return err
}

func (s *pg) MarkRetrying(ctx context.Context, id string, attempts int, errMsg string, nextRetryAt time.Time) error {
	_, err := s.q.Exec(ctx, `
		UPDATE webhook_deliveries
		SET status = $2, attempts = $3, error = $4, next_retry_at = $5
		WHERE id = $1`,
		id, domain.StatusRetrying, attempts, errMsg, nextRetryAt,
	)
	return err
}

func (s *pg) MarkFailed(ctx context.Context, id string, attempts int, errMsg string) error {
	_, err := s.q.Exec(ctx, `
		UPDATE webhook_deliveries
		SET status = $2, attempts = $3, error = $4, next_retry_at = NULL
		WHERE id = $1`,
		id, domain.StatusFailed, attempts, errMsg,
	)
	return err
}

// ResetFailed requeues every failed delivery for the webhook
func (s *pg) ResetFailed(ctx context.Context, webhookID string) (int64, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE webhook_deliveries
		SET status = $2, attempts = 0, next_retry_at = NULL, error = NULL
		WHERE webhook_id = $1 AND status = $3`,
		webhookID, domain.StatusPending, domain.StatusFailed,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *pg) StatusCounts(ctx context.Context, webhookID string) (domain.Stats, error) {
	var st domain.Stats
	err := s.q.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COUNT(*) FILTER (WHERE status = $4),
			COUNT(*) FILTER (WHERE status = $5)
		FROM webhook_deliveries
		WHERE webhook_id = $1`,
		webhookID,
		domain.StatusSuccess, domain.StatusFailed, domain.StatusPending, domain.StatusRetrying,
	).Scan(&st.Total, &st.Success, &st.Failed, &st.Pending, &st.Retrying)
	return st, err
}
