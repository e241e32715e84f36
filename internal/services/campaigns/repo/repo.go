// Package repo provides the campaigns repository implementation.
package repo

import (
	"context"
	"fmt"
	"strings"

	"brandpulse/internal/modkit/repokit"
	"brandpulse/internal/platform/store"
	"brandpulse/internal/services/campaigns/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the campaigns repository
type Storage interface {
	List(ctx context.Context, f domain.ListFilter) ([]domain.Campaign, error)
	Get(ctx context.Context, id string) (domain.Campaign, error)
	ByTenant(ctx context.Context, tenantID string, f domain.ListFilter) ([]domain.Campaign, error)
	AllIDs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	TenantCount(ctx context.Context) (int64, error)

	SessionAgg(ctx context.Context, campaignIDs []string, deepSeconds int) (domain.SessionAgg, error)
	SumImpressions(ctx context.Context, campaignIDs []string) (int64, error)
	CountConsentedContacts(ctx context.Context, campaignIDs []string) (int64, error)
	AttentionBuckets(ctx context.Context, campaignID string) (domain.AttentionBuckets, int64, error)
	StartedJourneySteps(ctx context.Context, campaignID string) ([]JourneySteps, error)
	DailySessions(ctx context.Context, campaignID string) ([]DailySessionRow, error)
	DailyContacts(ctx context.Context, campaignID string) ([]DailyContactRow, error)
}

// JourneySteps is one started session's step progress
type JourneySteps struct {
	StepsCompleted int
	TotalSteps     int
}

// DailySessionRow is one day of session counts
type DailySessionRow struct {
	Date         string
	Interactions int64
	Completions  int64
}

// DailyContactRow is one day of consented contact counts
type DailyContactRow struct {
	Date     string
	Contacts int64
}

const campaignCols = `
	c.id::text, c.tenant_id::text, c.name, c.status, c.start_date, c.end_date,
	c.total_products_dispensed, c.total_user_interactions, c.total_free_samples_redeemed,
	c.total_product_clicks, c.unique_customers, c.total_ad_plays,
	c.average_engagement_time, c.machine_uptime_percent, c.total_hours, c.machine_offline_minutes,
	t.id::text, t.name, t.slug,
	COALESCE(t.primary_color, ''), COALESCE(t.secondary_color, ''), COALESCE(t.accent_color, ''),
	COALESCE(t.logo_url, '')`

func scanCampaign(r store.Row) (domain.Campaign, error) {
	var c domain.Campaign
	var t domain.Tenant
	err := r.Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Status, &c.StartDate, &c.EndDate,
		&c.TotalProductsDispensed, &c.TotalUserInteractions, &c.TotalFreeSamplesRedeemed,
		&c.TotalProductClicks, &c.UniqueCustomers, &c.TotalAdPlays,
		&c.AverageEngagementTime, &c.MachineUptimePercent, &c.TotalHours, &c.MachineOfflineMinutes,
		&t.ID, &t.Name, &t.Slug,
		&t.PrimaryColor, &t.SecondaryColor, &t.AccentColor,
		&t.LogoURL,
	)
	if err != nil {
		return domain.Campaign{}, err
	}
	c.Tenant = &t
	return c, nil
}

func (s *pg) List(ctx context.Context, f domain.ListFilter) ([]domain.Campaign, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`
		SELECT ` + campaignCols + `
		FROM campaigns c
		JOIN tenants t ON t.id = c.tenant_id
		WHERE 1=1
	`)
	if len(f.TenantIDs) > 0 {
		sb.WriteString("  AND c.tenant_id = ANY(" + arg(f.TenantIDs) + "::uuid[])\n")
	}
	if f.Start != nil {
		sb.WriteString("  AND c.start_date >= " + arg(*f.Start) + "\n")
	}
	if f.End != nil {
		sb.WriteString("  AND c.start_date <= " + arg(*f.End) + "\n")
	}
	sb.WriteString("ORDER BY c.start_date DESC")

	return store.Many(ctx, s.q, scanCampaign, sb.String(), args...)
}

func (s *pg) Get(ctx context.Context, id string) (domain.Campaign, error) {
	return store.One(ctx, s.q, scanCampaign, `
		SELECT `+campaignCols+`
		FROM campaigns c
		JOIN tenants t ON t.id = c.tenant_id
		WHERE c.id = $1`, id)
}

func (s *pg) ByTenant(ctx context.Context, tenantID string, f domain.ListFilter) ([]domain.Campaign, error) {
	f.TenantIDs = []string{tenantID}
	return s.List(ctx, f)
}

// AllIDs implements Storage
func (s *pg) AllIDs(ctx context.Context) ([]string, error) {
	return store.Many(ctx, s.q, func(r store.Row) (string, error) {
		var id string
		err := r.Scan(&id)
		return id, err
	}, `SELECT id::text FROM campaigns`)
}

// Delete removes the campaign and its metric history rows
func (s *pg) Delete(ctx context.Context, id string) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM campaign_metrics WHERE campaign_id = $1`, id); err != nil {
		return err
	}
	_, err := s.q.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	return err
}

func (s *pg) TenantCount(ctx context.Context) (int64, error) {
	return store.Scalar[int64](ctx, s.q, `SELECT COUNT(*) FROM tenants`)
}

// SessionAgg implements Storage. deepSeconds is the dwell threshold for
// the deep engagement count.
func (s *pg) SessionAgg(ctx context.Context, campaignIDs []string, deepSeconds int) (domain.SessionAgg, error) {
	if len(campaignIDs) == 0 {
		return domain.SessionAgg{}, nil
	}
	var a domain.SessionAgg
	err := s.q.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE journey_started),
			COUNT(*) FILTER (WHERE journey_completed),
			COUNT(duration_seconds),
			COALESCE(AVG(duration_seconds), 0),
			COUNT(*) FILTER (WHERE duration_seconds >= $2)
		FROM campaign_sessions
		WHERE campaign_id = ANY($1::uuid[])`,
		campaignIDs, deepSeconds,
	).Scan(&a.Sessions, &a.JourneyStarted, &a.JourneyCompleted, &a.DurationCount, &a.AvgDuration, &a.DeepCount)
	return a, err
}

func (s *pg) SumImpressions(ctx context.Context, campaignIDs []string) (int64, error) {
	if len(campaignIDs) == 0 {
		return 0, nil
	}
	return store.Scalar[int64](ctx, s.q, `
		SELECT COALESCE(SUM(impression_count), 0)
		FROM campaign_impressions
		WHERE campaign_id = ANY($1::uuid[])`, campaignIDs)
}

func (s *pg) CountConsentedContacts(ctx context.Context, campaignIDs []string) (int64, error) {
	if len(campaignIDs) == 0 {
		return 0, nil
	}
	return store.Scalar[int64](ctx, s.q, `
		SELECT COUNT(*)
		FROM campaign_contacts
		WHERE campaign_id = ANY($1::uuid[]) AND consent_given`, campaignIDs)
}

// AttentionBuckets implements Storage. Null durations count as zero dwell.
func (s *pg) AttentionBuckets(ctx context.Context, campaignID string) (domain.AttentionBuckets, int64, error) {
	var b domain.AttentionBuckets
	var total int64
	err := s.q.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE COALESCE(duration_seconds, 0) < 15),
			COUNT(*) FILTER (WHERE COALESCE(duration_seconds, 0) >= 15 AND COALESCE(duration_seconds, 0) < 30),
			COUNT(*) FILTER (WHERE COALESCE(duration_seconds, 0) >= 30 AND COALESCE(duration_seconds, 0) < 60),
			COUNT(*) FILTER (WHERE COALESCE(duration_seconds, 0) >= 60),
			COUNT(*)
		FROM campaign_sessions
		WHERE campaign_id = $1`, campaignID,
	).Scan(&b.Under15, &b.To30, &b.To60, &b.Over60, &total)
	return b, total, err
}

func (s *pg) StartedJourneySteps(ctx context.Context, campaignID string) ([]JourneySteps, error) {
	return store.Many(ctx, s.q, func(r store.Row) (JourneySteps, error) {
		var j JourneySteps
		err := r.Scan(&j.StepsCompleted, &j.TotalSteps)
		return j, err
	}, `
		SELECT COALESCE(steps_completed, 0), COALESCE(total_steps, 0)
		FROM campaign_sessions
		WHERE campaign_id = $1 AND journey_started`, campaignID)
}

func (s *pg) DailySessions(ctx context.Context, campaignID string) ([]DailySessionRow, error) {
	return store.Many(ctx, s.q, func(r store.Row) (DailySessionRow, error) {
		var d DailySessionRow
		err := r.Scan(&d.Date, &d.Interactions, &d.Completions)
		return d, err
	}, `
		SELECT
			to_char(session_start AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
			COUNT(*),
			COUNT(*) FILTER (WHERE journey_completed)
		FROM campaign_sessions
		WHERE campaign_id = $1
		GROUP BY day
		ORDER BY day`, campaignID)
}

func (s *pg) DailyContacts(ctx context.Context, campaignID string) ([]DailyContactRow, error) {
	return store.Many(ctx, s.q, func(r store.Row) (DailyContactRow, error) {
		var d DailyContactRow
		err := r.Scan(&d.Date, &d.Contacts)
		return d, err
	}, `
		SELECT
			to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
			COUNT(*)
		FROM campaign_contacts
		WHERE campaign_id = $1 AND consent_given
		GROUP BY day
		ORDER BY day`, campaignID)
}
