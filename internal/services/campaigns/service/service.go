// Package service implements the campaigns engagement aggregator
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"brandpulse/internal/core/daterange"
	"brandpulse/internal/core/rates"
	"brandpulse/internal/modkit/repokit"
	perr "brandpulse/internal/platform/errors"
	pnet "brandpulse/internal/platform/net"
	ptime "brandpulse/internal/platform/time"
	"brandpulse/internal/services/campaigns/domain"
	"brandpulse/internal/services/campaigns/repo"
)

// DeepEngagementSeconds is the dwell threshold separating deep sessions.
// The portal uses one threshold everywhere.
const DeepEngagementSeconds = 60

// Config for the campaigns service
type Config struct{}

// Service implements domain.QueryPort
type Service struct {
	tx     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
	cfg    Config
	now    func() time.Time
}

// New constructs a new campaigns service
func New(tx repokit.TxRunner, binder repokit.Binder[repo.Storage], cfg Config) *Service {
	return &Service{tx: tx, binder: binder, cfg: cfg, now: time.Now}
}

func (s *Service) store() repo.Storage { return s.binder.Bind(s.tx) }

// requireTenant re-checks tenant membership even when routing already scoped it
func requireTenant(ctx context.Context, tenantID string) error {
	if pnet.CanAccessTenant(ctx, tenantID) {
		return nil
	}
	return perr.Forbiddenf("access denied to this tenant")
}

// getScoped loads a campaign and verifies the caller may read its tenant
func (s *Service) getScoped(ctx context.Context, id string) (domain.Campaign, error) {
	c, err := s.store().Get(ctx, id)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Campaign{}, perr.NotFoundf("campaign not found")
		}
		return domain.Campaign{}, err
	}
	if !pnet.CanAccessTenant(ctx, c.TenantID) {
		return domain.Campaign{}, perr.Forbiddenf("access denied")
	}
	return c, nil
}

// List implements domain.QueryPort
func (s *Service) List(ctx context.Context, tenantID, startRaw, endRaw string) ([]domain.Campaign, error) {
	r, err := daterange.Parse(startRaw, endRaw, s.now())
	if err != nil {
		return nil, err
	}

	f := domain.ListFilter{}
	if r != nil {
		f.Start, f.End = ptime.Ptr(r.Start), ptime.Ptr(r.End)
	}

	switch {
	case tenantID != "":
		if err := requireTenant(ctx, tenantID); err != nil {
			return nil, err
		}
		f.TenantIDs = []string{tenantID}
	case pnet.SuperAdmin(ctx):
		// unrestricted listing across tenants
	default:
		ids := pnet.Tenants(ctx)
		if len(ids) == 0 {
			return []domain.Campaign{}, nil
		}
		f.TenantIDs = ids
	}

	out, err := s.store().List(ctx, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Campaign{}
	}
	return out, nil
}

// Get implements domain.QueryPort
func (s *Service) Get(ctx context.Context, id string) (domain.Campaign, error) {
	return s.getScoped(ctx, id)
}

// deletePermission is the grant required to remove a campaign
const deletePermission = "tenants.write"

// Delete removes a campaign and its metric history
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.getScoped(ctx, id); err != nil {
		return err
	}
	if !pnet.HasPermission(ctx, deletePermission) {
		return perr.Forbiddenf("tenants.write permission required")
	}
	return repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).Delete(ctx, id)
	})
}

// Metrics implements domain.QueryPort
func (s *Service) Metrics(ctx context.Context, id string) (domain.Metrics, error) {
	if _, err := s.getScoped(ctx, id); err != nil {
		return domain.Metrics{}, err
	}

	st := s.store()
	ids := []string{id}

	agg, err := st.SessionAgg(ctx, ids, DeepEngagementSeconds)
	if err != nil {
		return domain.Metrics{}, err
	}
	impressions, err := st.SumImpressions(ctx, ids)
	if err != nil {
		return domain.Metrics{}, err
	}
	contacts, err := st.CountConsentedContacts(ctx, ids)
	if err != nil {
		return domain.Metrics{}, err
	}

	return domain.Metrics{
		VerifiedEngagement: agg.Sessions,
		TotalImpressions:   impressions,
		EngagementRate:     rates.Round1(rates.Rate(float64(agg.Sessions), float64(impressions))),
		AttentionQuality: domain.AttentionQuality{
			AverageDurationSeconds: rates.RoundInt(agg.AvgDuration),
			DeepEngagementPct:      rates.Round1(rates.Rate(float64(agg.DeepCount), float64(agg.DurationCount))),
			SessionCount:           agg.DurationCount,
		},
		ExperienceCompletion: domain.ExperienceCompletion{
			CompletionRate:   rates.Round1(rates.Rate(float64(agg.JourneyCompleted), float64(agg.JourneyStarted))),
			JourneyStarted:   agg.JourneyStarted,
			JourneyCompleted: agg.JourneyCompleted,
		},
		QualifiedContacts: domain.QualifiedContacts{
			Total:       contacts,
			ContactRate: rates.Round1(rates.Rate(float64(contacts), float64(agg.Sessions))),
		},
	}, nil
}

// Funnel implements domain.QueryPort
func (s *Service) Funnel(ctx context.Context, id string) (domain.Funnel, error) {
	if _, err := s.getScoped(ctx, id); err != nil {
		return domain.Funnel{}, err
	}

	st := s.store()
	ids := []string{id}

	agg, err := st.SessionAgg(ctx, ids, DeepEngagementSeconds)
	if err != nil {
		return domain.Funnel{}, err
	}
	impressions, err := st.SumImpressions(ctx, ids)
	if err != nil {
		return domain.Funnel{}, err
	}
	contacts, err := st.CountConsentedContacts(ctx, ids)
	if err != nil {
		return domain.Funnel{}, err
	}

	return domain.Funnel{
		Impressions:                 impressions,
		Interactions:                agg.Sessions,
		Completions:                 agg.JourneyCompleted,
		Contacts:                    contacts,
		ImpressionToInteractionRate: rates.Round1(rates.Rate(float64(agg.Sessions), float64(impressions))),
		InteractionToCompletionRate: rates.Round1(rates.Rate(float64(agg.JourneyCompleted), float64(agg.Sessions))),
		CompletionToContactRate:     rates.Round1(rates.Rate(float64(contacts), float64(agg.JourneyCompleted))),
	}, nil
}

// AttentionDistribution implements domain.QueryPort
func (s *Service) AttentionDistribution(ctx context.Context, id string) (domain.AttentionDistribution, error) {
	if _, err := s.getScoped(ctx, id); err != nil {
		return domain.AttentionDistribution{}, err
	}
	buckets, total, err := s.store().AttentionBuckets(ctx, id)
	if err != nil {
		return domain.AttentionDistribution{}, err
	}
	return domain.AttentionDistribution{Buckets: buckets, Total: total}, nil
}

// CompletionFunnel implements domain.QueryPort
func (s *Service) CompletionFunnel(ctx context.Context, id string) (domain.CompletionFunnel, error) {
	if _, err := s.getScoped(ctx, id); err != nil {
		return domain.CompletionFunnel{}, err
	}
	sessions, err := s.store().StartedJourneySteps(ctx, id)
	if err != nil {
		return domain.CompletionFunnel{}, err
	}
	return BuildCompletionFunnel(sessions), nil
}

// BuildCompletionFunnel computes cumulative reached-step counts over started
// journeys. The funnel always spans at least steps 0 through 5.
func BuildCompletionFunnel(sessions []repo.JourneySteps) domain.CompletionFunnel {
	maxSteps := 5
	for _, sess := range sessions {
		if sess.TotalSteps > maxSteps {
			maxSteps = sess.TotalSteps
		}
	}

	counts := make([]int64, maxSteps+1)
	for _, sess := range sessions {
		completed := sess.StepsCompleted
		if completed > maxSteps {
			completed = maxSteps
		}
		for i := 0; i <= completed; i++ {
			counts[i]++
		}
	}

	steps := make([]domain.FunnelStep, maxSteps+1)
	for i := range steps {
		steps[i] = domain.FunnelStep{Step: i, Count: counts[i]}
	}
	return domain.CompletionFunnel{Steps: steps, TotalStarted: int64(len(sessions))}
}

// Timeseries implements domain.QueryPort
func (s *Service) Timeseries(ctx context.Context, id string) (domain.Timeseries, error) {
	if _, err := s.getScoped(ctx, id); err != nil {
		return domain.Timeseries{}, err
	}

	st := s.store()
	days, err := st.DailySessions(ctx, id)
	if err != nil {
		return domain.Timeseries{}, err
	}
	contacts, err := st.DailyContacts(ctx, id)
	if err != nil {
		return domain.Timeseries{}, err
	}

	byDay := make(map[string]*domain.DayPoint, len(days))
	for _, d := range days {
		byDay[d.Date] = &domain.DayPoint{
			Date:         d.Date,
			Interactions: d.Interactions,
			Completions:  d.Completions,
		}
	}
	for _, c := range contacts {
		p, ok := byDay[c.Date]
		if !ok {
			p = &domain.DayPoint{Date: c.Date}
			byDay[c.Date] = p
		}
		p.Contacts = c.Contacts
	}

	series := make([]domain.DayPoint, 0, len(byDay))
	for _, p := range byDay {
		series = append(series, *p)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })

	return domain.Timeseries{Series: series}, nil
}

// rollup computes the shared KPI shape over a campaign id set
func (s *Service) rollup(ctx context.Context, ids []string) (domain.KPIRollup, error) {
	st := s.store()

	agg, err := st.SessionAgg(ctx, ids, DeepEngagementSeconds)
	if err != nil {
		return domain.KPIRollup{}, err
	}
	impressions, err := st.SumImpressions(ctx, ids)
	if err != nil {
		return domain.KPIRollup{}, err
	}
	contacts, err := st.CountConsentedContacts(ctx, ids)
	if err != nil {
		return domain.KPIRollup{}, err
	}

	return domain.KPIRollup{
		VerifiedEngagement: agg.Sessions,
		JourneyCompleted:   agg.JourneyCompleted,
		TotalImpressions:   impressions,
		EngagementRate:     rates.Round1(rates.Rate(float64(agg.Sessions), float64(impressions))),
		CompletionRate:     rates.Round1(rates.Rate(float64(agg.JourneyCompleted), float64(agg.Sessions))),
		QualifiedContacts:  contacts,
		ContactRate:        rates.Round1(rates.Rate(float64(contacts), float64(agg.Sessions))),
		AvgDurationSeconds: rates.RoundInt(agg.AvgDuration),
		DeepEngagementPct:  rates.Round1(rates.Rate(float64(agg.DeepCount), float64(agg.Sessions))),
	}, nil
}

// AdminAggregate rolls up KPIs across every tenant. Super admin only.
func (s *Service) AdminAggregate(ctx context.Context) (domain.AdminAggregate, error) {
	if !pnet.SuperAdmin(ctx) {
		return domain.AdminAggregate{}, perr.Forbiddenf("super admin required")
	}

	st := s.store()
	ids, err := st.AllIDs(ctx)
	if err != nil {
		return domain.AdminAggregate{}, err
	}
	tenants, err := st.TenantCount(ctx)
	if err != nil {
		return domain.AdminAggregate{}, err
	}

	out := domain.AdminAggregate{
		CampaignCount: int64(len(ids)),
		TenantCount:   tenants,
	}
	if len(ids) == 0 {
		return out, nil
	}
	out.KPIRollup, err = s.rollup(ctx, ids)
	return out, err
}

// TenantAggregate rolls up KPIs and legacy counters for one tenant
func (s *Service) TenantAggregate(ctx context.Context, tenantID, startRaw, endRaw string) (domain.TenantAggregate, error) {
	if err := requireTenant(ctx, tenantID); err != nil {
		return domain.TenantAggregate{}, err
	}
	r, err := daterange.Parse(startRaw, endRaw, s.now())
	if err != nil {
		return domain.TenantAggregate{}, err
	}

	f := domain.ListFilter{}
	if r != nil {
		f.Start, f.End = ptime.Ptr(r.Start), ptime.Ptr(r.End)
	}
	campaigns, err := s.store().ByTenant(ctx, tenantID, f)
	if err != nil {
		return domain.TenantAggregate{}, err
	}

	out := domain.TenantAggregate{
		LegacyTotals:  sumLegacy(campaigns),
		AverageUptime: uptime(campaigns),
	}
	if startRaw != "" && endRaw != "" {
		out.DateRange = &domain.DateRange{StartDate: startRaw, EndDate: endRaw}
	}
	if len(campaigns) > 0 {
		var engagement float64
		for _, c := range campaigns {
			engagement += c.AverageEngagementTime
		}
		out.AverageEngagementTime = rates.RoundInt(engagement / float64(len(campaigns)))

		ids := make([]string, len(campaigns))
		for i, c := range campaigns {
			ids[i] = c.ID
		}
		out.KPIRollup, err = s.rollup(ctx, ids)
		if err != nil {
			return domain.TenantAggregate{}, err
		}
	}
	return out, nil
}

// Compare sums legacy counters over two campaign windows and reports changes
func (s *Service) Compare(ctx context.Context, tenantID, p1Start, p1End, p2Start, p2End string) (domain.Comparison, error) {
	if err := requireTenant(ctx, tenantID); err != nil {
		return domain.Comparison{}, err
	}
	if p1Start == "" || p1End == "" || p2Start == "" || p2End == "" {
		return domain.Comparison{}, perr.Newf(perr.ErrorCodeValidation,
			"all date parameters required: period1Start, period1End, period2Start, period2End")
	}
	r1, err := daterange.Parse(p1Start, p1End, s.now())
	if err != nil {
		return domain.Comparison{}, err
	}
	r2, err := daterange.Parse(p2Start, p2End, s.now())
	if err != nil {
		return domain.Comparison{}, err
	}

	st := s.store()
	c1, err := st.ByTenant(ctx, tenantID, domain.ListFilter{Start: ptime.Ptr(r1.Start), End: ptime.Ptr(r1.End)})
	if err != nil {
		return domain.Comparison{}, err
	}
	c2, err := st.ByTenant(ctx, tenantID, domain.ListFilter{Start: ptime.Ptr(r2.Start), End: ptime.Ptr(r2.End)})
	if err != nil {
		return domain.Comparison{}, err
	}

	m1, m2 := sumLegacy(c1), sumLegacy(c2)
	return domain.Comparison{
		Period1: domain.ComparisonPeriod{
			DateRange: domain.DateRange{StartDate: p1Start, EndDate: p1End},
			Metrics:   m1,
		},
		Period2: domain.ComparisonPeriod{
			DateRange: domain.DateRange{StartDate: p2Start, EndDate: p2End},
			Metrics:   m2,
		},
		Changes: domain.ComparisonChanges{
			TotalProductsDispensed:   Change(m1.TotalProductsDispensed, m2.TotalProductsDispensed),
			TotalUserInteractions:    Change(m1.TotalUserInteractions, m2.TotalUserInteractions),
			TotalFreeSamplesRedeemed: Change(m1.TotalFreeSamplesRedeemed, m2.TotalFreeSamplesRedeemed),
			TotalProductClicks:       Change(m1.TotalProductClicks, m2.TotalProductClicks),
			UniqueCustomers:          Change(m1.UniqueCustomers, m2.UniqueCustomers),
			TotalAdPlays:             Change(m1.TotalAdPlays, m2.TotalAdPlays),
		},
	}, nil
}

// Change is the percent change of current over previous.
// A zero previous value reports 100 when there is now activity, else 0.
func Change(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

func sumLegacy(campaigns []domain.Campaign) domain.LegacyTotals {
	var t domain.LegacyTotals
	for _, c := range campaigns {
		t.TotalProductsDispensed += c.TotalProductsDispensed
		t.TotalUserInteractions += c.TotalUserInteractions
		t.TotalFreeSamplesRedeemed += c.TotalFreeSamplesRedeemed
		t.TotalProductClicks += c.TotalProductClicks
		t.UniqueCustomers += c.UniqueCustomers
		t.TotalAdPlays += c.TotalAdPlays
		t.CampaignCount++
	}
	return t
}

// uptime reports fleet uptime over scheduled machine minutes as a
// two-decimal string, 100.00 when nothing was scheduled
func uptime(campaigns []domain.Campaign) string {
	var totalMinutes, offline float64
	for _, c := range campaigns {
		totalMinutes += c.TotalHours * 60
		offline += c.MachineOfflineMinutes
	}
	if totalMinutes <= 0 {
		return "100.00"
	}
	return fmt.Sprintf("%.2f", (totalMinutes-offline)/totalMinutes*100)
}
