// Package service implements scheduled export management and execution
package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"brandpulse/internal/modkit/repokit"
	perr "brandpulse/internal/platform/errors"
	pnet "brandpulse/internal/platform/net"
	campdomain "brandpulse/internal/services/campaigns/domain"
	"brandpulse/internal/services/exports/domain"
	"brandpulse/internal/services/exports/render"
	"brandpulse/internal/services/exports/repo"
	whdomain "brandpulse/internal/services/webhooks/domain"
)

const historyLimit = 50

// cronParser accepts the standard five-field crontab syntax
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Config for the exports service
type Config struct {
	// Resync bounds how stale the cron job table may go relative to
	// the database
	Resync time.Duration
}

// Service implements domain.ManagerPort and runs export jobs
type Service struct {
	tx        repokit.TxRunner
	binder    repokit.Binder[repo.Storage]
	campaigns domain.CampaignReader
	events    whdomain.TriggerPort
	mailer    Mailer
	cfg       Config
	now       func() time.Time
}

// New constructs a new exports service. events may be nil when no
// webhook fan-out is wired.
func New(
	tx repokit.TxRunner,
	binder repokit.Binder[repo.Storage],
	campaigns domain.CampaignReader,
	events whdomain.TriggerPort,
	mailer Mailer,
	cfg Config,
) *Service {
	if cfg.Resync <= 0 {
		cfg.Resync = time.Minute
	}
	return &Service{
		tx:        tx,
		binder:    binder,
		campaigns: campaigns,
		events:    events,
		mailer:    mailer,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *Service) store() repo.Storage { return s.binder.Bind(s.tx) }

// getScoped loads an export and verifies the caller may manage its
// tenant
func (s *Service) getScoped(ctx context.Context, id string) (domain.ScheduledExport, error) {
	e, err := s.store().Get(ctx, id)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.ScheduledExport{}, perr.NotFoundf("scheduled export not found")
		}
		return domain.ScheduledExport{}, err
	}
	if !pnet.CanAccessTenant(ctx, e.TenantID) {
		return domain.ScheduledExport{}, perr.Forbiddenf("access denied to this scheduled export")
	}
	return e, nil
}

// List implements domain.ManagerPort
func (s *Service) List(ctx context.Context) ([]domain.ScheduledExport, error) {
	var (
		out []domain.ScheduledExport
		err error
	)
	if pnet.SuperAdmin(ctx) {
		out, err = s.store().All(ctx)
	} else {
		tenants := pnet.Tenants(ctx)
		if len(tenants) == 0 {
			return []domain.ScheduledExport{}, nil
		}
		out, err = s.store().ByTenants(ctx, tenants)
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.ScheduledExport{}
	}
	return out, nil
}

// Get implements domain.ManagerPort
func (s *Service) Get(ctx context.Context, id string) (domain.ScheduledExport, error) {
	return s.getScoped(ctx, id)
}

// Create implements domain.ManagerPort
func (s *Service) Create(ctx context.Context, in domain.CreateInput) (domain.ScheduledExport, error) {
	if !pnet.CanAccessTenant(ctx, in.TenantID) {
		return domain.ScheduledExport{}, perr.Forbiddenf("access denied to this tenant")
	}
	if _, err := cronParser.Parse(in.Schedule); err != nil {
		return domain.ScheduledExport{}, perr.Newf(perr.ErrorCodeValidation, "invalid cron expression")
	}

	exportType := in.ExportType
	if exportType == "" {
		exportType = domain.TypeAggregate
	}
	if !domain.ValidType(exportType) {
		return domain.ScheduledExport{}, perr.Newf(perr.ErrorCodeValidation, "invalid export type: %s", exportType)
	}
	format := in.Format
	if format == "" {
		format = domain.FormatCSV
	}
	if !domain.ValidFormat(format) {
		return domain.ScheduledExport{}, perr.Newf(perr.ErrorCodeValidation, "invalid format: %s", format)
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	now := s.now().UTC()
	e := domain.ScheduledExport{
		ID:          uuid.NewString(),
		TenantID:    in.TenantID,
		Name:        in.Name,
		Description: in.Description,
		ExportType:  exportType,
		Format:      format,
		Schedule:    in.Schedule,
		Recipients:  in.Recipients,
		Filters:     in.Filters,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store().Insert(ctx, e); err != nil {
		return domain.ScheduledExport{}, err
	}
	return e, nil
}

// Update implements domain.ManagerPort
func (s *Service) Update(ctx context.Context, id string, in domain.UpdateInput) (domain.ScheduledExport, error) {
	e, err := s.getScoped(ctx, id)
	if err != nil {
		return domain.ScheduledExport{}, err
	}

	if in.Schedule != nil {
		if _, err := cronParser.Parse(*in.Schedule); err != nil {
			return domain.ScheduledExport{}, perr.Newf(perr.ErrorCodeValidation, "invalid cron expression")
		}
		e.Schedule = *in.Schedule
	}
	if in.Recipients != nil {
		if err := validateRecipients(*in.Recipients); err != nil {
			return domain.ScheduledExport{}, err
		}
		e.Recipients = *in.Recipients
	}
	if in.Name != nil {
		e.Name = *in.Name
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.ExportType != nil {
		if !domain.ValidType(*in.ExportType) {
			return domain.ScheduledExport{}, perr.Newf(perr.ErrorCodeValidation, "invalid export type: %s", *in.ExportType)
		}
		e.ExportType = *in.ExportType
	}
	if in.Format != nil {
		if !domain.ValidFormat(*in.Format) {
			return domain.ScheduledExport{}, perr.Newf(perr.ErrorCodeValidation, "invalid format: %s", *in.Format)
		}
		e.Format = *in.Format
	}
	if in.Filters != nil {
		e.Filters = *in.Filters
	}
	if in.IsActive != nil {
		e.IsActive = *in.IsActive
	}
	e.UpdatedAt = s.now().UTC()

	if err := s.store().Update(ctx, e); err != nil {
		return domain.ScheduledExport{}, err
	}
	return e, nil
}

// Delete implements domain.ManagerPort
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.getScoped(ctx, id); err != nil {
		return err
	}
	return repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).Delete(ctx, id)
	})
}

// Trigger implements domain.ManagerPort. The export runs to completion
// before returning; the outcome lands in the run history either way.
func (s *Service) Trigger(ctx context.Context, id string) error {
	e, err := s.getScoped(ctx, id)
	if err != nil {
		return err
	}
	return s.execute(ctx, e)
}

// History implements domain.ManagerPort
func (s *Service) History(ctx context.Context, id string) ([]domain.HistoryEntry, error) {
	if _, err := s.getScoped(ctx, id); err != nil {
		return nil, err
	}
	out, err := s.store().History(ctx, id, historyLimit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.HistoryEntry{}
	}
	return out, nil
}

// ValidateCron implements domain.ManagerPort
func (s *Service) ValidateCron(expr string) domain.CronCheck {
	_, err := cronParser.Parse(expr)
	check := domain.CronCheck{Valid: err == nil, Expression: expr}
	if check.Valid {
		check.Message = "Valid cron expression"
	} else {
		check.Message = "Invalid cron expression"
	}
	return check
}

func validateRecipients(recipients []string) error {
	if len(recipients) == 0 {
		return perr.Newf(perr.ErrorCodeValidation, "at least one recipient email is required")
	}
	for _, r := range recipients {
		if _, err := mail.ParseAddress(r); err != nil {
			return perr.Newf(perr.ErrorCodeValidation, "invalid recipient email: %s", r)
		}
	}
	return nil
}

var engagementColumns = []render.Column{
	{Key: "id", Label: "Campaign ID"},
	{Key: "name", Label: "Campaign Name"},
	{Key: "startDate", Label: "Start Date"},
	{Key: "endDate", Label: "End Date"},
	{Key: "verifiedEngagement", Label: "Verified Engagement"},
	{Key: "totalImpressions", Label: "Total Impressions"},
	{Key: "engagementRate", Label: "Engagement Rate %"},
	{Key: "completionRate", Label: "Completion Rate %"},
	{Key: "qualifiedContacts", Label: "Qualified Contacts"},
	{Key: "contactRate", Label: "Contact Rate %"},
	{Key: "avgDurationSeconds", Label: "Avg Duration (s)"},
	{Key: "deepEngagementPct", Label: "Deep Engagement % (60s+)"},
}

var aggregateColumns = []render.Column{
	{Key: "tenantId", Label: "Tenant ID"},
	{Key: "period", Label: "Period"},
	{Key: "totalCampaigns", Label: "Total Campaigns"},
	{Key: "verifiedEngagement", Label: "Verified Engagement"},
	{Key: "totalImpressions", Label: "Total Impressions"},
	{Key: "engagementRate", Label: "Engagement Rate %"},
	{Key: "completionRate", Label: "Completion Rate %"},
	{Key: "qualifiedContacts", Label: "Qualified Contacts"},
	{Key: "contactRate", Label: "Contact Rate %"},
	{Key: "avgDurationSeconds", Label: "Avg Duration (s)"},
	{Key: "deepEngagementPct", Label: "Deep Engagement % (60s+)"},
}

func engagementRow(c campdomain.Campaign, m campdomain.Metrics) render.Row {
	return render.Row{
		"id":                 c.ID,
		"name":               c.Name,
		"startDate":          c.StartDate,
		"endDate":            c.EndDate,
		"verifiedEngagement": m.VerifiedEngagement,
		"totalImpressions":   m.TotalImpressions,
		"engagementRate":     m.EngagementRate,
		"completionRate":     m.ExperienceCompletion.CompletionRate,
		"qualifiedContacts":  m.QualifiedContacts.Total,
		"contactRate":        m.QualifiedContacts.ContactRate,
		"avgDurationSeconds": m.AttentionQuality.AverageDurationSeconds,
		"deepEngagementPct":  m.AttentionQuality.DeepEngagementPct,
	}
}

// buildTable assembles the export rows for one job definition
func (s *Service) buildTable(ctx context.Context, e domain.ScheduledExport) (render.Table, string, error) {
	stamp := s.now().UTC().Format("2006-01-02")

	switch e.ExportType {
	case domain.TypeCampaign:
		if e.Filters.CampaignID == "" {
			return render.Table{}, "", perr.Newf(perr.ErrorCodeValidation, "campaign export requires a campaignId filter")
		}
		c, err := s.campaigns.Get(ctx, e.Filters.CampaignID)
		if err != nil {
			return render.Table{}, "", err
		}
		m, err := s.campaigns.Metrics(ctx, c.ID)
		if err != nil {
			return render.Table{}, "", err
		}
		t := render.Table{
			Root:    "campaign",
			Item:    "campaign",
			Columns: engagementColumns,
			Rows:    []render.Row{engagementRow(c, m)},
		}
		return t, fmt.Sprintf("campaign-%s-%s.%s", c.Name, stamp, e.Format), nil

	case domain.TypeCampaigns:
		campaigns, err := s.campaigns.List(ctx, e.TenantID, e.Filters.StartDate, e.Filters.EndDate)
		if err != nil {
			return render.Table{}, "", err
		}
		if len(e.Filters.CampaignIDs) > 0 {
			keep := make(map[string]bool, len(e.Filters.CampaignIDs))
			for _, id := range e.Filters.CampaignIDs {
				keep[id] = true
			}
			kept := campaigns[:0]
			for _, c := range campaigns {
				if keep[c.ID] {
					kept = append(kept, c)
				}
			}
			campaigns = kept
		}
		rows := make([]render.Row, 0, len(campaigns))
		for _, c := range campaigns {
			m, err := s.campaigns.Metrics(ctx, c.ID)
			if err != nil {
				return render.Table{}, "", err
			}
			rows = append(rows, engagementRow(c, m))
		}
		t := render.Table{
			Root:    "campaigns",
			Item:    "campaign",
			Columns: engagementColumns,
			Rows:    rows,
		}
		return t, fmt.Sprintf("campaigns-%s-%s.%s", e.TenantID, stamp, e.Format), nil

	case domain.TypeAggregate:
		agg, err := s.campaigns.TenantAggregate(ctx, e.TenantID, e.Filters.StartDate, e.Filters.EndDate)
		if err != nil {
			return render.Table{}, "", err
		}
		period := "All time"
		if e.Filters.StartDate != "" && e.Filters.EndDate != "" {
			period = e.Filters.StartDate + " to " + e.Filters.EndDate
		}
		row := render.Row{
			"tenantId":           e.TenantID,
			"period":             period,
			"totalCampaigns":     agg.CampaignCount,
			"verifiedEngagement": agg.VerifiedEngagement,
			"totalImpressions":   agg.TotalImpressions,
			"engagementRate":     agg.EngagementRate,
			"completionRate":     agg.CompletionRate,
			"qualifiedContacts":  agg.QualifiedContacts,
			"contactRate":        agg.ContactRate,
			"avgDurationSeconds": agg.AvgDurationSeconds,
			"deepEngagementPct":  agg.DeepEngagementPct,
		}
		t := render.Table{
			Root:    "aggregateReport",
			Item:    "aggregate",
			Columns: aggregateColumns,
			Rows:    []render.Row{row},
		}
		return t, fmt.Sprintf("aggregate-%s-%s.%s", e.TenantID, stamp, e.Format), nil

	default:
		return render.Table{}, "", perr.Newf(perr.ErrorCodeValidation, "unsupported export type: %s", e.ExportType)
	}
}

// execute runs one export end to end and records the outcome
func (s *Service) execute(ctx context.Context, e domain.ScheduledExport) error {
	st := s.store()
	now := s.now().UTC()
	h := domain.HistoryEntry{
		ID:                uuid.NewString(),
		ScheduledExportID: e.ID,
		TenantID:          e.TenantID,
		Format:            e.Format,
		Status:            domain.StatusProcessing,
		Recipients:        e.Recipients,
		StartedAt:         now,
		CreatedAt:         now,
	}
	if err := st.InsertHistory(ctx, h); err != nil {
		return err
	}

	fail := func(err error) error {
		_ = st.FailHistory(ctx, h.ID, err.Error(), s.now().UTC())
		return err
	}

	table, fileName, err := s.buildTable(ctx, e)
	if err != nil {
		return fail(err)
	}
	if len(table.Rows) == 0 {
		return fail(perr.NotFoundf("no data found for export"))
	}

	file, err := render.Render(e.Format, table)
	if err != nil {
		return fail(err)
	}

	if err := s.mailer.SendExport(ctx, e.Recipients, e.Name, e.Format, fileName, file); err != nil {
		return fail(err)
	}

	done := s.now().UTC()
	if err := st.CompleteHistory(ctx, h.ID, fileName, int64(len(file)), int64(len(table.Rows)), done); err != nil {
		return err
	}
	if err := st.SetLastRun(ctx, e.ID, done); err != nil {
		return err
	}

	if s.events != nil {
		_ = s.events.Trigger(ctx, e.TenantID, whdomain.EventExportCompleted, map[string]any{
			"scheduledExportId": e.ID,
			"name":              e.Name,
			"format":            e.Format,
			"fileName":          fileName,
			"recordCount":       len(table.Rows),
		})
	}
	return nil
}

var _ domain.ManagerPort = (*Service)(nil)
