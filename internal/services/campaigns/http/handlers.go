// Package http provides http transport for campaigns
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"brandpulse/internal/modkit/httpkit"
	"brandpulse/internal/services/campaigns/domain"
)

// Register mounts campaign endpoints on the given router
func Register(r httpkit.Router, s domain.QueryPort) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/admin/aggregate", h.adminAggregate)
	httpkit.Get(r, "/tenant/{tenantID}/aggregate", h.tenantAggregate)
	httpkit.Get(r, "/tenant/{tenantID}/compare", h.compare)
	httpkit.Get(r, "/{id}", h.get)
	httpkit.Delete(r, "/{id}", h.remove)
	httpkit.Get(r, "/{id}/metrics", h.metrics)
	httpkit.Get(r, "/{id}/funnel", h.funnel)
	httpkit.Get(r, "/{id}/attention-distribution", h.attention)
	httpkit.Get(r, "/{id}/completion-funnel", h.completionFunnel)
	httpkit.Get(r, "/{id}/timeseries", h.timeseries)
}

type handlers struct{ svc domain.QueryPort }

// swagger:route GET /campaigns Campaigns campaignsList
// @Summary List campaigns in the caller's tenants
// @Tags Campaigns
// @Produce json
// @Param tenantId query string false "Restrict to one tenant"
// @Param startDate query string false "ISO 8601 lower bound on campaign start"
// @Param endDate query string false "ISO 8601 upper bound on campaign start"
// @Success 200 {array} domain.Campaign "ok"
// @Router /campaigns [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	return h.svc.List(r.Context(), q.Get("tenantId"), q.Get("startDate"), q.Get("endDate"))
}

// swagger:route GET /campaigns/{id} Campaigns campaignsGet
// @Summary Get one campaign with tenant branding
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign id"
// @Success 200 {object} domain.Campaign "ok"
// @Router /campaigns/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route DELETE /campaigns/{id} Campaigns campaignsDelete
// @Summary Delete a campaign and its metric history
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign id"
// @Success 200 {object} map[string]bool "ok"
// @Router /campaigns/{id} [delete]
func (h *handlers) remove(r *stdhttp.Request) (any, error) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

// swagger:route GET /campaigns/{id}/metrics Campaigns campaignsMetrics
// @Summary Campaign KPI snapshot
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign id"
// @Success 200 {object} domain.Metrics "ok"
// @Router /campaigns/{id}/metrics [get]
func (h *handlers) metrics(r *stdhttp.Request) (any, error) {
	return h.svc.Metrics(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route GET /campaigns/{id}/funnel Campaigns campaignsFunnel
// @Summary Engagement funnel with stage conversion rates
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign id"
// @Success 200 {object} domain.Funnel "ok"
// @Router /campaigns/{id}/funnel [get]
func (h *handlers) funnel(r *stdhttp.Request) (any, error) {
	return h.svc.Funnel(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route GET /campaigns/{id}/attention-distribution Campaigns campaignsAttention
// @Summary Dwell time histogram
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign id"
// @Success 200 {object} domain.AttentionDistribution "ok"
// @Router /campaigns/{id}/attention-distribution [get]
func (h *handlers) attention(r *stdhttp.Request) (any, error) {
	return h.svc.AttentionDistribution(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route GET /campaigns/{id}/completion-funnel Campaigns campaignsCompletionFunnel
// @Summary Step by step journey drop-off
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign id"
// @Success 200 {object} domain.CompletionFunnel "ok"
// @Router /campaigns/{id}/completion-funnel [get]
func (h *handlers) completionFunnel(r *stdhttp.Request) (any, error) {
	return h.svc.CompletionFunnel(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route GET /campaigns/{id}/timeseries Campaigns campaignsTimeseries
// @Summary Daily interaction, completion, and contact series
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign id"
// @Success 200 {object} domain.Timeseries "ok"
// @Router /campaigns/{id}/timeseries [get]
func (h *handlers) timeseries(r *stdhttp.Request) (any, error) {
	return h.svc.Timeseries(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route GET /campaigns/admin/aggregate Campaigns campaignsAdminAggregate
// @Summary Cross-tenant KPI roll-up
// @Tags Campaigns
// @Produce json
// @Success 200 {object} domain.AdminAggregate "ok"
// @Router /campaigns/admin/aggregate [get]
func (h *handlers) adminAggregate(r *stdhttp.Request) (any, error) {
	return h.svc.AdminAggregate(r.Context())
}

// swagger:route GET /campaigns/tenant/{tenantID}/aggregate Campaigns campaignsTenantAggregate
// @Summary Tenant KPI and legacy counter roll-up
// @Tags Campaigns
// @Produce json
// @Param tenantID path string true "Tenant id"
// @Param startDate query string false "ISO 8601 lower bound on campaign start"
// @Param endDate query string false "ISO 8601 upper bound on campaign start"
// @Success 200 {object} domain.TenantAggregate "ok"
// @Router /campaigns/tenant/{tenantID}/aggregate [get]
func (h *handlers) tenantAggregate(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	return h.svc.TenantAggregate(r.Context(), chi.URLParam(r, "tenantID"), q.Get("startDate"), q.Get("endDate"))
}

// swagger:route GET /campaigns/tenant/{tenantID}/compare Campaigns campaignsCompare
// @Summary Two-period legacy counter comparison
// @Tags Campaigns
// @Produce json
// @Param tenantID path string true "Tenant id"
// @Param period1Start query string true "Period 1 start"
// @Param period1End query string true "Period 1 end"
// @Param period2Start query string true "Period 2 start"
// @Param period2End query string true "Period 2 end"
// @Success 200 {object} domain.Comparison "ok"
// @Router /campaigns/tenant/{tenantID}/compare [get]
func (h *handlers) compare(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	return h.svc.Compare(
		r.Context(), chi.URLParam(r, "tenantID"),
		q.Get("period1Start"), q.Get("period1End"),
		q.Get("period2Start"), q.Get("period2End"),
	)
}
