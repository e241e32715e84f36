// Package http provides http transport for analytics
package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"brandpulse/internal/modkit/httpkit"
	"brandpulse/internal/services/analytics/domain"
)

// Register mounts analytics endpoints on the given router
func Register(r httpkit.Router, s domain.QueryPort) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.ForecastInput](r, "/forecast", h.forecast)
	httpkit.PostJSON[domain.CompareInput](r, "/compare", h.compare)
	httpkit.Get(r, "/trends/{tenantID}", h.trends)
	httpkit.Get(r, "/insights/{campaignID}", h.insights)
	httpkit.Get(r, "/predictions/{tenantID}", h.predictions)
}

type handlers struct{ svc domain.QueryPort }

// swagger:route POST /analytics/forecast Analytics analyticsForecast
// @Summary Forecast a campaign metric history
// @Tags Analytics
// @Accept json
// @Produce json
// @Param payload body domain.ForecastInput true "Query"
// @Success 200 {object} domain.Forecast "ok"
// @Router /analytics/forecast [post]
func (h *handlers) forecast(r *stdhttp.Request, in domain.ForecastInput) (any, error) {
	return h.svc.Forecast(r.Context(), in)
}

// swagger:route POST /analytics/compare Analytics analyticsCompare
// @Summary Rank campaigns on one counter
// @Tags Analytics
// @Accept json
// @Produce json
// @Param payload body domain.CompareInput true "Query"
// @Success 200 {object} domain.ComparisonReport "ok"
// @Router /analytics/compare [post]
func (h *handlers) compare(r *stdhttp.Request, in domain.CompareInput) (any, error) {
	return h.svc.Compare(r.Context(), in)
}

// swagger:route GET /analytics/trends/{tenantID} Analytics analyticsTrends
// @Summary Trend and seasonality reports per metric
// @Tags Analytics
// @Produce json
// @Param tenantID path string true "Tenant id"
// @Param metric query string false "Single metric key; defaults to the three legacy counters"
// @Success 200 {object} domain.TrendsReport "ok"
// @Router /analytics/trends/{tenantID} [get]
func (h *handlers) trends(r *stdhttp.Request) (any, error) {
	return h.svc.Trends(r.Context(), chi.URLParam(r, "tenantID"), r.URL.Query().Get("metric"))
}

// swagger:route GET /analytics/insights/{campaignID} Analytics analyticsInsights
// @Summary Derived findings for one campaign
// @Tags Analytics
// @Produce json
// @Param campaignID path string true "Campaign id"
// @Success 200 {object} domain.InsightsReport "ok"
// @Router /analytics/insights/{campaignID} [get]
func (h *handlers) insights(r *stdhttp.Request) (any, error) {
	return h.svc.Insights(r.Context(), chi.URLParam(r, "campaignID"))
}

// swagger:route GET /analytics/predictions/{tenantID} Analytics analyticsPredictions
// @Summary Tenant performance predictions
// @Tags Analytics
// @Produce json
// @Param tenantID path string true "Tenant id"
// @Param days query int false "Forecast horizon, default 14"
// @Success 200 {object} domain.PredictionsReport "ok"
// @Router /analytics/predictions/{tenantID} [get]
func (h *handlers) predictions(r *stdhttp.Request) (any, error) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	return h.svc.Predictions(r.Context(), chi.URLParam(r, "tenantID"), days)
}
