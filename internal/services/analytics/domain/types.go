// Package domain defines forecasting request and response shapes
package domain

import (
	"time"

	"brandpulse/internal/core/timeseries"
)

// ForecastInput selects a campaign metric history to forecast
type ForecastInput struct {
	CampaignID string `json:"campaignId" validate:"required" example:"7b1d2f3a-99c0-4f0e-8d1a-2c5b6e7f8a90"`
	Metric     string `json:"metric" validate:"required" example:"totalUserInteractions"`
	Periods    int    `json:"periods" validate:"omitempty,min=1,max=90" example:"7"`
	Method     string `json:"method" validate:"omitempty,oneof=linear ensemble" example:"ensemble"`
}

// Forecast is the forecast response. Anomalies only appear for the
// ensemble method.
type Forecast struct {
	Predictions []timeseries.Prediction  `json:"predictions"`
	Trend       timeseries.TrendAnalysis `json:"trend"`
	Anomalies   []int                    `json:"anomalies,omitempty"`
	Method      string                   `json:"method"`
}

// MetricTrend is one metric's trend report with seasonality and the
// trailing daily points
type MetricTrend struct {
	timeseries.TrendAnalysis
	Seasonality timeseries.Seasonality `json:"seasonality"`
	DataPoints  []timeseries.Point     `json:"dataPoints"`
}

// TrendsReport maps metric keys to their trend reports
type TrendsReport struct {
	Trends  map[string]MetricTrend `json:"trends"`
	Message string                 `json:"message,omitempty"`
}

// InsightsReport carries derived findings for one campaign
type InsightsReport struct {
	Insights     []timeseries.Insight `json:"insights"`
	CampaignName string               `json:"campaignName"`
}

// CompareInput ranks campaigns on one legacy counter
type CompareInput struct {
	CampaignIDs []string `json:"campaignIds" validate:"required,min=2,dive,required"`
	Metric      string   `json:"metric" example:"totalUserInteractions"`
}

// ComparisonEntry is one ranked campaign
type ComparisonEntry struct {
	CampaignID    string           `json:"campaignId"`
	CampaignName  string           `json:"campaignName"`
	Value         float64          `json:"value"`
	Trend         timeseries.Trend `json:"trend"`
	ChangePercent float64          `json:"changePercent"`
}

// ComparisonReport ranks campaigns by metric value descending
type ComparisonReport struct {
	Comparison []ComparisonEntry `json:"comparison"`
	Metric     string            `json:"metric"`
}

// CampaignSummary is the per-campaign counter snapshot on predictions
type CampaignSummary struct {
	ID                       string    `json:"id"`
	Name                     string    `json:"name"`
	TotalUserInteractions    int64     `json:"totalUserInteractions"`
	TotalProductsDispensed   int64     `json:"totalProductsDispensed"`
	TotalFreeSamplesRedeemed int64     `json:"totalFreeSamplesRedeemed"`
	UniqueCustomers          int64     `json:"uniqueCustomers"`
	MachineUptimePercent     float64   `json:"machineUptimePercent"`
	AverageEngagementTime    float64   `json:"averageEngagementTime"`
	StartDate                time.Time `json:"startDate"`
	EndDate                  time.Time `json:"endDate"`
}

// TenantSummary aggregates the counters across a tenant's campaigns
type TenantSummary struct {
	TotalCampaigns    int64  `json:"totalCampaigns"`
	TotalInteractions int64  `json:"totalInteractions"`
	TotalDispensed    int64  `json:"totalDispensed"`
	TotalSamples      int64  `json:"totalSamples"`
	TotalCustomers    int64  `json:"totalCustomers"`
	AvgUptime         string `json:"avgUptime"`
	AvgEngagement     string `json:"avgEngagement"`
}

// MetricPrediction is one forecasted tenant-level series
type MetricPrediction struct {
	Forecast   []timeseries.Prediction  `json:"forecast"`
	Trend      timeseries.TrendAnalysis `json:"trend"`
	Confidence float64                  `json:"confidence"`
	Historical []timeseries.Point       `json:"historical"`
}

// Predictions holds the forecastable tenant series
type Predictions struct {
	Interactions *MetricPrediction `json:"interactions,omitempty"`
	Dispensed    *MetricPrediction `json:"dispensed,omitempty"`
}

// PredictionsReport is the tenant prediction response. Predictions is
// null when no series had enough history.
type PredictionsReport struct {
	Predictions *Predictions      `json:"predictions"`
	Campaigns   []CampaignSummary `json:"campaigns"`
	Summary     *TenantSummary    `json:"summary"`
	TenantID    string            `json:"tenantId"`
	Message     string            `json:"message,omitempty"`
}
