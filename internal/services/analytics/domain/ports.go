package domain

import (
	"context"

	campdomain "brandpulse/internal/services/campaigns/domain"
)

// QueryPort computes forecasts, trends, and insights over campaign data
type QueryPort interface {
	Forecast(ctx context.Context, in ForecastInput) (Forecast, error)
	Trends(ctx context.Context, tenantID, metric string) (TrendsReport, error)
	Insights(ctx context.Context, campaignID string) (InsightsReport, error)
	Compare(ctx context.Context, in CompareInput) (ComparisonReport, error)
	Predictions(ctx context.Context, tenantID string, days int) (PredictionsReport, error)
}

// CampaignReader is the slice of the campaigns port this module reads
// through. The campaigns service satisfies it as-is.
type CampaignReader interface {
	Get(ctx context.Context, id string) (campdomain.Campaign, error)
	List(ctx context.Context, tenantID, startRaw, endRaw string) ([]campdomain.Campaign, error)
}
