// Package service implements forecasting and insight generation over
// campaign metric history
package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"brandpulse/internal/core/timeseries"
	"brandpulse/internal/modkit/repokit"
	perr "brandpulse/internal/platform/errors"
	"brandpulse/internal/services/analytics/domain"
	"brandpulse/internal/services/analytics/repo"
	campdomain "brandpulse/internal/services/campaigns/domain"
)

const (
	defaultPeriods = 7
	defaultDays    = 14
	minForecastLen = 7
)

// insightMetrics are the counter histories mined for campaign insights
var insightMetrics = []struct{ key, name string }{
	{"totalProductsDispensed", "Product Dispensations"},
	{"totalUserInteractions", "User Interactions"},
	{"uniqueCustomers", "Unique Customers"},
}

// Config for the analytics service
type Config struct{}

// Service implements domain.QueryPort
type Service struct {
	tx        repokit.TxRunner
	binder    repokit.Binder[repo.Storage]
	campaigns domain.CampaignReader
	cfg       Config
}

// New constructs a new analytics service
func New(tx repokit.TxRunner, binder repokit.Binder[repo.Storage], campaigns domain.CampaignReader, cfg Config) *Service {
	return &Service{tx: tx, binder: binder, campaigns: campaigns, cfg: cfg}
}

func (s *Service) store() repo.Storage { return s.binder.Bind(s.tx) }

// Forecast implements domain.QueryPort
func (s *Service) Forecast(ctx context.Context, in domain.ForecastInput) (domain.Forecast, error) {
	if in.Periods <= 0 {
		in.Periods = defaultPeriods
	}

	if _, err := s.campaigns.Get(ctx, in.CampaignID); err != nil {
		return domain.Forecast{}, err
	}

	points, err := s.store().MetricHistory(ctx, in.CampaignID, in.Metric)
	if err != nil {
		return domain.Forecast{}, err
	}
	if len(points) < minForecastLen {
		return domain.Forecast{}, perr.Newf(perr.ErrorCodeValidation,
			"need at least %d historical data points for forecasting", minForecastLen)
	}

	if in.Method == "linear" {
		preds, err := timeseries.LinearForecast(points, in.Periods)
		if err != nil {
			return domain.Forecast{}, err
		}
		return domain.Forecast{
			Predictions: preds,
			Trend:       timeseries.AnalyzeTrend(points),
			Method:      "linear",
		}, nil
	}

	res, err := timeseries.EnsembleForecast(points, in.Periods)
	if err != nil {
		return domain.Forecast{}, err
	}
	return domain.Forecast{
		Predictions: res.Predictions,
		Trend:       res.Trend,
		Anomalies:   res.Anomalies,
		Method:      "ensemble",
	}, nil
}

// Trends implements domain.QueryPort. Campaign counters are spread
// evenly across each campaign's date range to approximate a daily
// series; the report carries the trailing 30 points per metric.
func (s *Service) Trends(ctx context.Context, tenantID, metric string) (domain.TrendsReport, error) {
	campaigns, err := s.campaigns.List(ctx, tenantID, "", "")
	if err != nil {
		return domain.TrendsReport{}, err
	}
	if len(campaigns) == 0 {
		return domain.TrendsReport{Trends: map[string]domain.MetricTrend{}, Message: "no campaigns found"}, nil
	}

	metrics := []string{"totalProductsDispensed", "totalUserInteractions", "uniqueCustomers"}
	if metric != "" {
		metrics = []string{metric}
	}

	trends := make(map[string]domain.MetricTrend, len(metrics))
	for _, m := range metrics {
		points := spreadDaily(campaigns, m)
		if len(points) < 2 {
			continue
		}
		tail := points
		if len(tail) > 30 {
			tail = tail[len(tail)-30:]
		}
		trends[m] = domain.MetricTrend{
			TrendAnalysis: timeseries.AnalyzeTrend(points),
			Seasonality:   timeseries.AnalyzeSeasonality(points, 7),
			DataPoints:    tail,
		}
	}
	return domain.TrendsReport{Trends: trends}, nil
}

// spreadDaily turns each campaign's terminal counter into a flat daily
// series over its date range
func spreadDaily(campaigns []campdomain.Campaign, metric string) []timeseries.Point {
	var points []timeseries.Point
	for _, c := range campaigns {
		days := int(math.Ceil(c.EndDate.Sub(c.StartDate).Hours() / 24))
		if days < 1 {
			days = 1
		}
		daily := legacyCounter(c, metric) / float64(days)
		for i := 0; i <= days; i++ {
			points = append(points, timeseries.Point{
				At:    c.StartDate.AddDate(0, 0, i),
				Value: daily,
			})
		}
	}
	return points
}

// legacyCounter reads a campaign counter by its portal metric key
func legacyCounter(c campdomain.Campaign, key string) float64 {
	switch key {
	case "totalProductsDispensed":
		return float64(c.TotalProductsDispensed)
	case "totalUserInteractions":
		return float64(c.TotalUserInteractions)
	case "totalFreeSamplesRedeemed":
		return float64(c.TotalFreeSamplesRedeemed)
	case "totalProductClicks":
		return float64(c.TotalProductClicks)
	case "uniqueCustomers":
		return float64(c.UniqueCustomers)
	case "totalAdPlays":
		return float64(c.TotalAdPlays)
	case "averageEngagementTime":
		return c.AverageEngagementTime
	case "machineUptimePercent":
		return c.MachineUptimePercent
	default:
		return 0
	}
}

// Insights implements domain.QueryPort
func (s *Service) Insights(ctx context.Context, campaignID string) (domain.InsightsReport, error) {
	campaign, err := s.campaigns.Get(ctx, campaignID)
	if err != nil {
		return domain.InsightsReport{}, err
	}

	st := s.store()
	insights := []timeseries.Insight{}

	for _, m := range insightMetrics {
		points, err := st.MetricHistory(ctx, campaignID, m.key)
		if err != nil {
			return domain.InsightsReport{}, err
		}
		if len(points) < minForecastLen {
			continue
		}
		forecast, err := timeseries.EnsembleForecast(points, defaultPeriods)
		if err != nil {
			continue
		}
		insights = append(insights, timeseries.GenerateInsights(points, forecast, m.name)...)
	}

	if campaign.MachineUptimePercent < 95 {
		insights = append(insights, timeseries.Insight{
			Type:  timeseries.InsightWarning,
			Title: "Low Machine Uptime",
			Description: fmt.Sprintf("Machine uptime is %g%%. Consider maintenance to improve reliability.",
				campaign.MachineUptimePercent),
			Metric: "uptime",
			Value:  campaign.MachineUptimePercent,
		})
	}
	if campaign.AverageEngagementTime < 30 {
		insights = append(insights, timeseries.Insight{
			Type:  timeseries.InsightInfo,
			Title: "Short Engagement Time",
			Description: fmt.Sprintf("Average engagement is %gs. Consider more engaging content to increase interaction time.",
				campaign.AverageEngagementTime),
			Metric: "engagement",
			Value:  campaign.AverageEngagementTime,
		})
	}

	return domain.InsightsReport{Insights: insights, CampaignName: campaign.Name}, nil
}

// Compare implements domain.QueryPort. Unknown campaign ids are skipped;
// inaccessible ones fail the whole comparison.
func (s *Service) Compare(ctx context.Context, in domain.CompareInput) (domain.ComparisonReport, error) {
	if in.Metric == "" {
		in.Metric = "totalUserInteractions"
	}

	comparison := []domain.ComparisonEntry{}
	for _, id := range in.CampaignIDs {
		c, err := s.campaigns.Get(ctx, id)
		if err != nil {
			if perr.IsCode(err, perr.ErrorCodeNotFound) {
				continue
			}
			return domain.ComparisonReport{}, err
		}

		value := legacyCounter(c, in.Metric)
		trend := timeseries.AnalyzeTrend([]timeseries.Point{
			{At: c.StartDate, Value: 0},
			{At: c.EndDate, Value: value},
		})
		comparison = append(comparison, domain.ComparisonEntry{
			CampaignID:    c.ID,
			CampaignName:  c.Name,
			Value:         value,
			Trend:         trend.Trend,
			ChangePercent: trend.ChangePercent,
		})
	}
	sort.SliceStable(comparison, func(i, j int) bool { return comparison[i].Value > comparison[j].Value })

	return domain.ComparisonReport{Comparison: comparison, Metric: in.Metric}, nil
}

// Predictions implements domain.QueryPort
func (s *Service) Predictions(ctx context.Context, tenantID string, days int) (domain.PredictionsReport, error) {
	if days <= 0 {
		days = defaultDays
	}

	campaigns, err := s.campaigns.List(ctx, tenantID, "", "")
	if err != nil {
		return domain.PredictionsReport{}, err
	}
	if len(campaigns) == 0 {
		return domain.PredictionsReport{
			Campaigns: []domain.CampaignSummary{},
			TenantID:  tenantID,
			Message:   "no campaigns found",
		}, nil
	}
	sort.Slice(campaigns, func(i, j int) bool { return campaigns[i].StartDate.Before(campaigns[j].StartDate) })

	summaries := make([]domain.CampaignSummary, len(campaigns))
	summary := domain.TenantSummary{TotalCampaigns: int64(len(campaigns))}
	var uptimeSum, engagementSum float64
	for i, c := range campaigns {
		uptime := c.MachineUptimePercent
		if uptime == 0 {
			uptime = 100
		}
		summaries[i] = domain.CampaignSummary{
			ID:                       c.ID,
			Name:                     c.Name,
			TotalUserInteractions:    c.TotalUserInteractions,
			TotalProductsDispensed:   c.TotalProductsDispensed,
			TotalFreeSamplesRedeemed: c.TotalFreeSamplesRedeemed,
			UniqueCustomers:          c.UniqueCustomers,
			MachineUptimePercent:     uptime,
			AverageEngagementTime:    c.AverageEngagementTime,
			StartDate:                c.StartDate,
			EndDate:                  c.EndDate,
		}
		summary.TotalInteractions += c.TotalUserInteractions
		summary.TotalDispensed += c.TotalProductsDispensed
		summary.TotalSamples += c.TotalFreeSamplesRedeemed
		summary.TotalCustomers += c.UniqueCustomers
		uptimeSum += uptime
		engagementSum += c.AverageEngagementTime
	}
	summary.AvgUptime = fmt.Sprintf("%.2f", uptimeSum/float64(len(campaigns)))
	summary.AvgEngagement = fmt.Sprintf("%.1f", engagementSum/float64(len(campaigns)))

	interactions := terminalSeries(campaigns, func(c campdomain.Campaign) float64 { return float64(c.TotalUserInteractions) })
	dispensed := terminalSeries(campaigns, func(c campdomain.Campaign) float64 { return float64(c.TotalProductsDispensed) })

	preds := &domain.Predictions{
		Interactions: forecastSeries(interactions, days),
		Dispensed:    forecastSeries(dispensed, days),
	}
	if preds.Interactions == nil && preds.Dispensed == nil {
		preds = nil
	}

	return domain.PredictionsReport{
		Predictions: preds,
		Campaigns:   summaries,
		Summary:     &summary,
		TenantID:    tenantID,
	}, nil
}

// terminalSeries builds one point per campaign at its end date, skipping
// campaigns with no recorded activity
func terminalSeries(campaigns []campdomain.Campaign, value func(campdomain.Campaign) float64) []timeseries.Point {
	var points []timeseries.Point
	for _, c := range campaigns {
		v := value(c)
		if v <= 0 {
			continue
		}
		at := c.EndDate
		if at.IsZero() {
			at = c.StartDate
		}
		points = append(points, timeseries.Point{At: at, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].At.Before(points[j].At) })
	return points
}

// forecastSeries runs the ensemble over a terminal-counter series, or
// reports nothing when the history is too thin for it
func forecastSeries(points []timeseries.Point, days int) *domain.MetricPrediction {
	if len(points) < 2 {
		return nil
	}
	res, err := timeseries.EnsembleForecast(points, days)
	if err != nil {
		return nil
	}
	confidence := 0.0
	if len(res.Predictions) > 0 {
		confidence = res.Predictions[0].Confidence
	}
	return &domain.MetricPrediction{
		Forecast:   res.Predictions,
		Trend:      res.Trend,
		Confidence: confidence,
		Historical: points,
	}
}
