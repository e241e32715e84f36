package timeseries

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// InsightType grades an insight for portal rendering
type InsightType string

const (
	// InsightWarning flags a negative development
	InsightWarning InsightType = "warning"
	// InsightSuccess flags a positive development
	InsightSuccess InsightType = "success"
	// InsightInfo flags something worth a look without a verdict
	InsightInfo InsightType = "info"
)

// Insight is one human-readable finding derived from a forecast
type Insight struct {
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Metric      string      `json:"metric"`
	Value       float64     `json:"value"`
}

var titleCaser = cases.Title(language.English)

// HumanizeMetric turns a snake_case metric key into a display name
func HumanizeMetric(metric string) string {
	return titleCaser.String(strings.ReplaceAll(metric, "_", " "))
}

// GenerateInsights derives portal insights from a series and its forecast:
// sustained trends past ±10%, detected anomalies, and a predicted next-step
// swing past 15%.
func GenerateInsights(historical []Point, forecast ForecastResult, metric string) []Insight {
	insights := []Insight{}
	display := HumanizeMetric(metric)

	change := forecast.Trend.ChangePercent
	switch {
	case forecast.Trend.Trend == TrendDecreasing && change < -10:
		insights = append(insights, Insight{
			Type:  InsightWarning,
			Title: fmt.Sprintf("Declining %s", display),
			Description: fmt.Sprintf(
				"%s has decreased by %.1f%% recently. Consider reviewing campaign strategy.",
				display, math.Abs(change)),
			Metric: metric,
			Value:  change,
		})
	case forecast.Trend.Trend == TrendIncreasing && change > 10:
		insights = append(insights, Insight{
			Type:  InsightSuccess,
			Title: fmt.Sprintf("Growing %s", display),
			Description: fmt.Sprintf(
				"%s has increased by %.1f%%! Campaign is performing well.",
				display, change),
			Metric: metric,
			Value:  change,
		})
	}

	if n := len(forecast.Anomalies); n > 0 {
		insights = append(insights, Insight{
			Type:  InsightInfo,
			Title: "Unusual Activity Detected",
			Description: fmt.Sprintf(
				"Detected %d unusual data point(s). This could indicate special events or data quality issues.", n),
			Metric: metric,
			Value:  float64(n),
		})
	}

	if len(historical) > 0 && len(forecast.Predictions) > 0 {
		last := historical[len(historical)-1].Value
		if last != 0 {
			predicted := (forecast.Predictions[0].Predicted - last) / last * 100
			if math.Abs(predicted) > 15 {
				typ, verb := InsightSuccess, "increase"
				if predicted < 0 {
					typ, verb = InsightWarning, "decrease"
				}
				insights = append(insights, Insight{
					Type:  typ,
					Title: "Significant Change Expected",
					Description: fmt.Sprintf(
						"%s is predicted to %s by %.1f%% tomorrow.",
						display, verb, math.Abs(predicted)),
					Metric: metric,
					Value:  predicted,
				})
			}
		}
	}

	return insights
}
