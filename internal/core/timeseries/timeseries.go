// Package timeseries implements forecasting primitives over daily metric series
package timeseries

import (
	"math"
	"slices"
	"time"

	perr "brandpulse/internal/platform/errors"
)

// Trend classifies the direction of a series
type Trend string

const (
	// TrendIncreasing means the fitted slope exceeds +0.1
	TrendIncreasing Trend = "increasing"
	// TrendDecreasing means the fitted slope is below -0.1
	TrendDecreasing Trend = "decreasing"
	// TrendStable means the fitted slope is within ±0.1
	TrendStable Trend = "stable"
)

// Point is one observation in a daily series
type Point struct {
	At    time.Time `json:"timestamp"`
	Value float64   `json:"value"`
}

// Prediction is one forecast step
type Prediction struct {
	At         time.Time `json:"timestamp"`
	Predicted  float64   `json:"predicted"`
	Confidence float64   `json:"confidence"`
}

// TrendAnalysis summarizes the direction and fit of a series
type TrendAnalysis struct {
	Trend         Trend   `json:"trend"`
	Slope         float64 `json:"slope"`
	RSquared      float64 `json:"rSquared"`
	Prediction    float64 `json:"prediction"`
	ChangePercent float64 `json:"changePercent"`
}

// ForecastResult bundles ensemble output with trend and anomaly context
type ForecastResult struct {
	Predictions []Prediction  `json:"predictions"`
	Trend       TrendAnalysis `json:"trend"`
	Anomalies   []int         `json:"anomalies"`
}

// Seasonality holds per-position period averages and a strength score
type Seasonality struct {
	Pattern  []float64 `json:"pattern"`
	Strength float64   `json:"strength"`
}

// linearFit holds an OLS fit of value against point index
type linearFit struct {
	slope     float64
	intercept float64
	r2        float64
}

func (f linearFit) predict(x float64) float64 {
	return f.slope*x + f.intercept
}

// fitLinear runs least squares over (index, value). Caller guarantees len >= 2.
func fitLinear(data []Point) linearFit {
	n := float64(len(data))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range data {
		x := float64(i)
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	var slope float64
	if denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
	}
	intercept := (sumY - slope*sumX) / n

	mean := sumY / n
	var ssRes, ssTot float64
	for i, p := range data {
		pred := slope*float64(i) + intercept
		ssRes += (p.Value - pred) * (p.Value - pred)
		ssTot += (p.Value - mean) * (p.Value - mean)
	}
	r2 := 1.0
	if ssTot != 0 {
		r2 = 1 - ssRes/ssTot
	}
	return linearFit{slope: slope, intercept: intercept, r2: r2}
}

// clampRound rounds to the nearest integer and floors at zero
func clampRound(v float64) float64 {
	return math.Max(0, math.Round(v))
}

// LinearForecast fits an OLS line over the series and projects horizon daily steps.
// Confidence is the R² of the fit. Needs at least 2 points.
func LinearForecast(data []Point, horizon int) ([]Prediction, error) {
	if len(data) < 2 {
		return nil, perr.InvalidArgf("need at least 2 data points for forecasting")
	}
	fit := fitLinear(data)
	lastIndex := len(data) - 1
	lastAt := data[lastIndex].At

	out := make([]Prediction, 0, horizon)
	for i := 1; i <= horizon; i++ {
		out = append(out, Prediction{
			At:         lastAt.AddDate(0, 0, i),
			Predicted:  clampRound(fit.predict(float64(lastIndex + i))),
			Confidence: fit.r2,
		})
	}
	return out, nil
}

// MovingAverageForecast averages the last window values and extends the
// window's endpoint trend. Confidence is a flat 0.7. Needs at least window points.
func MovingAverageForecast(data []Point, window, horizon int) ([]Prediction, error) {
	if len(data) < window {
		return nil, perr.InvalidArgf("need at least %d data points for moving average", window)
	}
	recent := data[len(data)-window:]
	var sum float64
	for _, p := range recent {
		sum += p.Value
	}
	avg := sum / float64(window)
	trend := (recent[len(recent)-1].Value - recent[0].Value) / float64(window)
	lastAt := data[len(data)-1].At

	out := make([]Prediction, 0, horizon)
	for i := 1; i <= horizon; i++ {
		out = append(out, Prediction{
			At:         lastAt.AddDate(0, 0, i),
			Predicted:  clampRound(avg + trend*float64(i)),
			Confidence: 0.7,
		})
	}
	return out, nil
}

// ExponentialSmoothingForecast runs single exponential smoothing with the
// given alpha, extending the recent seven-point trend. Confidence is a flat
// 0.75. Needs at least 2 points.
func ExponentialSmoothingForecast(data []Point, alpha float64, horizon int) ([]Prediction, error) {
	if len(data) < 2 {
		return nil, perr.InvalidArgf("need at least 2 data points for exponential smoothing")
	}
	smoothed := data[0].Value
	for _, p := range data[1:] {
		smoothed = alpha*p.Value + (1-alpha)*smoothed
	}

	start := len(data) - 7
	if start < 0 {
		start = 0
	}
	recent := data[start:]
	trend := (recent[len(recent)-1].Value - recent[0].Value) / 7

	lastAt := data[len(data)-1].At
	out := make([]Prediction, 0, horizon)
	for i := 1; i <= horizon; i++ {
		out = append(out, Prediction{
			At:         lastAt.AddDate(0, 0, i),
			Predicted:  clampRound(smoothed + trend*float64(i)),
			Confidence: 0.75,
		})
	}
	return out, nil
}

// AnalyzeTrend classifies the series direction from an OLS fit.
// Fewer than 2 points yields a stable zero-slope result rather than an error.
func AnalyzeTrend(data []Point) TrendAnalysis {
	if len(data) < 2 {
		var v float64
		if len(data) == 1 {
			v = data[0].Value
		}
		return TrendAnalysis{Trend: TrendStable, Prediction: v}
	}

	fit := fitLinear(data)
	first := data[0].Value
	last := data[len(data)-1].Value

	var changePercent float64
	if first != 0 {
		changePercent = (last - first) / first * 100
	}

	trend := TrendStable
	if math.Abs(fit.slope) > 0.1 {
		if fit.slope > 0 {
			trend = TrendIncreasing
		} else {
			trend = TrendDecreasing
		}
	}

	return TrendAnalysis{
		Trend:         trend,
		Slope:         fit.slope,
		RSquared:      fit.r2,
		Prediction:    clampRound(fit.predict(float64(len(data)))),
		ChangePercent: math.Round(changePercent*100) / 100,
	}
}

// DetectAnomalies flags indices outside the Tukey fences (1.5×IQR past the
// quartiles). Quartiles are taken at floor(n*0.25) and floor(n*0.75) of the
// sorted values. Fewer than 4 points yields no anomalies.
func DetectAnomalies(data []Point) []int {
	if len(data) < 4 {
		return []int{}
	}
	sorted := make([]float64, len(data))
	for i, p := range data {
		sorted[i] = p.Value
	}
	slices.Sort(sorted)

	q1 := sorted[len(sorted)/4]
	q3 := sorted[len(sorted)*3/4]
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	anomalies := []int{}
	for i, p := range data {
		if p.Value < lower || p.Value > upper {
			anomalies = append(anomalies, i)
		}
	}
	return anomalies
}

// EnsembleForecast averages the linear, moving-average, and exponential
// models step by step, and attaches trend analysis and anomaly indices.
// Needs at least 7 points.
func EnsembleForecast(data []Point, horizon int) (ForecastResult, error) {
	if len(data) < 7 {
		return ForecastResult{}, perr.InvalidArgf("need at least 7 data points for ensemble forecasting")
	}

	window := 7
	if len(data) < window {
		window = len(data)
	}
	linear, err := LinearForecast(data, horizon)
	if err != nil {
		return ForecastResult{}, err
	}
	moving, err := MovingAverageForecast(data, window, horizon)
	if err != nil {
		return ForecastResult{}, err
	}
	expo, err := ExponentialSmoothingForecast(data, 0.3, horizon)
	if err != nil {
		return ForecastResult{}, err
	}

	predictions := make([]Prediction, 0, horizon)
	for i := 0; i < horizon; i++ {
		predictions = append(predictions, Prediction{
			At:         linear[i].At,
			Predicted:  math.Round((linear[i].Predicted + moving[i].Predicted + expo[i].Predicted) / 3),
			Confidence: (linear[i].Confidence + moving[i].Confidence + expo[i].Confidence) / 3,
		})
	}

	return ForecastResult{
		Predictions: predictions,
		Trend:       AnalyzeTrend(data),
		Anomalies:   DetectAnomalies(data),
	}, nil
}

// AnalyzeSeasonality averages values by index modulo period and scores
// strength as the coefficient of variation across the pattern. Fewer than
// two full periods yields an empty pattern.
func AnalyzeSeasonality(data []Point, period int) Seasonality {
	if period <= 0 || len(data) < period*2 {
		return Seasonality{Pattern: []float64{}}
	}

	pattern := make([]float64, period)
	counts := make([]int, period)
	for i, p := range data {
		pos := i % period
		pattern[pos] += p.Value
		counts[pos]++
	}
	for i := range pattern {
		if counts[i] > 0 {
			pattern[i] /= float64(counts[i])
		}
	}

	var mean float64
	for _, v := range pattern {
		mean += v
	}
	mean /= float64(period)

	var variance float64
	for _, v := range pattern {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(period)

	var strength float64
	if mean != 0 {
		strength = math.Sqrt(variance) / mean
	}
	return Seasonality{Pattern: pattern, Strength: strength}
}
