package service_test

import (
	"context"
	"testing"
	"time"

	"brandpulse/internal/core/timeseries"
	"brandpulse/internal/modkit/repokit"
	perr "brandpulse/internal/platform/errors"
	"brandpulse/internal/platform/store"
	"brandpulse/internal/services/analytics/domain"
	"brandpulse/internal/services/analytics/repo"
	"brandpulse/internal/services/analytics/service"
	campdomain "brandpulse/internal/services/campaigns/domain"
)

type fakeTx struct{}

func (fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (fakeTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (fakeTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (f fakeTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	return fn(f)
}

// fakeCampaigns satisfies domain.CampaignReader
type fakeCampaigns struct {
	byID     map[string]campdomain.Campaign
	byTenant map[string][]campdomain.Campaign
}

func (f *fakeCampaigns) Get(_ context.Context, id string) (campdomain.Campaign, error) {
	c, ok := f.byID[id]
	if !ok {
		return campdomain.Campaign{}, perr.NotFoundf("campaign not found")
	}
	return c, nil
}

func (f *fakeCampaigns) List(_ context.Context, tenantID, _, _ string) ([]campdomain.Campaign, error) {
	return f.byTenant[tenantID], nil
}

// fakeHistory satisfies repo.Storage
type fakeHistory struct {
	series map[string][]timeseries.Point // keyed campaignID + "/" + metric
}

func (f *fakeHistory) MetricHistory(_ context.Context, campaignID, metricType string) ([]timeseries.Point, error) {
	return f.series[campaignID+"/"+metricType], nil
}

func newService(c *fakeCampaigns, h *fakeHistory) *service.Service {
	if c.byID == nil {
		c.byID = map[string]campdomain.Campaign{}
	}
	if h.series == nil {
		h.series = map[string][]timeseries.Point{}
	}
	binder := repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return h })
	return service.New(fakeTx{}, binder, c, service.Config{})
}

func day(i int) time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func series(values ...float64) []timeseries.Point {
	out := make([]timeseries.Point, len(values))
	for i, v := range values {
		out[i] = timeseries.Point{At: day(i), Value: v}
	}
	return out
}

func TestForecast(t *testing.T) {
	campaign := campdomain.Campaign{ID: "c1", TenantID: "t1", Name: "Launch"}

	t.Run("missing campaign is not found", func(t *testing.T) {
		svc := newService(&fakeCampaigns{}, &fakeHistory{})
		_, err := svc.Forecast(context.Background(), domain.ForecastInput{CampaignID: "nope", Metric: "totalUserInteractions"})
		if got := perr.CodeOf(err); got != perr.ErrorCodeNotFound {
			t.Fatalf("code got %v want %v", got, perr.ErrorCodeNotFound)
		}
	})

	t.Run("thin history is rejected", func(t *testing.T) {
		svc := newService(
			&fakeCampaigns{byID: map[string]campdomain.Campaign{"c1": campaign}},
			&fakeHistory{series: map[string][]timeseries.Point{
				"c1/totalUserInteractions": series(1, 2, 3),
			}},
		)
		_, err := svc.Forecast(context.Background(), domain.ForecastInput{CampaignID: "c1", Metric: "totalUserInteractions"})
		if got := perr.CodeOf(err); got != perr.ErrorCodeValidation {
			t.Fatalf("code got %v want %v", got, perr.ErrorCodeValidation)
		}
	})

	t.Run("linear method projects the fitted line", func(t *testing.T) {
		svc := newService(
			&fakeCampaigns{byID: map[string]campdomain.Campaign{"c1": campaign}},
			&fakeHistory{series: map[string][]timeseries.Point{
				"c1/totalUserInteractions": series(1, 2, 3, 4, 5, 6, 7),
			}},
		)
		out, err := svc.Forecast(context.Background(), domain.ForecastInput{
			CampaignID: "c1", Metric: "totalUserInteractions", Periods: 3, Method: "linear",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Method != "linear" {
			t.Fatalf("method got %q want linear", out.Method)
		}
		if len(out.Predictions) != 3 {
			t.Fatalf("predictions got %d want 3", len(out.Predictions))
		}
		if out.Predictions[0].Predicted != 8 {
			t.Fatalf("first prediction got %v want 8", out.Predictions[0].Predicted)
		}
		if out.Trend.Trend != timeseries.TrendIncreasing {
			t.Fatalf("trend got %v want increasing", out.Trend.Trend)
		}
		if out.Anomalies != nil {
			t.Fatalf("linear forecast got anomalies %v", out.Anomalies)
		}
	})

	t.Run("default method is the ensemble", func(t *testing.T) {
		svc := newService(
			&fakeCampaigns{byID: map[string]campdomain.Campaign{"c1": campaign}},
			&fakeHistory{series: map[string][]timeseries.Point{
				"c1/totalUserInteractions": series(10, 12, 11, 13, 15, 14, 16),
			}},
		)
		out, err := svc.Forecast(context.Background(), domain.ForecastInput{
			CampaignID: "c1", Metric: "totalUserInteractions",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Method != "ensemble" {
			t.Fatalf("method got %q want ensemble", out.Method)
		}
		if len(out.Predictions) != 7 {
			t.Fatalf("predictions got %d want default horizon 7", len(out.Predictions))
		}
	})
}

func TestTrends(t *testing.T) {
	t.Run("no campaigns yields a message", func(t *testing.T) {
		svc := newService(&fakeCampaigns{}, &fakeHistory{})
		out, err := svc.Trends(context.Background(), "t1", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Message == "" || len(out.Trends) != 0 {
			t.Fatalf("got %+v want empty trends with message", out)
		}
	})

	t.Run("spreads counters over the campaign range", func(t *testing.T) {
		c := campdomain.Campaign{
			ID: "c1", TenantID: "t1", Name: "Launch",
			StartDate:             day(0),
			EndDate:               day(7),
			TotalUserInteractions: 70,
		}
		svc := newService(&fakeCampaigns{byTenant: map[string][]campdomain.Campaign{"t1": {c}}}, &fakeHistory{})

		out, err := svc.Trends(context.Background(), "t1", "totalUserInteractions")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tr, ok := out.Trends["totalUserInteractions"]
		if !ok {
			t.Fatalf("missing requested metric in %v", out.Trends)
		}
		if len(tr.DataPoints) != 8 {
			t.Fatalf("dataPoints got %d want 8", len(tr.DataPoints))
		}
		// 70 interactions over 7 days is a flat 10/day
		if tr.DataPoints[0].Value != 10 {
			t.Fatalf("daily value got %v want 10", tr.DataPoints[0].Value)
		}
		if tr.Trend != timeseries.TrendStable {
			t.Fatalf("trend got %v want stable", tr.Trend)
		}
		if tr.ChangePercent != 0 {
			t.Fatalf("changePercent got %v want 0", tr.ChangePercent)
		}
	})

	t.Run("defaults to the three legacy counters", func(t *testing.T) {
		c := campdomain.Campaign{
			ID: "c1", TenantID: "t1",
			StartDate:              day(0),
			EndDate:                day(10),
			TotalUserInteractions:  100,
			TotalProductsDispensed: 50,
			UniqueCustomers:        20,
		}
		svc := newService(&fakeCampaigns{byTenant: map[string][]campdomain.Campaign{"t1": {c}}}, &fakeHistory{})

		out, err := svc.Trends(context.Background(), "t1", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, key := range []string{"totalProductsDispensed", "totalUserInteractions", "uniqueCustomers"} {
			if _, ok := out.Trends[key]; !ok {
				t.Fatalf("missing %s in %v", key, out.Trends)
			}
		}
	})
}

func TestInsights(t *testing.T) {
	t.Run("combines metric and campaign level findings", func(t *testing.T) {
		campaign := campdomain.Campaign{
			ID: "c1", TenantID: "t1", Name: "Launch",
			MachineUptimePercent:  90.5,
			AverageEngagementTime: 20,
		}
		svc := newService(
			&fakeCampaigns{byID: map[string]campdomain.Campaign{"c1": campaign}},
			&fakeHistory{series: map[string][]timeseries.Point{
				"c1/totalProductsDispensed": series(10, 12, 14, 16, 18, 20, 22),
			}},
		)

		out, err := svc.Insights(context.Background(), "c1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.CampaignName != "Launch" {
			t.Fatalf("campaignName got %q want Launch", out.CampaignName)
		}

		var titles []string
		for _, in := range out.Insights {
			titles = append(titles, in.Title)
		}
		wantTitles := []string{"Growing Product Dispensations", "Low Machine Uptime", "Short Engagement Time"}
		if len(titles) != len(wantTitles) {
			t.Fatalf("insights got %v want %v", titles, wantTitles)
		}
		for i, w := range wantTitles {
			if titles[i] != w {
				t.Fatalf("insight %d got %q want %q", i, titles[i], w)
			}
		}
		if out.Insights[1].Value != 90.5 {
			t.Fatalf("uptime value got %v want 90.5", out.Insights[1].Value)
		}
	})

	t.Run("healthy campaign with thin history has no findings", func(t *testing.T) {
		campaign := campdomain.Campaign{
			ID: "c1", TenantID: "t1", Name: "Launch",
			MachineUptimePercent:  99,
			AverageEngagementTime: 45,
		}
		svc := newService(&fakeCampaigns{byID: map[string]campdomain.Campaign{"c1": campaign}}, &fakeHistory{})

		out, err := svc.Insights(context.Background(), "c1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out.Insights) != 0 {
			t.Fatalf("insights got %v want none", out.Insights)
		}
	})
}

func TestCompare(t *testing.T) {
	c1 := campdomain.Campaign{
		ID: "c1", TenantID: "t1", Name: "A",
		StartDate: day(0), EndDate: day(30), TotalUserInteractions: 100,
	}
	c2 := campdomain.Campaign{
		ID: "c2", TenantID: "t1", Name: "B",
		StartDate: day(0), EndDate: day(30), TotalUserInteractions: 250,
	}
	fc := &fakeCampaigns{byID: map[string]campdomain.Campaign{"c1": c1, "c2": c2}}

	t.Run("ranks by value descending", func(t *testing.T) {
		svc := newService(fc, &fakeHistory{})
		out, err := svc.Compare(context.Background(), domain.CompareInput{CampaignIDs: []string{"c1", "c2"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Metric != "totalUserInteractions" {
			t.Fatalf("metric got %q want default", out.Metric)
		}
		if len(out.Comparison) != 2 || out.Comparison[0].CampaignID != "c2" {
			t.Fatalf("ranking got %+v want c2 first", out.Comparison)
		}
		if out.Comparison[0].Trend != timeseries.TrendIncreasing {
			t.Fatalf("trend got %v want increasing", out.Comparison[0].Trend)
		}
	})

	t.Run("skips unknown ids", func(t *testing.T) {
		svc := newService(fc, &fakeHistory{})
		out, err := svc.Compare(context.Background(), domain.CompareInput{CampaignIDs: []string{"c1", "gone", "c2"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out.Comparison) != 2 {
			t.Fatalf("comparison got %d entries want 2", len(out.Comparison))
		}
	})
}

func TestPredictions(t *testing.T) {
	t.Run("no campaigns yields a message", func(t *testing.T) {
		svc := newService(&fakeCampaigns{}, &fakeHistory{})
		out, err := svc.Predictions(context.Background(), "t1", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Predictions != nil || out.Summary != nil || out.Message == "" {
			t.Fatalf("got %+v want null predictions with message", out)
		}
	})

	t.Run("summarizes but skips forecasting thin fleets", func(t *testing.T) {
		c1 := campdomain.Campaign{
			ID: "c1", TenantID: "t1", Name: "A",
			StartDate: day(0), EndDate: day(10),
			TotalUserInteractions: 100, AverageEngagementTime: 30,
		}
		c2 := campdomain.Campaign{
			ID: "c2", TenantID: "t1", Name: "B",
			StartDate: day(5), EndDate: day(15),
			TotalUserInteractions: 200, AverageEngagementTime: 20,
		}
		svc := newService(&fakeCampaigns{byTenant: map[string][]campdomain.Campaign{"t1": {c2, c1}}}, &fakeHistory{})

		out, err := svc.Predictions(context.Background(), "t1", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Predictions != nil {
			t.Fatalf("predictions got %+v want nil below the ensemble minimum", out.Predictions)
		}
		if out.Summary.TotalInteractions != 300 {
			t.Fatalf("totalInteractions got %d want 300", out.Summary.TotalInteractions)
		}
		// zero uptime counters default to a healthy machine
		if out.Summary.AvgUptime != "100.00" {
			t.Fatalf("avgUptime got %q want 100.00", out.Summary.AvgUptime)
		}
		if out.Summary.AvgEngagement != "25.0" {
			t.Fatalf("avgEngagement got %q want 25.0", out.Summary.AvgEngagement)
		}
		if out.Campaigns[0].ID != "c1" {
			t.Fatalf("campaigns got %+v want start-date order", out.Campaigns)
		}
	})

	t.Run("forecasts with enough campaign history", func(t *testing.T) {
		var campaigns []campdomain.Campaign
		for i := 0; i < 8; i++ {
			campaigns = append(campaigns, campdomain.Campaign{
				ID: "c", TenantID: "t1",
				StartDate:             day(i * 10),
				EndDate:               day(i*10 + 9),
				TotalUserInteractions: int64(100 + i*10),
			})
		}
		svc := newService(&fakeCampaigns{byTenant: map[string][]campdomain.Campaign{"t1": campaigns}}, &fakeHistory{})

		out, err := svc.Predictions(context.Background(), "t1", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Predictions == nil || out.Predictions.Interactions == nil {
			t.Fatalf("got %+v want interactions forecast", out.Predictions)
		}
		if out.Predictions.Dispensed != nil {
			t.Fatalf("dispensed got %+v want nil without dispense activity", out.Predictions.Dispensed)
		}
		p := out.Predictions.Interactions
		if len(p.Forecast) != 14 {
			t.Fatalf("forecast got %d points want default horizon 14", len(p.Forecast))
		}
		if p.Confidence <= 0 || p.Confidence > 1 {
			t.Fatalf("confidence got %v want (0,1]", p.Confidence)
		}
		if len(p.Historical) != 8 {
			t.Fatalf("historical got %d points want 8", len(p.Historical))
		}
	})
}
