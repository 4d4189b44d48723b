package services

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yathboss/revenue-vision/internal/config"
	"github.com/yathboss/revenue-vision/internal/models"
	"github.com/yathboss/revenue-vision/internal/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Forecast: config.ForecastConfig{
			AnomalyThreshold: 2.2,
			AnomalyWindow:    12,
			KPIWindow:        3,
			SeasonalityTop:   3,
			Optimistic:       config.ScenarioConfig{Base: 0.02, Slope: 0.005, Cap: 0.08},
			Pessimistic:      config.ScenarioConfig{Base: 0.02, Slope: 0.004, Cap: 0.08},
			Model: config.ModelConfig{
				Trees:           60,
				LearningRate:    0.1,
				MaxDepth:        4,
				MinChildSamples: 2,
				Subsample:       0.9,
				Colsample:       0.9,
				Seed:            42,
			},
		},
	}
}

func newTestService(records []models.SalesRecord) *ForecastService {
	logger := testLogger()
	return NewForecastService(records, testConfig(), NewModelStore(logger), NewResultCache(nil, logger), logger)
}

func baseRequest(freq models.Frequency) models.ForecastRequest {
	return models.ForecastRequest{
		Freq:     freq,
		Filters:  allFilters,
		Mode:     models.ModeFast,
		Scenario: models.ScenarioBase,
	}
}

func trendRecords() []models.SalesRecord {
	return monthlyRecords(time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC), 48, func(i int) float64 {
		return 1000 + 20*float64(i)
	})
}

func TestForecast_MonthlyPayload(t *testing.T) {
	svc := newTestService(trendRecords())

	payload, err := svc.Forecast(context.Background(), baseRequest(models.FrequencyMonthly))
	require.NoError(t, err)

	assert.Equal(t, models.FrequencyMonthly, payload.Freq)
	assert.Equal(t, models.ScenarioBase, payload.Scenario)
	assert.Equal(t, models.SourceOnDemand, payload.Source)
	assert.False(t, payload.CacheHit)

	require.Len(t, payload.Chart.Forecast, 12)
	require.Len(t, payload.Table, 12)
	assert.Len(t, payload.Chart.Actual, 48)

	for i, row := range payload.Table {
		assert.Equal(t, payload.Chart.Forecast[i].Date, row.Date)
		assert.Equal(t, payload.Chart.Forecast[i].Value, row.PredictedSales)
		assert.False(t, math.IsNaN(row.PredictedSales) || math.IsInf(row.PredictedSales, 0))
	}

	// 48 months of history starting Jan 2013 end Dec 2016; the forecast
	// runs through 2017.
	assert.Equal(t, "2017-01-01", payload.Table[0].Date)

	require.NotNil(t, payload.KPIs.GrowthPct)
	require.NotNil(t, payload.Insights.BestPredicted.BestDate)
	assert.NotEmpty(t, payload.Insights.Recommendations)
	assert.NotEmpty(t, payload.Confidence.Label)
}

func TestForecast_WeeklyHorizon(t *testing.T) {
	start := time.Date(2014, 1, 6, 0, 0, 0, 0, time.UTC)
	records := make([]models.SalesRecord, 0, 120)
	for i := 0; i < 120; i++ {
		records = append(records, models.SalesRecord{
			OrderDate: start.AddDate(0, 0, 7*i),
			Sales:     decimal.NewFromFloat(500 + 10*math.Sin(float64(i)/5)),
			Category:  "Furniture", Region: "West", Segment: "Consumer",
		})
	}
	svc := newTestService(records)

	payload, err := svc.Forecast(context.Background(), baseRequest(models.FrequencyWeekly))
	require.NoError(t, err)
	require.Len(t, payload.Table, 13)
}

func TestForecast_YearlyRollsUpTwelveMonths(t *testing.T) {
	svc := newTestService(trendRecords())

	payload, err := svc.Forecast(context.Background(), baseRequest(models.FrequencyYearly))
	require.NoError(t, err)
	require.Len(t, payload.Table, 12, "yearly forecasts 12 monthly points")

	// History covers 2013-2016, the forecast 2017.
	require.Len(t, payload.YearTable, 5)
	last := payload.YearTable[len(payload.YearTable)-1]
	assert.Equal(t, 2017, last.Year)
	assert.Zero(t, last.ActualSales)
	assert.Greater(t, last.ForecastSales, 0.0)
	assert.InDelta(t, last.ForecastSales, last.Total, 1e-9)

	first := payload.YearTable[0]
	assert.Equal(t, 2013, first.Year)
	assert.Zero(t, first.ForecastSales)
	assert.Greater(t, first.ActualSales, 0.0)
}

func TestForecast_ScenarioOrdering(t *testing.T) {
	svc := newTestService(trendRecords())
	ctx := context.Background()

	get := func(scenario models.Scenario) *models.ForecastPayload {
		req := baseRequest(models.FrequencyMonthly)
		req.Scenario = scenario
		payload, err := svc.Forecast(ctx, req)
		require.NoError(t, err)
		return payload
	}

	base := get(models.ScenarioBase)
	opt := get(models.ScenarioOptimistic)
	pes := get(models.ScenarioPessimistic)

	for i := range base.Table {
		assert.GreaterOrEqual(t, opt.Table[i].PredictedSales, base.Table[i].PredictedSales)
		assert.LessOrEqual(t, pes.Table[i].PredictedSales, base.Table[i].PredictedSales)
		assert.GreaterOrEqual(t, pes.Table[i].PredictedSales, 0.0)
	}

	// Scenarios share one trained model; only the multiplier differs.
	assert.Equal(t, int64(1), svc.ModelTrainCount())
}

func TestForecast_CacheHitReturnsIdenticalPayload(t *testing.T) {
	svc := newTestService(trendRecords())
	ctx := context.Background()

	first, err := svc.Forecast(ctx, baseRequest(models.FrequencyMonthly))
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := svc.Forecast(ctx, baseRequest(models.FrequencyMonthly))
	require.NoError(t, err)
	assert.True(t, second.CacheHit)

	// Identical apart from the per-response flag.
	expected := *first
	expected.CacheHit = true
	assert.Equal(t, &expected, second)
	assert.Equal(t, int64(1), svc.ModelTrainCount())
}

func TestForecast_ValidationAndNoData(t *testing.T) {
	svc := newTestService(trendRecords())
	ctx := context.Background()

	req := baseRequest(models.FrequencyMonthly)
	req.Freq = "daily"
	_, err := svc.Forecast(ctx, req)
	var vErr *utils.ValidationError
	require.Error(t, err)
	assert.ErrorAs(t, err, &vErr)

	req = baseRequest(models.FrequencyMonthly)
	req.Filters.Category = "Office Supplies"
	_, err = svc.Forecast(ctx, req)
	var noData *utils.NoDataError
	require.Error(t, err)
	assert.ErrorAs(t, err, &noData)
}

func TestForecast_DecemberPeakInsights(t *testing.T) {
	start := time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)
	// Strong Nov/Dec peaks over four years, ending on a typical October.
	records := monthlyRecords(start, 46, func(i int) float64 {
		switch start.AddDate(0, i, 0).Month() {
		case time.December:
			return 5000
		case time.November:
			return 4000
		default:
			return 1000
		}
	})
	svc := newTestService(records)

	payload, err := svc.Forecast(context.Background(), baseRequest(models.FrequencyMonthly))
	require.NoError(t, err)

	require.NotEmpty(t, payload.Insights.Seasonality.TopMonthNames)
	assert.Equal(t, "Dec", payload.Insights.Seasonality.TopMonthNames[0])
	assert.False(t, payload.Insights.Anomaly.IsAnomaly, "a typical final month is not anomalous")

	peakRec := false
	for _, r := range payload.Insights.Recommendations {
		if r == "Prepare for the seasonal peak (Nov-Dec): stock up and plan campaigns early." {
			peakRec = true
		}
	}
	assert.True(t, peakRec)
}

func TestForecast_ConcurrentIdenticalRequests(t *testing.T) {
	svc := newTestService(trendRecords())
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*models.ForecastPayload, 12)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload, err := svc.Forecast(ctx, baseRequest(models.FrequencyMonthly))
			assert.NoError(t, err)
			results[i] = payload
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), svc.ModelTrainCount(), "one training across concurrent identical requests")
	for _, p := range results {
		require.NotNil(t, p)
		assert.Equal(t, results[0].Table, p.Table)
	}
}

func TestForecast_FlushForcesRecompute(t *testing.T) {
	svc := newTestService(trendRecords())
	ctx := context.Background()

	_, err := svc.Forecast(ctx, baseRequest(models.FrequencyMonthly))
	require.NoError(t, err)
	require.Equal(t, int64(1), svc.ModelTrainCount())

	require.NoError(t, svc.Flush(ctx))

	payload, err := svc.Forecast(ctx, baseRequest(models.FrequencyMonthly))
	require.NoError(t, err)
	assert.False(t, payload.CacheHit)
	assert.Equal(t, int64(2), svc.ModelTrainCount())
}

func TestForecast_SourceReflectsModelAge(t *testing.T) {
	svc := newTestService(trendRecords())
	ctx := context.Background()

	base, err := svc.Forecast(ctx, baseRequest(models.FrequencyMonthly))
	require.NoError(t, err)
	assert.Equal(t, models.SourceOnDemand, base.Source)

	// Same model key, different signature: the model already exists.
	req := baseRequest(models.FrequencyMonthly)
	req.Scenario = models.ScenarioOptimistic
	opt, err := svc.Forecast(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.SourcePrecomputed, opt.Source)
}

func TestWarmup(t *testing.T) {
	svc := newTestService(trendRecords())

	warm := NewWarmupService(svc, []string{
		"monthly|All|All|All",
		"monthly|Technology|All|All", // no matching records
		"not-a-signature",
	}, testLogger())
	warm.Warm(context.Background())

	assert.Equal(t, int64(1), svc.ModelTrainCount(), "bad entries are skipped, good ones trained")

	payload, err := svc.Forecast(context.Background(), baseRequest(models.FrequencyMonthly))
	require.NoError(t, err)
	assert.True(t, payload.CacheHit, "warmed signature serves from cache")
	assert.Equal(t, models.SourceOnDemand, payload.Source, "payload records the state at compute time")
}
