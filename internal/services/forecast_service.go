package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/yathboss/revenue-vision/internal/config"
	"github.com/yathboss/revenue-vision/internal/dataset"
	"github.com/yathboss/revenue-vision/internal/models"
)

// ForecastService runs the full pipeline for a request: aggregate,
// train-or-fetch a model, forecast recursively, apply the scenario,
// derive insights and memoize the assembled payload.
type ForecastService struct {
	records []models.SalesRecord
	cfg     *config.Config
	store   *ModelStore
	cache   *ResultCache
	logger  *logrus.Logger
}

func NewForecastService(records []models.SalesRecord, cfg *config.Config, store *ModelStore, cache *ResultCache, logger *logrus.Logger) *ForecastService {
	return &ForecastService{
		records: records,
		cfg:     cfg,
		store:   store,
		cache:   cache,
		logger:  logger,
	}
}

// Forecast serves one request, computing at most once per signature. The
// returned payload is a copy carrying the per-response cache_hit flag;
// the cached payload itself is never mutated.
func (s *ForecastService) Forecast(ctx context.Context, req models.ForecastRequest) (*models.ForecastPayload, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload, hit, err := s.cache.GetOrCompute(ctx, req.Signature(), func() (*models.ForecastPayload, error) {
		return s.compute(req)
	})
	if err != nil {
		return nil, err
	}

	out := *payload
	out.CacheHit = hit
	return &out, nil
}

// FilterOptions lists the ledger's distinct filter values.
func (s *ForecastService) FilterOptions() models.FilterOptions {
	return dataset.Options(s.records)
}

// Flush clears the result cache and the trained-model store. Manual
// retrain operation; there is no automatic invalidation on data change.
func (s *ForecastService) Flush(ctx context.Context) error {
	s.store.Flush()
	return s.cache.Flush(ctx)
}

// ModelTrainCount exposes the training counter for instrumentation.
func (s *ForecastService) ModelTrainCount() int64 {
	return s.store.TrainCount()
}

func (s *ForecastService) compute(req models.ForecastRequest) (*models.ForecastPayload, error) {
	series, err := Aggregate(s.records, req.Freq, req.Filters)
	if err != nil {
		return nil, err
	}

	model, existed, err := s.store.GetOrTrain(req.ModelKey(), func() (*ForecastModel, error) {
		return s.train(series, req.Freq)
	})
	if err != nil {
		return nil, err
	}

	horizon := Horizon(req.Freq)
	base, err := RecursiveForecast(model, series, req.Freq, horizon, s.logger)
	if err != nil {
		return nil, err
	}

	// Scenario first: every downstream KPI and insight reads the
	// adjusted series, never the unadjusted base.
	adjusted := ApplyScenario(base, req.Scenario, s.cfg.Forecast)

	source := models.SourceOnDemand
	if existed {
		source = models.SourcePrecomputed
	}
	return s.assemble(req, series, adjusted, source), nil
}

func (s *ForecastService) train(series []models.TimeSeriesPoint, freq models.Frequency) (*ForecastModel, error) {
	set, err := BuildTrainingSet(series, freq)
	if err != nil {
		return nil, err
	}

	m := s.cfg.Forecast.Model
	reg := NewGBTRegressor(GBTConfigFrom(
		m.Trees, m.LearningRate, m.MaxDepth, m.MinChildSamples,
		m.Subsample, m.Colsample, m.Seed))
	if err := reg.Fit(set.Rows, set.Targets); err != nil {
		return nil, err
	}

	return &ForecastModel{Regressor: reg, Columns: set.Columns, Freq: freq}, nil
}

func (s *ForecastService) assemble(req models.ForecastRequest, actual, forecast []models.TimeSeriesPoint, source string) *models.ForecastPayload {
	fc := s.cfg.Forecast

	chartActual := make([]models.ChartPoint, len(actual))
	for i, p := range actual {
		chartActual[i] = models.ChartPoint{Date: p.PeriodStart.Format("2006-01-02"), Value: p.Value}
	}
	chartForecast := make([]models.ChartPoint, len(forecast))
	table := make([]models.TableRow, len(forecast))
	for i, p := range forecast {
		date := p.PeriodStart.Format("2006-01-02")
		chartForecast[i] = models.ChartPoint{Date: date, Value: p.Value}
		table[i] = models.TableRow{Date: date, PredictedSales: p.Value}
	}

	kpis := ComputeKPIs(actual, forecast, fc.KPIWindow)
	seasonality := Seasonality(actual, req.Freq, fc.SeasonalityTop)

	return &models.ForecastPayload{
		Freq:       req.Freq,
		Filters:    req.Filters,
		Mode:       req.Mode,
		Scenario:   req.Scenario,
		Confidence: ComputeConfidence(actual, req.Freq),
		KPIs:       kpis,
		Insights: models.Insights{
			BestPredicted:   BestPredicted(forecast),
			Seasonality:     seasonality,
			Anomaly:         DetectAnomaly(actual, fc.AnomalyWindow, fc.AnomalyThreshold),
			Recommendations: Recommendations(req.Freq, kpis.GrowthPct, seasonality.TopMonthNames),
		},
		Chart:     models.Chart{Actual: chartActual, Forecast: chartForecast},
		Table:     table,
		YearTable: buildYearTable(actual, forecast),
		Source:    source,
	}
}

// buildYearTable rolls actual and forecast sums up to calendar years;
// this is what turns the 12 forecasted months of a yearly request into a
// year-level view.
func buildYearTable(actual, forecast []models.TimeSeriesPoint) []models.YearRow {
	type yearSums struct {
		actual   float64
		forecast float64
	}
	byYear := make(map[int]*yearSums)
	sums := func(year int) *yearSums {
		s, ok := byYear[year]
		if !ok {
			s = &yearSums{}
			byYear[year] = s
		}
		return s
	}

	for _, p := range actual {
		sums(p.PeriodStart.Year()).actual += p.Value
	}
	for _, p := range forecast {
		sums(p.PeriodStart.Year()).forecast += p.Value
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	rows := make([]models.YearRow, 0, len(years))
	for _, y := range years {
		s := byYear[y]
		rows = append(rows, models.YearRow{
			Year:          y,
			ActualSales:   s.actual,
			ForecastSales: s.forecast,
			Total:         s.actual + s.forecast,
		})
	}
	return rows
}
