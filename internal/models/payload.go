package models

// ChartPoint is one dated value of the actual or forecast chart series.
type ChartPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Chart holds the actual and forecast series rendered by clients.
type Chart struct {
	Actual   []ChartPoint `json:"actual"`
	Forecast []ChartPoint `json:"forecast"`
}

// KPIs are the headline numbers of a forecast. GrowthPct is nil when the
// trailing actual sum is zero (null sentinel, not an error).
type KPIs struct {
	LastPeriodsActual   float64  `json:"last_periods_actual"`
	NextPeriodsForecast float64  `json:"next_periods_forecast"`
	GrowthPct           *float64 `json:"growth_pct"`
}

// BestPredicted is the forecast point with the maximum value; ties go to
// the earliest date.
type BestPredicted struct {
	BestDate  *string  `json:"best_date"`
	BestValue *float64 `json:"best_value"`
}

// SeasonalityInsight ranks historical calendar positions by average value.
// With fewer than two full seasonal cycles of history the ranking is empty
// and DefaultNote carries a fixed explanation instead.
type SeasonalityInsight struct {
	TopMonthNames []string `json:"top_month_names"`
	DefaultNote   string   `json:"default_note"`
}

// AnomalyInsight flags an unusual most recent actual value.
type AnomalyInsight struct {
	IsAnomaly bool   `json:"is_anomaly"`
	Message   string `json:"message"`
}

// Insights groups the derived findings of a forecast.
type Insights struct {
	BestPredicted   BestPredicted      `json:"best_predicted"`
	Seasonality     SeasonalityInsight `json:"seasonality"`
	Anomaly         AnomalyInsight     `json:"anomaly"`
	Recommendations []string           `json:"recommendations"`
}

// Confidence is a coarse trust indicator derived from history length and
// volatility. It is a UX label, not a statistical interval.
type Confidence struct {
	Label string `json:"label"`
	Note  string `json:"note"`
}

// TableRow is one forecast period of the tabular view and CSV export.
type TableRow struct {
	Date           string  `json:"date"`
	PredictedSales float64 `json:"predicted_sales"`
}

// YearRow aggregates actual and forecast sales of one calendar year.
type YearRow struct {
	Year          int     `json:"year"`
	ActualSales   float64 `json:"actual_sales"`
	ForecastSales float64 `json:"forecast_sales"`
	Total         float64 `json:"total"`
}

// Model source values recorded in the payload.
const (
	SourcePrecomputed = "precomputed"
	SourceOnDemand    = "on_demand"
)

// ForecastPayload is the complete response of a forecast request.
// Immutable once produced; identical requests over unchanged data yield
// bit-identical payloads (apart from CacheHit).
type ForecastPayload struct {
	Freq       Frequency  `json:"freq"`
	Filters    Filters    `json:"filters"`
	Mode       Mode       `json:"mode"`
	Scenario   Scenario   `json:"scenario"`
	Confidence Confidence `json:"confidence"`
	KPIs       KPIs       `json:"kpis"`
	Insights   Insights   `json:"insights"`
	Chart      Chart      `json:"chart"`
	Table      []TableRow `json:"table"`
	YearTable  []YearRow  `json:"year_table"`
	CacheHit   bool       `json:"cache_hit"`
	Source     string     `json:"source"`
}
