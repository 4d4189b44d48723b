package services

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/yathboss/revenue-vision/internal/models"
	"github.com/yathboss/revenue-vision/internal/utils"
)

// Lag lists and trailing rolling windows per cadence. Monthly windows span
// a full seasonal cycle; weekly lags reach back one quarter.
func lagList(freq models.Frequency) []int {
	if freq == models.FrequencyWeekly {
		return []int{1, 2, 3, 4, 8, 13}
	}
	return []int{1, 2, 3, 6, 12}
}

func rollingWindows(freq models.Frequency) []int {
	if freq == models.FrequencyWeekly {
		return []int{4, 8, 13}
	}
	return []int{3, 6, 12}
}

// featureWindow is the number of earlier periods a feature row consumes.
// Rows closer to the start of the series than this are excluded.
func featureWindow(freq models.Frequency) int {
	need := 0
	for _, l := range lagList(freq) {
		if l > need {
			need = l
		}
	}
	for _, w := range rollingWindows(freq) {
		if w > need {
			need = w
		}
	}
	return need
}

// FeatureColumns names the feature vector positions, in build order.
func FeatureColumns(freq models.Frequency) []string {
	cols := make([]string, 0, 24)
	for _, l := range lagList(freq) {
		cols = append(cols, fmt.Sprintf("lag_%d", l))
	}
	for _, w := range rollingWindows(freq) {
		cols = append(cols,
			fmt.Sprintf("roll_mean_%d", w),
			fmt.Sprintf("roll_std_%d", w),
			fmt.Sprintf("roll_sum_%d", w))
	}
	cols = append(cols,
		"year", "month", "quarter", "day_of_week", "day_of_month", "week_of_year",
		"month_sin", "month_cos", "week_sin", "week_cos",
		"is_q4", "is_nov_dec")
	return cols
}

// TrainingSet is the supervised matrix built from one aggregated series.
type TrainingSet struct {
	Columns []string
	Rows    [][]float64
	Targets []float64
}

// BuildTrainingSet converts a series into supervised rows. A row at index
// i reads only values strictly before i, so lag features never leak the
// target. Rows without a full lag/rolling window are dropped.
func BuildTrainingSet(series []models.TimeSeriesPoint, freq models.Frequency) (*TrainingSet, error) {
	need := featureWindow(freq)
	if len(series) <= need {
		return nil, utils.NewNoDataErrorf(
			"not enough history to build lag features (%d periods, need more than %d); try broader filters",
			len(series), need)
	}

	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Value
	}

	set := &TrainingSet{Columns: FeatureColumns(freq)}
	for i := need; i < len(series); i++ {
		set.Rows = append(set.Rows, computeRow(values, i, series[i].PeriodStart, freq))
		set.Targets = append(set.Targets, values[i])
	}
	return set, nil
}

// BuildRow builds the inference row for the period following the window.
// The window may mix real history with earlier predictions; the two are
// indistinguishable here. Returns false when the window is too short.
func BuildRow(window []models.TimeSeriesPoint, next time.Time, freq models.Frequency) ([]float64, bool) {
	need := featureWindow(freq)
	if len(window) < need {
		return nil, false
	}
	values := make([]float64, len(window))
	for i, p := range window {
		values[i] = p.Value
	}
	return computeRow(values, len(values), next, freq), true
}

// computeRow builds the feature vector for position idx; only
// values[:idx] are read.
func computeRow(values []float64, idx int, date time.Time, freq models.Frequency) []float64 {
	row := make([]float64, 0, 24)

	for _, l := range lagList(freq) {
		row = append(row, values[idx-l])
	}

	for _, w := range rollingWindows(freq) {
		window := values[idx-w : idx]
		mean := stat.Mean(window, nil)
		std := 0.0
		if w > 1 {
			std = stat.StdDev(window, nil)
		}
		row = append(row, mean, std, floats.Sum(window))
	}

	row = append(row, calendarFeatures(date)...)
	return row
}

// calendarFeatures encodes seasonal position. The cyclic sin/cos pairs
// keep adjacent periods (December to January) numerically close.
func calendarFeatures(date time.Time) []float64 {
	month := float64(date.Month())
	quarter := float64((int(date.Month())-1)/3 + 1)
	_, isoWeek := date.ISOWeek()
	week := float64(isoWeek)

	isQ4 := 0.0
	if quarter == 4 {
		isQ4 = 1.0
	}
	isNovDec := 0.0
	if date.Month() == time.November || date.Month() == time.December {
		isNovDec = 1.0
	}

	return []float64{
		float64(date.Year()),
		month,
		quarter,
		float64(date.Weekday()),
		float64(date.Day()),
		week,
		math.Sin(2 * math.Pi * month / 12.0),
		math.Cos(2 * math.Pi * month / 12.0),
		math.Sin(2 * math.Pi * week / 52.0),
		math.Cos(2 * math.Pi * week / 52.0),
		isQ4,
		isNovDec,
	}
}
