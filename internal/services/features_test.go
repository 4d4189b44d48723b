package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yathboss/revenue-vision/internal/models"
	"github.com/yathboss/revenue-vision/internal/utils"
)

func TestFeatureColumns(t *testing.T) {
	monthly := FeatureColumns(models.FrequencyMonthly)
	weekly := FeatureColumns(models.FrequencyWeekly)

	// 5 lags + 3 windows x 3 stats + 12 calendar columns.
	assert.Len(t, monthly, 26)
	// 6 lags + 3 windows x 3 stats + 12 calendar columns.
	assert.Len(t, weekly, 27)

	assert.Contains(t, monthly, "lag_12")
	assert.Contains(t, monthly, "roll_std_6")
	assert.Contains(t, weekly, "lag_13")
	assert.Contains(t, weekly, "roll_sum_4")
	assert.Contains(t, monthly, "is_nov_dec")
}

func TestBuildTrainingSet_RowLayout(t *testing.T) {
	series := monthlySeries(time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC), 20, func(i int) float64 {
		return float64(i + 1)
	})

	set, err := BuildTrainingSet(series, models.FrequencyMonthly)
	require.NoError(t, err)

	// Largest lag/window is 12, so rows start at index 12.
	require.Len(t, set.Rows, 8)
	require.Len(t, set.Targets, 8)
	assert.Equal(t, FeatureColumns(models.FrequencyMonthly), set.Columns)

	// First row predicts series[12] = 13 from values 1..12.
	row := set.Rows[0]
	assert.InDelta(t, 13, set.Targets[0], 1e-9)
	assert.InDelta(t, 12, row[0], 1e-9, "lag_1")
	assert.InDelta(t, 11, row[1], 1e-9, "lag_2")
	assert.InDelta(t, 10, row[2], 1e-9, "lag_3")
	assert.InDelta(t, 7, row[3], 1e-9, "lag_6")
	assert.InDelta(t, 1, row[4], 1e-9, "lag_12")

	// roll_mean_3 over {10, 11, 12}.
	assert.InDelta(t, 11, row[5], 1e-9)
	// roll_sum_3.
	assert.InDelta(t, 33, row[7], 1e-9)
	// roll_mean_12 over 1..12.
	assert.InDelta(t, 6.5, row[11], 1e-9)
}

func TestBuildTrainingSet_NoLeakage(t *testing.T) {
	series := monthlySeries(time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC), 14, func(i int) float64 {
		return float64(i + 1)
	})

	// Spiking the value at the target index must not change its own row.
	base, err := BuildTrainingSet(series, models.FrequencyMonthly)
	require.NoError(t, err)

	spiked := make([]models.TimeSeriesPoint, len(series))
	copy(spiked, series)
	spiked[12].Value = 1e6

	changed, err := BuildTrainingSet(spiked, models.FrequencyMonthly)
	require.NoError(t, err)

	assert.Equal(t, base.Rows[0], changed.Rows[0])
	assert.NotEqual(t, base.Targets[0], changed.Targets[0])
}

func TestBuildTrainingSet_TooShort(t *testing.T) {
	series := monthlySeries(time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC), 12, func(i int) float64 {
		return float64(i)
	})

	_, err := BuildTrainingSet(series, models.FrequencyMonthly)
	require.Error(t, err)

	var noData *utils.NoDataError
	assert.ErrorAs(t, err, &noData)
}

func TestBuildRow(t *testing.T) {
	series := monthlySeries(time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC), 12, func(i int) float64 {
		return float64(i + 1)
	})
	next := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

	row, ok := BuildRow(series, next, models.FrequencyMonthly)
	require.True(t, ok)
	require.Len(t, row, len(FeatureColumns(models.FrequencyMonthly)))
	assert.InDelta(t, 12, row[0], 1e-9, "lag_1 is the most recent value")

	_, ok = BuildRow(series[:11], next, models.FrequencyMonthly)
	assert.False(t, ok, "window shorter than the largest lag")
}

func TestCalendarFeatures_Cyclic(t *testing.T) {
	dec := calendarFeatures(time.Date(2015, 12, 1, 0, 0, 0, 0, time.UTC))
	jan := calendarFeatures(time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC))
	jun := calendarFeatures(time.Date(2016, 6, 1, 0, 0, 0, 0, time.UTC))

	// month_sin and month_cos sit at fixed offsets after week_of_year.
	const sinIdx, cosIdx = 6, 7
	distAdjacent := math.Hypot(dec[sinIdx]-jan[sinIdx], dec[cosIdx]-jan[cosIdx])
	distOpposite := math.Hypot(dec[sinIdx]-jun[sinIdx], dec[cosIdx]-jun[cosIdx])
	assert.Less(t, distAdjacent, distOpposite, "December and January are adjacent on the cycle")

	assert.Equal(t, 1.0, dec[10], "is_q4")
	assert.Equal(t, 1.0, dec[11], "is_nov_dec")
	assert.Equal(t, 0.0, jun[10])
	assert.Equal(t, 0.0, jun[11])
}
