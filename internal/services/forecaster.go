package services

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/yathboss/revenue-vision/internal/models"
	"github.com/yathboss/revenue-vision/internal/utils"
)

// Horizon is the number of future periods one forecast run produces.
// Yearly requests forecast 12 monthly points that the year table rolls up.
func Horizon(freq models.Frequency) int {
	if freq == models.FrequencyWeekly {
		return 13
	}
	return 12
}

// RecursiveForecast drives the model step by step across the horizon.
// Each step builds a feature row from the current window, predicts one
// point and feeds it back as the newest lag input; later steps read
// earlier predictions as if they were history.
//
// The result has exactly horizon points and never contains a non-finite
// value: a non-finite prediction is clamped to the previous period's value
// and logged.
func RecursiveForecast(model *ForecastModel, history []models.TimeSeriesPoint, freq models.Frequency, horizon int, logger *logrus.Logger) ([]models.TimeSeriesPoint, error) {
	if horizon <= 0 {
		return nil, utils.NewValidationErrorf("horizon must be positive, got %d", horizon)
	}
	if len(history) == 0 {
		return nil, utils.NewNoDataError("empty history")
	}

	window := append([]models.TimeSeriesPoint(nil), history...)
	forecast := make([]models.TimeSeriesPoint, 0, horizon)
	clamped := 0

	for step := 0; step < horizon; step++ {
		next := NextPeriod(window[len(window)-1].PeriodStart, freq)

		row, ok := BuildRow(window, next, freq)
		if !ok {
			return nil, utils.NewNoDataError("not enough history to build lag features for forecasting; try broader filters")
		}

		yhat := model.Predict(row)
		if math.IsNaN(yhat) || math.IsInf(yhat, 0) {
			yhat = window[len(window)-1].Value
			clamped++
		}

		point := models.TimeSeriesPoint{PeriodStart: next, Value: yhat}
		forecast = append(forecast, point)
		window = append(window, point)
	}

	if clamped > 0 {
		logger.WithFields(logrus.Fields{"freq": freq, "clamped": clamped}).
			Warn("Clamped non-finite predictions to previous value")
	}
	return forecast, nil
}
