package services

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/yathboss/revenue-vision/internal/models"
)

const seasonalityDefaultNote = "Historically highest sales often occur in Nov/Dec (seasonal peak)."

var monthNames = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// ComputeKPIs sums the trailing actual and leading forecast windows.
// GrowthPct is nil when the trailing actual sum is zero: a sentinel for
// display, never an error.
func ComputeKPIs(actual, forecast []models.TimeSeriesPoint, window int) models.KPIs {
	last := sumTail(actual, window)
	next := sumHead(forecast, window)

	kpis := models.KPIs{
		LastPeriodsActual:   last,
		NextPeriodsForecast: next,
	}
	if last != 0 {
		growth := (next - last) / last * 100.0
		kpis.GrowthPct = &growth
	}
	return kpis
}

// BestPredicted finds the forecast point with the maximum value. The
// series is date-ordered, so a strict comparison breaks ties toward the
// earliest date.
func BestPredicted(forecast []models.TimeSeriesPoint) models.BestPredicted {
	if len(forecast) == 0 {
		return models.BestPredicted{}
	}
	best := 0
	for i := 1; i < len(forecast); i++ {
		if forecast[i].Value > forecast[best].Value {
			best = i
		}
	}
	date := forecast[best].PeriodStart.Format("2006-01-02")
	value := forecast[best].Value
	return models.BestPredicted{BestDate: &date, BestValue: &value}
}

// Seasonality ranks months of the year by average historical value and
// reports the top entries by name. It needs at least two full seasonal
// cycles of history; with less it degrades to an empty ranking and a
// fixed note. Never fails.
func Seasonality(actual []models.TimeSeriesPoint, freq models.Frequency, topK int) models.SeasonalityInsight {
	if len(actual) < seasonalCyclePoints(freq)*2 {
		return models.SeasonalityInsight{
			TopMonthNames: []string{},
			DefaultNote:   seasonalityDefaultNote,
		}
	}

	byMonth := make(map[time.Month][]float64)
	for _, p := range actual {
		m := p.PeriodStart.Month()
		byMonth[m] = append(byMonth[m], p.Value)
	}

	type monthAvg struct {
		month time.Month
		avg   float64
	}
	ranked := make([]monthAvg, 0, 12)
	for m := time.January; m <= time.December; m++ {
		if values, ok := byMonth[m]; ok {
			ranked = append(ranked, monthAvg{month: m, avg: stat.Mean(values, nil)})
		}
	}
	// Highest average first; equal averages keep calendar order.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].avg > ranked[j-1].avg; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	if topK > len(ranked) {
		topK = len(ranked)
	}
	names := make([]string, 0, topK)
	for _, r := range ranked[:topK] {
		names = append(names, monthNames[r.month-1])
	}
	return models.SeasonalityInsight{TopMonthNames: names, DefaultNote: ""}
}

func seasonalCyclePoints(freq models.Frequency) int {
	if freq == models.FrequencyWeekly {
		return 52
	}
	return 12
}

// DetectAnomaly compares the most recent actual value against the rolling
// mean of the preceding window, flagging it when it falls outside
// threshold standard deviations. Short or flat history degrades to "no
// anomaly" rather than failing.
func DetectAnomaly(actual []models.TimeSeriesPoint, window int, threshold float64) models.AnomalyInsight {
	if len(actual) < minHistoryPoints {
		return models.AnomalyInsight{IsAnomaly: false, Message: "no anomaly"}
	}

	start := len(actual) - 1 - window
	if start < 0 {
		start = 0
	}
	prior := make([]float64, 0, window)
	for _, p := range actual[start : len(actual)-1] {
		prior = append(prior, p.Value)
	}
	if len(prior) < 2 {
		return models.AnomalyInsight{IsAnomaly: false, Message: "no anomaly"}
	}

	mean := stat.Mean(prior, nil)
	std := stat.StdDev(prior, nil)
	if std <= 1e-9 {
		return models.AnomalyInsight{IsAnomaly: false, Message: "no anomaly"}
	}

	last := actual[len(actual)-1].Value
	z := (last - mean) / std
	if z >= threshold || z <= -threshold {
		direction := "high"
		if z < 0 {
			direction = "low"
		}
		return models.AnomalyInsight{
			IsAnomaly: true,
			Message:   fmt.Sprintf("Last period unusually %s vs recent average (z=%.1f).", direction, z),
		}
	}
	return models.AnomalyInsight{IsAnomaly: false, Message: "no anomaly"}
}

// Recommendations maps the derived signals to advisory strings through a
// fixed rule set; the order is stable for identical inputs.
func Recommendations(freq models.Frequency, growthPct *float64, topMonths []string) []string {
	if growthPct == nil {
		return []string{"Forecast generated. Consider adding more history for more reliable insights."}
	}

	var recs []string
	switch {
	case *growthPct >= 8:
		recs = append(recs, "Plan inventory and staffing for expected growth in upcoming periods.")
	case *growthPct <= -5:
		recs = append(recs, "Consider promotions, pricing review, or bundling to address expected slowdown.")
	default:
		recs = append(recs, "Maintain current strategy; monitor performance and adjust marketing spend.")
	}

	for _, m := range topMonths {
		if m == "Nov" || m == "Dec" {
			recs = append(recs, "Prepare for the seasonal peak (Nov-Dec): stock up and plan campaigns early.")
			break
		}
	}

	if freq == models.FrequencyWeekly {
		recs = append(recs, "Track week-to-week volatility; adjust operations quickly based on short-term signals.")
	} else {
		recs = append(recs, "Use monthly projections to plan budget, inventory, and target-based performance reviews.")
	}
	return recs
}

// ComputeConfidence derives a coarse trust label from history length and
// volatility. It is a UX indicator, not a statistical interval.
func ComputeConfidence(actual []models.TimeSeriesPoint, freq models.Frequency) models.Confidence {
	n := len(actual)
	if n < minHistoryPoints {
		return models.Confidence{Label: "Low", Note: "Very short history. Forecast may be unreliable."}
	}

	values := make([]float64, n)
	for i, p := range actual {
		values[i] = p.Value
	}
	mean := stat.Mean(values, nil)
	std := stat.StdDev(values, nil)

	cv := 1.0
	if mean > 0 {
		cv = std / mean
	}

	lengthScore := 0
	switch {
	case freq == models.FrequencyWeekly && n >= 52:
		lengthScore = 2
	case freq == models.FrequencyWeekly && n >= 26:
		lengthScore = 1
	case freq != models.FrequencyWeekly && n >= 36:
		lengthScore = 2
	case freq != models.FrequencyWeekly && n >= 18:
		lengthScore = 1
	}

	volScore := 0
	switch {
	case cv <= 0.35:
		volScore = 2
	case cv <= 0.60:
		volScore = 1
	}

	switch score := lengthScore + volScore; {
	case score >= 3:
		return models.Confidence{Label: "High", Note: "Good history length and stable trend/seasonality."}
	case score == 2:
		return models.Confidence{Label: "Medium", Note: "Decent history, but some volatility is present."}
	default:
		return models.Confidence{Label: "Low", Note: "Short history and/or high volatility. Use with caution."}
	}
}

func sumTail(series []models.TimeSeriesPoint, window int) float64 {
	start := len(series) - window
	if start < 0 {
		start = 0
	}
	values := make([]float64, 0, window)
	for _, p := range series[start:] {
		values = append(values, p.Value)
	}
	return floats.Sum(values)
}

func sumHead(series []models.TimeSeriesPoint, window int) float64 {
	end := window
	if end > len(series) {
		end = len(series)
	}
	values := make([]float64, 0, window)
	for _, p := range series[:end] {
		values = append(values, p.Value)
	}
	return floats.Sum(values)
}
