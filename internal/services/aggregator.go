package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yathboss/revenue-vision/internal/models"
	"github.com/yathboss/revenue-vision/internal/utils"
)

// minHistoryPoints is the smallest series the engine will model.
const minHistoryPoints = 6

// ApplyFilters keeps the records matching every non-wildcard dimension.
func ApplyFilters(records []models.SalesRecord, filters models.Filters) []models.SalesRecord {
	out := make([]models.SalesRecord, 0, len(records))
	for _, rec := range records {
		if filters.Category != models.FilterAll && rec.Category != filters.Category {
			continue
		}
		if filters.Region != models.FilterAll && rec.Region != filters.Region {
			continue
		}
		if filters.Segment != models.FilterAll && rec.Segment != filters.Segment {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Aggregate buckets the filtered ledger into an ordered fixed-frequency
// series. Weekly buckets start on Monday; monthly and yearly buckets start
// on the first of the month (yearly is a monthly series with a 12-month
// horizon). Missing periods inside the span are inserted with value 0 so
// that lag windows stay uniformly spaced.
func Aggregate(records []models.SalesRecord, freq models.Frequency, filters models.Filters) ([]models.TimeSeriesPoint, error) {
	filtered := ApplyFilters(records, filters)
	if len(filtered) == 0 {
		return nil, utils.NewNoDataError("no data found for selected filters; try selecting All")
	}

	sums := make(map[time.Time]decimal.Decimal)
	for _, rec := range filtered {
		bucket := periodStart(rec.OrderDate, freq)
		sums[bucket] = sums[bucket].Add(rec.Sales)
	}

	starts := make([]time.Time, 0, len(sums))
	for t := range sums {
		starts = append(starts, t)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	first, last := starts[0], starts[len(starts)-1]
	series := make([]models.TimeSeriesPoint, 0, len(starts))
	for t := first; !t.After(last); t = NextPeriod(t, freq) {
		value := 0.0
		if sum, ok := sums[t]; ok {
			value = sum.InexactFloat64()
		}
		series = append(series, models.TimeSeriesPoint{PeriodStart: t, Value: value})
	}

	if len(series) < minHistoryPoints {
		return nil, utils.NewNoDataErrorf(
			"not enough history for a forecast (%d periods, need at least %d); try broader filters",
			len(series), minHistoryPoints)
	}
	return series, nil
}

// NextPeriod advances a period start by one step at the given cadence.
func NextPeriod(t time.Time, freq models.Frequency) time.Time {
	if freq == models.FrequencyWeekly {
		return t.AddDate(0, 0, 7)
	}
	return t.AddDate(0, 1, 0)
}

func periodStart(t time.Time, freq models.Frequency) time.Time {
	if freq == models.FrequencyWeekly {
		// Monday-start week
		offset := (int(t.Weekday()) + 6) % 7
		d := t.AddDate(0, 0, -offset)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
