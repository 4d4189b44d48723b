package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord is one row of the historical sales ledger.
type SalesRecord struct {
	OrderDate time.Time       `json:"order_date"`
	Sales     decimal.Decimal `json:"sales"`
	Category  string          `json:"category"`
	Region    string          `json:"region"`
	Segment   string          `json:"segment"`
}

// FilterOptions lists the distinct values of every filter dimension,
// sorted, for client-side selection.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Regions    []string `json:"regions"`
	Segments   []string `json:"segments"`
}

// TimeSeriesPoint is one period bucket of an aggregated series.
// Series are ordered by PeriodStart with uniform spacing; missing
// periods are zero-filled by the aggregator.
type TimeSeriesPoint struct {
	PeriodStart time.Time `json:"period_start"`
	Value       float64   `json:"value"`
}
