package models

import (
	"fmt"
	"strings"

	"github.com/yathboss/revenue-vision/internal/utils"
)

// Frequency is the period cadence of an aggregated series.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Mode selects how a model for the request is obtained.
// Fast mode expects a precomputed model but falls back to on-demand
// training; advanced mode always trains lazily on first use.
type Mode string

const (
	ModeFast     Mode = "fast"
	ModeAdvanced Mode = "advanced"
)

// Scenario names a multiplicative adjustment applied to a base forecast.
type Scenario string

const (
	ScenarioBase        Scenario = "base"
	ScenarioOptimistic  Scenario = "optimistic"
	ScenarioPessimistic Scenario = "pessimistic"
)

// FilterAll is the wildcard filter value meaning "no filter".
const FilterAll = "All"

// Filters is the business dimension triple a series is filtered by.
type Filters struct {
	Category string `json:"category"`
	Region   string `json:"region"`
	Segment  string `json:"segment"`
}

// ForecastRequest is a fully specified forecast query.
type ForecastRequest struct {
	Freq     Frequency
	Filters  Filters
	Mode     Mode
	Scenario Scenario
}

// Normalize lowercases the enum fields and substitutes the wildcard for
// empty filter values.
func (r *ForecastRequest) Normalize() {
	r.Freq = Frequency(strings.ToLower(strings.TrimSpace(string(r.Freq))))
	r.Mode = Mode(strings.ToLower(strings.TrimSpace(string(r.Mode))))
	r.Scenario = Scenario(strings.ToLower(strings.TrimSpace(string(r.Scenario))))
	if r.Filters.Category = strings.TrimSpace(r.Filters.Category); r.Filters.Category == "" {
		r.Filters.Category = FilterAll
	}
	if r.Filters.Region = strings.TrimSpace(r.Filters.Region); r.Filters.Region == "" {
		r.Filters.Region = FilterAll
	}
	if r.Filters.Segment = strings.TrimSpace(r.Filters.Segment); r.Filters.Segment == "" {
		r.Filters.Segment = FilterAll
	}
}

// Validate checks the enum fields against their supported values.
func (r ForecastRequest) Validate() error {
	switch r.Freq {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
	default:
		return utils.NewValidationErrorf("unsupported freq: %q (expected weekly, monthly or yearly)", r.Freq)
	}
	switch r.Mode {
	case ModeFast, ModeAdvanced:
	default:
		return utils.NewValidationErrorf("unsupported mode: %q (expected fast or advanced)", r.Mode)
	}
	switch r.Scenario {
	case ScenarioBase, ScenarioOptimistic, ScenarioPessimistic:
	default:
		return utils.NewValidationErrorf("unsupported scenario: %q (expected base, optimistic or pessimistic)", r.Scenario)
	}
	return nil
}

// Signature returns the canonical cache key for the request: an ordered
// tuple of every request field.
func (r ForecastRequest) Signature() string {
	return fmt.Sprintf("freq=%s|category=%s|region=%s|segment=%s|mode=%s|scenario=%s",
		r.Freq, r.Filters.Category, r.Filters.Region, r.Filters.Segment, r.Mode, r.Scenario)
}

// ModelKey returns the trained-model store key. Models are fitted on the
// base scenario only, so scenario and mode are not part of the key.
func (r ForecastRequest) ModelKey() string {
	return fmt.Sprintf("freq=%s|category=%s|region=%s|segment=%s",
		r.Freq, r.Filters.Category, r.Filters.Region, r.Filters.Segment)
}
