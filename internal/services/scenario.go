package services

import (
	"math"

	"github.com/yathboss/revenue-vision/internal/config"
	"github.com/yathboss/revenue-vision/internal/models"
)

// ScenarioProfile is a named multiplicative adjustment over a base
// forecast. The uplift grows with step distance from now, capped, so far
// periods carry more scenario spread than near ones.
type ScenarioProfile struct {
	Name     models.Scenario
	base     float64
	slope    float64
	cap      float64
	negative bool
}

// Profile resolves the scenario name against the configured ramps.
// Unknown names fall back to base.
func Profile(scenario models.Scenario, cfg config.ForecastConfig) ScenarioProfile {
	switch scenario {
	case models.ScenarioOptimistic:
		return ScenarioProfile{
			Name:  scenario,
			base:  cfg.Optimistic.Base,
			slope: cfg.Optimistic.Slope,
			cap:   cfg.Optimistic.Cap,
		}
	case models.ScenarioPessimistic:
		return ScenarioProfile{
			Name:     scenario,
			base:     cfg.Pessimistic.Base,
			slope:    cfg.Pessimistic.Slope,
			cap:      cfg.Pessimistic.Cap,
			negative: true,
		}
	default:
		return ScenarioProfile{Name: models.ScenarioBase}
	}
}

// Factor returns the multiplier for a 1-based horizon step. Base is the
// identity; the optimistic factor is non-decreasing in step and the
// pessimistic one non-increasing, never below zero.
func (p ScenarioProfile) Factor(step int) float64 {
	if p.Name == models.ScenarioBase {
		return 1.0
	}
	lift := math.Min(p.cap, p.base+p.slope*float64(step))
	if p.negative {
		return math.Max(0, 1.0-lift)
	}
	return 1.0 + lift
}

// ApplyScenario rescales a base forecast into the requested scenario
// variant. Pure transform: the input series is not modified, and every
// downstream KPI and insight must read the returned series.
func ApplyScenario(forecast []models.TimeSeriesPoint, scenario models.Scenario, cfg config.ForecastConfig) []models.TimeSeriesPoint {
	profile := Profile(scenario, cfg)
	out := make([]models.TimeSeriesPoint, len(forecast))
	for i, p := range forecast {
		out[i] = models.TimeSeriesPoint{
			PeriodStart: p.PeriodStart,
			Value:       p.Value * profile.Factor(i + 1),
		}
	}
	return out
}
