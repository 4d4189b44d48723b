package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "csv", cfg.Dataset.Source)
	assert.NotEmpty(t, cfg.Dataset.CSVPath)
	assert.False(t, cfg.Redis.Enabled)

	assert.InDelta(t, 2.2, cfg.Forecast.AnomalyThreshold, 1e-9)
	assert.Equal(t, 12, cfg.Forecast.AnomalyWindow)
	assert.Equal(t, 3, cfg.Forecast.KPIWindow)
	assert.Equal(t, 3, cfg.Forecast.SeasonalityTop)
	assert.Equal(t, 250, cfg.Forecast.Model.Trees)
	assert.InDelta(t, 0.05, cfg.Forecast.Model.LearningRate, 1e-9)
	assert.Equal(t, int64(42), cfg.Forecast.Model.Seed)
	assert.NotEmpty(t, cfg.Forecast.WarmSignatures)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Dataset: DatasetConfig{Source: "csv", CSVPath: "./data/superstore.csv"},
		Forecast: ForecastConfig{
			AnomalyThreshold: 2.2,
			KPIWindow:        3,
			Model:            ModelConfig{Trees: 100, LearningRate: 0.05},
		},
	}
	assert.NoError(t, valid.validate())

	badSource := valid
	badSource.Dataset.Source = "excel"
	assert.Error(t, badSource.validate())

	missingPath := valid
	missingPath.Dataset.CSVPath = ""
	assert.Error(t, missingPath.validate())

	badThreshold := valid
	badThreshold.Forecast.AnomalyThreshold = 0
	assert.Error(t, badThreshold.validate())

	badModel := valid
	badModel.Forecast.Model.Trees = 0
	assert.Error(t, badModel.validate())
}
