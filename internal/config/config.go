package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Dataset     DatasetConfig  `mapstructure:"dataset"`
	Forecast    ForecastConfig `mapstructure:"forecast"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatasetConfig selects the ledger source: a CSV file or a Postgres table.
type DatasetConfig struct {
	Source  string `mapstructure:"source"`
	CSVPath string `mapstructure:"csv_path"`
	Table   string `mapstructure:"table"`
}

type ForecastConfig struct {
	AnomalyThreshold float64        `mapstructure:"anomaly_threshold"`
	AnomalyWindow    int            `mapstructure:"anomaly_window"`
	KPIWindow        int            `mapstructure:"kpi_window"`
	SeasonalityTop   int            `mapstructure:"seasonality_top"`
	Optimistic       ScenarioConfig `mapstructure:"optimistic"`
	Pessimistic      ScenarioConfig `mapstructure:"pessimistic"`
	Model            ModelConfig    `mapstructure:"model"`
	WarmSignatures   []string       `mapstructure:"warm_signatures"`
}

// ScenarioConfig parameterizes the step-ramped multiplier of a scenario:
// factor(step) = 1 ± min(cap, base + slope*step).
type ScenarioConfig struct {
	Base  float64 `mapstructure:"base"`
	Slope float64 `mapstructure:"slope"`
	Cap   float64 `mapstructure:"cap"`
}

type ModelConfig struct {
	Trees           int     `mapstructure:"trees"`
	LearningRate    float64 `mapstructure:"learning_rate"`
	MaxDepth        int     `mapstructure:"max_depth"`
	MinChildSamples int     `mapstructure:"min_child_samples"`
	Subsample       float64 `mapstructure:"subsample"`
	Colsample       float64 `mapstructure:"colsample"`
	Seed            int64   `mapstructure:"seed"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch c.Dataset.Source {
	case "csv", "postgres":
	default:
		return fmt.Errorf("dataset source must be csv or postgres, got %q", c.Dataset.Source)
	}
	if c.Dataset.Source == "csv" && c.Dataset.CSVPath == "" {
		return fmt.Errorf("dataset csv_path is required for the csv source")
	}
	if c.Forecast.AnomalyThreshold <= 0 {
		return fmt.Errorf("forecast anomaly_threshold must be positive, got %g", c.Forecast.AnomalyThreshold)
	}
	if c.Forecast.KPIWindow <= 0 {
		return fmt.Errorf("forecast kpi_window must be positive, got %d", c.Forecast.KPIWindow)
	}
	if c.Forecast.Model.Trees <= 0 || c.Forecast.Model.LearningRate <= 0 {
		return fmt.Errorf("forecast model requires positive trees and learning_rate")
	}
	return nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database (used when dataset.source is postgres)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "revenue_vision")
	viper.SetDefault("database.sslmode", "disable")

	// Redis (persistent result-cache tier)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Dataset
	viper.SetDefault("dataset.source", "csv")
	viper.SetDefault("dataset.csv_path", "./data/superstore.csv")
	viper.SetDefault("dataset.table", "sales_ledger")

	// Forecast engine
	viper.SetDefault("forecast.anomaly_threshold", 2.2)
	viper.SetDefault("forecast.anomaly_window", 12)
	viper.SetDefault("forecast.kpi_window", 3)
	viper.SetDefault("forecast.seasonality_top", 3)
	viper.SetDefault("forecast.optimistic.base", 0.02)
	viper.SetDefault("forecast.optimistic.slope", 0.005)
	viper.SetDefault("forecast.optimistic.cap", 0.08)
	viper.SetDefault("forecast.pessimistic.base", 0.02)
	viper.SetDefault("forecast.pessimistic.slope", 0.004)
	viper.SetDefault("forecast.pessimistic.cap", 0.08)
	viper.SetDefault("forecast.model.trees", 250)
	viper.SetDefault("forecast.model.learning_rate", 0.05)
	viper.SetDefault("forecast.model.max_depth", 5)
	viper.SetDefault("forecast.model.min_child_samples", 2)
	viper.SetDefault("forecast.model.subsample", 0.9)
	viper.SetDefault("forecast.model.colsample", 0.9)
	viper.SetDefault("forecast.model.seed", 42)
	viper.SetDefault("forecast.warm_signatures", []string{
		"weekly|All|All|All",
		"monthly|All|All|All",
		"yearly|All|All|All",
	})
}
