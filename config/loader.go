package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the configuration file, applies environment overrides and
// defaults, and validates the result. A missing file is not an error as long
// as the environment supplies the required endpoints.
func Load(path string) (AppConfig, error) {
	// Optional; environments without a .env file just skip it.
	_ = godotenv.Load()

	var cfg AppConfig
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return AppConfig{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse environment: %w", err)
	}

	applyDefaults(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.EnvMode == "" {
		cfg.EnvMode = "production"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8081
	}
	if cfg.API.TimeoutMS == 0 {
		cfg.API.TimeoutMS = 5000
	}
	if cfg.Alerts.Capacity == 0 {
		cfg.Alerts.Capacity = 4
	}
	if cfg.Refresh.DriversEvery == "" {
		cfg.Refresh.DriversEvery = "@every 30s"
	}
	if cfg.Map.CenterLat == 0 && cfg.Map.CenterLng == 0 {
		// Chihuahua city center, matching the backend's seed data.
		cfg.Map.CenterLat = 28.6353
		cfg.Map.CenterLng = -106.0889
	}
	if cfg.Map.RadiusMeters == 0 {
		cfg.Map.RadiusMeters = 50000
	}
}
