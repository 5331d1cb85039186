package config

// ServerConfig contains the local console server configuration
type ServerConfig struct {
	Port int `yaml:"port" env:"SERVER_PORT" validate:"gt=0"`
}

// APIConfig contains the fleet backend REST endpoint configuration
type APIConfig struct {
	BaseURL   string `yaml:"baseURL" env:"API_BASE_URL" validate:"required,url"`
	TimeoutMS int    `yaml:"timeoutMS" env:"API_TIMEOUT_MS" validate:"gte=0"`
}

// StreamConfig contains the push stream configuration
type StreamConfig struct {
	URL string `yaml:"url" env:"STREAM_URL" validate:"required,url"`
}

// MapConfig contains the viewport used for the nearby-driver query
type MapConfig struct {
	CenterLat    float64 `yaml:"centerLat" env:"MAP_CENTER_LAT" validate:"gte=-90,lte=90"`
	CenterLng    float64 `yaml:"centerLng" env:"MAP_CENTER_LNG" validate:"gte=-180,lte=180"`
	RadiusMeters float64 `yaml:"radiusMeters" env:"MAP_RADIUS_METERS" validate:"gte=0"`
}

// AlertsConfig contains the alert feed configuration
type AlertsConfig struct {
	Capacity int `yaml:"capacity" env:"ALERTS_CAPACITY" validate:"gte=0"`
}

// RefreshConfig contains the periodic snapshot refresh schedule
type RefreshConfig struct {
	DriversEvery string `yaml:"driversEvery" env:"REFRESH_DRIVERS_EVERY"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	EnvMode string        `yaml:"envMode" env:"ENV_MODE"`
	Server  ServerConfig  `yaml:"server"`
	API     APIConfig     `yaml:"api"`
	Stream  StreamConfig  `yaml:"stream"`
	Map     MapConfig     `yaml:"map"`
	Alerts  AlertsConfig  `yaml:"alerts"`
	Refresh RefreshConfig `yaml:"refresh"`
}
