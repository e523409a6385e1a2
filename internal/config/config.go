package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	ProviderOpenMeteo  = "openmeteo"
	ProviderWeatherAPI = "weatherapi"
)

type AppConfig struct {
	Port string `validate:"required,numeric"`

	// HTTPTimeout bounds a single upstream weather request.
	HTTPTimeout time.Duration `validate:"gt=0"`
	// CacheTTL is how long a fetched summary or series counts as fresh.
	CacheTTL time.Duration `validate:"gt=0"`
	// RefreshInterval controls the periodic re-enrichment; zero disables it.
	RefreshInterval  time.Duration `validate:"gte=0"`
	BatchConcurrency int           `validate:"gte=1,lte=64"`

	DatasetPath string `validate:"required"`

	Provider         string `validate:"oneof=openmeteo weatherapi"`
	OpenMeteoBaseURL string `validate:"omitempty,url"`
	WeatherAPIKey    string `validate:"required_if=Provider weatherapi"`
	GeocoderAPIKey   string

	// StateFile persists the board between restarts when set.
	StateFile string

	LogLevel  string `validate:"oneof=trace debug info warn error disabled"`
	LogFormat string `validate:"oneof=console json"`
}

// Load reads configuration from environment with sensible defaults.
// A missing .env file is not an error.
func Load() (*AppConfig, error) {
	envErr := godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", envErr)
	}
	return cfg, nil
}

// FromEnv builds and validates the configuration from the process environment.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:             getenvDefault("PORT", "8080"),
		DatasetPath:      getenvDefault("DATASET_PATH", "data/cities.json"),
		Provider:         getenvDefault("WEATHER_PROVIDER", ProviderOpenMeteo),
		OpenMeteoBaseURL: os.Getenv("OPENMETEO_BASE_URL"),
		WeatherAPIKey:    os.Getenv("WEATHERAPI_API_KEY"),
		GeocoderAPIKey:   os.Getenv("GEOCODER_API_KEY"),
		StateFile:        os.Getenv("STATE_FILE"),
		LogLevel:         getenvDefault("LOG_LEVEL", "info"),
		LogFormat:        getenvDefault("LOG_FORMAT", "console"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.BatchConcurrency, err = getenvInt("BATCH_CONCURRENCY", 8); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
