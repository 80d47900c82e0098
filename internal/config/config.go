package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the forecast chart service
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8080" validate:"required,numeric"`

	// Upstream forecast API, required unless MOCKUP_MODE is set
	APIBaseURL  string        `env:"API_BASE_URL" validate:"omitempty,url"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT,default=10s" validate:"gt=0"`
	FetchRPS    float64       `env:"FETCH_RPS,default=5" validate:"gt=0"`
	FetchBurst  int           `env:"FETCH_BURST,default=5" validate:"gte=1"`

	// Chart configuration
	Region       string  `env:"REGION,default=kanagawa" validate:"required"`
	DisplayTZ    string  `env:"DISPLAY_TZ,default=Asia/Tokyo" validate:"required"`
	Latitude     float64 `env:"LATITUDE,default=35.4478" validate:"gte=-90,lte=90"`
	Longitude    float64 `env:"LONGITUDE,default=139.6425" validate:"gte=-180,lte=180"`
	ThresholdPPB float64 `env:"THRESHOLD_PPB,default=120" validate:"gt=0"`
	ChartVariant string  `env:"CHART_VARIANT,default=simple" validate:"oneof=simple rich"`

	// Local output and mockup mode
	OutputDir  string `env:"OUTPUT_DIR,default=./charts"`
	MockupMode bool   `env:"MOCKUP_MODE,default=false"`
	MocksDir   string `env:"MOCKS_DIR,default=./internal/mocks"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn warning error"`
	LogFormat   string `env:"LOG_FORMAT,default=auto" validate:"oneof=auto json text"`
}

var validate = validator.New()

// ErrMissingAPIBaseURL is returned when live mode has no upstream to fetch from.
var ErrMissingAPIBaseURL = errors.New("invalid config: API_BASE_URL is required unless MOCKUP_MODE is set")

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom resolves configuration through an explicit lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and that the display zone exists.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.APIBaseURL == "" && !c.MockupMode {
		return ErrMissingAPIBaseURL
	}
	if _, err := time.LoadLocation(c.DisplayTZ); err != nil {
		return fmt.Errorf("invalid config: DISPLAY_TZ %q: %w", c.DisplayTZ, err)
	}
	return nil
}

// Location returns the display time zone. Validate has already proven it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}
