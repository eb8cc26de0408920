package config

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/stationmap/internal/gbfs"
	"github.com/bbernstein/stationmap/internal/models"
	"github.com/bbernstein/stationmap/internal/render"
)

// StdoutPath makes the command write the page to stdout.
const StdoutPath = "-"

type Config struct {
	Environment    string
	LogLevel       zerolog.Level
	HTTPTimeout    time.Duration
	InformationURL string
	StatusURL      string
	OutputPath     string
	Map            render.MapOptions
	Publish        *PublishConfig
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

func WithFeedURLs(informationURL, statusURL string) Option {
	return func(c *Config) {
		if informationURL != "" {
			c.InformationURL = informationURL
		}
		if statusURL != "" {
			c.StatusURL = statusURL
		}
	}
}

func WithOutputPath(path string) Option {
	return func(c *Config) {
		c.OutputPath = path
	}
}

func WithMapCenter(lat, lon float64) Option {
	return func(c *Config) {
		c.Map.Center = models.Coordinate{Latitude: lat, Longitude: lon}
	}
}

func WithMapZoom(zoom int) Option {
	return func(c *Config) {
		c.Map.Zoom = zoom
	}
}

func WithTiles(url, attribution string) Option {
	return func(c *Config) {
		if url != "" {
			c.Map.TileURL = url
		}
		if attribution != "" {
			c.Map.TileAttribution = attribution
		}
	}
}

func WithPublish(p *PublishConfig) Option {
	return func(c *Config) {
		c.Publish = p
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:    "production",
		LogLevel:       zerolog.InfoLevel,
		HTTPTimeout:    30 * time.Second,
		InformationURL: gbfs.DefaultInformationURL,
		StatusURL:      gbfs.DefaultStatusURL,
		OutputPath:     "index.html",
		Map:            render.DefaultMapOptions(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP timeout must not be negative: %s", c.HTTPTimeout)
	}
	lat, lon := c.Map.Center.Latitude, c.Map.Center.Longitude
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("invalid map center: %v, %v", lat, lon)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
		return fmt.Errorf("map zoom out of range: %d", c.Map.Zoom)
	}
	return nil
}

// InitializeLogging sets up logging based on the configuration. Logs go to
// stderr so that stdout can carry the rendered page.
func (c *Config) InitializeLogging() {
	c.initializeLogging(os.Stderr)
}

func (c *Config) initializeLogging(out io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out})
		return
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	defaults := render.DefaultMapOptions()
	return New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 30*time.Second)),
		WithFeedURLs(os.Getenv("GBFS_INFO_URL"), os.Getenv("GBFS_STATUS_URL")),
		WithOutputPath(getEnvOrDefault("OUTPUT_PATH", "index.html")),
		WithMapCenter(
			getFloatEnvOrDefault("MAP_CENTER_LAT", defaults.Center.Latitude),
			getFloatEnvOrDefault("MAP_CENTER_LON", defaults.Center.Longitude),
		),
		WithMapZoom(getEnvInt("MAP_ZOOM", defaults.Zoom)),
		WithTiles(os.Getenv("TILE_URL"), os.Getenv("TILE_ATTRIBUTION")),
		WithPublish(GetPublishConfig()),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Warn().Str("key", key).Msg("Invalid duration value in environment variable, using default")
	}
	return defaultValue
}

func getFloatEnvOrDefault(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Msg("Invalid float value in environment variable, using default")
	}
	return defaultValue
}

func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
