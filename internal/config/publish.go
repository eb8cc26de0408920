package config

import (
	"os"

	"github.com/rs/zerolog/log"
)

// PublishConfig holds the settings for uploading the rendered page to S3.
type PublishConfig struct {
	Bucket             string
	Key                string
	Region             string
	Endpoint           string
	UsePathStyle       bool
	CacheMaxAgeSeconds int
}

const (
	defaultPublishKey         = "index.html"
	defaultCacheMaxAgeSeconds = 60
)

// GetPublishConfig returns the publish configuration from the environment,
// or nil when S3_BUCKET is unset.
func GetPublishConfig() *PublishConfig {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		return nil
	}

	config := &PublishConfig{
		Bucket:             bucket,
		Key:                getEnvOrDefault("S3_KEY", defaultPublishKey),
		Region:             os.Getenv("AWS_REGION"),
		Endpoint:           os.Getenv("S3_ENDPOINT"),
		UsePathStyle:       getEnvBool("S3_USE_PATH_STYLE", false),
		CacheMaxAgeSeconds: getEnvInt("S3_CACHE_MAX_AGE_SECONDS", defaultCacheMaxAgeSeconds),
	}

	log.Debug().
		Str("Bucket", config.Bucket).
		Str("Key", config.Key).
		Str("Endpoint", config.Endpoint).
		Bool("UsePathStyle", config.UsePathStyle).
		Int("CacheMaxAgeSeconds", config.CacheMaxAgeSeconds).
		Msg("Publish configuration loaded")

	return config
}
