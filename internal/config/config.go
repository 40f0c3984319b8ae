package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL  string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseName string `envconfig:"DATABASE_NAME" default:"validoc"`

	// Capabilities
	FaceDetector string `envconfig:"FACE_DETECTOR" default:"mock"`
	AWSRegion    string `envconfig:"AWS_REGION" default:"us-east-1"`

	OCREngine    string   `envconfig:"OCR_ENGINE" default:"mock"`
	OCRLanguages []string `envconfig:"OCR_LANGUAGES" default:"fra,eng"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	VisionModel  string `envconfig:"VISION_MODEL"`

	// CapabilityTimeout bounds each external capability call
	CapabilityTimeout time.Duration `envconfig:"CAPABILITY_TIMEOUT" default:"8s"`

	// Upload limits
	MaxUploadSize int64 `envconfig:"MAX_UPLOAD_SIZE" default:"10485760"`

	// OCRCacheTTL controls how long recognized text is reused for identical
	// image bytes. Zero disables the cache.
	OCRCacheTTL time.Duration `envconfig:"OCR_CACHE_TTL" default:"24h"`

	// Background workers
	MetricsInterval time.Duration `envconfig:"METRICS_INTERVAL" default:"1m"`
	AlertInterval   time.Duration `envconfig:"ALERT_INTERVAL" default:"30s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
