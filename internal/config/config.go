package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8000"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`
	SearchLimit  int `envconfig:"SEARCH_LIMIT" default:"5"`

	OpenAIAPIKey     string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel      string        `envconfig:"OPENAI_MODEL" default:"gpt-3.5-turbo"`
	GeneratorTimeout time.Duration `envconfig:"GENERATOR_TIMEOUT" default:"30s"`

	// Bundled manual archive, tried in order: compressed env payload,
	// raw JSON payload, then file path.
	ManualCompressed string `envconfig:"MANUAL_COMPRESSED"`
	ManualJSON       string `envconfig:"MANUAL_JSON"`
	ManualPath       string `envconfig:"MANUAL_PATH" default:"safety_manual.json"`

	WatchDir      string        `envconfig:"WATCH_DIR"`
	WatchInterval time.Duration `envconfig:"WATCH_INTERVAL" default:"30s"`

	UploadDir      string `envconfig:"UPLOAD_DIR" default:"uploads"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"safetyagent-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN         string  `envconfig:"SENTRY_DSN"`
	SentryEnvironment string  `envconfig:"SENTRY_ENVIRONMENT" default:"development"`
	SentrySampleRate  float64 `envconfig:"SENTRY_SAMPLE_RATE" default:"1.0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("SAFETYAGENT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasWatchDir() bool {
	return c.WatchDir != ""
}
