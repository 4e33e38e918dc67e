package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// secondaryKeySlots is how many numbered secondary API keys are probed per
// provider (GEMINI_API_KEY_1 .. GEMINI_API_KEY_10 and the OpenAI equivalent).
const secondaryKeySlots = 10

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	SentryDSN        string  `envconfig:"SENTRY_DSN"`
	SentrySampleRate float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE" default:"1.0"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// EmbeddingProvider selects which backend produces vectors: "gemini" or
	// "openai". The dimension must match the vector column width in the
	// documents table.
	EmbeddingProvider   string `envconfig:"EMBEDDING_PROVIDER" default:"gemini"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"768"`

	GenerationModel string `envconfig:"GENERATION_MODEL" default:"gemini-2.5-flash"`

	ChunkMaxLength int `envconfig:"CHUNK_MAX_LENGTH" default:"1000"`
	ChunkOverlap   int `envconfig:"CHUNK_OVERLAP" default:"150"`

	MatchThreshold float64 `envconfig:"MATCH_THRESHOLD" default:"0.3"`
	ContextLimit   int     `envconfig:"CONTEXT_LIMIT" default:"3"`

	// S3-compatible storage for archiving raw uploads before indexing.
	S3Endpoint     string `envconfig:"S3_ENDPOINT"`
	S3AccessKey    string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey    string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket       string `envconfig:"S3_BUCKET" default:"knowledgecore-sources"`
	S3Region       string `envconfig:"S3_REGION" default:"us-east-1"`
	S3UsePathStyle bool   `envconfig:"S3_USE_PATH_STYLE" default:"true"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("KNOWLEDGECORE", &cfg); err != nil {
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

// GeminiAPIKeys returns the primary key followed by any numbered secondary
// keys (GEMINI_API_KEY_1 through GEMINI_API_KEY_10). Duplicates of the
// primary are skipped.
func (c *Config) GeminiAPIKeys() []string {
	return keyRing(c.GeminiAPIKey, "GEMINI_API_KEY")
}

// OpenAIAPIKeys returns the primary OpenAI key plus numbered secondaries.
func (c *Config) OpenAIAPIKeys() []string {
	return keyRing(c.OpenAIAPIKey, "OPENAI_API_KEY")
}

func keyRing(primary, envPrefix string) []string {
	var keys []string
	if primary != "" {
		keys = append(keys, primary)
	}
	for i := 1; i <= secondaryKeySlots; i++ {
		key := os.Getenv(fmt.Sprintf("%s_%d", envPrefix, i))
		if key != "" && key != primary {
			keys = append(keys, key)
		}
	}
	return keys
}
