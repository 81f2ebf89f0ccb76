package openai

import "time"

// Config holds configuration for OpenAI embedding generator.
type Config struct {
	APIKey  string        `env:"OPENAI_API_KEY"`
	BaseURL string        `env:"OPENAI_BASE_URL"`
	Model   string        `env:"EMBEDDING_MODEL"   envDefault:"text-embedding-3-small"`
	Timeout time.Duration `env:"EMBEDDING_TIMEOUT" envDefault:"30s"`
}
