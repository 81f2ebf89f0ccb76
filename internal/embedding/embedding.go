// Package embedding selects the embedding generator used for retrieval.
package embedding

import (
	"fmt"

	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/embedding/hashing"
	"github.com/schoolhub/aigateway/internal/embedding/openai"
)

// Supported generator names.
const (
	ProviderHashing = "hashing"
	ProviderOpenAI  = "openai"
)

// Config selects the embedding backend.
type Config struct {
	Provider string `env:"EMBEDDING_PROVIDER" envDefault:"hashing"`
	Hashing  hashing.Config
	OpenAI   openai.Config
}

// NewGenerator builds the configured embedding generator (DI constructor).
func NewGenerator(cfg *Config) (domain.EmbeddingGenerator, error) {
	switch cfg.Provider {
	case ProviderHashing, "":
		return hashing.NewGenerator(cfg.Hashing), nil
	case ProviderOpenAI:
		generator, err := openai.NewGenerator(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		return generator, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
