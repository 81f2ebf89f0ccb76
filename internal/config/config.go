package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/schoolhub/aigateway/internal/cache"
	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/embedding"
	"github.com/schoolhub/aigateway/internal/health"
	"github.com/schoolhub/aigateway/internal/observability"
	"github.com/schoolhub/aigateway/internal/provider/local"
	"github.com/schoolhub/aigateway/internal/provider/openai"
	"github.com/schoolhub/aigateway/internal/rag"
	"github.com/schoolhub/aigateway/internal/routing"
	"github.com/schoolhub/aigateway/internal/telemetry"
)

// Config represents the gateway configuration.
type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	Log       observability.LogConfig
	Telemetry telemetry.Config
	Gateway   domain.GatewayConfig
	Cache     cache.Config
	RAG       rag.Config
	Embedding embedding.Config
	Routing   routing.Config
	Health    health.Config
	OpenAI    openai.Config
	Local     local.Config
}

// ServerConfig contains HTTP server settings.
// WriteTimeout bounds a whole streamed response.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"300"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,PUT,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	ExposedHeaders   []string `env:"CORS_EXPOSED_HEADERS"   envSeparator:"," envDefault:"X-Gateway-Cache,X-Gateway-Provider,X-Request-Id,X-Trace-Id"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out

	Server    *ServerConfig
	CORS      *CORSConfig
	Log       *observability.LogConfig
	Telemetry *telemetry.Config
	Gateway   *domain.GatewayConfig
	Cache     *cache.Config
	RAG       *rag.Config
	Embedding *embedding.Config
	Routing   *routing.Config
	Health    *health.Config
	OpenAI    *openai.Config
	Local     *local.Config
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		Out:       dig.Out{},
		Server:    &cfg.Server,
		CORS:      &cfg.CORS,
		Log:       &cfg.Log,
		Telemetry: &cfg.Telemetry,
		Gateway:   &cfg.Gateway,
		Cache:     &cfg.Cache,
		RAG:       &cfg.RAG,
		Embedding: &cfg.Embedding,
		Routing:   &cfg.Routing,
		Health:    &cfg.Health,
		OpenAI:    &cfg.OpenAI,
		Local:     &cfg.Local,
	}
}
