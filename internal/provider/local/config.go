package local

import "time"

// Config contains settings for a local-network model server speaking the
// Ollama generate API.
type Config struct {
	BaseURL string        `env:"LOCAL_LLM_BASE_URL"`
	Model   string        `env:"LOCAL_LLM_MODEL"    envDefault:"llama3.2"`
	Timeout time.Duration `env:"LOCAL_LLM_TIMEOUT"  envDefault:"120s"`
}
