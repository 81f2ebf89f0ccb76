package routing

import "github.com/schoolhub/aigateway/internal/domain"

// Config contains router settings.
type Config struct {
	RulesFile       string `env:"ROUTER_RULES_FILE"`
	OfflineMode     bool   `env:"ROUTER_OFFLINE_MODE"     envDefault:"false"`
	DefaultProvider string `env:"ROUTER_DEFAULT_PROVIDER" envDefault:"general-purpose-default"`
	LocalProvider   string `env:"ROUTER_LOCAL_PROVIDER"   envDefault:"local-network"`
}

func (c Config) defaultProvider() string {
	if c.DefaultProvider == "" {
		return domain.ProviderGeneralPurpose
	}
	return c.DefaultProvider
}

func (c Config) localProvider() string {
	if c.LocalProvider == "" {
		return domain.ProviderLocalNetwork
	}
	return c.LocalProvider
}
