package routing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/schoolhub/aigateway/internal/domain"
	"github.com/schoolhub/aigateway/internal/health"
)

// File is the on-disk routing table: rules plus initial provider health.
type File struct {
	Rules  []domain.RoutingRule `yaml:"rules"`
	Health []health.Seed        `yaml:"health"`
}

// DefaultRules returns the built-in routing table.
func DefaultRules() []domain.RoutingRule {
	return []domain.RoutingRule{
		{
			Criteria:    domain.RouteCriteria{TaskType: domain.TaskChat, Intent: domain.IntentLowLatency},
			ProviderID:  domain.ProviderFastChat,
			Description: "Interactive chat that must answer quickly",
		},
		{
			Criteria:    domain.RouteCriteria{TaskType: domain.TaskDataAnalysis},
			ProviderID:  domain.ProviderHighQuality,
			Description: "Analysis of school data needs the strongest model",
		},
		{
			Criteria:    domain.RouteCriteria{Intent: domain.IntentHighQuality},
			ProviderID:  domain.ProviderHighQuality,
			Description: "Any task where quality matters most",
		},
		{
			Criteria:    domain.RouteCriteria{TaskType: domain.TaskSummarization},
			ProviderID:  domain.ProviderSummarization,
			Description: "Summaries of reports and notices",
		},
		{
			Criteria:    domain.RouteCriteria{Intent: domain.IntentLowCost},
			ProviderID:  domain.ProviderSummarization,
			Description: "Cheapest acceptable answer",
		},
		{
			Criteria:    domain.RouteCriteria{TaskType: domain.TaskCodeGeneration},
			ProviderID:  domain.ProviderCodeSpecialist,
			Description: "Code and formula generation",
		},
	}
}

// DefaultHealthSeeds returns the built-in initial health records.
func DefaultHealthSeeds() []health.Seed {
	return []health.Seed{
		{Provider: domain.ProviderFastChat, Healthy: true, LatencyMs: 300},
		{Provider: domain.ProviderHighQuality, Healthy: true, LatencyMs: 2000},
		{Provider: domain.ProviderSummarization, Healthy: true, LatencyMs: 800},
		{Provider: domain.ProviderCodeSpecialist, Healthy: true, LatencyMs: 1200},
		{Provider: domain.ProviderGeneralPurpose, Healthy: true, LatencyMs: 1000},
		{Provider: domain.ProviderLocalNetwork, Healthy: false, LatencyMs: 150},
	}
}

// Load returns the routing table from cfg.RulesFile, or the built-in table
// when no file is configured. Sections missing from the file fall back to
// their defaults.
func Load(cfg *Config) (File, error) {
	if cfg.RulesFile == "" {
		return File{Rules: DefaultRules(), Health: DefaultHealthSeeds()}, nil
	}

	file, err := LoadFile(cfg.RulesFile)
	if err != nil {
		return File{}, err
	}

	if file.Rules == nil {
		file.Rules = DefaultRules()
	}
	if file.Health == nil {
		file.Health = DefaultHealthSeeds()
	}
	return file, nil
}

// LoadFile reads and parses a YAML routing file.
// Environment variables in the format ${VAR} are expanded before parsing.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read routing file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file); err != nil {
		return File{}, fmt.Errorf("parse routing file: %w", err)
	}

	if err := file.Validate(); err != nil {
		return File{}, err
	}

	return file, nil
}

// Validate checks every rule and seed for required fields and known enum values.
func (f File) Validate() error {
	for i, rule := range f.Rules {
		if rule.ProviderID == "" {
			return fmt.Errorf("routing file: rule[%d]: provider is required", i)
		}
		if rule.Criteria.TaskType != "" && !rule.Criteria.TaskType.Valid() {
			return fmt.Errorf("routing file: rule[%d]: unknown task type %q", i, rule.Criteria.TaskType)
		}
		if rule.Criteria.Intent != "" && !rule.Criteria.Intent.Valid() {
			return fmt.Errorf("routing file: rule[%d]: unknown intent %q", i, rule.Criteria.Intent)
		}
	}

	for i, seed := range f.Health {
		if seed.Provider == "" {
			return fmt.Errorf("routing file: health[%d]: provider is required", i)
		}
		if seed.LatencyMs < 0 {
			return fmt.Errorf("routing file: health[%d]: latency cannot be negative", i)
		}
	}

	return nil
}
