package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level cashflow.yaml configuration.
type Config struct {
	Categorization CategorizationConfig `yaml:"categorization"`
	Analysis       AnalysisConfig       `yaml:"analysis"`
}

// CategorizationConfig tunes the categorization pipeline.
type CategorizationConfig struct {
	FuzzyMatchThreshold int               `yaml:"fuzzy_match_threshold"` // 1-100; 0 or out of range means the default
	CustomRules         []CustomRule      `yaml:"custom_rules,omitempty"`
	MerchantAliases     map[string]string `yaml:"merchant_aliases,omitempty"`
}

// CustomRule is one user-defined categorization rule. Exactly one of
// DescriptionContains or Pattern should be set; rules are applied in
// file order before the built-in tables.
type CustomRule struct {
	DescriptionContains string  `yaml:"description_contains,omitempty"`
	Pattern             string  `yaml:"pattern,omitempty"`
	Category            string  `yaml:"category"`
	Subcategory         string  `yaml:"subcategory,omitempty"`
	Confidence          float64 `yaml:"confidence,omitempty"`
}

// AnalysisConfig tunes the analysis stage.
type AnalysisConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"` // 0-1, review flag cutoff
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Categorization: CategorizationConfig{
			FuzzyMatchThreshold: 85,
		},
		Analysis: AnalysisConfig{
			ConfidenceThreshold: 0.8,
		},
	}
}

// Load reads a cashflow.yaml file. A missing or broken config file
// never stops an analysis run: the defaults are returned instead, with
// a warning. Out-of-range tunables are individually reset to their
// defaults the same way.
func Load(log zerolog.Logger, path string) *Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("could not read config, using defaults")
		}
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not parse config, using defaults")
		return Default()
	}

	cfg.clamp(log)
	return cfg
}

func (c *Config) clamp(log zerolog.Logger) {
	def := Default()
	// A threshold of 0 would accept every fuzzy match, so it is treated
	// as unset rather than as a real cutoff.
	if c.Categorization.FuzzyMatchThreshold <= 0 || c.Categorization.FuzzyMatchThreshold > 100 {
		log.Warn().
			Int("value", c.Categorization.FuzzyMatchThreshold).
			Int("default", def.Categorization.FuzzyMatchThreshold).
			Msg("fuzzy_match_threshold out of range, using default")
		c.Categorization.FuzzyMatchThreshold = def.Categorization.FuzzyMatchThreshold
	}
	if c.Analysis.ConfidenceThreshold < 0 || c.Analysis.ConfidenceThreshold > 1 {
		log.Warn().
			Float64("value", c.Analysis.ConfidenceThreshold).
			Float64("default", def.Analysis.ConfidenceThreshold).
			Msg("confidence_threshold out of range, using default")
		c.Analysis.ConfidenceThreshold = def.Analysis.ConfidenceThreshold
	}
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
