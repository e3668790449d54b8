package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default returns a config carrying only the built-in defaults, for
// runs without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads a YAML config file and expands environment variables.
// Unknown keys are rejected so a typoed field fails loudly instead of
// silently keeping its default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies env fallbacks and defaults,
// and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.FromEnv()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// FromEnv overlays the recognized environment fallbacks onto the
// config. A set variable wins over the file; flags are applied later
// by the CLI and win over both.
func (c *Config) FromEnv() {
	if v := os.Getenv("MARKET_DATA_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("FINNHUB_TOKEN"); v != "" {
		c.Finnhub.Token = v
	}
	if v := os.Getenv("FINNHUB_WS_URL"); v != "" {
		c.Finnhub.WSURL = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.Polygon.APIKey = v
	}
	if v := os.Getenv("POLYGON_WS_URL"); v != "" {
		c.Polygon.WSURL = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		if symbols := SplitSymbols(v); len(symbols) > 0 {
			c.Symbols = symbols
		}
	}
}

// SplitSymbols parses a comma-separated symbol list, trimming blanks.
func SplitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
