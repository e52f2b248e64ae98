package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvProvider overlays AUTOSALES_* environment variables on top of another
// provider. Variables that are not set leave the base value untouched.
type EnvProvider struct {
	base ConfigProvider
}

// NewEnvProvider wraps base with environment overrides
func NewEnvProvider(base ConfigProvider) *EnvProvider {
	return &EnvProvider{base: base}
}

// LoadConfig loads the base configuration and applies the overrides
func (e *EnvProvider) LoadConfig() (*ConfigData, error) {
	cfg, err := e.base.LoadConfig()
	if err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// IsReadOnly defers to the wrapped provider
func (e *EnvProvider) IsReadOnly() bool {
	return e.base.IsReadOnly()
}

// Close closes the wrapped provider
func (e *EnvProvider) Close() error {
	return e.base.Close()
}

// Load reads configuration from provider, applies defaults and validates it
func Load(provider ConfigProvider) (*ConfigData, error) {
	cfg, err := provider.LoadConfig()
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
