package flowrun

import (
	"fmt"

	"github.com/bruhlabs/flowrun/service/dispatcher"
)

// Config is a serialisable representation of the engine configuration. It can
// be populated from JSON, YAML, environment variables, etc. The zero-value is
// useful - all nested fields inherit their package defaults.
type Config struct {
	Dispatcher dispatcher.Config `json:"dispatcher" yaml:"dispatcher"`

	// SkipValidation disables the structural pre-run flow validation; the
	// zero-value keeps it on
	SkipValidation bool `json:"skipValidation" yaml:"skipValidation"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Dispatcher: dispatcher.DefaultConfig(),
	}
}

// Validate returns an aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if err := c.Dispatcher.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
