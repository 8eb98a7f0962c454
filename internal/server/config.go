package server

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds server configuration options.
type Config struct {
	// HoverMaxLength truncates the declaration text shown on hover, in runes.
	// Zero disables truncation.
	HoverMaxLength int `yaml:"hover_max_length" validate:"gte=0"`

	// MaxCompletionItems caps the completion list. Zero means no limit.
	MaxCompletionItems int `yaml:"max_completion_items" validate:"gte=0"`

	// SemanticModel enables building the semantic block model after every
	// parse.
	SemanticModel bool `yaml:"semantic_model"`

	// Trace controls logging verbosity
	Trace string `yaml:"trace" validate:"oneof=off messages verbose"`
}

var configValidate = validator.New()

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		HoverMaxLength:     200,
		MaxCompletionItems: 200,
		SemanticModel:      true,
		Trace:              "off",
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the field constraints.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid %s: %q fails %s", verrs[0].Field(), fmt.Sprint(verrs[0].Value()), verrs[0].Tag())
		}
		return err
	}
	return nil
}

// Clone returns a copy that can be read without holding the server lock.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
