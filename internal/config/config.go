// Package config loads user-defined SDMX source definitions. A configuration
// file turns an arbitrary SDMX REST endpoint into a queryable source without
// writing an adapter: it declares the endpoint URLs per resource kind and the
// parameter schema the provider accepts.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ResourcePlaceholder marks where the dataflow or code-list identifier is
// substituted into a URL template.
const ResourcePlaceholder = "{resource}"

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// Sources lists the user-defined SDMX sources to register alongside the
	// built-in providers
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig defines a single user-defined SDMX source
type SourceConfig struct {
	// ID is the source identifier, e.g. "ESTAT"
	ID string `yaml:"id"`

	// Data is the data query URL template; {resource} is replaced by the
	// dataflow identifier
	Data string `yaml:"data"`

	// Dataflows is the complete URL listing the provider's dataflows
	Dataflows string `yaml:"dataflows,omitempty"`

	// Codelist is the code-list URL template; {resource} is replaced by the
	// code-list identifier
	Codelist string `yaml:"codelist,omitempty"`

	// Datastructure is the URL template resolving a dataflow to its data
	// structure and referenced code lists; {resource} is replaced by the
	// dataflow identifier
	Datastructure string `yaml:"datastructure,omitempty"`

	// Accept maps a resource kind (data, dataflow, codelist) to the Accept
	// header to negotiate with the provider
	Accept map[string]string `yaml:"accept,omitempty"`

	// Parameters declares the provider's query parameters in the order they
	// should be reported and rendered
	Parameters []ParameterConfig `yaml:"parameters,omitempty"`
}

// ParameterConfig declares one query parameter of a user-defined source
type ParameterConfig struct {
	// Name is the caller-facing parameter name
	Name string `yaml:"name"`

	// Query is the provider's query-string key; defaults to Name
	Query string `yaml:"query,omitempty"`

	// Required marks the parameter as mandatory
	Required bool `yaml:"required,omitempty"`

	// Allowed enumerates the legal values; empty means unconstrained
	Allowed []string `yaml:"allowed,omitempty"`

	// Pattern optionally constrains the value by regular expression
	Pattern string `yaml:"pattern,omitempty"`

	// Description is shown by parameter discovery
	Description string `yaml:"description,omitempty"`
}

// LoadConfig loads and validates a configuration
func LoadConfig(opts ...Option) (*Config, error) {
	loader := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loader); err != nil {
			return nil, err
		}
	}
	if loader.path == "" {
		return nil, fmt.Errorf("no configuration path provided")
	}

	data, err := os.ReadFile(loader.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for structural errors
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Sources))
	for i := range c.Sources {
		src := &c.Sources[i]
		if src.ID == "" {
			return fmt.Errorf("source %d: id is required", i)
		}
		if _, ok := seen[src.ID]; ok {
			return fmt.Errorf("source %s: duplicate identifier", src.ID)
		}
		seen[src.ID] = struct{}{}

		if src.Data == "" {
			return fmt.Errorf("source %s: data URL template is required", src.ID)
		}
		if !strings.Contains(src.Data, ResourcePlaceholder) {
			return fmt.Errorf("source %s: data URL template must contain %s", src.ID, ResourcePlaceholder)
		}
		if err := validateEndpoint(src.ID, "data", src.Data); err != nil {
			return err
		}
		if src.Dataflows != "" {
			if err := validateEndpoint(src.ID, "dataflows", src.Dataflows); err != nil {
				return err
			}
		}
		if src.Codelist != "" {
			if !strings.Contains(src.Codelist, ResourcePlaceholder) {
				return fmt.Errorf("source %s: codelist URL template must contain %s", src.ID, ResourcePlaceholder)
			}
			if err := validateEndpoint(src.ID, "codelist", src.Codelist); err != nil {
				return err
			}
		}
		if src.Datastructure != "" {
			if !strings.Contains(src.Datastructure, ResourcePlaceholder) {
				return fmt.Errorf("source %s: datastructure URL template must contain %s", src.ID, ResourcePlaceholder)
			}
			if err := validateEndpoint(src.ID, "datastructure", src.Datastructure); err != nil {
				return err
			}
		}

		for j, p := range src.Parameters {
			if p.Name == "" {
				return fmt.Errorf("source %s: parameter %d: name is required", src.ID, j)
			}
		}
	}
	return nil
}

func validateEndpoint(sourceID, field, raw string) error {
	// The placeholder is not valid URL syntax; substitute before parsing.
	candidate := strings.ReplaceAll(raw, ResourcePlaceholder, "X")
	u, err := url.Parse(candidate)
	if err != nil {
		return fmt.Errorf("source %s: invalid %s URL: %w", sourceID, field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("source %s: %s URL must use http or https", sourceID, field)
	}
	return nil
}
