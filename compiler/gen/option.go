package gen

import (
	"fmt"
	"strings"
)

// Option configures code generation.
type Option func(*Config) error

// Config holds the generation settings. The zero value is not usable; build
// one with NewConfig so defaults are applied.
type Config struct {
	// ServerDefault reports whether a string default value names a
	// server-computed function rather than a client-side literal.
	ServerDefault func(string) bool

	// BaseName is the name bound to the declarative base instance.
	BaseName string
}

// NewConfig creates a Config with defaults applied and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		ServerDefault: func(s string) bool { return strings.HasPrefix(s, "func.") },
		BaseName:      "Base",
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithServerDefault sets the predicate that decides whether a string default
// is a server-side function expression. The default predicate matches the
// "func." prefix convention.
func WithServerDefault(pred func(string) bool) Option {
	return func(c *Config) error {
		if pred == nil {
			return NewConfigError("ServerDefault", nil, "predicate cannot be nil")
		}
		c.ServerDefault = pred
		return nil
	}
}

// WithBaseName sets the name of the declarative base binding.
// For example: "Base" (the default) or "DeclarativeBase".
func WithBaseName(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return NewConfigError("BaseName", name, "base name cannot be empty")
		}
		c.BaseName = name
		return nil
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("modelgen: config error on option %s (value %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("modelgen: config error on option %s: %s", e.Option, e.Message)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}
