// Package config provides configuration management for the QueryDesk CLI.
//
// This package extends the shared configuration types from internal/config
// with CLI-specific fields and the layered loader. Shared types are
// re-exported via type aliases for convenience.
package config

import (
	"strings"

	shared "github.com/querydesk/querydesk/internal/config"
	"github.com/querydesk/querydesk/internal/gate"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = shared.TargetConfig

// ServerConfig is an alias for the shared server configuration.
type ServerConfig = shared.ServerConfig

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string               `koanf:"state_path"`
	TemplatesDir string               `koanf:"templates_dir"`
	ReadOnly     bool                 `koanf:"read_only"`
	Dangerous    []string             `koanf:"dangerous"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	Target       *TargetConfig        `koanf:"target"`
	Server       *ServerConfig        `koanf:"server"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory the config file was found in. Relative
	// paths in the config resolve against it.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	StatePath    string        `koanf:"state_path"`
	TemplatesDir string        `koanf:"templates_dir"`
	ReadOnly     bool          `koanf:"read_only"`
	Target       *TargetConfig `koanf:"target"`
}

// Default configuration values.
const (
	DefaultStateFile    = shared.DefaultStateFile
	DefaultTemplatesDir = shared.DefaultTemplatesDir
	DefaultEnv          = "dev"
	DefaultOutput       = "auto" // Auto-detect: TTY=table, non-TTY=csv
)

// GetServerConfig returns the server config with defaults applied for any
// unset values.
func (c *Config) GetServerConfig() *ServerConfig {
	if c.Server == nil {
		return &ServerConfig{Port: shared.DefaultServerPort}
	}
	srv := c.Server
	if srv.Port == 0 {
		srv.Port = shared.DefaultServerPort
	}
	return srv
}

// GatePolicy builds the execution gate policy from the configuration. An
// unrecognized dangerous entry is ignored; an empty list keeps the default
// dangerous set.
func (c *Config) GatePolicy() gate.Policy {
	p := gate.Policy{ReadOnly: c.ReadOnly}
	if len(c.Dangerous) == 0 {
		return p
	}
	kinds := make([]gate.Kind, 0, len(c.Dangerous))
	for _, name := range c.Dangerous {
		if k, ok := gate.KindFromString(strings.ToUpper(strings.TrimSpace(name))); ok {
			kinds = append(kinds, k)
		}
	}
	p.Dangerous = kinds
	return p
}
