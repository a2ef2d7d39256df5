package config

import (
	"fmt"
	"os"
	"path/filepath"

	shared "github.com/querydesk/querydesk/internal/config"
)

// DefaultSchemaForType returns the default schema for a database type.
// This is a convenience wrapper that delegates to the shared config function.
func DefaultSchemaForType(dbType string) string {
	return shared.DefaultSchemaForType(dbType)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	if c.Target == nil {
		return fmt.Errorf("target is required")
	}
	return c.Target.Validate()
}

// EnsureStateDir creates the directory the state database lives in.
func (c *Config) EnsureStateDir() error {
	dir := filepath.Dir(c.StatePath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return nil
}
