package config

import "strings"

// Default configuration values.
const (
	DefaultStateFile    = ".querydesk/state.db"
	DefaultTemplatesDir = "templates"
	DefaultServerPort   = 8900
)

// DefaultSchemaForType returns the default schema for a database type.
func DefaultSchemaForType(dbType string) string {
	switch strings.ToLower(dbType) {
	case "postgres":
		return "public"
	case "sqlite":
		return ""
	default:
		return "main"
	}
}

// ApplyTargetDefaults applies default values to a TargetConfig based on the
// target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}

	t.Type = strings.ToLower(t.Type)

	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}

	if t.Type == "postgres" {
		if t.Port == 0 {
			t.Port = 5432
		}
		if t.Host == "" {
			t.Host = "localhost"
		}
	}
}
