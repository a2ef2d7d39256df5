package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querydesk/querydesk/internal/gate"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/querydesk/querydesk/internal/adapter/duckdb"
	_ "github.com/querydesk/querydesk/internal/adapter/postgres"
	_ "github.com/querydesk/querydesk/internal/adapter/sqlite"
)

func TestTargetConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		target    TargetConfig
		wantErr   bool
		errSubstr string
	}{
		{
			name:      "empty type",
			target:    TargetConfig{Type: ""},
			wantErr:   true,
			errSubstr: "target type is required",
		},
		{
			name:    "valid duckdb",
			target:  TargetConfig{Type: "duckdb"},
			wantErr: false,
		},
		{
			name:    "valid duckdb uppercase",
			target:  TargetConfig{Type: "DuckDB"},
			wantErr: false,
		},
		{
			name:    "valid postgres",
			target:  TargetConfig{Type: "postgres"},
			wantErr: false,
		},
		{
			name:    "valid sqlite",
			target:  TargetConfig{Type: "sqlite"},
			wantErr: false,
		},
		{
			name:      "unknown type mysql",
			target:    TargetConfig{Type: "mysql"},
			wantErr:   true,
			errSubstr: "unknown adapter type",
		},
		{
			name:      "unknown type oracle",
			target:    TargetConfig{Type: "oracle"},
			wantErr:   true,
			errSubstr: "unknown adapter type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if tt.wantErr {
				require.Error(t, err, "expected error but got nil")
				if tt.errSubstr != "" {
					assert.Contains(t, err.Error(), tt.errSubstr)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestTargetConfig_Validate_ErrorContainsAvailable verifies that validation
// errors include the list of available adapters.
func TestTargetConfig_Validate_ErrorContainsAvailable(t *testing.T) {
	target := TargetConfig{Type: "invalid_db"}
	err := target.Validate()
	require.Error(t, err, "expected error for invalid type")

	errStr := err.Error()
	assert.Contains(t, errStr, "duckdb", "error should list available adapters")
	assert.Contains(t, errStr, "querydesk.yaml", "error should mention config file")
}

func TestDefaultSchemaForType(t *testing.T) {
	tests := []struct {
		dbType   string
		expected string
	}{
		{"duckdb", "main"},
		{"DuckDB", "main"},
		{"postgres", "public"},
		{"POSTGRES", "public"},
		{"sqlite", ""},
		{"unknown", "main"},
		{"", "main"},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			assert.Equal(t, tt.expected, DefaultSchemaForType(tt.dbType))
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single variable",
			input:    "${TEST_VAR_ONE}",
			expected: "value_one",
		},
		{
			name:     "multiple variables",
			input:    "${TEST_VAR_ONE}/${TEST_VAR_TWO}",
			expected: "value_one/value_two",
		},
		{
			name:     "variable in path",
			input:    "/path/to/${TEST_VAR_ONE}/file",
			expected: "/path/to/value_one/file",
		},
		{
			name:     "unset variable stays as-is",
			input:    "${UNSET_VARIABLE}",
			expected: "${UNSET_VARIABLE}",
		},
		{
			name:     "no variables",
			input:    "plain string",
			expected: "plain string",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestMergeTargetConfig(t *testing.T) {
	t.Run("nil base returns override", func(t *testing.T) {
		override := &TargetConfig{Type: "duckdb", Database: "test.db"}
		assert.Equal(t, override, MergeTargetConfig(nil, override))
	})

	t.Run("nil override returns base", func(t *testing.T) {
		base := &TargetConfig{Type: "duckdb", Database: "test.db"}
		assert.Equal(t, base, MergeTargetConfig(base, nil))
	})

	t.Run("override replaces base fields", func(t *testing.T) {
		base := &TargetConfig{
			Type:     "duckdb",
			Database: "base.db",
			Schema:   "main",
			Host:     "localhost",
		}
		override := &TargetConfig{
			Database: "override.db",
			Schema:   "custom",
		}

		result := MergeTargetConfig(base, override)

		assert.Equal(t, "duckdb", result.Type, "Type should be inherited from base")
		assert.Equal(t, "override.db", result.Database)
		assert.Equal(t, "custom", result.Schema)
		assert.Equal(t, "localhost", result.Host, "Host should be inherited from base")
	})

	t.Run("options are merged", func(t *testing.T) {
		base := &TargetConfig{
			Type: "duckdb",
			Options: map[string]string{
				"key1": "base_value1",
				"key2": "base_value2",
			},
		}
		override := &TargetConfig{
			Options: map[string]string{
				"key2": "override_value2",
				"key3": "override_value3",
			},
		}

		result := MergeTargetConfig(base, override)

		assert.Equal(t, "base_value1", result.Options["key1"])
		assert.Equal(t, "override_value2", result.Options["key2"])
		assert.Equal(t, "override_value3", result.Options["key3"])
	})
}

func TestLoadConfigWithTarget_Fixtures(t *testing.T) {
	testdataDir := "../testdata"

	t.Run("valid duckdb config", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(filepath.Join(testdataDir, "valid_duckdb.yaml"), "", nil)
		require.NoError(t, err)

		assert.Equal(t, "duckdb", cfg.Target.Type)
		assert.Equal(t, ":memory:", cfg.Target.Database)
		assert.Equal(t, "main", cfg.Target.Schema)
	})

	t.Run("valid config with environments", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(filepath.Join(testdataDir, "valid_with_envs.yaml"), "", nil)
		require.NoError(t, err)

		assert.Equal(t, "dev.duckdb", cfg.Target.Database)
		assert.False(t, cfg.ReadOnly)
	})

	t.Run("config with environment override to staging", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(filepath.Join(testdataDir, "valid_with_envs.yaml"), "staging", nil)
		require.NoError(t, err)

		assert.Equal(t, "staging.duckdb", cfg.Target.Database)
		assert.Equal(t, "staging", cfg.Target.Schema)
	})

	t.Run("prod environment forces read-only", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(filepath.Join(testdataDir, "valid_with_envs.yaml"), "prod", nil)
		require.NoError(t, err)

		assert.Equal(t, "prod.duckdb", cfg.Target.Database)
		assert.True(t, cfg.ReadOnly)
	})

	t.Run("invalid unknown type", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfigWithTarget(filepath.Join(testdataDir, "invalid_unknown_type.yaml"), "", nil)
		require.Error(t, err, "expected error for unknown type")

		assert.Contains(t, err.Error(), "invalid target configuration")
		assert.Contains(t, err.Error(), "mysql")
	})

	t.Run("invalid empty type", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfigWithTarget(filepath.Join(testdataDir, "invalid_empty_type.yaml"), "", nil)
		require.Error(t, err, "expected error for empty type")

		assert.Contains(t, err.Error(), "target type is required")
	})

	t.Run("config with env vars", func(t *testing.T) {
		ResetConfig()
		t.Setenv("TEST_DB_NAME", "analytics")
		t.Setenv("TEST_DB_USER", "testuser")
		t.Setenv("TEST_DB_PASSWORD", "secret123")

		cfg, err := LoadConfigWithTarget(filepath.Join(testdataDir, "valid_env_vars.yaml"), "", nil)
		require.NoError(t, err)

		assert.Equal(t, "analytics", cfg.Target.Database)
		assert.Equal(t, "testuser", cfg.Target.User)
		assert.Equal(t, "secret123", cfg.Target.Password)
	})
}

// TestLoadConfigWithTarget_NonexistentEnvironment verifies a non-existent
// environment falls back to the base target.
func TestLoadConfigWithTarget_NonexistentEnvironment(t *testing.T) {
	ResetConfig()
	cfg, err := LoadConfigWithTarget(filepath.Join("../testdata", "valid_with_envs.yaml"), "nonexistent", nil)
	require.NoError(t, err)

	assert.Equal(t, "duckdb", cfg.Target.Type)
	assert.Equal(t, "dev.duckdb", cfg.Target.Database)
}

func TestLoadConfigWithTarget_FlagPrecedence(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "querydesk.yaml")
	cfgContent := `state_path: from_file.db
target:
  type: duckdb
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgContent), 0600))

	t.Setenv("QUERYDESK_STATE_PATH", "from_env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "", "state database path")
	require.NoError(t, flags.Set("state", "from_flag.db"))

	cfg, err := LoadConfigWithTarget(cfgPath, "", flags)
	require.NoError(t, err)

	// Flag should win, made absolute relative to CWD.
	assert.Equal(t, "from_flag.db", filepath.Base(cfg.StatePath),
		"flag value should override config file and env var")
}

func TestLoadConfigWithTarget_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "querydesk.yaml")
	cfgContent := `state_path: from_file.db
target:
  type: duckdb
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgContent), 0600))

	t.Setenv("QUERYDESK_STATE_PATH", "from_env.db")

	cfg, err := LoadConfigWithTarget(cfgPath, "", nil)
	require.NoError(t, err)

	assert.Equal(t, "from_env.db", filepath.Base(cfg.StatePath),
		"env var should override config file")
}

func TestConfig_GatePolicy(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &Config{}
		p := cfg.GatePolicy()
		assert.False(t, p.ReadOnly)
		assert.Nil(t, p.Dangerous, "empty list keeps the default dangerous set")
	})

	t.Run("custom dangerous set", func(t *testing.T) {
		cfg := &Config{
			ReadOnly:  true,
			Dangerous: []string{"drop", "Truncate", "bogus"},
		}
		p := cfg.GatePolicy()
		assert.True(t, p.ReadOnly)
		assert.Equal(t, []gate.Kind{gate.KindDrop, gate.KindTruncate}, p.Dangerous)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := &Config{
			StatePath: "state.db",
			Target:    &TargetConfig{Type: "duckdb"},
		}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("empty state_path", func(t *testing.T) {
		cfg := &Config{Target: &TargetConfig{Type: "duckdb"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "state_path is required")
	})

	t.Run("missing target", func(t *testing.T) {
		cfg := &Config{StatePath: "state.db"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target is required")
	})
}
