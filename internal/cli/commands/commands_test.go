// Package commands_test provides tests for CLI command creation.
package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantOut []string
	}{
		{
			name:    "default version",
			version: "0.1.0",
			wantOut: []string{"QueryDesk v0.1.0", "SQL workspace"},
		},
		{
			name:    "custom version",
			version: "1.2.3",
			wantOut: []string{"QueryDesk v1.2.3"},
		},
		{
			name:    "dev version",
			version: "dev",
			wantOut: []string{"QueryDesk vdev"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewVersionCommand(tt.version)

			var out bytes.Buffer
			cmd.SetOut(&out)
			require.NoError(t, cmd.Execute())

			for _, want := range tt.wantOut {
				assert.True(t, strings.Contains(out.String(), want),
					"output should contain %q, got: %s", want, out.String())
			}
		})
	}
}

func TestNewQueryCommand(t *testing.T) {
	cmd := NewQueryCommand()

	assert.Equal(t, "query [SQL]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"format", "input", "read-only", "dry-run", "yes"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewHistoryCommand(t *testing.T) {
	cmd := NewHistoryCommand()

	assert.Equal(t, "history", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	subs := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subs[strings.Fields(sub.Use)[0]] = true
	}
	for _, want := range []string{"list", "rm", "clear"} {
		assert.True(t, subs[want], "subcommand %q should exist", want)
	}
}

func TestNewSavedCommand(t *testing.T) {
	cmd := NewSavedCommand()

	assert.Equal(t, "saved", cmd.Use)

	subs := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subs[strings.Fields(sub.Use)[0]] = true
	}
	for _, want := range []string{"list", "add", "rm"} {
		assert.True(t, subs[want], "subcommand %q should exist", want)
	}
}

func TestNewTemplatesCommand(t *testing.T) {
	cmd := NewTemplatesCommand()

	assert.Equal(t, "templates", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"port", "no-browser", "watch"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}
