package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querydesk/querydesk/internal/cli/config"
	"github.com/querydesk/querydesk/internal/cli/output"
	"github.com/querydesk/querydesk/internal/results"
	"github.com/querydesk/querydesk/internal/session"
)

// NewTemplatesCommand creates the templates command.
func NewTemplatesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List query templates",
		Long: `List the read-only query templates loaded from the templates directory.

Each .sql file in the directory is one template; an optional .yaml sidecar
with the same base name supplies a display name and description.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig()
			logger := config.GetLogger(cmd.Context())

			catalog, err := session.NewCatalog(cfg.TemplatesDir, logger)
			if err != nil {
				return fmt.Errorf("failed to load templates: %w", err)
			}

			templates := catalog.List()
			rows := make([][]any, len(templates))
			for i, t := range templates {
				rows[i] = []any{t.Name, t.Description, t.Query}
			}

			tbl := results.NewTable([]string{"name", "description", "query"}, rows)
			return output.Render(cmd.OutOrStdout(), tbl, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, csv, md")
	return cmd
}
