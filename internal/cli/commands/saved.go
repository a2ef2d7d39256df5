package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querydesk/querydesk/internal/cli/output"
	"github.com/querydesk/querydesk/internal/results"
	"github.com/querydesk/querydesk/internal/state"
)

// NewSavedCommand creates the saved-queries command.
func NewSavedCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved queries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listSaved(cmd, format)
		},
	}

	cmd.PersistentFlags().StringVarP(&format, "format", "f", "table", "Output format: table, json, csv, md")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved queries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listSaved(cmd, format)
		},
	})

	var description string
	addCmd := &cobra.Command{
		Use:   "add <name> <sql>",
		Short: "Save a query under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContextWithoutDB(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			q := &state.SavedQuery{
				Name:        args[0],
				Query:       args[1],
				Description: description,
			}
			if err := cmdCtx.Store.SaveQuery(q); err != nil {
				return fmt.Errorf("failed to save query: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %q (%s)\n", q.Name, q.ID)
			return nil
		},
	}
	addCmd.Flags().StringVarP(&description, "description", "d", "", "Optional description")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a saved query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContextWithoutDB(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cmdCtx.Store.DeleteSavedQuery(args[0]); err != nil {
				return fmt.Errorf("failed to delete saved query: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func listSaved(cmd *cobra.Command, format string) error {
	cmdCtx, cleanup, err := NewCommandContextWithoutDB(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	queries, err := cmdCtx.Store.ListSavedQueries()
	if err != nil {
		return fmt.Errorf("failed to list saved queries: %w", err)
	}

	rows := make([][]any, len(queries))
	for i, q := range queries {
		rows[i] = []any{q.ID, q.Name, q.Query, q.Description}
	}

	tbl := results.NewTable([]string{"id", "name", "query", "description"}, rows)
	return output.Render(cmd.OutOrStdout(), tbl, format)
}
