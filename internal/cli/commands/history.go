package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querydesk/querydesk/internal/cli/output"
	"github.com/querydesk/querydesk/internal/results"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage query history",
		Long: `Inspect and prune the persisted query history.

History records every executed statement with its outcome, capped at the
most recent 100 entries.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listHistory(cmd, format)
		},
	}

	cmd.PersistentFlags().StringVarP(&format, "format", "f", "table", "Output format: table, json, csv, md")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List query history, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listHistory(cmd, format)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete one history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContextWithoutDB(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cmdCtx.Store.DeleteHistory(args[0]); err != nil {
				return fmt.Errorf("failed to delete history entry: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContextWithoutDB(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cmdCtx.Store.ClearHistory(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		},
	})

	return cmd
}

func listHistory(cmd *cobra.Command, format string) error {
	cmdCtx, cleanup, err := NewCommandContextWithoutDB(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	items, err := cmdCtx.Store.ListHistory()
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	rows := make([][]any, len(items))
	for i, item := range items {
		status := "ok"
		if !item.Success {
			status = item.Error
		}
		rows[i] = []any{
			item.ID,
			item.ExecutedAt.Format("2006-01-02 15:04:05"),
			item.Query,
			item.ExecutionMS,
			status,
		}
	}

	tbl := results.NewTable([]string{"id", "executed_at", "query", "ms", "status"}, rows)
	return output.Render(cmd.OutOrStdout(), tbl, format)
}
