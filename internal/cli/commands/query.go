package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/querydesk/querydesk/internal/cli/output"
	"github.com/querydesk/querydesk/internal/gate"
	"github.com/querydesk/querydesk/internal/session"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format   string
	Input    string
	ReadOnly bool
	DryRun   bool
	Yes      bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a statement against the target database",
		Long: `Run a SQL statement against the configured target database.

Statements pass through the execution gate: read-only mode rejects mutating
statements, dry runs show the query plan instead of executing, and dangerous
statements (DELETE, DROP, TRUNCATE, UPDATE, ALTER) require confirmation.

When invoked without arguments on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  querydesk query "SELECT * FROM orders LIMIT 10"

  # Reject anything that would modify data
  querydesk query --read-only "DELETE FROM orders"

  # Show the plan without executing
  querydesk query --dry-run "DELETE FROM orders WHERE expired"

  # Skip the confirmation prompt
  querydesk query --yes "DROP TABLE scratch"

  # Read SQL from a file, output JSON
  querydesk query --input report.sql --format json

  # Interactive mode
  querydesk query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "auto", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().BoolVar(&opts.ReadOnly, "read-only", false, "Reject mutating statements")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show the query plan instead of executing")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt for dangerous statements")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	// Determine SQL source
	var sqlText string

	switch {
	case len(args) > 0:
		sqlText = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlText = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlText = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, opts)
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return executeThroughGate(cmd, cmdCtx.Session, sqlText, opts)
}

// executeThroughGate runs one statement through the workspace gate, handling
// the confirmation round trip.
func executeThroughGate(cmd *cobra.Command, sess *session.Session, sqlText string, opts *QueryOptions) error {
	tab := sess.ActiveTab()
	if err := sess.SetText(tab.ID, sqlText); err != nil {
		return err
	}

	execOpts := session.ExecuteOptions{
		ReadOnly: opts.ReadOnly,
		DryRun:   opts.DryRun,
	}

	res, err := sess.Execute(cmd.Context(), execOpts)
	if err != nil {
		return err
	}

	if res.RequiresConfirmation {
		if !opts.Yes && !confirmDangerous(cmd, res.DangerousOperation) {
			sess.Cancel()
			return fmt.Errorf("cancelled")
		}
		execOpts.Confirmed = true
		res, err = sess.Execute(cmd.Context(), execOpts)
		if err != nil {
			return err
		}
	}

	if res.Err != nil {
		return res.Err
	}

	format := output.ResolveFormat(opts.Format, isTerminal(os.Stdout))
	return output.Render(cmd.OutOrStdout(), res.Table, format)
}

// confirmDangerous prompts y/N for a dangerous statement. Without a terminal
// it refuses, so scripts must pass --yes explicitly.
func confirmDangerous(cmd *cobra.Command, kind gate.Kind) bool {
	if !isTerminal(os.Stdin) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(),
			"%s statement requires confirmation; re-run with --yes\n", kind)
		return false
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s statement detected. Proceed? [y/N] ", kind)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
