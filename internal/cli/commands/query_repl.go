package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/querydesk/querydesk/internal/cli/output"
	"github.com/querydesk/querydesk/internal/schema"
)

func runQueryREPL(cmd *cobra.Command, opts *QueryOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// Setup history file (project-local, next to the state database)
	historyFile := filepath.Join(filepath.Dir(cmdCtx.Cfg.StatePath), "query_history")

	completer := newSuggestionCompleter(cmd, cmdCtx.Schema)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "querydesk> ",
		HistoryFile:     historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "QueryDesk REPL (target: %s)\n", cmdCtx.Cfg.Target.Type)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	format := opts.Format
	if format == "" || format == "auto" {
		format = "table"
	}

	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			cmdCtx.Session.Cancel()
			rl.SetPrompt("querydesk> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle dot-commands (only at statement start)
		if multiLineBuffer.Len() == 0 && strings.HasPrefix(line, ".") {
			if handled := handleDotCommand(cmd, cmdCtx, line, format); handled {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("      ...> ")
			continue
		}
		rl.SetPrompt("querydesk> ")

		query := multiLineBuffer.String()
		multiLineBuffer.Reset()

		if err := executeThroughGate(cmd, cmdCtx.Session, query, &QueryOptions{
			Format:   format,
			ReadOnly: opts.ReadOnly,
			DryRun:   opts.DryRun,
			Yes:      opts.Yes,
		}); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

func handleDotCommand(cmd *cobra.Command, cmdCtx *CommandContext, line, format string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())
		return true

	case ".tables":
		tables, err := cmdCtx.Schema.ListTables(cmd.Context())
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return true
		}
		if err := output.RenderTableList(cmd.OutOrStdout(), tables, format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return true

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .schema <table>")
			return true
		}
		details, err := cmdCtx.Schema.TableDetails(cmd.Context(), parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return true
		}
		if err := output.RenderTableDetails(cmd.OutOrStdout(), details, format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return true

	case ".refresh":
		cmdCtx.Schema.Refresh()
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Schema cache cleared")
		return true

	case ".history":
		items, err := cmdCtx.Session.History()
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return true
		}
		for _, item := range items {
			status := "ok"
			if !item.Success {
				status = "error"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s  (%dms, %s)\n",
				item.ExecutedAt.Format("15:04:05"), item.Query, item.ExecutionMS, status)
		}
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List tables and views in the target database
  .schema <name>  Show columns, keys, and indexes for a table
  .refresh        Clear the schema cache
  .history        Show recent query history
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Dangerous statements (DELETE, DROP, ...) prompt before executing
  - Tab completion covers table names, columns, and SQL keywords
`
	_, _ = fmt.Fprintln(w, help)
}

// newSuggestionCompleter creates a readline completer from the schema cache
// suggestion list: table names, table.column pairs, and SQL keywords.
func newSuggestionCompleter(cmd *cobra.Command, cache *schema.Cache) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, s := range cache.Suggestions(cmd.Context()) {
		items = append(items, readline.PcItem(s))
	}

	// Add dot-commands
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".refresh"),
		readline.PcItem(".history"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
