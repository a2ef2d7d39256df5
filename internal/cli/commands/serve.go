package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/querydesk/querydesk/internal/session"
	"github.com/querydesk/querydesk/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the QueryDesk workspace server",
		Long: `Start a local web server exposing the workspace API.

The server provides:
- Query tabs with structured query building
- Execution through the safety gate
- Schema browsing with cached metadata
- History, saved queries, and templates
- Result filtering, sorting, pagination, and export`,
		Example: `  # Start on the default port
  querydesk serve

  # Start on a custom port
  querydesk serve --port 3000

  # Start without auto-opening the browser
  querydesk serve --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8900)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Watch the templates directory for changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	srvCfg := cfg.GetServerConfig()

	port := srvCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	// Bring back the tabs from the previous session
	if err := cmdCtx.Session.Restore(); err != nil {
		cmdCtx.Logger.Warn("failed to restore tabs", "error", err)
	}

	catalog, err := session.NewCatalog(cfg.TemplatesDir, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("failed to load template catalog: %w", err)
	}

	server := ui.NewServer(ui.Config{
		Workspace:     cmdCtx.Session,
		SchemaCache:   cmdCtx.Schema,
		Catalog:       catalog,
		Store:         cmdCtx.Store,
		Port:          port,
		Watch:         opts.Watch,
		SessionSecret: sessionSecret(srvCfg.SessionSecret),
		Logger:        cmdCtx.Logger,
	})

	if !opts.NoBrowser {
		go openBrowser(fmt.Sprintf("http://localhost:%d", port))
	}

	fmt.Printf("Starting workspace server on http://localhost:%d\n", port)
	fmt.Println("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// sessionSecret resolves the cookie signing secret: config first, then the
// environment, then a fixed development fallback.
func sessionSecret(configured string) string {
	if configured != "" {
		return configured
	}
	if secret := os.Getenv("QUERYDESK_SESSION_SECRET"); secret != "" {
		return secret
	}
	return "querydesk-dev-secret-change-in-production" //nolint:gosec
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
