package main

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/androiddevnotesforks/Rays-Android/internal/importer"
	"github.com/androiddevnotesforks/Rays-Android/internal/mcp"
	"github.com/androiddevnotesforks/Rays-Android/internal/server"
	"github.com/androiddevnotesforks/Rays-Android/internal/tui"
)

func newServeCmd(c *cli) *cobra.Command {
	var (
		port     int
		watchDir string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API on localhost",
		Long: `Serve exposes the library over a JSON API on 127.0.0.1 and reloads
preferences when the preferences file changes. With --watch, images dropped
into the given directory are imported while the server runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port <= 0 {
				port = c.cfg.Server.Port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return c.withApp(func(a *app) error {
				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					return server.New(a.lib, port, c.logger).Start(gctx)
				})
				g.Go(func() error {
					return a.prefs.Watch(gctx)
				})
				if watchDir != "" {
					g.Go(func() error {
						return c.importer(a).Watch(gctx, watchDir, importer.Options{}, func(res *importer.Result) {
							c.logger.Info("imported stickers",
								zap.Int("imported", len(res.Imported)),
								zap.Int("skipped", len(res.Skipped)),
								zap.Int("failed", len(res.Failed)))
						})
					})
				}
				return g.Wait()
			})
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config, 7438)")
	cmd.Flags().StringVar(&watchDir, "watch", "", "directory to import new images from")
	return cmd
}

func newMCPCmd(c *cli) *cobra.Command {
	var tools string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server over stdio",
		Long: `Start an MCP server on stdin/stdout so AI agents can search and curate
the library. --tools takes profiles (browse, curate) and/or tool names,
comma separated; the default registers every tool.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				srv := mcp.NewServerWithTools(a.lib, mcp.ResolveTools(tools))
				return mcpserver.ServeStdio(srv)
			})
		},
	}
	cmd.Flags().StringVar(&tools, "tools", "", "tool profiles or names to expose (default all)")
	return cmd
}

func newTUICmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the library in an interactive terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Log lines would draw over the alt screen.
			c.logger = zap.NewNop()
			return c.withApp(func(a *app) error {
				p := tea.NewProgram(tui.New(a.lib, version))
				_, err := p.Run()
				return err
			})
		},
	}
}
