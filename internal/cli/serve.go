package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/costgraph/internal/server"
	"github.com/matzehuels/costgraph/pkg/controller"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noMetrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a diagram to a browser-based editor",
		Long: `Serve the diagram over HTTP for a browser-side rendering surface.

The document is loaded when it exists; otherwise the server starts with a
fresh diagram. Edits stay in memory until a client saves through
GET /api/document. Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.config()
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			ctrl, err := c.serveController(cmd)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := server.Options{
				Controller: ctrl,
				Runner:     runner,
				Logger:     c.Logger,
				Export:     cfg.PipelineOptions(nil),
			}
			if !noMetrics {
				m := server.NewMetrics()
				m.Register()
				opts.Metrics = m
			}

			printSuccess("Serving %s", c.document())
			printKeyValue("Address", StyleLink.Render("http://"+addr))
			return server.New(opts).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not serve /metrics")
	return cmd
}

func (c *CLI) serveController(cmd *cobra.Command) (*controller.Controller, error) {
	path := c.document()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.Logger.Info("document not found, starting fresh", "path", path)
		return c.newDocument()
	}
	return c.openDocument(cmd.Context(), path)
}
