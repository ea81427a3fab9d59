package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/motorrutas/internal/server"
	"github.com/matzehuels/motorrutas/pkg/editor"
	"github.com/matzehuels/motorrutas/pkg/session"
)

type serveOpts struct {
	addr    string
	noCache bool
	metrics bool
}

// serveCommand creates the command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{metrics: true}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the route editor HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the template cache")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", opts.metrics, "expose prometheus metrics on /metrics")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts serveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}

	backend, err := newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer backend.Close()
	source := c.newSource(cfg, backend)

	var metrics *server.Metrics
	if opts.metrics {
		metrics = server.NewMetrics(appName)
		metrics.Install()
	}

	store := session.NewMemoryStore(cfg.Session.TTL.Duration)
	go store.Run(ctx, cfg.Session.CleanupInterval.Duration)

	srv := server.New(server.Options{
		Store: store,
		NewEditor: func() *editor.Editor {
			return editor.New(source, editor.WithLogger(logger))
		},
		SessionTTL:     cfg.Session.TTL.Duration,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
		Metrics:        metrics,
	})

	logger.Info("starting", "addr", cfg.Server.Addr, "sources", source.URLs(), "cache", cfg.Cache.Backend)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
