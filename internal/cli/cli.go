package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/motorrutas/internal/config"
	"github.com/matzehuels/motorrutas/pkg/buildinfo"
	"github.com/matzehuels/motorrutas/pkg/cache"
	"github.com/matzehuels/motorrutas/pkg/editor"
	"github.com/matzehuels/motorrutas/pkg/integrations/rutas"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "motorrutas"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Motor de Rutas builds procedure routes between establishments",
		Long:         `Motor de Rutas selects establishments from a route template and links them into a directed route from INICIO to FIN, over an HTTP API or in the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/motorrutas/config.toml)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Wiring
// =============================================================================

func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("config loaded", "backend", cfg.Cache.Backend, "urls", cfg.Source.URLs())
	return cfg, nil
}

// newCache builds the configured template cache. noCache forces the null
// backend.
func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	case config.CacheFile:
		dir, err := cacheDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}

// cacheDir returns the configured cache directory or the XDG default
// (~/.cache/motorrutas/).
func cacheDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return config.DefaultCacheDir()
}

func (c *CLI) newSource(cfg config.Config, backend cache.Cache) *rutas.Client {
	return rutas.NewClient(rutas.Config{
		URLs:         cfg.Source.URLs(),
		ResourcePath: cfg.Source.ResourcePath,
		ResourceID:   cfg.Source.ResourceID,
		Timeout:      cfg.Source.Timeout.Duration,
		CacheTTL:     cfg.Cache.TTL.Duration,
		Logger:       c.Logger,
	}, backend)
}

// openEditor loads config, builds the source chain and returns an editor
// over it. The returned close func releases the cache.
func (c *CLI) openEditor(ctx context.Context, noCache bool) (*editor.Editor, func() error, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	backend, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	ed := editor.New(c.newSource(cfg, backend), editor.WithLogger(c.Logger))
	return ed, backend.Close, nil
}
