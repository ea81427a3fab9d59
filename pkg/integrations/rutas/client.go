package rutas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"

	"github.com/matzehuels/motorrutas/pkg/cache"
	"github.com/matzehuels/motorrutas/pkg/integrations"
	"github.com/matzehuels/motorrutas/pkg/observability"
	"github.com/matzehuels/motorrutas/pkg/partition"
)

const (
	// DefaultResourcePath is the template endpoint below each base URL.
	DefaultResourcePath = "/api/motor-rutas/plantillas"
	// DefaultResourceID is the template requested when none is configured.
	DefaultResourceID = 1

	defaultBreakerFailures = 3
	defaultBreakerTimeout  = 30 * time.Second
)

// Config configures a [Client].
type Config struct {
	// URLs are the candidate base URLs, primary first.
	URLs         []string
	ResourcePath string
	ResourceID   int
	// Timeout bounds each request; zero keeps the client default.
	Timeout  time.Duration
	CacheTTL time.Duration
	// BreakerFailures is the number of consecutive failures that opens a
	// candidate's breaker.
	BreakerFailures uint32
	// BreakerTimeout is how long an open breaker waits before letting a
	// probe request through.
	BreakerTimeout time.Duration
	Logger         *log.Logger
}

// Result is the outcome of a fetch.
type Result struct {
	RouteName string           `json:"routeName,omitempty"`
	Items     []partition.Item `json:"items"`
	URL       string           `json:"url,omitempty"`
	Err       string           `json:"error,omitempty"`
}

// Fallback reports whether the placeholder list was used.
func (r Result) Fallback() bool { return r.Err != "" }

// Client fetches route templates through the candidate chain.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	urls     []string
	breakers []*gobreaker.CircuitBreaker
	logger   *log.Logger
}

// NewClient creates a client for cfg. A nil backend disables caching.
func NewClient(cfg Config, backend cache.Cache) *Client {
	if cfg.ResourcePath == "" {
		cfg.ResourcePath = DefaultResourcePath
	}
	if cfg.ResourceID == 0 {
		cfg.ResourceID = DefaultResourceID
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaultBreakerFailures
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = defaultBreakerTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	c := &Client{
		Client: integrations.NewClient(backend, "template:", cfg.CacheTTL, map[string]string{"Accept": "application/json"}),
		logger: cfg.Logger,
	}
	if cfg.Timeout > 0 {
		c.SetHTTPClient(&http.Client{Timeout: cfg.Timeout})
	}
	for _, base := range cfg.URLs {
		url := resourceURL(base, cfg.ResourcePath, cfg.ResourceID)
		c.urls = append(c.urls, url)
		c.breakers = append(c.breakers, newBreaker(url, cfg, c.logger))
	}
	return c
}

func newBreaker(name string, cfg Config, logger *log.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Debug("breaker state changed", "url", name, "from", from, "to", to)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

func resourceURL(base, path string, id int) string {
	return fmt.Sprintf("%s/%s/%d", strings.TrimRight(base, "/"), strings.Trim(path, "/"), id)
}

// URLs returns the resolved candidate URLs, primary first.
func (c *Client) URLs() []string {
	return append([]string(nil), c.urls...)
}

// Fetch walks the full candidate chain, serving cached templates when
// available. The returned error is non-nil only if ctx was canceled.
func (c *Client) Fetch(ctx context.Context) (Result, error) {
	return c.run(ctx, len(c.urls), false)
}

// Reload retries the primary URL only, bypassing the cache. It falls back
// to the placeholder list exactly as [Client.Fetch] does.
func (c *Client) Reload(ctx context.Context) (Result, error) {
	return c.run(ctx, min(1, len(c.urls)), true)
}

func (c *Client) run(ctx context.Context, n int, refresh bool) (Result, error) {
	for i := range n {
		url := c.urls[i]
		start := time.Now()
		tmpl, err := c.fetch(ctx, i, refresh)
		observability.Source().OnFetch(ctx, url, time.Since(start), err)
		if err == nil {
			return Result{RouteName: tmpl.RouteName, Items: tmpl.Items(), URL: url}, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		c.logger.Warn("route source failed", "url", url, "err", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	observability.Source().OnFallback(ctx)
	return Result{Items: Placeholder(), Err: ErrorMessage}, nil
}

func (c *Client) fetch(ctx context.Context, i int, refresh bool) (*Template, error) {
	url := c.urls[i]
	var tmpl Template
	err := c.Cached(ctx, url, refresh, &tmpl, func() error {
		_, err := c.breakers[i].Execute(func() (any, error) {
			return nil, c.Get(ctx, url, &tmpl)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}
