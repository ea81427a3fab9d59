// Package config loads motorrutas configuration from a TOML file and
// MOTORRUTAS_* environment variables.
//
// Precedence, lowest first: built-in defaults, the config file, the
// environment. The default file is ~/.config/motorrutas/config.toml and may
// be absent; a path passed explicitly must exist.
//
//	[server]
//	addr = ":8080"
//	allowed_origins = ["http://localhost:3000"]
//
//	[source]
//	primary = "http://localhost:8000"
//	secondary = "http://127.0.0.1:8000"
//	fallbacks = ["http://backup:8000"]
//	resource_id = 1
//	timeout = "10s"
//
//	[cache]
//	backend = "redis"
//	ttl = "1h"
//	[cache.redis]
//	addr = "localhost:6379"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "motorrutas"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Duration is a time.Duration written as a string ("10s", "2h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full application configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Source  Source  `toml:"source"`
	Cache   Cache   `toml:"cache"`
	Session Session `toml:"session"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Source configures the route template service.
type Source struct {
	Primary   string `toml:"primary"`
	Secondary string `toml:"secondary"`
	// Fallbacks are tried after the secondary, in order.
	Fallbacks    []string `toml:"fallbacks"`
	ResourcePath string   `toml:"resource_path"`
	ResourceID   int      `toml:"resource_id"`
	Timeout      Duration `toml:"timeout"`
}

// URLs returns the configured base URLs, primary first, skipping blanks.
func (s Source) URLs() []string {
	var out []string
	for _, u := range append([]string{s.Primary, s.Secondary}, s.Fallbacks...) {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Cache configures the template response cache.
type Cache struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
	Redis   Redis    `toml:"redis"`
}

// Redis configures the redis cache backend.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Session configures the session store.
type Session struct {
	TTL             Duration `toml:"ttl"`
	CleanupInterval Duration `toml:"cleanup_interval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Source: Source{
			Primary:      "http://localhost:8000",
			Secondary:    "http://127.0.0.1:8000",
			ResourcePath: "/api/motor-rutas/plantillas",
			ResourceID:   1,
			Timeout:      Duration{10 * time.Second},
		},
		Cache: Cache{
			Backend: CacheFile,
			TTL:     Duration{time.Hour},
			Redis:   Redis{Addr: "localhost:6379"},
		},
		Session: Session{
			TTL:             Duration{2 * time.Hour},
			CleanupInterval: Duration{time.Minute},
		},
	}
}

// DefaultPath returns ~/.config/motorrutas/config.toml, honoring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns ~/.cache/motorrutas, honoring XDG_CACHE_HOME.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the config file at path, falling back to [DefaultPath] when
// path is empty, then applies environment overrides and validates.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// applyEnv overrides cfg from MOTORRUTAS_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup("MOTORRUTAS_" + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup("MOTORRUTAS_" + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MOTORRUTAS_%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *Duration) error {
		v, ok := lookup("MOTORRUTAS_" + key)
		if !ok {
			return nil
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("MOTORRUTAS_%s: %w", key, err)
		}
		return nil
	}

	str("ADDR", &cfg.Server.Addr)
	if v, ok := lookup("MOTORRUTAS_ALLOWED_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	str("PRIMARY_URL", &cfg.Source.Primary)
	str("SECONDARY_URL", &cfg.Source.Secondary)
	str("RESOURCE_PATH", &cfg.Source.ResourcePath)
	str("CACHE", &cfg.Cache.Backend)
	str("CACHE_DIR", &cfg.Cache.Dir)
	str("REDIS_ADDR", &cfg.Cache.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Cache.Redis.Password)

	return errors.Join(
		num("RESOURCE_ID", &cfg.Source.ResourceID),
		num("REDIS_DB", &cfg.Cache.Redis.DB),
		dur("TIMEOUT", &cfg.Source.Timeout),
		dur("CACHE_TTL", &cfg.Cache.TTL),
		dur("SESSION_TTL", &cfg.Session.TTL),
	)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Source.ResourceID <= 0 {
		errs = append(errs, fmt.Errorf("source.resource_id must be positive, got %d", c.Source.ResourceID))
	}
	if c.Source.Timeout.Duration < 0 {
		errs = append(errs, errors.New("source.timeout must not be negative"))
	}
	if !slices.Contains([]string{CacheNone, CacheFile, CacheRedis}, c.Cache.Backend) {
		errs = append(errs, fmt.Errorf("cache.backend must be none, file or redis, got %q", c.Cache.Backend))
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Redis.Addr == "" {
		errs = append(errs, errors.New("cache.redis.addr is required for the redis backend"))
	}
	if c.Session.TTL.Duration <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Session.CleanupInterval.Duration <= 0 {
		errs = append(errs, errors.New("session.cleanup_interval must be positive"))
	}
	return errors.Join(errs...)
}
