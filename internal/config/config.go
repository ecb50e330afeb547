package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port       string `env:"PORT" envDefault:"4321"`
	ListenAddr string `env:"PBLSTUDIO_LISTEN_ADDR"`
	StaticDir  string `env:"PBLSTUDIO_STATIC_DIR" envDefault:"internal/web/static"`

	DatabasePath string `env:"PBLSTUDIO_DB_PATH" envDefault:"pblstudio_db.sqlite"`

	CacheHTML   string `env:"PBLSTUDIO_CACHE_HTML" envDefault:"no-cache"`
	CacheStatic string `env:"PBLSTUDIO_CACHE_STATIC" envDefault:"public, max-age=3600, s-maxage=3600"`

	AccessLog bool `env:"PBLSTUDIO_ACCESS_LOG" envDefault:"true"`

	ShutdownTimeout   time.Duration `env:"PBLSTUDIO_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ReadHeaderTimeout time.Duration `env:"PBLSTUDIO_READ_HEADER_TIMEOUT" envDefault:"5s"`
}

// Load reads the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.normalize(), nil
}

// Addr returns the address the HTTP server binds to.
func (c Config) Addr() string {
	if addr := strings.TrimSpace(c.ListenAddr); addr != "" {
		return addr
	}

	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if port == "" {
		port = "4321"
	}
	return ":" + port
}

func (c Config) normalize() Config {
	c.StaticDir = strings.TrimSpace(c.StaticDir)
	c.DatabasePath = strings.TrimSpace(c.DatabasePath)
	c.CacheHTML = strings.TrimSpace(c.CacheHTML)
	c.CacheStatic = strings.TrimSpace(c.CacheStatic)
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = 5 * time.Second
	}
	return c
}
