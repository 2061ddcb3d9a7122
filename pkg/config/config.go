// Package config loads runtime settings from INKWELL_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/lborres/inkwell/core"
	"github.com/lborres/inkwell/pkg/crypto"
)

// Prefix is prepended to every variable name.
const Prefix = "INKWELL_"

const EnvProduction = "production"

// MinSecretLength is the shortest accepted application secret.
const MinSecretLength = 32

type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	Env         string `env:"ENV" envDefault:"development"`
	DatabaseURI string `env:"DATABASE_URI"`
	Secret      string `env:"SECRET"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	SessionMaxAge        time.Duration `env:"SESSION_MAX_AGE" envDefault:"720h"`
	SessionPurgeInterval time.Duration `env:"SESSION_PURGE_INTERVAL" envDefault:"1h"`
	CookieName           string        `env:"COOKIE_NAME" envDefault:"payload-token"`

	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	CacheMaxSize int           `env:"CACHE_MAX_SIZE" envDefault:"500"`

	// SecretGenerated is set when Secret was empty and a throwaway one was
	// generated. Sessions will not survive a restart.
	SecretGenerated bool `env:"-"`
}

// Load parses the environment. An empty secret is an error in production;
// elsewhere a random one is generated.
func Load() (*Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom parses vars instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Secret == "" {
		if cfg.Production() {
			return nil, fmt.Errorf("%s%s: %w", Prefix, "SECRET", core.ErrSecretRequired)
		}
		secret, err := crypto.GenerateToken(MinSecretLength)
		if err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		cfg.Secret = secret
		cfg.SecretGenerated = true
	}
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("%s%s must be at least %d characters: %w", Prefix, "SECRET", MinSecretLength, core.ErrSecretTooShort)
	}

	return cfg, nil
}

func (c *Config) Production() bool {
	return c.Env == EnvProduction
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) SessionConfig() core.SessionConfig {
	return core.SessionConfig{MaxAge: c.SessionMaxAge}
}

func (c *Config) CacheConfig() core.CacheConfig {
	return core.CacheConfig{TTL: c.CacheTTL, MaxSize: c.CacheMaxSize}
}

// CookieConfig marks the cookie Secure only in production.
func (c *Config) CookieConfig() core.CookieConfig {
	cc := core.DefaultCookieConfig(c.SessionMaxAge, c.Production())
	cc.Name = c.CookieName
	return cc
}
