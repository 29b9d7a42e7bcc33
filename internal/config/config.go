// Package config loads the process configuration for the offer service. All
// configuration is resolved once at startup and passed down explicitly;
// nothing below this package reads the environment at request time.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aptos-community/offer-service/internal/app/domain/offer"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Minter    MinterConfig    `yaml:"minter"`
	Confirm   ConfirmConfig   `yaml:"confirm"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Offers    []OfferConfig   `yaml:"offers"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig mirrors pkg/logger.LoggingConfig.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DatabaseConfig configures the optional Postgres claim store. An empty DSN
// selects the in-memory store.
type DatabaseConfig struct {
	Driver          string `yaml:"driver"`
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_seconds"`
}

// MinterConfig configures the external transaction submitter.
type MinterConfig struct {
	// Mode is "http" or "mock". Empty means http when Endpoint is set,
	// otherwise mock.
	Mode     string `yaml:"mode"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"-"`
}

// RateLimitConfig throttles the public offer and claim routes per client.
// Zero or negative requests_per_second disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// ConfirmConfig configures the mint confirmation resolver. An empty endpoint
// selects the timeout fallback.
type ConfirmConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"-"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// OfferConfig declares one promotional offer. Module address and signing key
// are not stored in the file; the file names the environment variables that
// carry them and values are read when the config is loaded.
type OfferConfig struct {
	Slug             string `yaml:"slug"`
	Network          string `yaml:"network"`
	ModuleAddressEnv string `yaml:"module_address_env"`
	SigningKeyEnv    string `yaml:"signing_key_env"`
	Disabled         bool   `yaml:"disabled"`
}

// Load reads config/offers.yaml, applies environment overrides and resolves
// offer secrets from the environment.
func Load() (*Config, error) {
	return LoadFromPath(filepath.Join("config", "offers.yaml"))
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration or falls back to the built-in default
// when the file is missing.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = Default()
		cfg.applyEnvOverrides()
	}
	return cfg
}

// Default returns the built-in configuration carrying the aptos-zero devnet
// offer.
func Default() *Config {
	cfg := &Config{
		Offers: []OfferConfig{
			{Slug: "aptos-zero", Network: "devnet"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8090
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 5
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 10
	}
	for i := range c.Offers {
		o := &c.Offers[i]
		if o.ModuleAddressEnv == "" {
			o.ModuleAddressEnv = offerEnvName(o.Slug, "MODULE_ADDRESS")
		}
		if o.SigningKeyEnv == "" {
			o.SigningKeyEnv = offerEnvName(o.Slug, "SIGNING_KEY")
		}
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OFFER_SERVICE_ADDR"); v != "" {
		host, port, err := splitHostPort(v)
		if err == nil {
			c.Server.Host = host
			c.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("MINTER_MODE"); v != "" {
		c.Minter.Mode = v
	}
	if v := os.Getenv("MINTER_ENDPOINT"); v != "" {
		c.Minter.Endpoint = v
	}
	c.Minter.APIKey = os.Getenv("MINTER_API_KEY")
	if v := os.Getenv("CLAIM_CONFIRM_URL"); v != "" {
		c.Confirm.Endpoint = v
	}
	c.Confirm.APIKey = os.Getenv("CLAIM_CONFIRM_KEY")
}

func (c *Config) validate() error {
	seen := make(map[string]struct{}, len(c.Offers))
	for _, o := range c.Offers {
		if strings.TrimSpace(o.Slug) == "" {
			return fmt.Errorf("offer: slug is required")
		}
		if _, dup := seen[o.Slug]; dup {
			return fmt.Errorf("offer %s: duplicate slug", o.Slug)
		}
		seen[o.Slug] = struct{}{}
		if !offer.Network(o.Network).Valid() {
			return fmt.Errorf("offer %s: unknown network %q", o.Slug, o.Network)
		}
	}
	return nil
}

// ResolveOffers materializes offer records from the configuration and the
// process environment. A missing module address is an error; a missing
// signing key leaves the record display-only.
func (c *Config) ResolveOffers() ([]offer.Record, error) {
	records := make([]offer.Record, 0, len(c.Offers))
	for _, o := range c.Offers {
		address := strings.TrimSpace(os.Getenv(o.ModuleAddressEnv))
		if address == "" {
			return nil, fmt.Errorf("offer %s: %s is not set", o.Slug, o.ModuleAddressEnv)
		}
		records = append(records, offer.Record{
			Slug:          o.Slug,
			Network:       offer.Network(o.Network),
			ModuleAddress: address,
			SigningKey:    strings.TrimSpace(os.Getenv(o.SigningKeyEnv)),
			Enabled:       !o.Disabled,
		})
	}
	return records, nil
}

func offerEnvName(slug, suffix string) string {
	cleaned := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(slug))
	return "OFFER_" + cleaned + "_" + suffix
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("address %q: %w", addr, err)
	}
	if host == "" {
		host = "0.0.0.0"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("address %q: invalid port", addr)
	}
	return host, port, nil
}
