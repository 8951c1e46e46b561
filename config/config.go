// Package config loads and validates the service configuration from
// config.yml, the process environment, and an optional .env file.
package config

import (
	"fmt"

	"github.com/jax-labs/apexflow/encryption"
	"github.com/jax-labs/apexflow/engine"
	"github.com/jax-labs/apexflow/exchange"
	"github.com/jax-labs/apexflow/logger"
	"github.com/jax-labs/apexflow/market"
	"github.com/jax-labs/apexflow/observability"
	"github.com/jax-labs/apexflow/server"
	"github.com/jax-labs/apexflow/webhook"
)

// ExchangeEntry configures one exchange connection. Credentials may be
// stored encrypted (the "enc:" prefix) and are resolved at bootstrap.
type ExchangeEntry struct {
	// ID is the user-facing connection id referenced by place-order nodes.
	ID string `yaml:"id" mapstructure:"id"`
	// Venue is the exchange enum value (binance, coinbase, ...).
	Venue string `yaml:"venue" mapstructure:"venue"`
	// APIKey and APISecret authenticate against the venue.
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	APISecret string `yaml:"api_secret" mapstructure:"api_secret"`
	// Active controls whether place-order nodes may use this connection.
	Active bool `yaml:"active" mapstructure:"active"`
}

// PaperConfig configures the in-memory paper exchange used in demo mode.
type PaperConfig struct {
	// Enabled registers a paper connection under the id "paper".
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Balances seeds the paper account, keyed by currency.
	Balances map[string]float64 `yaml:"balances" mapstructure:"balances"`
}

// EncryptionConfig configures credential decryption.
type EncryptionConfig struct {
	// Key is the symmetric key for enc:-prefixed secrets. Empty disables
	// decryption; encrypted values then fail at bootstrap.
	Key string `yaml:"key" mapstructure:"key"`
}

// Config is the root configuration of the apexflow service.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Engine        engine.Config        `yaml:"engine" mapstructure:"engine"`
	Market        market.Config        `yaml:"market" mapstructure:"market"`
	Webhook       webhook.Config       `yaml:"webhook" mapstructure:"webhook"`
	Exchanges     []ExchangeEntry      `yaml:"exchanges" mapstructure:"exchanges"`
	Paper         PaperConfig          `yaml:"paper" mapstructure:"paper"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Encryption    EncryptionConfig     `yaml:"encryption" mapstructure:"encryption"`
	// WorkflowDirs are searched by the CLI for workflow files by name.
	WorkflowDirs []string `yaml:"workflow_dirs" mapstructure:"workflow_dirs"`
}

// ApplyDefaults fills in zero-value fields across all sections.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "apexflow"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Market.ApplyDefaults()
	if len(c.WorkflowDirs) == 0 {
		c.WorkflowDirs = []string{".", "./workflows"}
	}
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	seen := make(map[string]bool, len(c.Exchanges))
	for i, entry := range c.Exchanges {
		if entry.ID == "" {
			return fmt.Errorf("exchanges[%d]: id is required", i)
		}
		if seen[entry.ID] {
			return fmt.Errorf("exchanges[%d]: duplicate id %q", i, entry.ID)
		}
		seen[entry.ID] = true
		if !exchange.ID(entry.Venue).Valid() {
			return fmt.Errorf("exchanges[%d]: unknown venue %q", i, entry.Venue)
		}
	}
	return nil
}

// ResolveSecrets decrypts enc:-prefixed credentials in place using the
// configured encryption key. Plaintext values pass through unchanged.
func (c *Config) ResolveSecrets() error {
	if !c.needsDecryption() {
		return nil
	}
	svc, err := encryption.NewService(c.Encryption.Key)
	if err != nil {
		return fmt.Errorf("encryption: %w", err)
	}
	for i := range c.Exchanges {
		entry := &c.Exchanges[i]
		if entry.APIKey, err = svc.Resolve(entry.APIKey); err != nil {
			return fmt.Errorf("exchanges[%d]: api_key: %w", i, err)
		}
		if entry.APISecret, err = svc.Resolve(entry.APISecret); err != nil {
			return fmt.Errorf("exchanges[%d]: api_secret: %w", i, err)
		}
	}
	if c.Webhook.Secret, err = svc.Resolve(c.Webhook.Secret); err != nil {
		return fmt.Errorf("webhook: secret: %w", err)
	}
	return nil
}

func (c *Config) needsDecryption() bool {
	for _, entry := range c.Exchanges {
		if encryption.IsEncrypted(entry.APIKey) || encryption.IsEncrypted(entry.APISecret) {
			return true
		}
	}
	return encryption.IsEncrypted(c.Webhook.Secret)
}
