package server

import "fmt"

// AuthConfig configures bearer-token authentication for the API routes.
type AuthConfig struct {
	// Enabled requires a valid JWT on /api routes when true.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// JWTSecret is the HMAC secret tokens are signed with.
	JWTSecret string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

// CORSConfig configures cross-origin access for browser clients.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}

// Config holds HTTP server configuration.
type Config struct {
	Host         string     `yaml:"host" mapstructure:"host"`
	Port         int        `yaml:"port" mapstructure:"port"`
	ReadTimeout  int        `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int        `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int        `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	Auth         AuthConfig `yaml:"auth" mapstructure:"auth"`
	CORS         CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	// Executions can legitimately run for a while (delay nodes), so the
	// write timeout is generous.
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 120
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("server timeouts must be non-negative")
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("server.auth.jwt_secret is required when auth is enabled")
	}
	return nil
}
