// Package config handles configuration for the sigmax server and CLI,
// including defaults, a JSON/YAML file overlay, environment variables
// and command-line flags, applied in that order.
package config

import (
	"fmt"
	"os"
	"time"
)

// Store backend kinds understood by the store package.
const (
	StoreMemory   = "memory"
	StorePebble   = "pebble"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds runtime settings.
//
// Fields:
//   - HTTPAddr: bind address for the REST + websocket endpoint.
//   - StoreKind / StoreDSN: key-value backend and its location (directory for
//     pebble, DSN for sqlite/postgres, ignored for memory).
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - AccessTokenValidityDuration: access token lifetime.
//   - APIKey: credential for the generative-language API; empty disables AI calls.
//   - AIBaseURL / AIFastModel / AIReasoningModel / AIVisionModel: model endpoint.
//   - AITimeout / AIRatePerSecond / AIBurst: per-call timeout and client-side rate limit.
//   - PersonaReplyDelay: pause before a persona answers in a private chat.
//   - RateLimitRPS / RateLimitBurst: per-client HTTP request limit.
//   - CORSOrigins: allowed browser origins.
//   - S3*: optional object storage for identity scans; empty bucket disables it.
type Config struct {
	HTTPAddr                    string
	StoreKind                   string
	StoreDSN                    string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	LogLevel                    string
	LogFormat                   string
	SeedOnStart                 bool

	APIKey           string
	AIBaseURL        string
	AIFastModel      string
	AIReasoningModel string
	AIVisionModel    string
	AITimeout        time.Duration
	AIRatePerSecond  float64
	AIBurst          int

	PersonaReplyDelay time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside local use.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.StoreKind = StorePebble
	c.StoreDSN = "data/sigmax"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.SeedOnStart = true

	c.AIBaseURL = "https://generativelanguage.googleapis.com"
	c.AIFastModel = "gemini-3-flash-preview"
	c.AIReasoningModel = "gemini-3-pro-preview"
	c.AIVisionModel = "gemini-3-pro-preview"
	c.AITimeout = 30 * time.Second
	c.AIRatePerSecond = 2
	c.AIBurst = 5

	c.PersonaReplyDelay = 1500 * time.Millisecond

	c.RateLimitRPS = 10
	c.RateLimitBurst = 20
	c.CORSOrigins = []string{"http://localhost:3000"}

	c.S3Region = "us-east-1"
}

// Validate rejects settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.StoreKind {
	case StoreMemory, StorePebble, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("unknown store kind %q", c.StoreKind)
	}
	if c.StoreKind != StoreMemory && c.StoreDSN == "" {
		return fmt.Errorf("store %q needs a DSN", c.StoreKind)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key must not be empty")
	}
	if c.AccessTokenValidityDuration <= 0 {
		return fmt.Errorf("access token validity must be positive")
	}
	return nil
}

// LoadConfig builds a Config from os.Args and the process environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load applies defaults, then the optional config file named by -c/-config,
// then environment variables (a .env file is loaded first when present),
// and finally command-line flags taken from args.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
