package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/sigmax/internal/flagx"
	"github.com/dmitrijs2005/sigmax/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. It is decoded from
// JSON or YAML (chosen by file extension) and only non-zero values are
// copied over the defaults.
type FileConfig struct {
	HTTPAddr                    string         `json:"http_addr" yaml:"http_addr"`
	StoreKind                   string         `json:"store_kind" yaml:"store_kind"`
	StoreDSN                    string         `json:"store_dsn" yaml:"store_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
	LogFormat                   string         `json:"log_format" yaml:"log_format"`
	SeedOnStart                 *bool          `json:"seed_on_start" yaml:"seed_on_start"`

	AIBaseURL        string         `json:"ai_base_url" yaml:"ai_base_url"`
	AIFastModel      string         `json:"ai_fast_model" yaml:"ai_fast_model"`
	AIReasoningModel string         `json:"ai_reasoning_model" yaml:"ai_reasoning_model"`
	AIVisionModel    string         `json:"ai_vision_model" yaml:"ai_vision_model"`
	AITimeout        timex.Duration `json:"ai_timeout" yaml:"ai_timeout"`
	AIRatePerSecond  float64        `json:"ai_rate_per_second" yaml:"ai_rate_per_second"`
	AIBurst          int            `json:"ai_burst" yaml:"ai_burst"`

	PersonaReplyDelay timex.Duration `json:"persona_reply_delay" yaml:"persona_reply_delay"`

	RateLimitRPS   float64  `json:"rate_limit_rps" yaml:"rate_limit_rps"`
	RateLimitBurst int      `json:"rate_limit_burst" yaml:"rate_limit_burst"`
	CORSOrigins    []string `json:"cors_origins" yaml:"cors_origins"`

	S3RootUser     string `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       string `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

func parseFile(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.HTTPAddr, fc.HTTPAddr)
	setString(&c.StoreKind, fc.StoreKind)
	setString(&c.StoreDSN, fc.StoreDSN)
	setString(&c.SecretKey, fc.SecretKey)
	if fc.AccessTokenValidityDuration.Duration > 0 {
		c.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFormat, fc.LogFormat)
	if fc.SeedOnStart != nil {
		c.SeedOnStart = *fc.SeedOnStart
	}

	setString(&c.AIBaseURL, fc.AIBaseURL)
	setString(&c.AIFastModel, fc.AIFastModel)
	setString(&c.AIReasoningModel, fc.AIReasoningModel)
	setString(&c.AIVisionModel, fc.AIVisionModel)
	if fc.AITimeout.Duration > 0 {
		c.AITimeout = fc.AITimeout.Duration
	}
	if fc.AIRatePerSecond > 0 {
		c.AIRatePerSecond = fc.AIRatePerSecond
	}
	if fc.AIBurst > 0 {
		c.AIBurst = fc.AIBurst
	}
	if fc.PersonaReplyDelay.Duration > 0 {
		c.PersonaReplyDelay = fc.PersonaReplyDelay.Duration
	}

	if fc.RateLimitRPS > 0 {
		c.RateLimitRPS = fc.RateLimitRPS
	}
	if fc.RateLimitBurst > 0 {
		c.RateLimitBurst = fc.RateLimitBurst
	}
	if len(fc.CORSOrigins) > 0 {
		c.CORSOrigins = fc.CORSOrigins
	}

	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
