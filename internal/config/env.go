package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// envFile is the dotenv file consulted before reading the environment.
// Variables already set in the process environment win over the file.
var envFile = ".env"

// parseEnv overlays values from the environment. API_KEY is the one
// credential the generative-language bridge needs; the SIGMAX_* variables
// mirror the most common flags for container deployments.
func parseEnv(c *Config) {
	_ = godotenv.Load(envFile)

	setString(&c.APIKey, os.Getenv("API_KEY"))
	setString(&c.HTTPAddr, os.Getenv("SIGMAX_HTTP_ADDR"))
	setString(&c.StoreKind, os.Getenv("SIGMAX_STORE_KIND"))
	setString(&c.StoreDSN, os.Getenv("SIGMAX_STORE_DSN"))
	setString(&c.SecretKey, os.Getenv("SIGMAX_SECRET_KEY"))
	setString(&c.LogLevel, os.Getenv("SIGMAX_LOG_LEVEL"))
	setString(&c.S3RootUser, os.Getenv("SIGMAX_S3_ROOT_USER"))
	setString(&c.S3RootPassword, os.Getenv("SIGMAX_S3_ROOT_PASSWORD"))
	setString(&c.S3Bucket, os.Getenv("SIGMAX_S3_BUCKET"))
	setString(&c.S3BaseEndpoint, os.Getenv("SIGMAX_S3_BASE_ENDPOINT"))

	if origins := os.Getenv("SIGMAX_CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = splitList(origins)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
