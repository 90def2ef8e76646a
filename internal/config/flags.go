package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/sigmax/internal/flagx"
)

var knownFlags = []string{"-a", "-k", "-d", "-s", "-t", "-l", "-b", "-e", "-g", "-seed"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-k string   store kind: memory, pebble, sqlite, postgres
//	-d string   store DSN / directory
//	-s string   access token HMAC secret
//	-t int      access token validity, minutes
//	-l string   log level
//	-b string   S3 bucket for identity scans
//	-e string   S3 base endpoint
//	-g string   S3 region
//	-seed bool  seed personas and channels on start
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("sigmax", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.StoreKind, "k", config.StoreKind, "store kind")
	fs.StringVar(&config.StoreDSN, "d", config.StoreDSN, "store DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	validity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.BoolVar(&config.SeedOnStart, "seed", config.SeedOnStart, "seed personas and channels")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	config.AccessTokenValidityDuration = time.Duration(*validity) * time.Minute
	return nil
}
