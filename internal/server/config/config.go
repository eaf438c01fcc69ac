// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Storage backend selectors for Config.StorageKind.
const (
	StorageKindFilesystem = "filesystem"
	StorageKindS3         = "s3"
)

// Config holds runtime settings for the GuardianBox server.
//
// Fields:
//   - Addr: bind address for the public HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - StorageKind: blob backend, "filesystem" or "s3".
//   - FileStorageDir: blob root directory for the filesystem backend.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
//   - SweepInterval: how often the background sweep runs.
//   - DefaultExpirySeconds / DefaultDownloadLimit: lifecycle defaults applied
//     when an upload does not specify its own.
type Config struct {
	Addr                 string
	DatabaseDSN          string
	StorageKind          string
	FileStorageDir       string
	S3RootUser           string
	S3RootPassword       string
	S3Bucket             string
	S3Region             string
	S3BaseEndpoint       string
	SweepInterval        time.Duration
	DefaultExpirySeconds int64
	DefaultDownloadLimit int64
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabaseDSN = ""
	c.StorageKind = StorageKindFilesystem
	c.FileStorageDir = "./data/blobs"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "guardianbox"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.SweepInterval = 10 * time.Minute
	c.DefaultExpirySeconds = 86400
	c.DefaultDownloadLimit = 5
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
