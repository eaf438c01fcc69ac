package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"addr":                   "www.example:9000",
		"database_dsn":           "postgres://localhost/guardianbox",
		"storage_kind":           "s3",
		"file_storage_dir":       "/var/lib/guardianbox",
		"s3_root_user":           "user",
		"s3_root_password":       "password",
		"s3_bucket":              "bucket",
		"s3_region":              "region",
		"s3_base_endpoint":       "base_endpoint",
		"sweep_interval":         "10m",
		"default_expiry_seconds": 7200,
		"default_download_limit": 2,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.Addr)
		assert.Equal(t, "postgres://localhost/guardianbox", cfg.DatabaseDSN)
		assert.Equal(t, "s3", cfg.StorageKind)
		assert.Equal(t, "/var/lib/guardianbox", cfg.FileStorageDir)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, 10*time.Minute, cfg.SweepInterval)
		assert.Equal(t, int64(7200), cfg.DefaultExpirySeconds)
		assert.Equal(t, int64(2), cfg.DefaultDownloadLimit)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			Addr:                 "defaults:1234",
			DatabaseDSN:          "dsn",
			StorageKind:          StorageKindFilesystem,
			FileStorageDir:       "./blobs",
			S3RootUser:           "s3root",
			S3RootPassword:       "s3rootpassword",
			S3Bucket:             "s3bucket",
			S3Region:             "s3region",
			S3BaseEndpoint:       "s3baseendpoint",
			SweepInterval:        5 * time.Minute,
			DefaultExpirySeconds: 60,
			DefaultDownloadLimit: 1,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.Addr)
		assert.Equal(t, "dsn", cfg.DatabaseDSN)
		assert.Equal(t, StorageKindFilesystem, cfg.StorageKind)
		assert.Equal(t, "./blobs", cfg.FileStorageDir)
		assert.Equal(t, "s3root", cfg.S3RootUser)
		assert.Equal(t, "s3rootpassword", cfg.S3RootPassword)
		assert.Equal(t, "s3bucket", cfg.S3Bucket)
		assert.Equal(t, "s3region", cfg.S3Region)
		assert.Equal(t, "s3baseendpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
		assert.Equal(t, int64(60), cfg.DefaultExpirySeconds)
		assert.Equal(t, int64(1), cfg.DefaultDownloadLimit)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
