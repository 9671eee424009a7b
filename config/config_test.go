package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "./tmp", cfg.DataDir)
	assert.Equal(t, DefaultDatasetURL, cfg.DatasetURL)
	assert.Equal(t, "data.zip", cfg.ArchiveName)
	assert.Equal(t, "all_data.csv", cfg.MergedFileName)
	assert.Equal(t, ".csv", cfg.SourceExt)
	assert.Equal(t, 0, cfg.DownloadTimeoutSec)
	assert.False(t, cfg.PostgresEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/var/tmp/housing")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("KEEP_STAGING", "true")
	t.Setenv("DOWNLOAD_TIMEOUT_SEC", "not-a-number")

	cfg := Load()

	assert.Equal(t, "/var/tmp/housing", cfg.DataDir)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.True(t, cfg.KeepStaging)
	assert.Equal(t, 0, cfg.DownloadTimeoutSec, "unparseable ints fall back to the default")
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "housing.yaml")
	yamlDoc := "data_dir: ./staging\nparquet_output_path: out/listings.parquet\nmax_retries: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0644))

	cfg := Load()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "./staging", cfg.DataDir)
	assert.Equal(t, "out/listings.parquet", cfg.ParquetOutputPath)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, "all_data.csv", cfg.MergedFileName, "keys missing from the file are kept")
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Load()
	err := cfg.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad url", func(c *Config) { c.DatasetURL = "not a url" }, true},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
		{"extension without dot", func(c *Config) { c.SourceExt = "csv" }, true},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, true},
		{"negative timeout", func(c *Config) { c.DownloadTimeoutSec = -1 }, true},
		{"postgres without db", func(c *Config) {
			c.PostgresEnabled = true
			c.PostgresDB = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "housing", PostgresSSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=housing sslmode=disable", cfg.DSN())
}

func TestRedacted(t *testing.T) {
	cfg := &Config{PostgresUser: "u", PostgresPassword: "secret"}
	r := cfg.Redacted()

	assert.Equal(t, "****", r.PostgresPassword)
	assert.Equal(t, "u", r.PostgresUser)
	assert.Equal(t, "secret", cfg.PostgresPassword, "original is untouched")
	assert.Empty(t, (&Config{}).Redacted().PostgresPassword)
}
