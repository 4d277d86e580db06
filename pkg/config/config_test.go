package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pipoke/pkg/errors"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	path := write(t, `
index_url = "https://mirror.example"
snapshot_path = "/tmp/snap.json.gz"
timeout = "5s"
retries = 4
cache_ttl = "1h"
concurrency = 2
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example", cfg.IndexURL)
	assert.Equal(t, "/tmp/snap.json.gz", cfg.SnapshotPath)
	assert.Equal(t, 5*time.Second, cfg.Timeout.Duration)
	assert.Equal(t, 4, cfg.Retries)
	assert.Equal(t, time.Hour, cfg.CacheTTL.Duration)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "json", cfg.Format)
}

func TestDefault_CacheOff(t *testing.T) {
	cfg := Default()
	assert.Zero(t, cfg.CacheTTL.Duration)
	require.NoError(t, cfg.Validate())
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(write(t, `retries = 2`))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, Default().IndexURL, cfg.IndexURL)
	assert.Equal(t, Default().Timeout, cfg.Timeout)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg, err := Load(write(t, `snapshot_path = "~/pipoke/snap.json"`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "pipoke", "snap.json"), cfg.SnapshotPath)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"syntax":         `index_url = `,
		"bad duration":   `timeout = "soon"`,
		"unknown key":    `colour = "red"`,
		"negative retry": `retries = -1`,
		"bad scheme":     `index_url = "ftp://pypi.org"`,
		"empty index":    `index_url = ""`,
		"negative ttl":   `cache_ttl = "-1h"`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(write(t, body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
		})
	}
}
