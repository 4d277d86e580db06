// Package config loads pipoke settings from a TOML file.
//
// Every field is optional. A missing file yields [Default]; command-line
// flags are applied on top by the caller.
//
//	index_url     = "https://pypi.org"
//	snapshot_path = "~/.local/share/pipoke/snapshot.json.gz"
//	timeout       = "30s"
//	retries       = 3
//	cache_ttl     = "24h"  # 0 or unset keeps metadata in memory only
//	concurrency   = 8
//	format        = "text"
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pipoke/pkg/errors"
)

// Config holds user settings.
type Config struct {
	IndexURL     string   `toml:"index_url"`
	SnapshotPath string   `toml:"snapshot_path"`
	WordList     string   `toml:"word_list"`
	Timeout      Duration `toml:"timeout"`
	UserAgent    string   `toml:"user_agent"`
	Retries      int      `toml:"retries"`
	CacheTTL     Duration `toml:"cache_ttl"`
	Concurrency  int      `toml:"concurrency"`
	Format       string   `toml:"format"`
	MetricsFile  string   `toml:"metrics_file"`
}

// Duration is a time.Duration written as a string ("30s", "24h") in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings. SnapshotPath is left empty; the
// command line resolves it from XDG_DATA_HOME.
func Default() Config {
	return Config{
		IndexURL:    "https://pypi.org",
		Timeout:     Duration{30 * time.Second},
		Retries:     0,
		Concurrency: 8,
		Format:      "text",
	}
}

// Load reads the file at path over [Default]. A missing file is not an error.
// Undecodable files and invalid values fail with INVALID_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(names, ", "))
	}
	cfg.SnapshotPath = expandHome(cfg.SnapshotPath)
	cfg.WordList = expandHome(cfg.WordList)
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := errors.ValidateURL(c.IndexURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "index_url %q", c.IndexURL)
	}
	switch {
	case c.Timeout.Duration < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must not be negative")
	case c.CacheTTL.Duration < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "cache_ttl must not be negative")
	case c.Retries < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "retries must not be negative")
	case c.Concurrency < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "concurrency must not be negative")
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
