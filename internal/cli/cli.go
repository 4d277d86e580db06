// Package cli implements the pipoke command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipoke/pkg/cache"
	"github.com/matzehuels/pipoke/pkg/catalog"
	"github.com/matzehuels/pipoke/pkg/config"
	"github.com/matzehuels/pipoke/pkg/dataset"
	"github.com/matzehuels/pipoke/pkg/integrations/pypi"
	"github.com/matzehuels/pipoke/pkg/observability"
	"github.com/matzehuels/pipoke/pkg/report"
	"github.com/matzehuels/pipoke/pkg/vocab"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pipoke"

	// snapshotFile is the default snapshot name inside the data directory.
	snapshotFile = "snapshot.json"

	// retryDelay is the wait before the first retry of a failed request.
	retryDelay = time.Second

	// memoryCacheSize bounds the per-invocation metadata cache.
	memoryCacheSize = 1024
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	flags   globalFlags
	cfg     config.Config
	client  *pypi.Client
	data    *dataset.Dataset
	cache   cache.Cache
	metrics *observability.Prometheus
}

// globalFlags are the persistent flags of the root command. Each one, when
// set, overrides the matching config file value.
type globalFlags struct {
	configPath  string
	snapshot    string
	words       string
	indexURL    string
	format      string
	timeout     time.Duration
	retries     int
	concurrency int
	limit       int
	noCounts    bool
	cacheTTL    time.Duration
	metricsFile string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Close flushes metrics, if enabled, and releases the cache.
func (c *CLI) Close() error {
	if c.cache != nil {
		_ = c.cache.Close()
	}
	if c.metrics == nil || c.cfg.MetricsFile == "" {
		return nil
	}
	defer observability.Reset()
	if err := c.metrics.WriteFile(c.cfg.MetricsFile); err != nil {
		c.Logger.Warn("write metrics", "path", c.cfg.MetricsFile, "error", err)
		return err
	}
	c.Logger.Debug("metrics written", "path", c.cfg.MetricsFile)
	return nil
}

// =============================================================================
// Setup
// =============================================================================

// setup loads the config file, applies flag overrides and builds the index
// client and dataset. It runs before every command.
func (c *CLI) setup(cmd *cobra.Command) error {
	path := c.flags.configPath
	if path == "" {
		if dir, err := configDir(); err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.SnapshotPath == "" {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		cfg.SnapshotPath = filepath.Join(dir, snapshotFile)
	}
	c.cfg = cfg

	if cfg.MetricsFile != "" && c.metrics == nil {
		c.metrics = observability.NewPrometheus()
		c.metrics.Register()
	}

	c.cache, err = newCache(cfg.CacheTTL.Duration)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching in memory", "error", err)
		c.cache = cache.NewMemoryCache(memoryCacheSize, 0)
	}

	c.client = pypi.NewClient(
		pypi.WithBaseURL(cfg.IndexURL),
		pypi.WithTimeout(cfg.Timeout.Duration),
		pypi.WithUserAgent(cfg.UserAgent),
		pypi.WithRetry(cfg.Retries+1, retryDelay),
		pypi.WithCache(c.cache, cfg.CacheTTL.Duration),
		pypi.WithLogger(c.Logger),
	)

	store := catalog.NewStore(cfg.SnapshotPath, c.client)
	store.SetLogger(c.Logger)

	opts := []dataset.Option{dataset.WithFallback(vocab.Default())}
	if cfg.WordList != "" {
		opts = append(opts, dataset.WithWordList(cfg.WordList))
	}
	c.data = dataset.New(store, opts...)

	c.Logger.Debug("configured", "config", path, "snapshot", cfg.SnapshotPath, "index", cfg.IndexURL)
	return nil
}

func (c *CLI) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("snapshot") {
		cfg.SnapshotPath = c.flags.snapshot
	}
	if f.Changed("words") {
		cfg.WordList = c.flags.words
	}
	if f.Changed("index-url") {
		cfg.IndexURL = c.flags.indexURL
	}
	if f.Changed("format") {
		cfg.Format = c.flags.format
	}
	if f.Changed("timeout") {
		cfg.Timeout = config.Duration{Duration: c.flags.timeout}
	}
	if f.Changed("retries") {
		cfg.Retries = c.flags.retries
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = c.flags.concurrency
	}
	if f.Changed("cache-ttl") {
		cfg.CacheTTL = config.Duration{Duration: c.flags.cacheTTL}
	}
	if f.Changed("metrics-file") {
		cfg.MetricsFile = c.flags.metricsFile
	}
}

// presenter returns a report presenter writing to the command's stdout.
func (c *CLI) presenter(cmd *cobra.Command) (*report.Presenter, error) {
	format, err := report.ParseFormat(c.cfg.Format)
	if err != nil {
		return nil, err
	}
	p := report.New(cmd.OutOrStdout(), format)
	p.SetLimit(c.flags.limit)
	return p, nil
}

// printCounts reports whether results should start with per-category counts.
func (c *CLI) printCounts() bool { return !c.flags.noCounts }

// newCache returns the metadata cache for one invocation. Metadata stays in
// memory unless a positive ttl opts into the on-disk cache.
func newCache(ttl time.Duration) (cache.Cache, error) {
	if ttl <= 0 {
		return cache.NewMemoryCache(memoryCacheSize, 0), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pipoke/).
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// dataDir returns the data directory (~/.local/share/pipoke/).
func dataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// configDir returns the config directory (~/.config/pipoke/).
func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}
