package pypi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pipoke/pkg/cache"
	"github.com/matzehuels/pipoke/pkg/errors"
	"github.com/matzehuels/pipoke/pkg/httputil"
	"github.com/matzehuels/pipoke/pkg/integrations"
)

// DefaultBaseURL is the root of the public index.
const DefaultBaseURL = "https://pypi.org"

var (
	depRE    = regexp.MustCompile(`^([a-zA-Z0-9][a-zA-Z0-9._-]*)`)
	markerRE = regexp.MustCompile(`;\s*(.+)`)
	skipRE   = regexp.MustCompile(`extra|dev|test`)
)

// PackageInfo holds metadata for a Python package from PyPI.
//
// Zero values: string fields are empty, maps and slices are nil.
// This struct is safe for concurrent reads after construction.
type PackageInfo struct {
	Name           string               `json:"name" yaml:"name"`                                           // Name as published (never empty in valid info)
	Version        string               `json:"version" yaml:"version"`                                     // Latest version string
	Summary        string               `json:"summary,omitempty" yaml:"summary,omitempty"`                 // Short description
	License        string               `json:"license,omitempty" yaml:"license,omitempty"`                 // License name or expression
	Author         string               `json:"author,omitempty" yaml:"author,omitempty"`                   // Author name
	HomePage       string               `json:"home_page,omitempty" yaml:"home_page,omitempty"`             // Homepage URL
	PackageURL     string               `json:"package_url,omitempty" yaml:"package_url,omitempty"`         // Project page on the index
	RequiresPython string               `json:"requires_python,omitempty" yaml:"requires_python,omitempty"` // Python version specifier
	ProjectURLs    map[string]string    `json:"project_urls,omitempty" yaml:"project_urls,omitempty"`       // Labelled project links
	Dependencies   []string             `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`       // Runtime requirement names
	Releases       map[string]time.Time `json:"releases,omitempty" yaml:"releases,omitempty"`               // Version -> latest file upload time
	Yanked         bool                 `json:"yanked,omitempty" yaml:"yanked,omitempty"`                   // Latest version was yanked
}

// Release is one version and when its most recent file was uploaded.
type Release struct {
	Version    string    `json:"version" yaml:"version"`
	UploadedAt time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

// ReleaseDates returns releases that have at least one uploaded file,
// oldest first.
func (p *PackageInfo) ReleaseDates() []Release {
	out := make([]Release, 0, len(p.Releases))
	for v, at := range p.Releases {
		if !at.IsZero() {
			out = append(out, Release{Version: v, UploadedAt: at})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.Before(out[j].UploadedAt)
		}
		return out[i].Version < out[j].Version
	})
	return out
}

// LastReleaseDate returns the upload time of the most recent release.
// ok is false when the package has no uploaded files.
func (p *PackageInfo) LastReleaseDate() (at time.Time, ok bool) {
	rs := p.ReleaseDates()
	if len(rs) == 0 {
		return time.Time{}, false
	}
	return rs[len(rs)-1].UploadedAt, true
}

// Client provides access to the PyPI listing and metadata endpoints.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL  string
	attempts int
	delay    time.Duration
	cache    cache.Cache
	cacheTTL time.Duration
}

// Option configures a [Client].
type Option func(*clientConfig)

type clientConfig struct {
	baseURL  string
	timeout  time.Duration
	attempts int
	delay    time.Duration
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *log.Logger
	headers  map[string]string
}

// WithBaseURL points the client at another index (a mirror or a test server).
func WithBaseURL(u string) Option {
	return func(c *clientConfig) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// WithRetry allows up to attempts tries for transient failures, waiting
// delay before the first retry and doubling after each.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *clientConfig) {
		c.attempts = attempts
		c.delay = delay
	}
}

// WithCache stores decoded metadata in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cfg *clientConfig) {
		cfg.cache = c
		cfg.cacheTTL = ttl
	}
}

// WithLogger traces requests at debug level.
func WithLogger(l *log.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		if ua != "" {
			c.headers["User-Agent"] = ua
		}
	}
}

// NewClient creates a PyPI client. Without options it talks to pypi.org,
// makes one attempt per call, and caches nothing.
func NewClient(opts ...Option) *Client {
	cfg := clientConfig{
		baseURL:  DefaultBaseURL,
		attempts: 1,
		delay:    time.Second,
		headers:  map[string]string{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cache == nil {
		cfg.cache = cache.NewNullCache()
	}

	base := integrations.NewClient(cfg.headers, cfg.timeout)
	base.SetLogger(cfg.logger)
	return &Client{
		Client:   base,
		baseURL:  cfg.baseURL,
		attempts: max(cfg.attempts, 1),
		delay:    cfg.delay,
		cache:    cfg.cache,
		cacheTTL: cfg.cacheTTL,
	}
}

// BaseURL returns the index root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchPackage retrieves metadata for the latest release of a package.
//
// The name is normalized (PEP 503) for the request only.
//
// Returns:
//   - PACKAGE_NOT_FOUND if the index answers 404
//   - NETWORK_ERROR for transport failures and other non-2xx statuses
//   - PARSE_ERROR if the body is not the expected metadata document
//   - INVALID_PACKAGE if the name is empty or unsafe for a URL path
func (c *Client) FetchPackage(ctx context.Context, name string) (*PackageInfo, error) {
	if err := errors.ValidatePackageName(strings.TrimSpace(name)); err != nil {
		return nil, err
	}
	pkg := integrations.NormalizePkgName(name)
	key := "pypi:" + pkg

	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		var info PackageInfo
		if json.Unmarshal(data, &info) == nil {
			return &info, nil
		}
	}

	var info *PackageInfo
	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		info, err = c.fetch(ctx, pkg)
		return err
	})
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(info); err == nil {
		_ = c.cache.Set(ctx, key, data, c.cacheTTL)
	}
	return info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string) (*PackageInfo, error) {
	var data apiResponse
	endpoint := fmt.Sprintf("%s/pypi/%s/json", c.baseURL, url.PathEscape(pkg))
	if err := c.Get(ctx, endpoint, &data); err != nil {
		if stderrors.Is(err, integrations.ErrNotFound) {
			return nil, errors.Wrap(errors.ErrCodePackageNotFound, err, "pypi package %s", pkg)
		}
		return nil, err
	}
	if data.Info.Name == "" {
		return nil, errors.New(errors.ErrCodeParse, "metadata for %s has no info.name", pkg)
	}

	urls := make(map[string]string, len(data.Info.ProjectURLs))
	for k, v := range data.Info.ProjectURLs {
		if s, ok := v.(string); ok {
			urls[k] = s
		}
	}

	return &PackageInfo{
		Name:           data.Info.Name,
		Version:        data.Info.Version,
		Summary:        data.Info.Summary,
		License:        extractLicenseType(data.Info.License, data.Info.Classifiers),
		Author:         data.Info.Author,
		HomePage:       data.Info.HomePage,
		PackageURL:     data.Info.PackageURL,
		RequiresPython: data.Info.RequiresPython,
		ProjectURLs:    urls,
		Dependencies:   extractDeps(data.Info.RequiresDist),
		Releases:       latestUploads(data.Releases),
		Yanked:         data.Info.Yanked,
	}, nil
}

// Result is the outcome of one lookup in [Client.FetchMany].
type Result struct {
	Name     string       `json:"name" yaml:"name"`
	Info     *PackageInfo `json:"info,omitempty" yaml:"info,omitempty"`
	NotFound bool         `json:"not_found,omitempty" yaml:"not_found,omitempty"`
}

// FetchMany looks up several packages with at most concurrency requests in
// flight. Results keep the order of names. A missing package is recorded as
// NotFound; any other error cancels the remaining lookups and is returned.
func (c *Client) FetchMany(ctx context.Context, names []string, concurrency int) ([]Result, error) {
	results := make([]Result, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i, name := range names {
		g.Go(func() error {
			info, err := c.FetchPackage(gctx, name)
			switch {
			case err == nil:
				results[i] = Result{Name: name, Info: info}
			case errors.Is(err, errors.ErrCodePackageNotFound):
				results[i] = Result{Name: name, NotFound: true}
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func extractDeps(requires []string) []string {
	seen := make(map[string]bool)
	var deps []string
	for _, req := range requires {
		if m := markerRE.FindStringSubmatch(req); len(m) > 1 && skipRE.MatchString(m[1]) {
			continue
		}
		if m := depRE.FindStringSubmatch(req); len(m) > 1 {
			dep := integrations.NormalizePkgName(m[1])
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
	}
	return deps
}

func latestUploads(releases map[string][]apiFile) map[string]time.Time {
	if len(releases) == 0 {
		return nil
	}
	out := make(map[string]time.Time, len(releases))
	for version, files := range releases {
		var latest time.Time
		for _, f := range files {
			if at := f.uploadTime(); at.After(latest) {
				latest = at
			}
		}
		out[version] = latest
	}
	return out
}

type apiResponse struct {
	Info     apiInfo              `json:"info"`
	Releases map[string][]apiFile `json:"releases"`
}

type apiInfo struct {
	Name           string         `json:"name"`
	Version        string         `json:"version"`
	Summary        string         `json:"summary"`
	License        string         `json:"license"`
	Classifiers    []string       `json:"classifiers"`
	RequiresDist   []string       `json:"requires_dist"`
	RequiresPython string         `json:"requires_python"`
	ProjectURLs    map[string]any `json:"project_urls"`
	HomePage       string         `json:"home_page"`
	PackageURL     string         `json:"package_url"`
	Author         string         `json:"author"`
	Yanked         bool           `json:"yanked"`
}

type apiFile struct {
	UploadTime    string `json:"upload_time"`
	UploadTimeISO string `json:"upload_time_iso_8601"`
}

func (f apiFile) uploadTime() time.Time {
	if t, err := time.Parse(time.RFC3339Nano, f.UploadTimeISO); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", f.UploadTime); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// extractLicenseType extracts a short license identifier from PyPI data.
// It prefers the classifier (e.g., "License :: OSI Approved :: MIT License" -> "MIT License")
// and falls back to the license field if it's short enough.
func extractLicenseType(license string, classifiers []string) string {
	for _, c := range classifiers {
		if strings.HasPrefix(c, "License :: ") {
			parts := strings.Split(c, " :: ")
			if len(parts) >= 3 {
				return parts[len(parts)-1]
			}
		}
	}

	if license != "" && len(license) < 100 && !strings.Contains(license, "\n") {
		return strings.TrimSpace(license)
	}

	if license != "" {
		firstLine := strings.TrimSpace(strings.Split(license, "\n")[0])
		if len(firstLine) < 50 {
			return firstLine
		}
	}

	return ""
}
