package integrations

import (
	stderrors "errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/matzehuels/pipoke/pkg/buildinfo"
)

// DefaultTimeout bounds every registry request unless the caller overrides it.
const DefaultTimeout = 30 * time.Second

// ErrNotFound is returned when the registry answers 404.
var ErrNotFound = stderrors.New("resource not found")

// DefaultUserAgent identifies pipoke to registries.
func DefaultUserAgent() string {
	return "pipoke/" + buildinfo.Version + " (+https://github.com/matzehuels/pipoke)"
}

// NewHTTPClient creates an HTTP client with the given timeout.
// A non-positive timeout selects [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

var separatorRuns = regexp.MustCompile(`[-_.]+`)

// NormalizePkgName converts a package name to its PEP 503 canonical form:
// lowercase, with every run of "-", "_" and "." replaced by a single "-".
func NormalizePkgName(name string) string {
	return strings.ToLower(separatorRuns.ReplaceAllString(strings.TrimSpace(name), "-"))
}
