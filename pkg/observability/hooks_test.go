package observability

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	c := NoopCatalogHooks{}
	c.OnRefreshStart(ctx, "https://pypi.org/simple/")
	c.OnRefreshComplete(ctx, "https://pypi.org/simple/", 500000, time.Second, nil)

	ch := NoopCacheHooks{}
	ch.OnCacheHit(ctx, "file")
	ch.OnCacheMiss(ctx, "memory")
	ch.OnCacheSet(ctx, "file", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "pypi.org", "/pypi/requests/json")
	h.OnResponse(ctx, "GET", "pypi.org", "/pypi/requests/json", 200, time.Second)
	h.OnError(ctx, "GET", "pypi.org", "/pypi/requests/json", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Catalog().(NoopCatalogHooks); !ok {
		t.Error("Catalog() should return NoopCatalogHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	p := NewPrometheus()
	p.Register()
	if Catalog() != CatalogHooks(p) || Cache() != CacheHooks(p) || HTTP() != HTTPHooks(p) {
		t.Error("Register should install the Prometheus hooks")
	}

	Reset()
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset() should restore NoopHTTPHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	p := NewPrometheus()
	SetCacheHooks(p)
	SetCacheHooks(nil)
	if Cache() != CacheHooks(p) {
		t.Error("SetCacheHooks(nil) should keep existing hooks")
	}
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	p := NewPrometheus()

	p.OnResponse(ctx, "GET", "pypi.org", "/simple/", 200, 150*time.Millisecond)
	p.OnResponse(ctx, "GET", "pypi.org", "/pypi/x/json", 404, 10*time.Millisecond)
	p.OnError(ctx, "GET", "pypi.org", "/simple/", errors.New("timeout"))
	p.OnCacheHit(ctx, "memory")
	p.OnCacheSet(ctx, "file", 42)
	p.OnRefreshComplete(ctx, "https://pypi.org/simple/", 3, time.Second, nil)
	p.OnRefreshComplete(ctx, "https://pypi.org/simple/", 0, time.Second, errors.New("boom"))

	if got := testutil.ToFloat64(p.HTTPRequestsTotal.WithLabelValues("pypi.org", "404")); got != 1 {
		t.Errorf("404 responses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.HTTPErrorsTotal.WithLabelValues("pypi.org")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.CacheBytesWritten); got != 42 {
		t.Errorf("bytes written = %v, want 42", got)
	}
	if got := testutil.ToFloat64(p.CatalogProjects); got != 3 {
		t.Errorf("catalog projects = %v, want 3", got)
	}
	if got := testutil.ToFloat64(p.RefreshTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("failed refreshes = %v, want 1", got)
	}
}

func TestPrometheusWriteFile(t *testing.T) {
	p := NewPrometheus()
	p.OnCacheMiss(context.Background(), "file")

	path := filepath.Join(t.TempDir(), "pipoke.prom")
	if err := p.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `pipoke_cache_events_total{backend="file",result="miss"} 1`) {
		t.Errorf("metrics file missing cache miss counter:\n%s", data)
	}
}
