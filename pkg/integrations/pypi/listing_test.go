package pypi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pipoke/pkg/errors"
)

const simpleHTML = `<!DOCTYPE html>
<html>
  <head><title>Simple index</title></head>
  <body>
    <a href="/simple/numpy/">numpy</a>
    <a href="/simple/flask/">Flask</a>
    <a href="https://mirror.example/simple/requests/">requests</a>
    <a>no-href</a>
  </body>
</html>`

const simpleJSON = `{"meta": {"api-version": "1.1"}, "projects": [{"name": "numpy"}, {"name": "Flask"}, {"name": "zope.interface"}]}`

func TestParseListing_HTML(t *testing.T) {
	got, err := ParseListing([]byte(simpleHTML), "text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"numpy":    "/simple/numpy/",
		"Flask":    "/simple/flask/",
		"requests": "https://mirror.example/simple/requests/",
	}, got)
}

func TestParseListing_JSON(t *testing.T) {
	got, err := ParseListing([]byte(simpleJSON), contentTypeJSON)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"numpy":          "/simple/numpy/",
		"Flask":          "/simple/flask/",
		"zope.interface": "/simple/zope-interface/",
	}, got)
}

func TestParseListing_HTMLSkipsForeignLinks(t *testing.T) {
	body := `<a href="/simple/numpy/">numpy</a>
<a href="/simple/zope-interface/">zope.interface</a>
<a href="/simple/flask">Flask</a>
<a href="/status">Index status</a>`
	got, err := ParseListing([]byte(body), "text/html")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"numpy":          "/simple/numpy/",
		"zope.interface": "/simple/zope-interface/",
		"Flask":          "/simple/flask",
	}, got)
}

func TestListProjects_NonIndexPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><a href="https://portal.example/login">Sign in</a></body></html>`))
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).ListProjects(context.Background())
	assert.True(t, errors.Is(err, errors.ErrCodeParse), "got %v", err)
}

func TestParseListing_Sniff(t *testing.T) {
	got, err := ParseListing([]byte(simpleJSON), "")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = ParseListing([]byte(simpleHTML), "")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestParseListing_Invalid(t *testing.T) {
	tests := []struct {
		name, body, contentType string
	}{
		{"no anchors", "<html><body>down for maintenance</body></html>", "text/html"},
		{"login portal", `<html><body><a href="https://portal.example/login">Sign in</a></body></html>`, "text/html"},
		{"mostly navigation", `<a href="/simple/numpy/">numpy</a><a href="/help">Help</a><a href="/about">About</a>`, "text/html"},
		{"broken json", `{"projects": [`, "application/json"},
		{"json without projects", `{"meta": {}}`, contentTypeJSON},
		{"plain text", "numpy\nflask\n", "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseListing([]byte(tt.body), tt.contentType)
			assert.True(t, errors.Is(err, errors.ErrCodeParse), "got %v", err)
		})
	}
}

func TestListProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simple/" {
			http.NotFound(w, r)
			return
		}
		assert.Contains(t, r.Header.Get("Accept"), contentTypeJSON)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(simpleHTML))
	}))
	defer srv.Close()

	got, err := NewClient(WithBaseURL(srv.URL + "/")).ListProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/simple/numpy/", got["numpy"])
}

func TestListProjects_NotFoundIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).ListProjects(context.Background())
	assert.True(t, errors.Is(err, errors.ErrCodeNetwork), "got %v", err)
}

func TestListProjects_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(WithBaseURL(srv.URL)).ListProjects(ctx)
	assert.Error(t, err)
}
