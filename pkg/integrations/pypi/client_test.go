package pypi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pipoke/pkg/cache"
	"github.com/matzehuels/pipoke/pkg/errors"
)

func flaskHandler(hits *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.URL.Path != "/pypi/flask/json" {
			http.NotFound(w, r)
			return
		}
		resp := apiResponse{
			Info: apiInfo{
				Name:         "Flask",
				Version:      "2.0.0",
				Summary:      "A micro web framework",
				License:      "BSD-3-Clause",
				RequiresDist: []string{"click>=7.0", "Werkzeug>=2.0", "pytest; extra == 'test'"},
				ProjectURLs:  map[string]any{"Source": "https://github.com/pallets/flask"},
				Author:       "Armin Ronacher",
			},
			Releases: map[string][]apiFile{
				"1.0.0": {{UploadTimeISO: "2018-04-26T20:15:00.000000Z"}},
				"2.0.0": {
					{UploadTimeISO: "2021-05-11T21:00:00.000000Z"},
					{UploadTimeISO: "2021-05-11T22:00:00.000000Z"},
				},
				"0.1": {},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestFetchPackage(t *testing.T) {
	srv := httptest.NewServer(flaskHandler(nil))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	info, err := c.FetchPackage(context.Background(), "Flask")
	require.NoError(t, err)

	assert.Equal(t, "Flask", info.Name)
	assert.Equal(t, "2.0.0", info.Version)
	assert.Equal(t, "A micro web framework", info.Summary)
	assert.Equal(t, []string{"click", "werkzeug"}, info.Dependencies)
	assert.Equal(t, "https://github.com/pallets/flask", info.ProjectURLs["Source"])
}

func TestFetchPackage_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRetry(3, time.Millisecond))
	_, err := c.FetchPackage(context.Background(), "a-package-that-does-not-exist-xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodePackageNotFound))
	assert.False(t, errors.Is(err, errors.ErrCodeNetwork))
}

func TestFetchPackage_ServerError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).FetchPackage(context.Background(), "flask")
	assert.True(t, errors.Is(err, errors.ErrCodeNetwork))
	assert.Equal(t, int32(1), hits.Load(), "no retry by default")

	hits.Store(0)
	_, err = NewClient(WithBaseURL(srv.URL), WithRetry(3, time.Millisecond)).FetchPackage(context.Background(), "flask")
	assert.True(t, errors.Is(err, errors.ErrCodeNetwork))
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetchPackage_MalformedBody(t *testing.T) {
	for name, body := range map[string]string{
		"not json":     "<html>maintenance</html>",
		"missing name": `{"info": {"version": "1.0"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewClient(WithBaseURL(srv.URL)).FetchPackage(context.Background(), "flask")
			assert.True(t, errors.Is(err, errors.ErrCodeParse), "got %v", err)
		})
	}
}

func TestFetchPackage_InvalidName(t *testing.T) {
	c := NewClient(WithBaseURL("http://127.0.0.1:0"))
	for _, name := range []string{"", "   ", "../etc", "a/b"} {
		_, err := c.FetchPackage(context.Background(), name)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidPackage), "name %q: %v", name, err)
	}
}

func TestFetchPackage_Cache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(flaskHandler(&hits))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithCache(cache.NewMemoryCache(16, time.Minute), time.Minute))
	for range 3 {
		info, err := c.FetchPackage(context.Background(), "flask")
		require.NoError(t, err)
		assert.Equal(t, "Flask", info.Name)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestReleaseDates(t *testing.T) {
	srv := httptest.NewServer(flaskHandler(nil))
	defer srv.Close()

	info, err := NewClient(WithBaseURL(srv.URL)).FetchPackage(context.Background(), "flask")
	require.NoError(t, err)

	rs := info.ReleaseDates()
	require.Len(t, rs, 2, "releases without files are skipped")
	assert.Equal(t, "1.0.0", rs[0].Version)
	assert.Equal(t, "2.0.0", rs[1].Version)

	last, ok := info.LastReleaseDate()
	require.True(t, ok)
	assert.Equal(t, time.Date(2021, 5, 11, 22, 0, 0, 0, time.UTC), last.UTC())

	_, ok = (&PackageInfo{Name: "empty"}).LastReleaseDate()
	assert.False(t, ok)
}

func TestUploadTimeFallback(t *testing.T) {
	f := apiFile{UploadTime: "2020-01-02T03:04:05"}
	assert.Equal(t, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), f.uploadTime())
	assert.True(t, apiFile{}.uploadTime().IsZero())
}

func TestFetchMany(t *testing.T) {
	srv := httptest.NewServer(flaskHandler(nil))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	results, err := c.FetchMany(context.Background(), []string{"flask", "nope", "Flask"}, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "flask", results[0].Name)
	require.NotNil(t, results[0].Info)
	assert.True(t, results[1].NotFound)
	assert.Nil(t, results[1].Info)
	assert.Equal(t, "Flask", results[2].Info.Name)
}

func TestFetchMany_AbortsOnNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).FetchMany(context.Background(), []string{"a", "b"}, 4)
	assert.True(t, errors.Is(err, errors.ErrCodeNetwork))
}

func TestExtractLicenseType(t *testing.T) {
	tests := []struct {
		license     string
		classifiers []string
		want        string
	}{
		{"", []string{"License :: OSI Approved :: MIT License"}, "MIT License"},
		{"Apache-2.0", nil, "Apache-2.0"},
		{"", nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractLicenseType(tt.license, tt.classifiers))
	}
}
