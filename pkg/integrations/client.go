package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipoke/pkg/errors"
	"github.com/matzehuels/pipoke/pkg/httputil"
	"github.com/matzehuels/pipoke/pkg/observability"
)

// maxBodyBytes caps how much of a response is read. The full PyPI simple
// listing is roughly 40 MB of HTML. Larger bodies fail rather than being
// cut short.
var maxBodyBytes int64 = 512 << 20

// Client provides shared HTTP functionality for registry API clients.
// It is safe for concurrent use.
type Client struct {
	http    *http.Client
	headers map[string]string
	logger  *log.Logger
}

// NewClient creates a Client with the given default headers and timeout.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed; a User-Agent is
// always set.
func NewClient(headers map[string]string, timeout time.Duration) *Client {
	h := map[string]string{"User-Agent": DefaultUserAgent()}
	for k, v := range headers {
		h[k] = v
	}
	return &Client{
		http:    NewHTTPClient(timeout),
		headers: h,
		logger:  log.Default(),
	}
}

// SetLogger replaces the logger used for request tracing at debug level.
func (c *Client) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	return c.GetWithHeaders(ctx, rawURL, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with
// defaults. Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	resp, err := c.GetRaw(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return errors.Wrap(errors.ErrCodeParse, err, "decode response from %s", rawURL)
	}
	return nil
}

// Response is a fully read response body with its content type.
type Response struct {
	Body        []byte
	ContentType string
	FinalURL    string
}

// GetRaw performs an HTTP GET and returns the whole body.
func (c *Client) GetRaw(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", rawURL)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", redact(req.URL)))
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, elapsed)
	c.logger.Debug("registry response", "url", redact(req.URL), "status", resp.StatusCode, "duration", elapsed.Round(time.Millisecond))

	if err := checkStatus(resp.StatusCode, redact(req.URL)); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read body of %s", redact(req.URL)))
	}
	if int64(len(body)) > maxBodyBytes {
		return nil, errors.New(errors.ErrCodeNetwork, "GET %s: response larger than %d bytes", redact(req.URL), maxBodyBytes)
	}
	return &Response{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

func checkStatus(code int, target string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeNetwork, "GET %s: status %d", target, code))
	default:
		return errors.New(errors.ErrCodeNetwork, "GET %s: status %d", target, code)
	}
}

// redact drops user info and query strings from URLs placed in messages.
func redact(u *url.URL) string {
	c := *u
	c.User = nil
	c.RawQuery = ""
	return fmt.Sprint(&c)
}
