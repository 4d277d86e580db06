package pypi

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/matzehuels/pipoke/pkg/errors"
	"github.com/matzehuels/pipoke/pkg/httputil"
	"github.com/matzehuels/pipoke/pkg/integrations"
)

const (
	contentTypeJSON = "application/vnd.pypi.simple.v1+json"
	contentTypeHTML = "application/vnd.pypi.simple.v1+html"
)

// listingAccept prefers the JSON listing; indexes that only speak PEP 503
// answer with text/html.
var listingAccept = contentTypeJSON + ", " + contentTypeHTML + ";q=0.2, text/html;q=0.1"

// ListProjects retrieves the simple index listing and returns every project
// name mapped to its URL stub.
//
// Returns NETWORK_ERROR for transport failures and any non-2xx status
// (including 404), and PARSE_ERROR when the body is neither listing format
// or lists no projects.
func (c *Client) ListProjects(ctx context.Context) (map[string]string, error) {
	endpoint := c.baseURL + "/simple/"

	var projects map[string]string
	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		resp, err := c.GetRaw(ctx, endpoint, map[string]string{"Accept": listingAccept})
		if err != nil {
			if stderrors.Is(err, integrations.ErrNotFound) {
				return errors.Wrap(errors.ErrCodeNetwork, err, "simple index")
			}
			return err
		}
		projects, err = ParseListing(resp.Body, resp.ContentType)
		return err
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// ParseListing decodes a simple index listing. The format is chosen from the
// content type, or sniffed from the body when the type is missing.
func ParseListing(body []byte, contentType string) (map[string]string, error) {
	trimmed := bytes.TrimSpace(body)
	ct := strings.ToLower(contentType)

	var (
		projects map[string]string
		err      error
	)
	switch {
	case strings.Contains(ct, "json"):
		projects, err = parseJSONListing(trimmed)
	case strings.Contains(ct, "html"):
		projects, err = parseHTMLListing(trimmed)
	case bytes.HasPrefix(trimmed, []byte("{")):
		projects, err = parseJSONListing(trimmed)
	case bytes.HasPrefix(trimmed, []byte("<")):
		projects, err = parseHTMLListing(trimmed)
	default:
		return nil, errors.New(errors.ErrCodeParse, "unsupported listing content type %q", contentType)
	}
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, errors.New(errors.ErrCodeParse, "listing contains no projects")
	}
	return projects, nil
}

type jsonListing struct {
	Meta struct {
		APIVersion string `json:"api-version"`
	} `json:"meta"`
	Projects []struct {
		Name string `json:"name"`
	} `json:"projects"`
}

func parseJSONListing(body []byte) (map[string]string, error) {
	var doc jsonListing
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode json listing")
	}
	if doc.Projects == nil {
		return nil, errors.New(errors.ErrCodeParse, "json listing has no projects field")
	}
	out := make(map[string]string, len(doc.Projects))
	for _, p := range doc.Projects {
		if p.Name == "" {
			continue
		}
		out[p.Name] = "/simple/" + integrations.NormalizePkgName(p.Name) + "/"
	}
	return out, nil
}

// parseHTMLListing reads a PEP 503 project list. Every project anchor links to
// a path ending in the project's normalized name, so a page whose links mostly
// point elsewhere (a login portal, a proxy error page) is not a listing.
func parseHTMLListing(body []byte) (map[string]string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse html listing")
	}

	out := make(map[string]string)
	anchors := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			name := strings.TrimSpace(text(n))
			if href != "" && name != "" {
				anchors++
				if isProjectLink(href, name) {
					out[name] = href
				}
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if anchors > 0 && 2*len(out) <= anchors {
		return nil, errors.New(errors.ErrCodeParse,
			"html page is not a simple index: %d of %d links name a project", len(out), anchors)
	}
	return out, nil
}

// isProjectLink reports whether href's last path segment is the normalized
// form of name, e.g. "/simple/zope-interface/" for "zope.interface".
func isProjectLink(href, name string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	path := strings.TrimSuffix(u.Path, "/")
	last := path[strings.LastIndex(path, "/")+1:]
	return last != "" && integrations.NormalizePkgName(last) == integrations.NormalizePkgName(name)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
