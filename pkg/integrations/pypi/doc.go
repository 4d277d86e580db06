// Package pypi provides an HTTP client for the Python Package Index.
//
// # Overview
//
// Two endpoints are used:
//
//   - the simple index listing ({base}/simple/), which enumerates every
//     registered project; see [Client.ListProjects]
//   - the JSON metadata API ({base}/pypi/{name}/json), which describes one
//     project and its releases; see [Client.FetchPackage]
//
// # Usage
//
//	client := pypi.NewClient()
//
//	info, err := client.FetchPackage(ctx, "requests")
//	if errors.Is(err, errors.ErrCodePackageNotFound) {
//	    // the index has no such project
//	}
//	fmt.Println(info.Name, info.Version, info.Summary)
//
// # Listing formats
//
// [Client.ListProjects] asks for the PEP 691 JSON listing and falls back to
// the PEP 503 HTML listing when the index answers with HTML. Each project maps
// to its URL stub: the anchor href for HTML, or "/simple/{normalized}/" for
// JSON. Stubs are opaque and may be relative or absolute.
//
// # Retries and caching
//
// Each call is a single attempt with no caching unless [WithRetry] or
// [WithCache] is given. A 404 from the metadata API is PACKAGE_NOT_FOUND and
// is never retried.
package pypi
