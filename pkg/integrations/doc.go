// Package integrations provides the shared HTTP layer for package index
// clients.
//
// # Overview
//
// [Client] issues GET requests, maps HTTP outcomes onto the pipoke error
// taxonomy, and reports each call to the [observability.HTTP] hooks:
//
//   - 2xx: success
//   - 404: [ErrNotFound], which registry clients translate into their own
//     "does not exist" error (for PyPI, PACKAGE_NOT_FOUND)
//   - 429 and 5xx, connection failures, timeouts: NETWORK_ERROR wrapped in
//     [httputil.RetryableError]
//   - any other status: NETWORK_ERROR, not retryable
//   - undecodable JSON bodies: PARSE_ERROR
//
// The client never retries on its own; see [httputil.Retry].
//
// # Subpackages
//
//   - [pypi]: Python Package Index simple listing and JSON metadata API
package integrations
