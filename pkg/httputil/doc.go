// Package httputil provides retry support for registry clients.
//
// Registry calls are single attempts unless the caller opts in to retries.
// [Retry] re-runs a function only when it fails with a [RetryableError]
// (transport failures and 5xx responses); every other error, including
// "package not found", is returned at once:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return client.Get(ctx, url, &v)
//	})
//
// The delay doubles after each failed attempt and the wait is abandoned as
// soon as ctx is cancelled.
package httputil
