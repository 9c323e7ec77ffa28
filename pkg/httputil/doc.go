// Package httputil downloads remote badge assets.
//
// Badge documents may name a logo by URL instead of by asset path. [Fetch]
// performs the GET with a body size limit, a badgeforge User-Agent and
// status mapping: a 404 becomes [ErrNotFound] and is never retried, while
// network errors, 429 and 5xx responses are marked [Transient] and retried
// through [Backoff.Do], doubling the delay after each attempt.
//
//	data, err := httputil.Fetch(ctx, client, url, httputil.MaxBodySize)
//
// [Backoff] is also used outside HTTP, e.g. when a cache server is first
// pinged. Caching of downloaded bodies is left to the caller; see
// assets.HTTPSource.
package httputil
