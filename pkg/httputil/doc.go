// Package httputil fetches JSON documents for the HTTP content sources
// (agenda and vote feeds).
//
// [Client.FetchJSON] layers three concerns over net/http:
//
//   - caching of decoded responses in a [cache.Cache], keyed per namespace and URL
//   - [Backoff] retries with a doubling pause for network errors, 5xx and 429 responses
//   - request/response events reported to the observability HTTP hooks
//
// Usage:
//
//	c := httputil.NewClient(fileCache, 5*time.Minute, nil)
//	var sessions []content.Session
//	err := c.FetchJSON(ctx, "agenda", url, false, &sessions)
package httputil
