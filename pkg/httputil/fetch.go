package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/badgeforge/pkg/buildinfo"
	"github.com/matzehuels/badgeforge/pkg/observability"
)

// MaxBodySize is the default limit on downloaded bodies (10 MiB).
const MaxBodySize = 10 << 20

// ErrNotFound is returned by [Fetch] for a 404 response.
var ErrNotFound = errors.New("remote resource not found")

// Fetch GETs url and returns the response body.
//
// Network errors, 429 and 5xx responses are retried with [DefaultBackoff]. Bodies larger than
// limit bytes are rejected; a limit of 0 selects [MaxBodySize].
func Fetch(ctx context.Context, client *http.Client, url string, limit int64) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if limit <= 0 {
		limit = MaxBodySize
	}

	var body []byte
	err := fetchBackoff.Do(ctx, func() error {
		data, err := fetchOnce(ctx, client, url, limit)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	return body, err
}

func fetchOnce(ctx context.Context, client *http.Client, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Transient(err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, Transient(fmt.Errorf("%s: status %d", url, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, Transient(err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: body exceeds %d bytes", url, limit)
	}
	return data, nil
}
