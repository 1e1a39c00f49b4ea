// Package fetch retrieves leaderboard source material over HTTP: raw
// repository files, GitHub directory listings, and per-model JSON documents.
// Transient upstream failures (rate limits, server errors) are retried with
// exponential backoff; everything else surfaces immediately.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iblwz/statllm/internal/extract"
)

const (
	defaultUserAgent   = "statllm/1.0"
	defaultMaxRetries  = 3
	defaultBackoffBase = 2 * time.Second
	// maxDocumentFetches bounds concurrent per-model document downloads.
	maxDocumentFetches = 8
)

// Client fetches leaderboard sources. The zero value is not usable; use New.
type Client struct {
	http *http.Client
	// Token is an optional bearer token for the GitHub API, raising the
	// unauthenticated rate limit.
	Token       string
	UserAgent   string
	MaxRetries  int
	BackoffBase time.Duration
	// APIBase is the GitHub API root, overridable in tests.
	APIBase string
}

// New returns a client with sane timeouts and retry defaults.
func New() *Client {
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		UserAgent:   defaultUserAgent,
		MaxRetries:  defaultMaxRetries,
		BackoffBase: defaultBackoffBase,
		APIBase:     "https://api.github.com",
	}
}

// Raw fetches a URL and returns the response body.
func (c *Client) Raw(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url)
}

// Entry is one file in a GitHub contents listing.
type Entry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// ListDocuments lists the JSON files in a repository directory via the
// GitHub contents API. owner/repo/dir address the directory; ref is the
// branch and may be empty for the default branch.
func (c *Client) ListDocuments(ctx context.Context, owner, repo, dir, ref string) ([]Entry, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.APIBase, owner, repo, dir)
	if ref != "" {
		url += "?ref=" + ref
	}

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("listing %s/%s/%s: %w", owner, repo, dir, err)
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decoding directory listing: %w", err)
	}

	var docs []Entry
	for _, e := range entries {
		if e.Type == "file" && strings.EqualFold(path.Ext(e.Name), ".json") {
			docs = append(docs, e)
		}
	}
	slog.Info("listed model documents", "dir", dir, "total", len(entries), "json", len(docs))
	return docs, nil
}

// Documents downloads every listed JSON file concurrently and returns them
// as extractor documents, keyed by filename without extension. One failed
// download fails the whole fetch; a partial leaderboard would silently skew
// the rankings.
func (c *Client) Documents(ctx context.Context, entries []Entry) ([]extract.Document, error) {
	docs := make([]extract.Document, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxDocumentFetches)

	for i, e := range entries {
		g.Go(func() error {
			body, err := c.get(ctx, e.DownloadURL)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", e.Name, err)
			}
			docs[i] = extract.Document{
				ID:   strings.TrimSuffix(e.Name, path.Ext(e.Name)),
				Body: body,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// get performs a GET with auth and retry. Responses 429, 5xx, and 403 with
// an exhausted rate limit are retried with exponential backoff; other
// non-200 statuses fail immediately.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.BackoffBase << (attempt - 1)
			slog.Debug("retrying fetch", "url", url, "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, retryable, err := c.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", c.MaxRetries+1, lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Network-level failures are worth one more try.
		return nil, true, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if !retryStatus(resp) && resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	if retryStatus(resp) {
		return nil, true, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("reading response: %w", err)
	}
	slog.Debug("fetched", "url", url, "bytes", len(data))
	return data, false, nil
}

// retryStatus reports whether the response indicates a transient condition.
// GitHub signals an exhausted rate limit as 403 with X-RateLimit-Remaining: 0.
func retryStatus(resp *http.Response) bool {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return true
	case resp.StatusCode >= 500:
		return true
	case resp.StatusCode == http.StatusForbidden &&
		resp.Header.Get("X-RateLimit-Remaining") == "0":
		return true
	}
	return false
}
