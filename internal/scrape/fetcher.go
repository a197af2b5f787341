// Package scrape fetches the single page a pipeline run analyzes.
package scrape

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/sells-group/selda-cli/internal/resilience"
)

const (
	DefaultTimeout      = 15 * time.Second
	DefaultUserAgent    = "SeldaBot/1.0 (+https://selda.ai; hello@selda.ai)"
	DefaultMaxBodyBytes = 5 << 20
)

// Page is the raw result of one fetch.
type Page struct {
	URL        string // final URL after redirects
	StatusCode int
	HTML       string
	FetchedAt  time.Time
}

// Options configures a Fetcher. Zero values fall back to the defaults.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// Fetcher issues exactly one GET per call. It never retries; retry policy
// belongs to the caller.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// NewFetcher creates a Fetcher with a bounded timeout.
func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent:    opts.UserAgent,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// Fetch GETs targetURL and returns the decoded body. Network errors and
// non-2xx responses fail with a resilience.KindFetchFailed error carrying
// the status (or "unknown").
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, resilience.FetchFailed(0, eris.Wrap(err, "scrape: create request"))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, resilience.FetchFailed(0, eris.Wrap(err, "scrape: fetch"))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resilience.FetchFailed(resp.StatusCode,
			eris.Errorf("scrape: unexpected status %s for %s", resp.Status, targetURL))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, resilience.FetchFailed(resp.StatusCode, eris.Wrap(err, "scrape: read body"))
	}

	// Links resolve against the page actually served after redirects.
	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	zap.L().Debug("scrape: fetched page",
		zap.String("url", finalURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Page{
		URL:        finalURL,
		StatusCode: resp.StatusCode,
		HTML:       decodeBody(body, resp.Header.Get("Content-Type")),
		FetchedAt:  time.Now().UTC(),
	}, nil
}

// decodeBody converts body to UTF-8 using the declared or sniffed charset.
func decodeBody(body []byte, contentType string) string {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || enc == nil {
		return string(bytes.ToValidUTF8(body, []byte("\uFFFD")))
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		if utf8.Valid(body) {
			return string(body)
		}
		return string(bytes.ToValidUTF8(body, []byte("\uFFFD")))
	}
	return string(decoded)
}
