package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/veridoc/internal/util"
)

const maxFetchAttempts = 3

// fetchSleepFunc is replaced in tests to skip backoff waits.
var fetchSleepFunc = time.Sleep

// Fetcher retrieves document text from URLs.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker // nil when robots.txt checks are disabled
}

// NewFetcher creates a fetcher. When respectRobots is true, every fetch is
// checked against the host's robots.txt first.
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, respectRobots bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	var robots *util.RobotsChecker
	if respectRobots {
		robots = util.NewRobotsChecker(util.NormalizeUserAgent(userAgent), timeout)
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
		robots:    robots,
	}
}

// FetchResult contains the fetched document in raw and text form.
type FetchResult struct {
	HTML        string // Raw body
	Text        string // Visible text with markup stripped
	Subject     string // Human-readable name derived from the URL
	FinalURL    string // URL after redirects
	StatusCode  int
	ContentType string
}

// FetchWithRetry fetches a URL, retrying transient failures (5xx, 429,
// connection errors) with exponential backoff.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error

	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			fetchSleepFunc(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// Fetch retrieves the document at rawURL once.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err == nil && !allowed {
			return nil, fmt.Errorf("disallowed by robots.txt: %s", rawURL)
		}
		if crawlDelay > 0 {
			fetchSleepFunc(crawlDelay)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	raw := string(body)
	contentType := resp.Header.Get("Content-Type")

	text := raw
	if strings.Contains(contentType, "html") || strings.HasPrefix(strings.TrimSpace(raw), "<") {
		text = ExtractText(raw)
	}

	finalURL := resp.Request.URL.String()

	return &FetchResult{
		HTML:        raw,
		Text:        text,
		Subject:     extractSubject(finalURL),
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
	}, nil
}

// isRetryableFetchError reports whether a fetch error is worth retrying:
// 5xx and 429 statuses, and connection-level failures. Request construction
// and body-read errors are not.
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	if rest, ok := strings.CutPrefix(msg, "unexpected status: "); ok {
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return false
		}
		code, convErr := strconv.Atoi(fields[0])
		if convErr != nil {
			return false
		}
		return code >= 500 || code == http.StatusTooManyRequests
	}

	return strings.HasPrefix(msg, "fetch: ")
}

// ExtractText strips markup from an HTML document and returns its visible
// text. Script, style, and head content is skipped; block elements break
// lines.
func ExtractText(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head":
				return
			case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "section", "article":
				b.WriteByte('\n')
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	// Collapse runs of blank lines and trim per-line whitespace.
	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// extractSubject derives a human-readable document name from the URL.
func extractSubject(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]

	last = strings.ReplaceAll(last, "_", " ")
	last = strings.ReplaceAll(last, "-", " ")

	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}

	return last
}
