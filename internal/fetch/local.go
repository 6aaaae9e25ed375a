package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/execdiscovery/internal/model"
)

// HTTPFetcher fetches HTML via net/http, detects anti-bot blocks, and
// extracts visible text with goquery. Free, no API calls.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// HTTPFetcherConfig holds the tunables for HTTPFetcher.
type HTTPFetcherConfig struct {
	TimeoutSecs  int
	UserAgent    string
	MaxBodyBytes int64
}

// NewHTTPFetcher creates an HTTPFetcher with sensible defaults for any
// zero-valued config field.
func NewHTTPFetcher(cfg HTTPFetcherConfig) *HTTPFetcher {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0 (compatible; ExecDiscoveryBot/1.0)"
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 512 * 1024
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent:    ua,
		maxBodyBytes: maxBody,
	}
}

// FetchPage fetches a URL and returns its visible text.
func (f *HTTPFetcher) FetchPage(ctx context.Context, pageURL string) (*model.FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: do request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "fetch: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("fetch: blocked (%s) at %s", blockType, pageURL)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("fetch: status %d for %s", resp.StatusCode, pageURL)
	}
	if len(body) < 100 {
		return nil, eris.Errorf("fetch: empty page %s", pageURL)
	}

	title, text, err := extractText(body)
	if err != nil {
		return nil, err
	}

	return &model.FetchedPage{
		URL:        pageURL,
		Title:      title,
		Text:       text,
		StatusCode: resp.StatusCode,
	}, nil
}

var (
	spaceRe   = regexp.MustCompile(`[ \t]+`)
	newlineRe = regexp.MustCompile(`\n{3,}`)
)

// extractText parses HTML and returns the page title and visible body text
// with scripts, styles, and embedded frames removed.
func extractText(body []byte) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", "", eris.Wrap(err, "fetch: parse html")
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript, iframe, svg").Remove()

	var b strings.Builder
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		b.WriteString(sel.Text())
	})
	text := b.String()
	if text == "" {
		text = doc.Text()
	}

	text = spaceRe.ReplaceAllString(text, " ")
	text = newlineRe.ReplaceAllString(text, "\n\n")
	return title, strings.TrimSpace(text), nil
}
