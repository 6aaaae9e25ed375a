package fetch

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/execdiscovery/internal/model"
)

// FetchPages fetches the root page plus each sub-path of a site. Individual
// sub-path failures (404, timeout) skip that page and never fail the whole
// call; only a root that no URL variant can serve is an error.
func FetchPages(ctx context.Context, f Fetcher, baseURL string, subPaths []string, maxConcurrent int) (*PageSet, error) {
	servedBase, rootPage, err := fetchRoot(ctx, f, baseURL)
	if err != nil {
		return nil, err
	}

	ps := &PageSet{ServedBase: servedBase}
	rootPage.Path = "/"
	ps.Pages = append(ps.Pages, *rootPage)

	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, sp := range subPaths {
		sp := sp
		g.Go(func() error {
			pageURL := strings.TrimSuffix(servedBase, "/") + sp
			page, fetchErr := f.FetchPage(gCtx, pageURL)
			if fetchErr != nil {
				zap.L().Debug("fetch: sub-path skipped",
					zap.String("url", pageURL),
					zap.Error(fetchErr),
				)
				return nil
			}
			page.Path = sp
			mu.Lock()
			ps.Pages = append(ps.Pages, *page)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return ps, nil
}

// fetchRoot tries protocol/www variants of the input URL until one serves
// content. Returns the base that worked.
func fetchRoot(ctx context.Context, f Fetcher, baseURL string) (string, *model.FetchedPage, error) {
	variants, err := urlVariants(baseURL)
	if err != nil {
		return "", nil, err
	}

	var lastErr error
	for _, v := range variants {
		page, fetchErr := f.FetchPage(ctx, v)
		if fetchErr == nil {
			return v, page, nil
		}
		lastErr = fetchErr
		zap.L().Debug("fetch: root variant failed",
			zap.String("url", v),
			zap.Error(fetchErr),
		)
	}
	return "", nil, eris.Wrapf(lastErr, "fetch: no url variant served content for %s", baseURL)
}

// urlVariants generates fallback forms of the input URL: as given, then
// https/http, with and without the www prefix. Unparseable input is a hard
// failure; no pipeline can proceed without a resolvable target.
func urlVariants(rawURL string) ([]string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, eris.New("fetch: empty url")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return nil, eris.Wrapf(err, "fetch: unparseable url %q", rawURL)
	}

	host := u.Host
	bare := strings.TrimPrefix(host, "www.")

	var variants []string
	seen := make(map[string]struct{})
	add := func(scheme, h string) {
		v := scheme + "://" + h
		if u.Path != "" && u.Path != "/" {
			v += u.Path
		}
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			variants = append(variants, v)
		}
	}

	add(u.Scheme, host)
	add("https", bare)
	add("https", "www."+bare)
	add("http", bare)
	add("http", "www."+bare)

	return variants, nil
}

// Domain extracts the bare host (without www) from a URL, used to match
// email domains against the company website.
func Domain(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	return strings.TrimPrefix(host, "www.")
}
