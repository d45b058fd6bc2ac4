package retrieval

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jdevra/websage/internal/observability"
)

// resultSettleDelay gives engine result pages time to render dynamic
// content after navigation.
const resultSettleDelay = 2 * time.Second

// BrowserStrategy drives a headless browser against a search engine's
// result page. Result markup varies across engine revisions, so a fixed
// priority list of candidate selectors is tried and the first non-empty
// match wins.
type BrowserStrategy struct {
	name        string
	searchURL   func(query string) string
	selectors   []string
	excludeHost string
	timeout     time.Duration
	userAgent   string
}

// NewGoogleStrategy creates the primary browser-driven search strategy.
func NewGoogleStrategy(timeout time.Duration, userAgent string) *BrowserStrategy {
	return &BrowserStrategy{
		name: "google",
		searchURL: func(query string) string {
			return "https://www.google.com/search?q=" + url.QueryEscape(query)
		},
		selectors: []string{
			"div[id='search'] div.g a[href]",
			"div#search a[href]",
			"div.g a[href]",
			".yuRUbf a[href]",
			"h3 a[href]",
		},
		excludeHost: "google.com",
		timeout:     timeout,
		userAgent:   userAgent,
	}
}

// NewDuckDuckGoStrategy creates the secondary browser-driven search strategy.
func NewDuckDuckGoStrategy(timeout time.Duration, userAgent string) *BrowserStrategy {
	return &BrowserStrategy{
		name: "duckduckgo",
		searchURL: func(query string) string {
			return "https://duckduckgo.com/?q=" + url.QueryEscape(query)
		},
		selectors: []string{
			"article[data-testid='result'] h2 a[href]",
			"div[data-testid='result'] a[href]",
			".result a[href]",
			"h2 a[href]",
		},
		excludeHost: "duckduckgo.com",
		timeout:     timeout,
		userAgent:   userAgent,
	}
}

// Name returns the strategy identifier.
func (s *BrowserStrategy) Name() string {
	return s.name
}

// ResolveURLs navigates to the engine's result page and collects result
// links. Navigation timeouts and selector misses surface as an error or an
// empty list; the resolver treats both as "try the next strategy".
func (s *BrowserStrategy) ResolveURLs(ctx context.Context, query string, limit int) ([]string, error) {
	logger := observability.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(s.userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(s.searchURL(query)),
		chromedp.Sleep(resultSettleDelay),
	); err != nil {
		return nil, fmt.Errorf("%s navigation failed: %w", s.name, err)
	}

	for _, selector := range s.selectors {
		var hrefs []string
		script := fmt.Sprintf(
			`Array.from(document.querySelectorAll(%q)).map(a => a.href)`, selector)

		if err := chromedp.Run(browserCtx, chromedp.Evaluate(script, &hrefs)); err != nil {
			logger.Debug("selector evaluation failed, trying next",
				observability.String("selector", selector),
				observability.Error(err))
			continue
		}

		if results := filterResultURLs(hrefs, s.excludeHost, limit); len(results) > 0 {
			return results, nil
		}
	}

	return nil, nil
}

// filterResultURLs keeps absolute http(s) links pointing away from the
// engine itself, deduplicated, capped at limit.
func filterResultURLs(hrefs []string, excludeHost string, limit int) []string {
	seen := make(map[string]struct{}, len(hrefs))
	results := make([]string, 0, limit)

	for _, href := range hrefs {
		if !strings.HasPrefix(href, "http") {
			continue
		}
		if excludeHost != "" && strings.Contains(href, excludeHost) {
			continue
		}
		if _, ok := seen[href]; ok {
			continue
		}
		seen[href] = struct{}{}

		results = append(results, href)
		if len(results) >= limit {
			break
		}
	}

	return results
}
