package retrieval

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// StaticHTMLStrategy queries the no-JavaScript DuckDuckGo HTML endpoint
// with a plain HTTP fetch. It is the last real strategy in the chain,
// reached when both browser-driven engines failed or were blocked.
type StaticHTMLStrategy struct {
	timeout   time.Duration
	userAgent string
}

// NewStaticHTMLStrategy creates the static-HTTP fallback search strategy.
func NewStaticHTMLStrategy(timeout time.Duration, userAgent string) *StaticHTMLStrategy {
	return &StaticHTMLStrategy{
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// Name returns the strategy identifier.
func (s *StaticHTMLStrategy) Name() string {
	return "static_html"
}

// ResolveURLs scrapes result links from the HTML search page.
func (s *StaticHTMLStrategy) ResolveURLs(ctx context.Context, query string, limit int) ([]string, error) {
	var results []string

	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnHTML("a.result__a[href], a.result-link[href]", func(e *colly.HTMLElement) {
		if len(results) >= limit {
			return
		}
		href := e.Attr("href")
		if strings.HasPrefix(href, "http") && !strings.Contains(href, "duckduckgo.com") {
			results = append(results, href)
		}
	})

	searchURL := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("static html search failed: %w", err)
	}
	c.Wait()

	return results, nil
}
