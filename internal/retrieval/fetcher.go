package retrieval

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jdevra/websage/internal/domain"
	"github.com/jdevra/websage/internal/observability"
)

// truncationMarker is appended when extracted text exceeds the length cap.
const truncationMarker = "..."

// Fetcher downloads a single page and extracts its visible text.
type Fetcher struct {
	client           *http.Client
	userAgent        string
	maxContentLength int
}

// NewFetcher creates a page fetcher with a hard per-request timeout and a
// content length cap.
func NewFetcher(timeout time.Duration, userAgent string, maxContentLength int) *Fetcher {
	return &Fetcher{
		client:           &http.Client{Timeout: timeout},
		userAgent:        userAgent,
		maxContentLength: maxContentLength,
	}
}

// FetchContent fetches one URL and extracts cleaned text. It never fails:
// a dead link degrades to a record whose content explains the failure, so
// one bad source never aborts the aggregate result set.
func (f *Fetcher) FetchContent(ctx context.Context, pageURL string) domain.ScrapedPage {
	logger := observability.FromContext(ctx)

	page, err := f.fetch(ctx, pageURL)
	if err != nil {
		logger.Warn("page fetch failed",
			observability.String("url", pageURL),
			observability.Error(err))
		return domain.ScrapedPage{
			URL:       pageURL,
			Title:     "Error",
			Content:   fmt.Sprintf("Failed to scrape content: %v", err),
			Length:    0,
			ScrapedAt: time.Now(),
		}
	}

	logger.Debug("page fetched",
		observability.String("url", pageURL),
		observability.Int("length", page.Length))
	return page
}

func (f *Fetcher) fetch(ctx context.Context, pageURL string) (domain.ScrapedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.ScrapedPage{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.ScrapedPage{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.ScrapedPage{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.ScrapedPage{}, fmt.Errorf("failed to parse page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "No title"
	}

	// Drop non-visible elements before text extraction.
	doc.Find("script, style, noscript").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")
	text = f.truncate(text)

	return domain.ScrapedPage{
		URL:       pageURL,
		Title:     title,
		Content:   text,
		Length:    len(text),
		ScrapedAt: time.Now(),
	}, nil
}

// truncate caps extracted text at the configured length, marking the cut.
func (f *Fetcher) truncate(text string) string {
	if f.maxContentLength <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= f.maxContentLength {
		return text
	}
	return string(runes[:f.maxContentLength]) + truncationMarker
}
