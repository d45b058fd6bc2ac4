// Package summarize condenses scraped pages into per-source summaries and
// a single synthesized answer, through the injected text capability.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdevra/websage/internal/domain"
	"github.com/jdevra/websage/internal/observability"
)

const (
	// minUsableContentLength is the minimum extracted-text length worth a
	// generation call; shorter pages get a placeholder instead.
	minUsableContentLength = 50

	// maxPromptContentLength caps how much page text is sent per summary
	// prompt.
	maxPromptContentLength = 3000
)

const pagePromptTemplate = `Summarize the following webpage content in relation to the user query.
Be concise but informative, focusing on information relevant to the query.

User Query: "%s"

Webpage Title: %s
URL: %s

Content:
%s

Provide a clear, informative summary in 2-3 paragraphs:`

const synthesisPromptTemplate = `Based on the following search results and summaries, create a comprehensive answer to the user's query.
Combine information from multiple sources and provide a well-structured response.

User Query: "%s"

Search Result Summaries:
%s

Provide a comprehensive answer that:
1. Directly addresses the user's query
2. Combines information from the sources
3. Is well-structured and easy to read
4. Mentions key sources when relevant

Final Answer:`

// Service implements domain.Summarizer.
type Service struct {
	textGen domain.TextGenerator
}

// NewService creates a new summarizer (DI constructor).
func NewService(textGen domain.TextGenerator) *Service {
	return &Service{
		textGen: textGen,
	}
}

// SummarizePage returns a query-focused summary of one scraped page. Pages
// below the minimum usable length are short-circuited without a generation
// call, and generation failures degrade to an explanatory placeholder so a
// single bad source never fails the batch.
func (s *Service) SummarizePage(ctx context.Context, page domain.ScrapedPage, query string) string {
	logger := observability.FromContext(ctx)

	content := strings.TrimSpace(page.Content)
	if len(content) < minUsableContentLength {
		return fmt.Sprintf("Insufficient content from %s", page.URL)
	}

	if runes := []rune(content); len(runes) > maxPromptContentLength {
		content = string(runes[:maxPromptContentLength])
	}

	prompt := fmt.Sprintf(pagePromptTemplate, query, page.Title, page.URL, content)

	summary, err := s.textGen.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("page summarization failed",
			observability.String("url", page.URL),
			observability.Error(err))
		return fmt.Sprintf("Error summarizing content from %s: %v", page.URL, err)
	}

	logger.Debug("page summarized", observability.String("url", page.URL))
	return strings.TrimSpace(summary)
}

// Synthesize combines the per-source summaries into one final answer. A
// failure here is surfaced: there is no degraded form of the final answer.
func (s *Service) Synthesize(ctx context.Context, summaries []domain.PageSummary, query string) (string, error) {
	parts := make([]string, 0, len(summaries))
	for _, sum := range summaries {
		parts = append(parts, sum.Summary)
	}
	combined := strings.Join(parts, "\n\n")

	answer, err := s.textGen.Generate(ctx, fmt.Sprintf(synthesisPromptTemplate, query, combined))
	if err != nil {
		return "", fmt.Errorf("failed to synthesize answer: %w", err)
	}

	return strings.TrimSpace(answer), nil
}
