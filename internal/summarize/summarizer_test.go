package summarize_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jdevra/websage/internal/domain"
	"github.com/jdevra/websage/internal/summarize"
)

type stubTextGen struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubTextGen) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubTextGen) Name() string { return "stub" }

func page(content string) domain.ScrapedPage {
	return domain.ScrapedPage{
		URL:     "https://example.com/delhi",
		Title:   "Delhi Guide",
		Content: content,
	}
}

func TestService_SummarizePage(t *testing.T) {
	gen := &stubTextGen{reply: "  A summary of Delhi attractions.  "}
	svc := summarize.NewService(gen)

	summary := svc.SummarizePage(context.Background(),
		page(strings.Repeat("Delhi has many historic attractions. ", 5)), "Best places in Delhi")

	require.Equal(t, "A summary of Delhi attractions.", summary)
	require.Len(t, gen.prompts, 1)
	require.Contains(t, gen.prompts[0], `User Query: "Best places in Delhi"`)
	require.Contains(t, gen.prompts[0], "https://example.com/delhi")
}

func TestService_SummarizePage_SkipsThinContent(t *testing.T) {
	gen := &stubTextGen{reply: "unused"}
	svc := summarize.NewService(gen)

	summary := svc.SummarizePage(context.Background(), page("too short"), "query")

	require.Equal(t, "Insufficient content from https://example.com/delhi", summary)
	require.Empty(t, gen.prompts, "thin pages must not spend a generation call")
}

func TestService_SummarizePage_CapsPromptContent(t *testing.T) {
	gen := &stubTextGen{reply: "summary"}
	svc := summarize.NewService(gen)

	long := strings.Repeat("x", 10000)
	_ = svc.SummarizePage(context.Background(), page(long), "query")

	require.Len(t, gen.prompts, 1)
	require.Less(t, len(gen.prompts[0]), 4000)
}

func TestService_SummarizePage_GenerationFailureDegrades(t *testing.T) {
	gen := &stubTextGen{err: errors.New("rate limited")}
	svc := summarize.NewService(gen)

	summary := svc.SummarizePage(context.Background(),
		page(strings.Repeat("plenty of text here. ", 10)), "query")

	require.Contains(t, summary, "Error summarizing content from https://example.com/delhi")
	require.Contains(t, summary, "rate limited")
}

func TestService_Synthesize(t *testing.T) {
	gen := &stubTextGen{reply: "Final combined answer."}
	svc := summarize.NewService(gen)

	answer, err := svc.Synthesize(context.Background(), []domain.PageSummary{
		{SourceNumber: 1, Summary: "first summary"},
		{SourceNumber: 2, Summary: "second summary"},
	}, "Best places in Delhi")

	require.NoError(t, err)
	require.Equal(t, "Final combined answer.", answer)
	require.Contains(t, gen.prompts[0], "first summary\n\nsecond summary")
}

func TestService_SynthesizeFailureSurfaces(t *testing.T) {
	gen := &stubTextGen{err: errors.New("generation failed")}
	svc := summarize.NewService(gen)

	_, err := svc.Synthesize(context.Background(), nil, "query")

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to synthesize answer")
}
