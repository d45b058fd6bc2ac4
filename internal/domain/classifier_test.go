package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jdevra/websage/internal/domain"
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

func TestClassifierService_Valid(t *testing.T) {
	gen := &stubTextGen{reply: "CLASSIFICATION: VALID\nREASON: Searchable information request"}
	classifier := domain.NewClassifierService(gen)

	c := classifier.Classify(context.Background(), "Best places to visit in Delhi")

	require.True(t, c.IsValid)
	require.Equal(t, "VALID", c.Label)
	require.Equal(t, "Searchable information request", c.Reason)
	require.Len(t, gen.prompts, 1)
	require.Contains(t, gen.prompts[0], `Query: "Best places to visit in Delhi"`)
}

func TestClassifierService_Invalid(t *testing.T) {
	gen := &stubTextGen{reply: "CLASSIFICATION: INVALID\nREASON: Personal task, not searchable"}
	classifier := domain.NewClassifierService(gen)

	c := classifier.Classify(context.Background(), "walk my pet")

	require.False(t, c.IsValid)
	require.Equal(t, "INVALID", c.Label)
}

func TestClassifierService_BracketedLabel(t *testing.T) {
	gen := &stubTextGen{reply: "CLASSIFICATION: [INVALID]\nREASON: gibberish"}
	classifier := domain.NewClassifierService(gen)

	c := classifier.Classify(context.Background(), "asdf qwerty")

	require.False(t, c.IsValid)
	require.Equal(t, "INVALID", c.Label)
}

func TestClassifierService_FailOpenOnGeneratorError(t *testing.T) {
	gen := &stubTextGen{err: errors.New("capability timeout")}
	classifier := domain.NewClassifierService(gen)

	c := classifier.Classify(context.Background(), "anything")

	require.True(t, c.IsValid)
	require.Equal(t, "ERROR", c.Label)
	require.Contains(t, c.Reason, "capability timeout")
}

func TestClassifierService_UnparseableReplyIsUnknownAndValid(t *testing.T) {
	gen := &stubTextGen{reply: "I think this query is probably fine."}
	classifier := domain.NewClassifierService(gen)

	c := classifier.Classify(context.Background(), "How to learn Go")

	require.True(t, c.IsValid)
	require.Equal(t, "UNKNOWN", c.Label)
	require.Equal(t, "No reason provided", c.Reason)
}
