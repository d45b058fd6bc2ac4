package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdevra/websage/internal/observability"
)

const classifyPromptTemplate = `Classify the following query as VALID or INVALID for web search.

VALID queries are:
- Questions that can be answered by searching the web
- Requests for information, facts, or data
- How-to questions
- Location-based queries
- Product or service inquiries

INVALID queries are:
- Personal tasks or commands (like "walk my pet", "add to grocery list")
- Queries with multiple unrelated requests
- Nonsensical or gibberish text
- Personal actions that cannot be searched online

Query: "%s"

Respond in exactly this format:
CLASSIFICATION: [VALID/INVALID]
REASON: [Brief explanation]`

// ClassifierService decides query validity by delegating to a text
// generator with a fixed instructional prompt.
type ClassifierService struct {
	textGen TextGenerator
}

// NewClassifierService creates a new classifier (DI constructor).
func NewClassifierService(textGen TextGenerator) *ClassifierService {
	return &ClassifierService{
		textGen: textGen,
	}
}

// Classify parses the generator's two-field reply into a verdict. Any
// capability failure fails open: the query is treated as valid so an
// unreachable generator never blocks the pipeline.
func (s *ClassifierService) Classify(ctx context.Context, query string) Classification {
	logger := observability.FromContext(ctx)

	reply, err := s.textGen.Generate(ctx, fmt.Sprintf(classifyPromptTemplate, query))
	if err != nil {
		logger.Warn("classification failed, defaulting to valid",
			observability.Error(err))
		return Classification{
			IsValid: true,
			Reason:  fmt.Sprintf("classification error: %v", err),
			Label:   "ERROR",
		}
	}

	label, reason := parseClassification(reply)

	logger.Info("query classified",
		observability.String("classification", label))

	return Classification{
		IsValid: label != "INVALID",
		Reason:  reason,
		Label:   label,
	}
}

// InvalidResponse returns the canned user-facing text for rejected queries.
func (s *ClassifierService) InvalidResponse() string {
	return "This is not a valid query."
}

// parseClassification extracts the CLASSIFICATION and REASON fields from the
// generator reply. A reply carrying neither field yields UNKNOWN, which the
// caller treats as valid.
func parseClassification(reply string) (label, reason string) {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "CLASSIFICATION:"):
			label = strings.TrimSpace(strings.TrimPrefix(line, "CLASSIFICATION:"))
			label = strings.Trim(label, "[]")
		case strings.HasPrefix(line, "REASON:"):
			reason = strings.TrimSpace(strings.TrimPrefix(line, "REASON:"))
		}
	}

	if label == "" {
		label = "UNKNOWN"
	}
	if reason == "" {
		reason = "No reason provided"
	}

	return label, reason
}
