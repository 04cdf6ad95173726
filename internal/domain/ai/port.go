package ai

import (
	"context"

	"github.com/bryanwahyu/docintel/internal/domain/analysis"
)

// Analysis is the raw outcome of one analyze call.
type Analysis struct {
	Blocks []analysis.ContentBlock
	Model  string
	Prompt string
}

// Answer is the outcome of one question call.
type Answer struct {
	Text  string
	Model string
}

// Client is the AI service boundary, stateless per call. Neither
// method retries; callers decide what a failure means.
type Client interface {
	AnalyzeDocument(ctx context.Context, fileURL, mimeType string) (*Analysis, error)
	AnswerQuestion(ctx context.Context, question, contextText string) (Answer, error)
}
