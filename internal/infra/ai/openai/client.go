package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	aidom "github.com/bryanwahyu/docintel/internal/domain/ai"
	analysisdom "github.com/bryanwahyu/docintel/internal/domain/analysis"
	"github.com/bryanwahyu/docintel/internal/infra/ai/prompt"
)

const maxTokens = 2048

const defaultModel = "gpt-4o-mini"

// Config is passed in explicitly; credentials are never read from
// module scope.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{api: openai.NewClientWithConfig(oc), model: model, timeout: cfg.Timeout}
}

// AnalyzeDocument runs the sectioned-analysis prompt against the file
// at fileURL and returns the raw content blocks.
func (c *Client) AnalyzeDocument(ctx context.Context, fileURL, mimeType string) (*aidom.Analysis, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	userPrompt := prompt.AnalysisUser(fileURL, mimeType)
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.AnalysisSystem()},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}
	setMaxTokens(&req)

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, mapProviderErr(err)
	}
	content := firstContent(resp)
	if content == "" {
		return nil, aidom.ErrEmptyResponse
	}

	return &aidom.Analysis{
		Blocks: []analysisdom.ContentBlock{{Type: analysisdom.BlockText, Text: content}},
		Model:  c.model,
		Prompt: userPrompt,
	}, nil
}

// AnswerQuestion answers a single question using the analysis text as
// the only context.
func (c *Client) AnswerQuestion(ctx context.Context, question, contextText string) (aidom.Answer, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.QuestionSystem()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.QuestionUser(question, contextText)},
		},
	}
	setMaxTokens(&req)

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return aidom.Answer{Model: c.model}, mapProviderErr(err)
	}
	content := firstContent(resp)
	if content == "" {
		return aidom.Answer{Model: c.model}, aidom.ErrEmptyResponse
	}
	return aidom.Answer{Text: content, Model: c.model}, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}

// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
func setMaxTokens(req *openai.ChatCompletionRequest) {
	m := req.Model
	if strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4") || strings.HasPrefix(m, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}
}

func firstContent(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

func mapProviderErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return fmt.Errorf("%w: %v", aidom.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("chat completion: %w", err)
}
