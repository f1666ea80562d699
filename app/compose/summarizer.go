package compose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// summaryPrompt asks for a short, platform-ready blurb. Third-person voice:
// the source article is not ours.
const summaryPrompt = "Summarize this article for a social media post (250 characters max) " +
	"using a friendly casual technical tone, written in third person. " +
	"Add emojis and topical hashtags if you consider them a good fit:\n\n%s"

// CompletionClient is the slice of the OpenAI client used for summarization.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Summarizer produces best-effort AI summaries. It never returns an error:
// any failure yields an empty string and the caller degrades to fallback
// composition.
type Summarizer struct {
	client    CompletionClient
	model     string
	maxTokens int
}

// NewSummarizer builds a summarizer backed by the OpenAI chat API. With an
// empty API key summarization is disabled and Run always returns "".
func NewSummarizer(apiKey, model string, maxTokens int) *Summarizer {
	s := &Summarizer{
		model:     model,
		maxTokens: maxTokens,
	}
	if apiKey != "" {
		s.client = openai.NewClient(apiKey)
	}
	return s
}

// NewSummarizerWithClient is used by tests to inject a fake completion client.
func NewSummarizerWithClient(client CompletionClient, model string, maxTokens int) *Summarizer {
	return &Summarizer{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Run summarizes the text. Empty input yields empty output without a network
// call.
func (s *Summarizer) Run(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if s.client == nil {
		slog.Debug("Summarization disabled, no API key configured")
		return ""
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(summaryPrompt, text),
			},
		},
		Temperature: 0.7,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		slog.Error("Summarization failed", "error", err)
		return ""
	}

	if len(resp.Choices) == 0 {
		slog.Warn("Summarization returned no choices")
		return ""
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content)
}
