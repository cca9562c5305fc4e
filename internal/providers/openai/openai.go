// Package openai binds the marking model to any OpenAI-compatible chat
// completions endpoint. Requests are text only; page images are not sent.
package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/JaimeStill/examiner/internal/marking"
)

// Model generates marking output with a chat completion.
type Model struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// New creates a Model from a finalized Config.
func New(cfg Config, logger *slog.Logger) *Model {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Model{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		logger: logger.With("system", "openai"),
	}
}

// Generate sends the composed instructions as the system message and the
// rendered scheme and student work as the user message.
func (m *Model) Generate(ctx context.Context, req marking.MarkingRequest) (string, error) {
	completion, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: m.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Instructions),
			openai.UserMessage(req.Message()),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices")
	}

	m.logger.DebugContext(
		ctx, "marking completion received",
		"question", req.Question,
		"finish_reason", completion.Choices[0].FinishReason,
	)

	return completion.Choices[0].Message.Content, nil
}
