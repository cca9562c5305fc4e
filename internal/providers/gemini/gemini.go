// Package gemini binds the math recognizer and, optionally, the marking model
// to Google's Gemini API. A client is opened per call and closed when the
// call returns.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/JaimeStill/examiner/internal/marking"
	"github.com/JaimeStill/examiner/internal/prompts"
	"github.com/JaimeStill/examiner/internal/recognition"
	"github.com/JaimeStill/examiner/pkg/formatting"
)

var ErrEmptyResponse = errors.New("gemini returned no text")

type mathResponse struct {
	Latex      string  `json:"latex"`
	Confidence float64 `json:"confidence"`
}

// Provider calls a Gemini model with JSON responses at temperature zero.
type Provider struct {
	cfg     Config
	prompts prompts.System
	logger  *slog.Logger
}

// New creates a Provider from a finalized Config.
func New(cfg Config, ps prompts.System, logger *slog.Logger) *Provider {
	return &Provider{
		cfg:     cfg,
		prompts: ps,
		logger:  logger.With("system", "gemini"),
	}
}

// RecognizeMath transcribes a cropped region using the math stage prompt.
func (p *Provider) RecognizeMath(ctx context.Context, data []byte) (recognition.MathResult, error) {
	system, err := p.prompts.Composed(ctx, prompts.StageMath)
	if err != nil {
		return recognition.MathResult{}, err
	}

	text, err := p.generate(ctx, system, "Transcribe the handwritten mathematics in this image.", [][]byte{data})
	if err != nil {
		return recognition.MathResult{}, err
	}

	parsed, err := formatting.Parse[mathResponse](text)
	if err != nil {
		return recognition.MathResult{}, fmt.Errorf("parse response: %w", err)
	}

	return recognition.MathResult{
		Expression: parsed.Latex,
		Confidence: min(max(parsed.Confidence, 0), 1),
	}, nil
}

// Generate marks one question group with the page images attached.
func (p *Provider) Generate(ctx context.Context, req marking.MarkingRequest) (string, error) {
	return p.generate(ctx, req.Instructions, req.Message(), req.Images)
}

func (p *Provider) generate(ctx context.Context, system, user string, images [][]byte) (string, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(p.cfg.APIKey))
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(p.cfg.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	parts := []genai.Part{genai.Text(user)}
	for _, data := range images {
		parts = append(parts, &genai.Blob{MIMEType: http.DetectContentType(data), Data: data})
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(FirstText(resp))
	if text == "" {
		return "", ErrEmptyResponse
	}

	p.logger.DebugContext(ctx, "gemini response received", "images", len(images), "length", len(text))
	return text, nil
}

// FirstText returns the first text part of the first candidate that has one.
func FirstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
