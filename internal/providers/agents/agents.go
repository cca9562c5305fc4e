// Package agents binds the marking model and the math recognizer to a
// go-agents vision agent. Prompts come from the prompts system so active
// overrides apply to every call.
package agents

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"

	_ "image/jpeg"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/examiner/internal/marking"
	"github.com/JaimeStill/examiner/internal/prompts"
	"github.com/JaimeStill/examiner/internal/recognition"
	"github.com/JaimeStill/examiner/pkg/formatting"
)

type mathResponse struct {
	Latex      string  `json:"latex"`
	Confidence float64 `json:"confidence"`
}

// Provider calls a go-agents agent. A fresh agent is created per call.
type Provider struct {
	cfg     gaconfig.AgentConfig
	prompts prompts.System
	logger  *slog.Logger
}

// New creates a Provider for the given agent configuration.
func New(cfg gaconfig.AgentConfig, ps prompts.System, logger *slog.Logger) *Provider {
	return &Provider{
		cfg:     cfg,
		prompts: ps,
		logger:  logger.With("system", "agents"),
	}
}

// Generate sends the marking prompt with the page images of the question.
// Text-only requests use a chat call.
func (p *Provider) Generate(ctx context.Context, req marking.MarkingRequest) (string, error) {
	a, err := agent.New(&p.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	prompt := req.Instructions + "\n\n" + req.Message()

	if len(req.Images) == 0 {
		resp, err := a.Chat(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("chat call: %w", err)
		}
		return resp.Content(), nil
	}

	images := make([]string, len(req.Images))
	for i, data := range req.Images {
		uri, err := encodeImage(data)
		if err != nil {
			return "", fmt.Errorf("page image %d: %w", i+1, err)
		}
		images[i] = uri
	}

	resp, err := a.Vision(ctx, prompt, images)
	if err != nil {
		return "", fmt.Errorf("vision call: %w", err)
	}

	p.logger.DebugContext(ctx, "marking response received", "question", req.Question, "images", len(images))
	return resp.Content(), nil
}

// RecognizeMath transcribes a cropped region using the math stage prompt.
func (p *Provider) RecognizeMath(ctx context.Context, data []byte) (recognition.MathResult, error) {
	prompt, err := p.prompts.Composed(ctx, prompts.StageMath)
	if err != nil {
		return recognition.MathResult{}, err
	}

	uri, err := encodeImage(data)
	if err != nil {
		return recognition.MathResult{}, err
	}

	a, err := agent.New(&p.cfg)
	if err != nil {
		return recognition.MathResult{}, fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Vision(ctx, prompt, []string{uri})
	if err != nil {
		return recognition.MathResult{}, fmt.Errorf("vision call: %w", err)
	}

	parsed, err := formatting.Parse[mathResponse](resp.Content())
	if err != nil {
		return recognition.MathResult{}, fmt.Errorf("parse response: %w", err)
	}

	return recognition.MathResult{
		Expression: parsed.Latex,
		Confidence: min(max(parsed.Confidence, 0), 1),
	}, nil
}

// encodeImage builds a PNG data URI, converting other formats first.
func encodeImage(data []byte) (string, error) {
	if http.DetectContentType(data) != "image/png" {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("decode image: %w", err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("convert image: %w", err)
		}
		data = buf.Bytes()
	}

	uri, err := encoding.EncodeImageDataURI(data, document.PNG)
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return uri, nil
}
