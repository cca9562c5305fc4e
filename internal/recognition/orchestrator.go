package recognition

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/examiner/internal/clustering"
	"github.com/JaimeStill/examiner/internal/layout"
)

// Orchestrator runs the recognition passes for one image and clusters the
// pooled fragments. It holds no per-call state.
type Orchestrator struct {
	primary   Recognizer
	math      MathRecognizer
	clusterer *clustering.Clusterer
	passes    []Pass
	logger    *slog.Logger
}

// NewOrchestrator creates an Orchestrator. When passes is empty the default
// passes are used with default preprocessing.
func NewOrchestrator(
	primary Recognizer,
	math MathRecognizer,
	clusterer *clustering.Clusterer,
	passes []Pass,
	logger *slog.Logger,
) *Orchestrator {
	if len(passes) == 0 {
		passes = DefaultPasses(Config{})
	}
	return &Orchestrator{
		primary:   primary,
		math:      math,
		clusterer: clusterer,
		passes:    passes,
		logger:    logger.With("system", "recognition"),
	}
}

type passOutcome struct {
	fragments []layout.Fragment
	err       error
}

// Recognize runs every pass concurrently and waits for all of them before
// clustering. Individual pass failures are logged and excluded. If no pass
// yields fragments, the math recognizer is invoked on the whole image; if
// that also fails, ErrOCRFailure is returned.
func (o *Orchestrator) Recognize(ctx context.Context, data []byte) (*Result, error) {
	src, decodeErr := decode(data)

	result := &Result{}
	if src != nil {
		result.Width = src.Bounds().Dx()
		result.Height = src.Bounds().Dy()
	} else if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		result.Width, result.Height = cfg.Width, cfg.Height
	}

	outcomes := make([]passOutcome, len(o.passes))

	var g errgroup.Group
	g.SetLimit(workerCount(len(o.passes)))

	for i, pass := range o.passes {
		g.Go(func() error {
			fragments, err := o.runPass(ctx, pass, data, src, decodeErr)
			outcomes[i] = passOutcome{fragments: fragments, err: err}
			return nil
		})
	}
	g.Wait()

	var pooled []layout.Fragment
	for i, out := range outcomes {
		report := PassReport{Name: o.passes[i].Name, Fragments: len(out.fragments)}
		if out.err != nil {
			report.Error = out.err.Error()
			o.logger.WarnContext(ctx, "recognition pass failed", "pass", report.Name, "error", out.err)
		}
		result.Passes = append(result.Passes, report)
		pooled = append(pooled, out.fragments...)
	}

	result.Fragments = len(pooled)

	if len(pooled) > 0 {
		result.Clusters = o.clusterer.Cluster(pooled)
		if len(result.Clusters) > 0 {
			o.logger.InfoContext(
				ctx, "recognition complete",
				"fragments", len(pooled),
				"clusters", len(result.Clusters),
			)
			return result, nil
		}
	}

	fallback, err := o.fallback(ctx, data, result.Width, result.Height)
	if err != nil {
		return nil, err
	}

	result.Fallback = fallback
	o.logger.WarnContext(ctx, "recognition degraded to math fallback", "confidence", fallback.Confidence)
	return result, nil
}

func (o *Orchestrator) runPass(
	ctx context.Context,
	pass Pass,
	data []byte,
	src image.Image,
	decodeErr error,
) ([]layout.Fragment, error) {
	input := data
	scale := 1.0

	if pass.Prepare != nil {
		if decodeErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrPassFailed, pass.Name, decodeErr)
		}

		prepared, s := pass.Prepare(src)
		encoded, err := encodePNG(prepared)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrPassFailed, pass.Name, err)
		}
		input, scale = encoded, s
	}

	fragments, err := o.primary.Recognize(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPassFailed, pass.Name, err)
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFragments, pass.Name)
	}

	for i := range fragments {
		fragments[i].SourcePass = pass.Name
		if scale != 1 && scale > 0 {
			b := fragments[i].Box
			fragments[i].Box = layout.Box{
				X:      b.X / scale,
				Y:      b.Y / scale,
				Width:  b.Width / scale,
				Height: b.Height / scale,
			}
		}
	}

	return fragments, nil
}

func (o *Orchestrator) fallback(ctx context.Context, data []byte, width, height int) (*layout.MathBlock, error) {
	if o.math == nil {
		return nil, fmt.Errorf("%w: all passes failed and no math recognizer configured", ErrOCRFailure)
	}

	res, err := o.math.RecognizeMath(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: math fallback: %w", ErrOCRFailure, err)
	}

	text := strings.TrimSpace(res.Expression)
	if text == "" {
		return nil, fmt.Errorf("%w: math fallback: %w", ErrOCRFailure, ErrNoFragments)
	}

	return &layout.MathBlock{
		Box:            layout.Box{Width: float64(width), Height: float64(height)},
		RecognizedText: text,
		MathExpression: text,
		Confidence:     res.Confidence,
		MathLikeness:   1,
		Suspicious:     true,
	}, nil
}

func workerCount(n int) int {
	return max(min(runtime.NumCPU(), n), 1)
}
