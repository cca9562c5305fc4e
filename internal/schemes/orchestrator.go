// Package schemes resolves the official marking scheme of each detected
// question. Sub-questions are grouped by base question, each group is looked
// up in the question corpus, disagreements about the source paper are
// corrected by consensus, and unmatched groups receive a generic rubric.
package schemes

import (
	"context"
	"fmt"
	"log/slog"
)

// Match is a corpus hit for one question group.
type Match struct {
	Paper          Paper      `json:"paper"`
	QuestionNumber string     `json:"question_number"`
	QuestionText   string     `json:"question_text"`
	Fragments      []Fragment `json:"-"`
	Confidence     float64    `json:"confidence"`
}

// DetectionResult is the outcome of one corpus lookup. Match is nil when
// Found is false.
type DetectionResult struct {
	Found bool   `json:"found"`
	Match *Match `json:"match"`
}

func (d DetectionResult) paperKey() string {
	if !d.Found || d.Match == nil {
		return ""
	}
	return d.Match.Paper.Key()
}

// Corpus finds the known question most similar to text, optionally
// restricted by a paper hint.
type Corpus interface {
	FindCandidates(ctx context.Context, text string, hint *PaperHint) (DetectionResult, error)
}

// Resolution is the final scheme decision for one question group.
type Resolution struct {
	Group     Group            `json:"group"`
	Detection DetectionResult  `json:"detection"`
	Rescued   bool             `json:"rescued"`
	Scheme    NormalizedScheme `json:"scheme"`
}

// Report is the outcome of resolving all groups of a submission.
type Report struct {
	Resolutions []Resolution       `json:"resolutions"`
	Schemes     []NormalizedScheme `json:"schemes"`
	Dominant    *Paper             `json:"dominant,omitempty"`
	Restarted   bool               `json:"restarted"`
}

// SchemeFor returns the merged scheme of a base question.
func (r *Report) SchemeFor(base string) (NormalizedScheme, bool) {
	for _, s := range r.Schemes {
		if s.BaseQuestion == base {
			return s, true
		}
	}
	return NormalizedScheme{}, false
}

type searchState int

const (
	stateHinted searchState = iota
	stateUnhinted
)

// Orchestrator resolves schemes against a Corpus.
type Orchestrator struct {
	corpus Corpus
	cfg    Config
	logger *slog.Logger
}

// NewOrchestrator creates an Orchestrator from a finalized Config.
func NewOrchestrator(corpus Corpus, cfg Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		corpus: corpus,
		cfg:    cfg,
		logger: logger.With("system", "schemes"),
	}
}

// Resolve groups questions by base number and resolves one scheme per group.
// A hinted search that matches several papers or adheres poorly to the hint
// is restarted once without it. Corpus failures are treated as misses unless
// the context is done.
func (o *Orchestrator) Resolve(ctx context.Context, questions []Question, pageText string, hint *PaperHint) (*Report, error) {
	groups := GroupQuestions(questions)
	report := &Report{Resolutions: make([]Resolution, 0, len(groups))}
	if len(groups) == 0 {
		return report, nil
	}

	state := stateUnhinted
	if !hint.Empty() {
		state = stateHinted
	}

	var detections []DetectionResult
	for {
		var active *PaperHint
		if state == stateHinted {
			active = hint
		}

		var err error
		detections, err = o.detectAll(ctx, groups, active)
		if err != nil {
			return nil, err
		}

		if state == stateHinted && o.poorAdherence(detections, hint) {
			o.logger.InfoContext(ctx, "hinted search disagreed, restarting without hint", "groups", len(groups))
			state = stateUnhinted
			report.Restarted = true
			continue
		}
		break
	}

	rescued, dominant, err := o.consensus(ctx, groups, detections)
	if err != nil {
		return nil, err
	}
	report.Dominant = dominant

	schemes := make([]NormalizedScheme, 0, len(groups))
	for i, g := range groups {
		res := Resolution{
			Group:     g,
			Detection: detections[i],
			Rescued:   rescued[i],
		}

		if m := detections[i].Match; detections[i].Found && m != nil {
			res.Scheme = Normalize(g.Base, m.Paper, m.Confidence, m.Fragments)
		}
		if len(res.Scheme.AllMarks()) == 0 {
			res.Scheme = GenericScheme(g.Base, pageText, g.Text(), o.cfg.DefaultMarks, o.cfg.MaxMarks)
			if m := detections[i].Match; m != nil {
				res.Scheme.Paper = m.Paper
			}
		}

		report.Resolutions = append(report.Resolutions, res)
		schemes = append(schemes, res.Scheme)
	}
	report.Schemes = Merge(schemes)

	generic := 0
	for _, s := range report.Schemes {
		if s.IsGeneric {
			generic++
		}
	}
	o.logger.InfoContext(
		ctx, "schemes resolved",
		"groups", len(groups),
		"schemes", len(report.Schemes),
		"generic", generic,
		"restarted", report.Restarted,
		"dominant", dominant != nil,
	)

	return report, nil
}

func (o *Orchestrator) detectAll(ctx context.Context, groups []Group, hint *PaperHint) ([]DetectionResult, error) {
	detections := make([]DetectionResult, len(groups))
	for i, g := range groups {
		d, err := o.detect(ctx, g, hint)
		if err != nil {
			return nil, err
		}
		detections[i] = d
	}
	return detections, nil
}

func (o *Orchestrator) detect(ctx context.Context, g Group, hint *PaperHint) (DetectionResult, error) {
	d, err := o.corpus.FindCandidates(ctx, g.Text(), hint)
	if err != nil {
		if ctx.Err() != nil {
			return DetectionResult{}, fmt.Errorf("%w: question %s: %w", ErrCorpusFailed, g.Base, ctx.Err())
		}
		o.logger.WarnContext(ctx, "corpus lookup failed, treating as miss", "question", g.Base, "error", err)
		return DetectionResult{}, nil
	}
	if d.Match == nil {
		d.Found = false
	}
	return d, nil
}

// poorAdherence reports whether hinted detections matched more than one paper
// or matched the hinted paper for too few groups.
func (o *Orchestrator) poorAdherence(detections []DetectionResult, hint *PaperHint) bool {
	papers := make(map[string]bool)
	adhered := 0
	for _, d := range detections {
		key := d.paperKey()
		if key == "" {
			continue
		}
		papers[key] = true
		if hint.Matches(d.Match.Paper) {
			adhered++
		}
	}

	if len(papers) > 1 {
		return true
	}
	return float64(adhered)/float64(len(detections)) < o.cfg.AdherenceRatio
}

// consensus finds a paper holding the consensus share of all groups and
// re-queries every dissenting or undetected group biased toward it. A rescue
// is kept only when it lands on the dominant paper.
func (o *Orchestrator) consensus(ctx context.Context, groups []Group, detections []DetectionResult) ([]bool, *Paper, error) {
	rescued := make([]bool, len(groups))

	votes := make(map[string]int)
	papers := make(map[string]Paper)
	for _, d := range detections {
		if key := d.paperKey(); key != "" {
			votes[key]++
			papers[key] = d.Match.Paper
		}
	}

	var domKey string
	for key, n := range votes {
		if float64(n)/float64(len(groups)) >= o.cfg.ConsensusRatio {
			domKey = key
			break
		}
	}
	if domKey == "" {
		return rescued, nil, nil
	}
	dominant := papers[domKey]

	for i, g := range groups {
		if detections[i].paperKey() == domKey {
			continue
		}

		d, err := o.detect(ctx, g, dominant.Hint())
		if err != nil {
			return nil, nil, err
		}

		if d.paperKey() != domKey {
			o.logger.InfoContext(ctx, "consensus rescue rejected", "question", g.Base, "paper", dominant.Title)
			continue
		}

		detections[i] = d
		rescued[i] = true
		o.logger.InfoContext(ctx, "consensus rescue accepted", "question", g.Base, "paper", dominant.Title)
	}

	return rescued, &dominant, nil
}
