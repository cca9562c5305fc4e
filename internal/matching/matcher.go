package matching

import (
	"fmt"

	"github.com/JaimeStill/examiner/pkg/settings"
)

// Config holds the acceptance threshold for question matches.
type Config struct {
	Threshold float64 `toml:"threshold"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Threshold string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	settings.Merge(&c.Threshold, overlay.Threshold)
}

func (c *Config) loadDefaults() {
	settings.Default(&c.Threshold, 0.5)
}

func (c *Config) loadEnv(env *Env) {
	settings.Env(&c.Threshold, env.Threshold)
}

func (c *Config) validate() error {
	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1]: %v", c.Threshold)
	}
	return nil
}

// Matcher accepts question matches scoring at or above its threshold.
type Matcher struct {
	threshold float64
}

// New creates a Matcher from a finalized Config.
func New(cfg Config) *Matcher {
	return &Matcher{threshold: cfg.Threshold}
}

// Threshold returns the acceptance threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match scores a against b and reports whether the match is accepted.
func (m *Matcher) Match(a, b string) (Score, bool) {
	s := Similarity(a, b)
	return s, s.Final >= m.threshold
}

// Best returns the index and score of the candidate most similar to query.
// The index is -1 when no candidate reaches the threshold.
func (m *Matcher) Best(query string, candidates []string) (int, Score) {
	best, bestScore := -1, Score{}
	for i, c := range candidates {
		s := Similarity(query, c)
		if s.Final < m.threshold {
			continue
		}
		if best < 0 || s.Final > bestScore.Final {
			best, bestScore = i, s
		}
	}
	return best, bestScore
}
