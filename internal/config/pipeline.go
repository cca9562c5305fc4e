package config

import (
	"github.com/JaimeStill/examiner/internal/clustering"
	"github.com/JaimeStill/examiner/internal/marking"
	"github.com/JaimeStill/examiner/internal/matching"
	"github.com/JaimeStill/examiner/internal/mathregion"
	"github.com/JaimeStill/examiner/internal/recognition"
	"github.com/JaimeStill/examiner/internal/results"
	"github.com/JaimeStill/examiner/internal/schemes"
)

var recognitionEnv = &recognition.Env{
	MinWidth:      "EXAMINER_RECOGNITION_MIN_WIDTH",
	SauvolaK:      "EXAMINER_RECOGNITION_SAUVOLA_K",
	SauvolaWindow: "EXAMINER_RECOGNITION_SAUVOLA_WINDOW",
}

var clusteringEnv = &clustering.Env{
	Radius:             "EXAMINER_CLUSTERING_RADIUS",
	MinPoints:          "EXAMINER_CLUSTERING_MIN_POINTS",
	MaxMergeIterations: "EXAMINER_CLUSTERING_MAX_MERGE_ITERATIONS",
	FusionOverlap:      "EXAMINER_CLUSTERING_FUSION_OVERLAP",
}

var mathEnv = &mathregion.Env{
	Threshold:      "EXAMINER_MATH_THRESHOLD",
	SkipConfidence: "EXAMINER_MATH_SKIP_CONFIDENCE",
	Delay:          "EXAMINER_MATH_DELAY",
}

var matchingEnv = &matching.Env{
	Threshold: "EXAMINER_MATCHING_THRESHOLD",
}

var schemesEnv = &schemes.Env{
	ConsensusRatio: "EXAMINER_SCHEMES_CONSENSUS_RATIO",
	DefaultMarks:   "EXAMINER_SCHEMES_DEFAULT_MARKS",
}

var resultsEnv = &results.Env{
	MaxMarkerSize: "EXAMINER_RESULTS_MAX_MARKER_SIZE",
}

var markingEnv = &marking.Env{
	MaxPages: "EXAMINER_MARKING_MAX_PAGES",
	Timeout:  "EXAMINER_MARKING_TIMEOUT",
}

// PipelineConfig holds the tuning for each marking pipeline stage.
type PipelineConfig struct {
	Recognition recognition.Config `toml:"recognition"`
	Clustering  clustering.Config  `toml:"clustering"`
	Math        mathregion.Config  `toml:"math"`
	Matching    matching.Config    `toml:"matching"`
	Schemes     schemes.Config     `toml:"schemes"`
	Results     results.Config     `toml:"results"`
	Marking     marking.Config     `toml:"marking"`
}

// Finalize finalizes every stage config with its environment mapping.
func (c *PipelineConfig) Finalize() error {
	return finalizeAll(
		section{"recognition", func() error { return c.Recognition.Finalize(recognitionEnv) }},
		section{"clustering", func() error { return c.Clustering.Finalize(clusteringEnv) }},
		section{"math", func() error { return c.Math.Finalize(mathEnv) }},
		section{"matching", func() error { return c.Matching.Finalize(matchingEnv) }},
		section{"schemes", func() error { return c.Schemes.Finalize(schemesEnv) }},
		section{"results", func() error { return c.Results.Finalize(resultsEnv) }},
		section{"marking", func() error { return c.Marking.Finalize(markingEnv) }},
	)
}

// Merge overwrites non-zero fields from overlay across stage configs.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	c.Recognition.Merge(&overlay.Recognition)
	c.Clustering.Merge(&overlay.Clustering)
	c.Math.Merge(&overlay.Math)
	c.Matching.Merge(&overlay.Matching)
	c.Schemes.Merge(&overlay.Schemes)
	c.Results.Merge(&overlay.Results)
	c.Marking.Merge(&overlay.Marking)
}
