package config

import (
	"fmt"
	"slices"

	"github.com/JaimeStill/examiner/internal/providers/gemini"
	"github.com/JaimeStill/examiner/internal/providers/openai"
	"github.com/JaimeStill/examiner/internal/providers/tesseract"
	"github.com/JaimeStill/examiner/pkg/settings"
)

// Provider names accepted for the math and marking model selections.
const (
	ProviderAgent  = "agent"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

var (
	mathProviders    = []string{ProviderAgent, ProviderGemini, ProviderNone}
	markingProviders = []string{ProviderAgent, ProviderOpenAI, ProviderGemini}
)

const (
	EnvProvidersMath    = "EXAMINER_PROVIDERS_MATH"
	EnvProvidersMarking = "EXAMINER_PROVIDERS_MARKING"
)

var tesseractEnv = &tesseract.Env{
	Languages: "EXAMINER_TESSERACT_LANGUAGES",
	DPI:       "EXAMINER_TESSERACT_DPI",
	Level:     "EXAMINER_TESSERACT_LEVEL",
}

var openaiEnv = &openai.Env{
	BaseURL: "EXAMINER_OPENAI_BASE_URL",
	APIKey:  "EXAMINER_OPENAI_API_KEY",
	Model:   "EXAMINER_OPENAI_MODEL",
}

var geminiEnv = &gemini.Env{
	APIKey: "EXAMINER_GEMINI_API_KEY",
	Model:  "EXAMINER_GEMINI_MODEL",
}

// ProvidersConfig selects the model backing each model-driven stage and
// holds the settings for every provider.
type ProvidersConfig struct {
	Math      string           `toml:"math"`
	Marking   string           `toml:"marking"`
	Tesseract tesseract.Config `toml:"tesseract"`
	OpenAI    openai.Config    `toml:"openai"`
	Gemini    gemini.Config    `toml:"gemini"`
}

// Finalize applies defaults and environment overrides, checks that each
// stage names a provider able to serve it, then finalizes every provider.
func (c *ProvidersConfig) Finalize() error {
	settings.Default(&c.Math, ProviderAgent)
	settings.Default(&c.Marking, ProviderAgent)
	settings.Env(&c.Math, EnvProvidersMath)
	settings.Env(&c.Marking, EnvProvidersMarking)

	if !slices.Contains(mathProviders, c.Math) {
		return fmt.Errorf("unsupported math provider: %s", c.Math)
	}
	if !slices.Contains(markingProviders, c.Marking) {
		return fmt.Errorf("unsupported marking provider: %s", c.Marking)
	}

	return finalizeAll(
		section{"tesseract", func() error { return c.Tesseract.Finalize(tesseractEnv) }},
		section{"openai", func() error { return c.OpenAI.Finalize(openaiEnv) }},
		section{"gemini", func() error { return c.Gemini.Finalize(geminiEnv) }},
	)
}

// Merge overwrites non-zero fields from overlay.
func (c *ProvidersConfig) Merge(overlay *ProvidersConfig) {
	settings.Merge(&c.Math, overlay.Math)
	settings.Merge(&c.Marking, overlay.Marking)

	c.Tesseract.Merge(&overlay.Tesseract)
	c.OpenAI.Merge(&overlay.OpenAI)
	c.Gemini.Merge(&overlay.Gemini)
}
