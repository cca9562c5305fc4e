package api

import (
	"github.com/JaimeStill/examiner/internal/config"
	"github.com/JaimeStill/examiner/internal/marking"
	"github.com/JaimeStill/examiner/internal/prompts"
	"github.com/JaimeStill/examiner/internal/providers/agents"
	"github.com/JaimeStill/examiner/internal/providers/gemini"
	"github.com/JaimeStill/examiner/internal/providers/openai"
	"github.com/JaimeStill/examiner/internal/recognition"
)

// newMathRecognizer selects the model that transcribes math regions. It
// returns nil when math recognition is disabled.
func newMathRecognizer(runtime *Runtime, ps prompts.System) recognition.MathRecognizer {
	switch runtime.Providers.Math {
	case config.ProviderAgent:
		return agents.New(runtime.Agent, ps, runtime.Logger)
	case config.ProviderGemini:
		return gemini.New(runtime.Providers.Gemini, ps, runtime.Logger)
	}
	return nil
}

// newMarkingModel selects the model that marks question groups.
func newMarkingModel(runtime *Runtime, ps prompts.System) marking.Model {
	switch runtime.Providers.Marking {
	case config.ProviderOpenAI:
		return openai.New(runtime.Providers.OpenAI, runtime.Logger)
	case config.ProviderGemini:
		return gemini.New(runtime.Providers.Gemini, ps, runtime.Logger)
	}
	return agents.New(runtime.Agent, ps, runtime.Logger)
}
