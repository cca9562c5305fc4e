package marking

import (
	"github.com/JaimeStill/examiner/internal/prompts"
	"github.com/JaimeStill/examiner/internal/schemes"
)

// StageFor selects the prompt stage of a scheme. Official schemes are marked
// strictly and generic rubrics permissively.
func StageFor(scheme schemes.NormalizedScheme) prompts.Stage {
	if scheme.IsGeneric {
		return prompts.StageMarkGeneric
	}
	return prompts.StageMark
}
