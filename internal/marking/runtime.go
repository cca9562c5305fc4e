package marking

import (
	"log/slog"

	"github.com/JaimeStill/examiner/internal/grades"
	"github.com/JaimeStill/examiner/internal/mathregion"
	"github.com/JaimeStill/examiner/internal/prompts"
	"github.com/JaimeStill/examiner/internal/recognition"
	"github.com/JaimeStill/examiner/internal/results"
	"github.com/JaimeStill/examiner/internal/schemes"
	"github.com/JaimeStill/examiner/pkg/storage"
)

// Runtime bundles the collaborators that pipeline nodes require.
// Storage is optional; a nil Storage skips page archival.
type Runtime struct {
	Recognition *recognition.Orchestrator
	Math        *mathregion.Detector
	Schemes     *schemes.Orchestrator
	Parser      *results.Parser
	Grades      *grades.Resolver
	Model       Model
	Prompts     prompts.System
	Storage     storage.System
	Logger      *slog.Logger
}
