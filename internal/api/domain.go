package api

import (
	"github.com/JaimeStill/examiner/internal/clustering"
	"github.com/JaimeStill/examiner/internal/grades"
	"github.com/JaimeStill/examiner/internal/marking"
	"github.com/JaimeStill/examiner/internal/matching"
	"github.com/JaimeStill/examiner/internal/mathregion"
	"github.com/JaimeStill/examiner/internal/prompts"
	"github.com/JaimeStill/examiner/internal/providers/tesseract"
	"github.com/JaimeStill/examiner/internal/recognition"
	"github.com/JaimeStill/examiner/internal/results"
	"github.com/JaimeStill/examiner/internal/schemes"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Schemes schemes.System
	Grades  grades.System
	Prompts prompts.System
	Marking marking.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()
	pipeline := runtime.Pipeline

	schemesSystem := schemes.New(
		db,
		matching.New(pipeline.Matching),
		runtime.Logger,
		runtime.Pagination,
	)

	gradesSystem := grades.New(db, runtime.Logger)

	promptsSystem := prompts.New(
		db,
		runtime.Logger,
		runtime.Pagination,
	)

	mathRecognizer := newMathRecognizer(runtime, promptsSystem)

	orchestrator := recognition.NewOrchestrator(
		tesseract.New(runtime.Providers.Tesseract),
		mathRecognizer,
		clustering.New(pipeline.Clustering, runtime.Logger),
		recognition.DefaultPasses(pipeline.Recognition),
		runtime.Logger,
	)

	markingRuntime := &marking.Runtime{
		Recognition: orchestrator,
		Math:        mathregion.New(mathRecognizer, pipeline.Math, runtime.Logger),
		Schemes:     schemes.NewOrchestrator(schemesSystem, pipeline.Schemes, runtime.Logger),
		Parser:      results.NewParser(pipeline.Results, runtime.Logger),
		Grades:      gradesSystem.Resolver(),
		Model:       newMarkingModel(runtime, promptsSystem),
		Prompts:     promptsSystem,
		Storage:     runtime.Storage,
		Logger:      runtime.Logger.With("system", "marking"),
	}

	return &Domain{
		Schemes: schemesSystem,
		Grades:  gradesSystem,
		Prompts: promptsSystem,
		Marking: marking.New(markingRuntime, pipeline.Marking),
	}
}
