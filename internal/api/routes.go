package api

import (
	"net/http"

	"github.com/JaimeStill/examiner/internal/config"
	"github.com/JaimeStill/examiner/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	groups := []routes.Group{
		domain.Marking.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Schemes.Handler().Routes(),
		domain.Grades.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
	}

	if runtime.Storage != nil {
		groups = append(groups, newPagesHandler(runtime.Storage, runtime.Logger).routes())
	}

	registered := routes.Register(mux, groups...)
	runtime.Logger.Debug("routes registered", "count", len(registered), "patterns", registered)
}
