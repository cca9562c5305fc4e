package prompts

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/examiner/pkg/handlers"
	"github.com/JaimeStill/examiner/pkg/pagination"
	"github.com/JaimeStill/examiner/pkg/routes"
)

// Handler serves prompt overrides and the effective text of each stage.
type Handler struct {
	sys        System
	respond    handlers.Responder
	pagination pagination.Config
}

// SearchRequest is the body of the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// StageContent pairs a stage with one of its prompt texts.
type StageContent struct {
	Stage   Stage  `json:"stage"`
	Content string `json:"content"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys: sys,
		respond: handlers.Responder{
			Logger:    logger.With("handler", "prompts"),
			MapStatus: MapHTTPStatus,
		},
		pagination: pagination,
	}
}

// Routes returns the route group definition for prompt endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "GET", Pattern: "/stages", Handler: h.Stages},
			{Method: "GET", Pattern: "/{stage}/instructions", Handler: h.stageText(h.sys.Instructions)},
			{Method: "GET", Pattern: "/{stage}/spec", Handler: h.stageText(h.sys.Spec)},
			{Method: "GET", Pattern: "/{stage}/composed", Handler: h.stageText(h.sys.Composed)},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "POST", Pattern: "/{id}/activate", Handler: h.toggle(h.sys.Activate)},
			{Method: "POST", Pattern: "/{id}/deactivate", Handler: h.toggle(h.sys.Deactivate)},
		},
	}
}

// List returns a page of prompts filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	result, err := h.sys.List(r.Context(), page, FiltersFromQuery(r.URL.Query()))
	h.respond.Result(w, http.StatusOK, result, err)
}

// Search is List with the page and filters taken from a JSON body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[SearchRequest](w, r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	h.respond.Result(w, http.StatusOK, result, err)
}

// Stages lists the stages that accept overrides.
func (h *Handler) Stages(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Stages())
}

// Find returns a single prompt.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	p, err := h.sys.Find(r.Context(), id)
	h.respond.Result(w, http.StatusOK, p, err)
}

// Create stores a new, inactive override.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[CreateCommand](w, r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	p, err := h.sys.Create(r.Context(), cmd)
	h.respond.Result(w, http.StatusCreated, p, err)
}

// Update replaces an override's fields. Its active flag is unchanged.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	cmd, err := handlers.DecodeJSON[UpdateCommand](w, r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	p, err := h.sys.Update(r.Context(), id, cmd)
	h.respond.Result(w, http.StatusOK, p, err)
}

// Delete removes an override.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	h.respond.NoContent(w, h.sys.Delete(r.Context(), id))
}

func (h *Handler) stageText(fn func(context.Context, Stage) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stage, err := ParseStage(r.PathValue("stage"))
		if err != nil {
			h.respond.Error(w, err)
			return
		}
		text, err := fn(r.Context(), stage)
		h.respond.Result(w, http.StatusOK, StageContent{Stage: stage, Content: text}, err)
	}
}

func (h *Handler) toggle(fn func(context.Context, uuid.UUID) (*Prompt, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := handlers.PathID(r)
		if err != nil {
			h.respond.Error(w, err)
			return
		}
		p, err := fn(r.Context(), id)
		h.respond.Result(w, http.StatusOK, p, err)
	}
}
