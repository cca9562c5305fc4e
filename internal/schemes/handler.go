package schemes

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/examiner/pkg/handlers"
	"github.com/JaimeStill/examiner/pkg/pagination"
	"github.com/JaimeStill/examiner/pkg/routes"
)

// Handler provides HTTP endpoints for the question corpus.
type Handler struct {
	sys        System
	respond    handlers.Responder
	pagination pagination.Config
}

// DetectRequest is the body of the detect endpoint.
type DetectRequest struct {
	Text string     `json:"text"`
	Hint *PaperHint `json:"hint,omitempty"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys: sys,
		respond: handlers.Responder{
			Logger:    logger.With("handler", "questions"),
			MapStatus: MapHTTPStatus,
		},
		pagination: pagination,
	}
}

// Routes returns the route group definition for question endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/questions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "POST", Pattern: "/detect", Handler: h.Detect},
		},
	}
}

// List returns a page of questions filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	result, err := h.sys.List(r.Context(), page, FiltersFromQuery(r.URL.Query()))
	h.respond.Result(w, http.StatusOK, result, err)
}

// Find returns a single question with its scheme fragment.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	rec, err := h.sys.Find(r.Context(), id)
	h.respond.Result(w, http.StatusOK, rec, err)
}

// Create adds a question and its scheme fragment to the corpus.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[CreateCommand](w, r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	rec, err := h.sys.Create(r.Context(), cmd)
	h.respond.Result(w, http.StatusCreated, rec, err)
}

// Delete removes a question.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	h.respond.NoContent(w, h.sys.Delete(r.Context(), id))
}

// Detect runs a single corpus lookup for the given question text.
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[DetectRequest](w, r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	result, err := h.sys.FindCandidates(r.Context(), req.Text, req.Hint)
	h.respond.Result(w, http.StatusOK, result, err)
}
