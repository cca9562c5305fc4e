package grades

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/examiner/pkg/handlers"
	"github.com/JaimeStill/examiner/pkg/routes"
)

// Handler provides HTTP endpoints for grade boundaries.
type Handler struct {
	sys     System
	respond handlers.Responder
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys: sys,
		respond: handlers.Responder{
			Logger:    logger.With("handler", "grade-boundaries"),
			MapStatus: MapHTTPStatus,
		},
	}
}

// Routes returns the route group definition for grade boundary endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/grade-boundaries",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "POST", Pattern: "/resolve", Handler: h.Resolve},
		},
	}
}

// List returns the entries for the board query parameter, optionally
// narrowed to a series.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	board := r.URL.Query().Get("board")
	if board == "" {
		h.respond.Error(w, fmt.Errorf("%w: board query parameter required", ErrInvalidEntry))
		return
	}
	entries, err := h.sys.QueryByBoardAndSeries(r.Context(), board, r.URL.Query().Get("series"))
	h.respond.Result(w, http.StatusOK, entries, err)
}

// Find returns a single entry.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	e, err := h.sys.Find(r.Context(), id)
	h.respond.Result(w, http.StatusOK, e, err)
}

// Create stores a boundary entry.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[CreateCommand](w, r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	e, err := h.sys.Create(r.Context(), cmd)
	h.respond.Result(w, http.StatusCreated, e, err)
}

// Delete removes an entry.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	h.respond.NoContent(w, h.sys.Delete(r.Context(), id))
}

// Resolve grades a score without running the marking pipeline. An
// ungraded resolution is still a 200 carrying its reason.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[Request](w, r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.sys.Resolver().Resolve(r.Context(), req))
}
