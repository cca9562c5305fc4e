package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/JaimeStill/examiner/internal/marking"
	"github.com/JaimeStill/examiner/pkg/handlers"
	"github.com/JaimeStill/examiner/pkg/routes"
	"github.com/JaimeStill/examiner/pkg/storage"
)

// pagesHandler serves the page images archived for a submission.
type pagesHandler struct {
	store   storage.System
	respond handlers.Responder
}

func newPagesHandler(store storage.System, logger *slog.Logger) *pagesHandler {
	return &pagesHandler{
		store: store,
		respond: handlers.Responder{
			Logger:    logger.With("handler", "pages"),
			MapStatus: storage.MapHTTPStatus,
		},
	}
}

func (h *pagesHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/submissions/{id}/pages",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list},
			{Method: "GET", Pattern: "/{n}", Handler: h.download},
		},
	}
}

func (h *pagesHandler) list(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}

	keys, err := h.store.List(r.Context(), marking.StoragePrefix(id))
	if err == nil && len(keys) == 0 {
		err = fmt.Errorf("%w: no pages archived for %s", storage.ErrNotFound, id)
	}
	h.respond.Result(w, http.StatusOK, keys, err)
}

func (h *pagesHandler) download(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r)
	if err != nil {
		h.respond.Error(w, err)
		return
	}

	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < 1 {
		h.respond.Error(w, fmt.Errorf("%w: page %q", storage.ErrInvalidKey, r.PathValue("n")))
		return
	}

	key := marking.StorageKey(id, n)

	blob, err := h.store.Download(r.Context(), key)
	if err != nil {
		h.respond.Error(w, err)
		return
	}
	defer blob.Body.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, blob.Body)
}
