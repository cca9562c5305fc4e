package marking

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/examiner/internal/schemes"
	"github.com/JaimeStill/examiner/pkg/handlers"
	"github.com/JaimeStill/examiner/pkg/routes"
)

// ErrProcessingFailed is reported to clients in place of terminal pipeline errors.
var ErrProcessingFailed = errors.New("the submission could not be processed")

// Handler provides the HTTP endpoint for marking submissions.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "marking"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for marking endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/marking",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Mark},
		},
	}
}

// Mark accepts a multipart submission of page images or PDFs under "file[]"
// (or "file") with optional paper hint fields and returns the Outcome.
func (h *Handler) Mark(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	uploads, err := readUploads(r.MultipartForm)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	pages, err := Intake(r.Context(), uploads, h.sys.MaxPages())
	if err != nil {
		h.respondError(w, err)
		return
	}

	sub := Submission{
		ID:    uuid.New(),
		Pages: pages,
		Hint:  HintFromForm(r),
	}

	outcome, err := h.sys.Mark(r.Context(), sub)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, outcome)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	if status == http.StatusUnprocessableEntity {
		h.logger.Error("submission processing failed", "error", err)
		err = ErrProcessingFailed
	}
	handlers.RespondError(w, h.logger, status, err)
}

// HintFromForm reads the optional paper hint fields. It returns nil when
// every field is empty.
func HintFromForm(r *http.Request) *schemes.PaperHint {
	hint := &schemes.PaperHint{
		Title:     strings.TrimSpace(r.FormValue("exam_hint")),
		Board:     strings.TrimSpace(r.FormValue("board")),
		Series:    strings.TrimSpace(r.FormValue("series")),
		Tier:      strings.TrimSpace(r.FormValue("tier")),
		PaperCode: strings.TrimSpace(r.FormValue("paper_code")),
		Subject:   strings.TrimSpace(r.FormValue("subject")),
	}
	if hint.Empty() {
		return nil
	}
	return hint
}

func readUploads(form *multipart.Form) ([]Upload, error) {
	if form == nil {
		return nil, ErrInvalidSubmission
	}

	headers := slices.Concat(form.File["file[]"], form.File["file"])
	if len(headers) == 0 {
		return nil, ErrInvalidSubmission
	}

	uploads := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, ErrInvalidSubmission
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, ErrInvalidSubmission
		}
		uploads = append(uploads, Upload{Filename: fh.Filename, Data: data})
	}
	return uploads, nil
}
