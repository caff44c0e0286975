package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/sakura24999/data-analysis-dashboard/internal/errors"
	"github.com/sakura24999/data-analysis-dashboard/internal/files"
	"github.com/sakura24999/data-analysis-dashboard/internal/services"
)

// ArchiveHandler serves the reports saved to disk
type ArchiveHandler struct {
	archive      *services.ReportArchive
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewArchiveHandler creates a saved-report handler
func NewArchiveHandler(archive *services.ReportArchive, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ArchiveHandler {
	return &ArchiveHandler{
		archive:      archive,
		logger:       logger.With(slog.String("component", "archive_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the saved report routes, mounted at /api/reports
func (h *ArchiveHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{name}", h.Download)
	r.Delete("/{name}", h.Delete)
	return r
}

// savedReports is the body of GET /api/reports
type savedReports struct {
	Reports []files.FileInfo `json:"reports"`
	Count   int              `json:"count"`
}

// List handles GET /api/reports
func (h *ArchiveHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.archive.List(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, savedReports{Reports: reports, Count: len(reports)})
}

// Download handles GET /api/reports/{name}
func (h *ArchiveHandler) Download(w http.ResponseWriter, r *http.Request) {
	f, info, err := h.archive.Open(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}
	defer f.Close()

	attachment(w, info.Name, ContentTypeMarkdown, int(info.Size))
	w.Header().Set("Last-Modified", info.ModTime.UTC().Format(http.TimeFormat))
	if _, err := io.Copy(w, f); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write saved report",
			slog.String("name", info.Name),
			slog.String("error", err.Error()))
	}
}

// Delete handles DELETE /api/reports/{name}
func (h *ArchiveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.archive.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
