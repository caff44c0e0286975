package http

import (
	"bytes"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/sakura24999/data-analysis-dashboard/internal/errors"
	"github.com/sakura24999/data-analysis-dashboard/internal/middleware"
	"github.com/sakura24999/data-analysis-dashboard/internal/services"
	api "github.com/sakura24999/data-analysis-dashboard/pkg/contracts/api/v1"
)

// ContentTypeMarkdown is the media type of generated reports
const ContentTypeMarkdown = "text/markdown; charset=utf-8"

// ReportHandler generates reports and dataset downloads
type ReportHandler struct {
	reports      *services.ReportService
	datasets     *services.DatasetService
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a report handler
func NewReportHandler(reports *services.ReportService, datasets *services.DatasetService, validator *middleware.Validator,
	logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		reports:      reports,
		datasets:     datasets,
		validator:    validator,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report route, mounted at /api/report
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Generate)
	return r
}

// ExportRoutes returns the download route, mounted at /api/export
func (h *ReportHandler) ExportRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{format}", h.Export)
	return r
}

func attachment(w http.ResponseWriter, filename, contentType string, size int) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(size))
	w.Header().Set("Cache-Control", "no-store")
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// Generate handles POST /api/report. The Markdown document is returned as
// a download unless the client accepts JSON.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req api.ReportRequest
	if r.ContentLength != 0 {
		if err := h.validator.DecodeJSON(r, &req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	}

	res, err := h.reports.Generate(r.Context(), MustSession(r), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}

	if wantsJSON(r) {
		render.JSON(w, r, res)
		return
	}
	attachment(w, res.Filename, ContentTypeMarkdown, len(res.Content))
	if _, err := w.Write([]byte(res.Content)); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write report",
			slog.String("filename", res.Filename),
			slog.String("error", err.Error()))
	}
}

// Export handles GET /api/export/{format}
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	// Buffered so a failed export can still be answered with a problem document
	var buf bytes.Buffer
	filename, contentType, err := h.datasets.Export(r.Context(), MustSession(r), format, &buf)
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}

	attachment(w, filename, contentType, buf.Len())
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write export",
			slog.String("format", format),
			slog.String("error", err.Error()))
	}
}
