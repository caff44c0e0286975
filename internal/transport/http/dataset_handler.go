package http

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/sakura24999/data-analysis-dashboard/internal/config"
	apierrors "github.com/sakura24999/data-analysis-dashboard/internal/errors"
	"github.com/sakura24999/data-analysis-dashboard/internal/middleware"
	"github.com/sakura24999/data-analysis-dashboard/internal/services"
	api "github.com/sakura24999/data-analysis-dashboard/pkg/contracts/api/v1"
)

// multipart framing allowance on top of the file size limit
const formOverhead = 1 << 20

// DatasetHandler handles loading and inspecting the session dataset
type DatasetHandler struct {
	service      *services.DatasetService
	validator    *middleware.Validator
	query        *middleware.QueryParamValidator
	maxUpload    int64
	previewRows  int
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a dataset handler
func NewDatasetHandler(service *services.DatasetService, cfg *config.Config, validator *middleware.Validator,
	logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		validator:    validator,
		query:        middleware.NewQueryParamValidator(errorHandler),
		maxUpload:    cfg.Upload.MaxBytes(),
		previewRows:  cfg.Analysis.PreviewRows,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.Info)
	r.Get("/preview", h.Preview)
	r.Get("/samples", h.Samples)
	r.Post("/upload", h.Upload)
	r.Post("/sheets", h.Sheets)
	r.Post("/sample", h.LoadSample)
	r.Post("/reset", h.Reset)

	return r
}

// formFile reads the "file" part of a multipart upload. On failure the
// problem response is already written.
func (h *DatasetHandler) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(http.StatusRequestEntityTooLarge,
				apierrors.CodePayloadTooLarge, "Upload exceeds the configured size limit",
				map[string]interface{}{"max_size": h.maxUpload}))
		case errors.Is(err, http.ErrMissingFile):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A file is required"))
		default:
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		}
		return nil, nil, false
	}
	return file, header, true
}

// Upload handles POST /api/dataset/upload
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sess := MustSession(r)

	file, header, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	req := api.UploadRequest{
		Filename:  header.Filename,
		Encoding:  r.FormValue("encoding"),
		Delimiter: r.FormValue("delimiter"),
		Sheet:     r.FormValue("sheet"),
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	info, err := h.service.Upload(r.Context(), sess, file, req)
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "Dataset uploaded",
		slog.String("filename", req.Filename),
		slog.Int64("size", header.Size),
		slog.Int("rows", info.Rows),
		slog.Int("cols", info.Cols))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, info)
}

// Sheets handles POST /api/dataset/sheets
func (h *DatasetHandler) Sheets(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	sheets, err := h.service.Sheets(r.Context(), header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}
	render.JSON(w, r, sheets)
}

// LoadSample handles POST /api/dataset/sample
func (h *DatasetHandler) LoadSample(w http.ResponseWriter, r *http.Request) {
	sess := MustSession(r)

	var req api.SampleRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	info, err := h.service.LoadSample(r.Context(), sess, req.Name)
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, info)
}

// Samples handles GET /api/dataset/samples
func (h *DatasetHandler) Samples(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Samples())
}

// Info handles GET /api/dataset
func (h *DatasetHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context(), MustSession(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}
	render.JSON(w, r, info)
}

// Preview handles GET /api/dataset/preview?rows=
func (h *DatasetHandler) Preview(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.query.ValidateInt(w, r, "rows", 1, 1000, h.previewRows)
	if !ok {
		return
	}

	preview, err := h.service.Preview(r.Context(), MustSession(r), rows)
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}
	render.JSON(w, r, preview)
}

// Reset handles POST /api/dataset/reset
func (h *DatasetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Reset(r.Context(), MustSession(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}
	render.JSON(w, r, info)
}
