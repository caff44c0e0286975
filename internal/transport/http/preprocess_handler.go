package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/sakura24999/data-analysis-dashboard/internal/errors"
	"github.com/sakura24999/data-analysis-dashboard/internal/middleware"
	"github.com/sakura24999/data-analysis-dashboard/internal/preprocess"
	"github.com/sakura24999/data-analysis-dashboard/internal/services"
)

// PreprocessHandler applies cleaning steps to the session dataset
type PreprocessHandler struct {
	service      *services.PreprocessService
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPreprocessHandler creates a preprocess handler
func NewPreprocessHandler(service *services.PreprocessService, validator *middleware.Validator,
	logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PreprocessHandler {
	return &PreprocessHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "preprocess_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the preprocess routes
func (h *PreprocessHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/columns", step(h, services.ColumnsConfig))
	r.Post("/missing", step(h, infallible(services.MissingConfig)))
	r.Post("/outliers", step(h, infallible(services.OutliersConfig)))
	r.Post("/scaling", step(h, infallible(services.ScalingConfig)))
	r.Post("/features", step(h, infallible(services.FeaturesConfig)))
	r.Post("/binning", step(h, infallible(services.BinningConfig)))
	r.Post("/encoding", step(h, infallible(services.EncodingConfig)))
	r.Post("/drop", step(h, infallible(services.DropConfig)))

	r.With(ColumnCtx(h.errorHandler)).Get("/outliers/{column}", h.Outliers)
	r.Get("/history", h.History)

	return r
}

func infallible[T any](convert func(T) preprocess.Config) func(T) (preprocess.Config, error) {
	return func(req T) (preprocess.Config, error) { return convert(req), nil }
}

// step decodes a request of type T, converts it and applies it
func step[T any](h *PreprocessHandler, convert func(T) (preprocess.Config, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if err := h.validator.DecodeJSON(r, &req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		cfg, err := convert(req)
		if err != nil {
			h.errorHandler.HandleError(w, r, ToAPIError(err))
			return
		}
		if cfg.IsZero() {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "No preprocessing options selected"))
			return
		}

		resp, err := h.service.Apply(r.Context(), MustSession(r), cfg)
		if err != nil {
			h.errorHandler.HandleError(w, r, ToAPIError(err))
			return
		}
		render.JSON(w, r, resp)
	}
}

// Outliers handles GET /api/preprocess/outliers/{column}
func (h *PreprocessHandler) Outliers(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Outliers(r.Context(), MustSession(r), chi.URLParam(r, "column"))
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}
	render.JSON(w, r, report)
}

// History handles GET /api/preprocess/history
func (h *PreprocessHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.History(r.Context(), MustSession(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}
	render.JSON(w, r, history)
}
