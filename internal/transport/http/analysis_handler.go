package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/sakura24999/data-analysis-dashboard/internal/errors"
	"github.com/sakura24999/data-analysis-dashboard/internal/middleware"
	"github.com/sakura24999/data-analysis-dashboard/internal/services"
	"github.com/sakura24999/data-analysis-dashboard/internal/session"
	api "github.com/sakura24999/data-analysis-dashboard/pkg/contracts/api/v1"
)

// AnalysisHandler runs the advanced analyses
type AnalysisHandler struct {
	service      *services.AnalysisService
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates an analysis handler
func NewAnalysisHandler(service *services.AnalysisService, validator *middleware.Validator,
	logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/timeseries", analyze(h, h.service.TimeSeries))
	r.Post("/correlation", analyze(h, h.service.Correlation))
	r.Post("/cluster", analyze(h, h.service.Cluster))
	r.Post("/distribution", analyze(h, h.service.Distribution))
	r.Get("/results", h.Results)

	return r
}

type analysisFunc[T any] func(context.Context, *session.Session, T) (api.AnalysisResponse, error)

func analyze[T any](h *AnalysisHandler, fn analysisFunc[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if err := h.validator.DecodeJSON(r, &req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		resp, err := fn(r.Context(), MustSession(r), req)
		if err != nil {
			h.errorHandler.HandleError(w, r, ToAPIError(err))
			return
		}
		render.JSON(w, r, resp)
	}
}

// Results handles GET /api/analysis/results
func (h *AnalysisHandler) Results(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Results(r.Context(), MustSession(r)))
}
