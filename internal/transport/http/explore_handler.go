package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/sakura24999/data-analysis-dashboard/internal/errors"
	"github.com/sakura24999/data-analysis-dashboard/internal/middleware"
	"github.com/sakura24999/data-analysis-dashboard/internal/services"
	api "github.com/sakura24999/data-analysis-dashboard/pkg/contracts/api/v1"
)

// ExploreHandler serves the read-only exploration queries
type ExploreHandler struct {
	service      *services.ExploreService
	validator    *middleware.Validator
	query        *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExploreHandler creates an explore handler
func NewExploreHandler(service *services.ExploreService, validator *middleware.Validator,
	logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExploreHandler {
	return &ExploreHandler{
		service:      service,
		validator:    validator,
		query:        middleware.NewQueryParamValidator(errorHandler),
		logger:       logger.With(slog.String("component", "explore_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the explore routes
func (h *ExploreHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.Summary)
	r.With(ColumnCtx(h.errorHandler)).Get("/value-counts/{column}", h.ValueCounts)
	r.Post("/correlation", h.Correlation)
	r.Post("/chart", h.Chart)

	return r
}

// ColumnCtx rejects requests whose {column} URL parameter is empty
func ColumnCtx(errorHandler *apierrors.ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if chi.URLParam(r, "column") == "" {
				errorHandler.HandleError(w, r, apierrors.ErrValidation("column", "Column name is required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Summary handles GET /api/explore/summary
func (h *ExploreHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), MustSession(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}
	render.JSON(w, r, summary)
}

// ValueCounts handles GET /api/explore/value-counts/{column}?top=
func (h *ExploreHandler) ValueCounts(w http.ResponseWriter, r *http.Request) {
	top, ok := h.query.ValidateInt(w, r, "top", 1, 1000, 20)
	if !ok {
		return
	}

	counts, err := h.service.ValueCounts(r.Context(), MustSession(r), chi.URLParam(r, "column"), top)
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}
	render.JSON(w, r, counts)
}

// Correlation handles POST /api/explore/correlation
func (h *ExploreHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	var req api.CorrelationRequest
	if r.ContentLength != 0 {
		if err := h.validator.DecodeJSON(r, &req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	}

	matrix, err := h.service.Correlation(r.Context(), MustSession(r), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}
	render.JSON(w, r, matrix)
}

// Chart handles POST /api/explore/chart
func (h *ExploreHandler) Chart(w http.ResponseWriter, r *http.Request) {
	var req api.ChartRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	chart, err := h.service.Chart(r.Context(), MustSession(r), services.ChartRequest(req))
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}
	render.JSON(w, r, chart)
}
