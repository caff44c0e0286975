package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/sakura24999/data-analysis-dashboard/internal/errors"
	"github.com/sakura24999/data-analysis-dashboard/internal/middleware"
	"github.com/sakura24999/data-analysis-dashboard/internal/services"
	api "github.com/sakura24999/data-analysis-dashboard/pkg/contracts/api/v1"
)

// ChartHandler serves rendered PNG charts
type ChartHandler struct {
	service      *services.ChartService
	validator    *middleware.Validator
	query        *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartHandler creates a chart handler
func NewChartHandler(service *services.ChartService, validator *middleware.Validator,
	logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		validator:    validator,
		query:        middleware.NewQueryParamValidator(errorHandler),
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{kind}", h.Render)
	return r
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// chartRequest reads an exploration chart request from the query string
func (h *ChartHandler) chartRequest(w http.ResponseWriter, r *http.Request, kind string) (api.ChartRequest, bool) {
	q := r.URL.Query()
	req := api.ChartRequest{
		Kind:    kind,
		X:       q.Get("x"),
		Y:       splitList(q.Get("y")),
		Agg:     q.Get("agg"),
		Columns: splitList(q.Get("columns")),
	}

	var ok bool
	if req.TopN, ok = h.query.ValidateInt(w, r, "top_n", 1, 100, 0); !ok {
		return req, false
	}
	if req.Bins, ok = h.query.ValidateInt(w, r, "bins", 2, 200, 0); !ok {
		return req, false
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return req, false
	}
	return req, true
}

// Render handles GET /api/charts/{kind}. Analysis kinds draw the stored
// result; the other kinds take their columns from the query string
// (x, y, agg, top_n, bins, columns).
func (h *ChartHandler) Render(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	sess := MustSession(r)

	var buf bytes.Buffer
	var err error
	if services.IsAnalysisChart(kind) {
		err = h.service.RenderAnalysis(r.Context(), sess, kind, &buf)
	} else {
		req, ok := h.chartRequest(w, r, kind)
		if !ok {
			return
		}
		err = h.service.RenderExplore(r.Context(), sess, services.ChartRequest(req), &buf)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, ToAPIError(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.DebugContext(r.Context(), "Failed to write chart",
			slog.String("kind", kind),
			slog.String("error", err.Error()))
	}
}
