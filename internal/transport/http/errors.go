package http

import (
	"errors"
	"net/http"

	"github.com/sakura24999/data-analysis-dashboard/internal/analysis"
	"github.com/sakura24999/data-analysis-dashboard/internal/charts"
	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	apierrors "github.com/sakura24999/data-analysis-dashboard/internal/errors"
	"github.com/sakura24999/data-analysis-dashboard/internal/explore"
	"github.com/sakura24999/data-analysis-dashboard/internal/files"
	"github.com/sakura24999/data-analysis-dashboard/internal/loader"
	"github.com/sakura24999/data-analysis-dashboard/internal/preprocess"
	"github.com/sakura24999/data-analysis-dashboard/internal/services"
	"github.com/sakura24999/data-analysis-dashboard/internal/session"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Ordered: the first matching sentinel wins.
var errorMappings = []errorMapping{
	{services.ErrNoResult, http.StatusConflict, "NO_RESULT"},
	{dataset.ErrColumnNotFound, http.StatusNotFound, apierrors.CodeColumnNotFound},
	{files.ErrNotFound, http.StatusNotFound, apierrors.CodeNotFound},
	{services.ErrUploadTooLarge, http.StatusRequestEntityTooLarge, apierrors.CodePayloadTooLarge},

	{dataset.ErrNotNumeric, http.StatusUnprocessableEntity, apierrors.CodeNotNumeric},
	{dataset.ErrEmptyDataset, http.StatusUnprocessableEntity, apierrors.CodeEmptyDataset},
	{dataset.ErrInsufficientData, http.StatusUnprocessableEntity, apierrors.CodeInsufficientData},
	{dataset.ErrLengthMismatch, http.StatusUnprocessableEntity, apierrors.CodeInvalidRequest},
	{charts.ErrNoData, http.StatusUnprocessableEntity, apierrors.CodeInsufficientData},

	{preprocess.ErrInvalidMethod, http.StatusBadRequest, apierrors.CodeInvalidMethod},
	{analysis.ErrInvalidParameter, http.StatusBadRequest, apierrors.CodeValidationFailed},
	{explore.ErrInvalidChart, http.StatusBadRequest, apierrors.CodeValidationFailed},
	{charts.ErrUnsupported, http.StatusBadRequest, apierrors.CodeValidationFailed},
	{dataset.ErrDuplicateColumn, http.StatusBadRequest, apierrors.CodeValidationFailed},
	{dataset.ErrInvalidName, http.StatusBadRequest, apierrors.CodeValidationFailed},
	{loader.ErrUnsupportedFormat, http.StatusBadRequest, apierrors.CodeUnsupportedFormat},
	{loader.ErrUnsupportedEncoding, http.StatusBadRequest, apierrors.CodeUnsupportedFormat},
	{loader.ErrNoHeader, http.StatusBadRequest, apierrors.CodeUnsupportedFormat},
	{services.ErrUnsupportedExtension, http.StatusBadRequest, apierrors.CodeUnsupportedFormat},
	{services.ErrInvalidFormat, http.StatusBadRequest, apierrors.CodeUnsupportedFormat},
	{files.ErrInvalidName, http.StatusBadRequest, apierrors.CodeInvalidRequest},
	{loader.ErrUnknownSample, http.StatusBadRequest, apierrors.CodeValidationFailed},
	{services.ErrInvalidInput, http.StatusBadRequest, apierrors.CodeInvalidRequest},
}

// ToAPIError converts a service error into an API error carrying the
// status code for its domain sentinel. Errors that are already API errors,
// context errors and unknown errors are returned unchanged.
func ToAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	if errors.Is(err, session.ErrNoDataset) {
		return apierrors.ErrNoDataset
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return apierrors.New(m.status, m.code, err.Error())
		}
	}
	return err
}
