// Package server provides the HTTP API for the report workflow: dashboards,
// stage changes, War Room edits, the wizard, and report rendering.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/strategy-report/internal/backend"
	"github.com/jonathan/strategy-report/internal/editor"
	"github.com/jonathan/strategy-report/internal/export"
	"github.com/jonathan/strategy-report/internal/report"
	"github.com/jonathan/strategy-report/internal/wizard"
	"github.com/jonathan/strategy-report/internal/workflow"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotReleased means the analysis exists but may not be shown to the caller yet.
type ErrNotReleased struct {
	AnalysisID string
}

func (e *ErrNotReleased) Error() string {
	return fmt.Sprintf("analysis %s is not released", e.AnalysisID)
}

// ErrUnavailable means an optional collaborator was not configured.
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation   *ErrValidation
		notReleased  *ErrNotReleased
		unavailable  *ErrUnavailable
		rejected     *workflow.MoveRejectedError
		fieldErr     *editor.FieldError
		indexErr     *editor.IndexError
		stateErr     *wizard.StateError
		pageRange    *report.PageRangeError
		apiErr       *backend.APIError
		genErr       *wizard.GenerationError
		transErr     *workflow.TransitionError
		saveErr      *editor.SaveError
		exportErr    *export.ExportError
		validatorErr validator.ValidationErrors
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation), errors.As(err, &fieldErr), errors.As(err, &indexErr),
		errors.As(err, &validatorErr):
		return http.StatusBadRequest
	case errors.Is(err, backend.ErrNotFound), errors.Is(err, wizard.ErrNoSession),
		errors.As(err, &notReleased), errors.As(err, &pageRange):
		return http.StatusNotFound
	case errors.As(err, &rejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrTransitionInFlight), errors.Is(err, workflow.ErrAutomaticTransition),
		errors.Is(err, backend.ErrVersionConflict),
		errors.Is(err, workflow.ErrNothingSelected), errors.Is(err, editor.ErrNotEditable),
		errors.Is(err, wizard.ErrStepInFlight), errors.Is(err, wizard.ErrCompleted),
		errors.As(err, &stateErr):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr), errors.As(err, &genErr), errors.As(err, &transErr), errors.As(err, &saveErr),
		errors.As(err, &exportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
