package handlers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/services"
)

const requestTimeout = 30 * time.Second

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	opts, ds, err := h.analytics.Options(ctx)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	errors.WriteSuccess(w, map[string]any{
		"dataset":  ds.Name,
		"uploaded": ds.Uploaded,
		"records":  ds.Len(),
		"options":  opts,
	})
}

// HandleDashboard runs the pipeline for the selection in the query string.
// An empty result is still a success, flagged empty and carrying the warning.
func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view, err := h.analytics.Dashboard(ctx, ParseSelection(r.URL.Query()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, view, map[string]string{
		"Cache-Control": "no-store",
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}

// writeServiceError maps pipeline errors onto API error codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	requestID := observability.GetRequestID(r.Context())

	switch {
	case services.IsLoadError(err):
		errors.WriteError(w, logger, errors.Unprocessable(err, "Could not load dataset"), requestID)
	case stderrors.Is(err, services.ErrEmptyResult):
		errors.WriteError(w, logger, errors.EmptyResult(services.EmptyResultWarning), requestID)
	case stderrors.Is(err, context.DeadlineExceeded):
		errors.WriteError(w, logger, errors.Unavailable("Request timed out"), requestID)
	default:
		errors.WriteError(w, logger, errors.InternalWrap(err, "Dashboard failed"), requestID)
	}
}
