package handlers

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"superstore-dashboard/internal/charts"
	"superstore-dashboard/internal/errors"
	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/services"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePNG  = "image/png"
)

// ExportHandlers serve the filtered rows as downloads and the aggregates as
// chart images.
type ExportHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewExportHandlers(analytics *services.Analytics, logger *slog.Logger) *ExportHandlers {
	return &ExportHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *ExportHandlers) HandleCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, services.ExportCSVFilename, contentTypeCSV, services.WriteCSV)
}

func (h *ExportHandlers) HandleXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, services.ExportXLSXFilename, contentTypeXLSX, services.WriteXLSX)
}

func (h *ExportHandlers) export(w http.ResponseWriter, r *http.Request, filename, contentType string,
	write func(io.Writer, *models.Dataset) error,
) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	filtered, err := h.analytics.Filtered(ctx, ParseSelection(r.URL.Query()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	// Encode fully before writing headers so a failure still gets a JSON error.
	var buf bytes.Buffer
	if err := write(&buf, filtered); err != nil {
		writeServiceError(w, r, h.logger, fmt.Errorf("encode %s: %w", filename, err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("export write failed",
			"file", filename,
			"error", err,
			"request_id", observability.GetRequestID(r.Context()))
	}

	h.logger.Info("filtered data exported",
		"file", filename,
		"rows", filtered.Len(),
		"request_id", observability.GetRequestID(r.Context()))
}

// HandleChart renders /charts/{chart}.png for the selection in the query.
func (h *ExportHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	name, ok := strings.CutSuffix(r.PathValue("chart"), ".png")
	if !ok || !isChart(name) {
		errors.WriteError(w, h.logger, errors.NotFound("Unknown chart"), requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view, err := h.analytics.Dashboard(ctx, ParseSelection(r.URL.Query()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if view.Empty {
		errors.WriteError(w, h.logger, errors.EmptyResult(view.Warning), requestID)
		return
	}

	var buf bytes.Buffer
	if err := charts.Render(&buf, name, view); err != nil {
		if stderrors.Is(err, charts.ErrNoData) {
			errors.WriteError(w, h.logger, errors.EmptyResult(services.EmptyResultWarning), requestID)
			return
		}
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Chart rendering failed"), requestID)
		return
	}

	w.Header().Set("Content-Type", contentTypePNG)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func isChart(name string) bool {
	switch name {
	case charts.Monthly, charts.Region, charts.RegionCategory:
		return true
	}
	return false
}
