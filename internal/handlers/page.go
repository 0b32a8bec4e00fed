package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/services"
	"superstore-dashboard/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

type PageHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewPageHandlers(analytics *services.Analytics, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// HandleDashboard renders the page shell. A dataset that fails to load is
// reported on the page itself so the user can upload a replacement.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	data := templates.PageData{}
	status := http.StatusOK

	opts, ds, err := h.analytics.Options(ctx)
	switch {
	case err == nil:
		data.Options = opts
		data.DatasetName = ds.Name
		data.Uploaded = ds.Uploaded
	case services.IsLoadError(err):
		status = http.StatusUnprocessableEntity
		data.LoadError = "Failed to load data: " + err.Error()
	default:
		status = http.StatusInternalServerError
		data.LoadError = "Failed to load data."
		h.logger.Error("open dataset for page",
			"error", err,
			"request_id", observability.GetRequestID(r.Context()))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := templates.Dashboard(data).Render(ctx, w); err != nil {
		h.logger.Error("render dashboard page", "error", err)
	}
}
