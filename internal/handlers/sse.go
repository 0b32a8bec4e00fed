package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/observability"
	"superstore-dashboard/internal/services"
	"superstore-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// dashboardSignals are the client signals bound to the sidebar controls.
// A missing list stays nil and falls back to the dataset default.
type dashboardSignals struct {
	Regions    []string `json:"regions"`
	Categories []string `json:"categories"`
	Products   []string `json:"products"`
	Search     string   `json:"search"`
}

func (s dashboardSignals) selection() models.Selection {
	return models.Selection{
		Regions:    s.Regions,
		Categories: s.Categories,
		Products:   s.Products,
		Search:     s.Search,
	}
}

// chartSignals carries the aggregates the page draws with Chart.js.
type chartSignals struct {
	MonthlyData        []models.MonthlySales        `json:"monthlyData"`
	RegionData         []models.RegionSales         `json:"regionData"`
	RegionCategoryData []models.RegionCategorySales `json:"regionCategoryData"`
	ExportQuery        string                       `json:"exportQuery"`
}

// HandleDashboard re-runs the pipeline for the current signals and patches
// the preview, recommendation, warning and chart data.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Warn("read signals",
			"error", err,
			"request_id", observability.GetRequestID(r.Context()))
		http.Error(w, "invalid signals", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	sel := signals.selection()
	view, err := h.analytics.Dashboard(ctx, sel)

	sse := datastar.NewSSE(w, r)

	if err != nil {
		msg := "Failed to load data."
		if services.IsLoadError(err) {
			msg = "Failed to load data: " + err.Error()
		}
		h.logger.Error("dashboard pipeline failed",
			"error", err,
			"request_id", observability.GetRequestID(r.Context()))
		h.patch(ctx, sse, nil, msg, true, chartSignals{})
		return
	}

	if view.Empty {
		h.patch(ctx, sse, nil, view.Warning, false, chartSignals{ExportQuery: EncodeSelection(sel)})
		return
	}

	h.patch(ctx, sse, view, "", false, chartSignals{
		MonthlyData:        view.MonthlySales,
		RegionData:         view.RegionSales,
		RegionCategoryData: view.RegionCategory,
		ExportQuery:        EncodeSelection(sel),
	})
}

func (h *SSEHandlers) patch(ctx context.Context, sse *datastar.ServerSentEventGenerator,
	view *models.ViewModel, warning string, isError bool, charts chartSignals,
) {
	warningHTML, err := templates.RenderString(ctx, templates.WarningBox(warning, isError))
	if err != nil {
		h.logger.Error("render warning", "error", err)
		return
	}

	preview := `<div id="` + templates.PreviewID + `"></div>`
	recommendation := `<div id="` + templates.RecommendationID + `"></div>`
	if view != nil {
		if preview, err = templates.RenderString(ctx, templates.PreviewTable(view)); err != nil {
			h.logger.Error("render preview", "error", err)
			return
		}
		if recommendation, err = templates.RenderString(ctx, templates.RecommendationBox(view.Recommendation)); err != nil {
			h.logger.Error("render recommendation", "error", err)
			return
		}
	}
	for _, html := range []string{warningHTML, preview, recommendation} {
		if err := sse.PatchElements(html); err != nil {
			h.logger.Warn("patch elements", "error", err)
			return
		}
	}

	if charts.MonthlyData == nil {
		charts.MonthlyData = []models.MonthlySales{}
	}
	if charts.RegionData == nil {
		charts.RegionData = []models.RegionSales{}
	}
	if charts.RegionCategoryData == nil {
		charts.RegionCategoryData = []models.RegionCategorySales{}
	}

	payload, err := json.Marshal(charts)
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err)
		return
	}
	if err := sse.PatchSignals(payload); err != nil {
		h.logger.Warn("patch signals", "error", err)
	}
}
