// Package templates holds the dashboard page and the fragments patched into
// it over server-sent events.
package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"superstore-dashboard/internal/models"
)

// Element ids patched by the SSE handlers.
const (
	PreviewID        = "preview-content"
	RecommendationID = "recommendation-content"
	WarningID        = "warning-content"
	DatasetID        = "dataset-content"
)

// PageData is what the full page needs to render its controls.
type PageData struct {
	Options     *models.Options
	DatasetName string
	Uploaded    bool
	LoadError   string
}

// Dashboard renders the whole page. Controls are bound to datastar signals
// and every change re-requests /sse/dashboard.
func Dashboard(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>Superstore Sales Dashboard</title>`)
		b.WriteString(`<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"></script>`)
		b.WriteString(`<script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"></script>`)
		b.WriteString(`<style>` + pageCSS + `</style></head>`)

		b.WriteString(`<body data-signals='`)
		b.WriteString(templ.EscapeString(initialSignals(data.Options)))
		b.WriteString(`'>`)

		b.WriteString(`<header><h1>Superstore Sales Analytics Dashboard</h1>`)
		b.WriteString(`<p class="subtitle">Filter sales by region, category and product</p></header>`)
		writeInstructions(&b)

		b.WriteString(`<div class="layout"><aside class="sidebar">`)
		writeUploadForm(&b, data)
		if data.Options != nil {
			writeFilters(&b, data.Options)
		}
		b.WriteString(`</aside><main>`)

		if data.LoadError != "" {
			b.WriteString(`<div id="` + WarningID + `" class="error">`)
			b.WriteString(templ.EscapeString(data.LoadError))
			b.WriteString(`</div>`)
		} else {
			b.WriteString(`<div id="` + WarningID + `"></div>`)
			b.WriteString(`<div data-init="@get('/sse/dashboard')"></div>`)
		}

		b.WriteString(`<section><h2>Filtered Data Preview (Top 10 rows)</h2>`)
		b.WriteString(`<div id="` + PreviewID + `"></div></section>`)

		b.WriteString(`<div class="grid">`)
		writeChartCard(&b, "Monthly Sales Trend", "monthly-chart")
		writeChartCard(&b, "Sales by Region", "region-chart")
		writeChartCard(&b, "Category by Region", "region-category-chart")
		b.WriteString(`<section class="card"><h2>Recommendation</h2><div id="` + RecommendationID + `"></div></section>`)
		b.WriteString(`</div>`)

		b.WriteString(`<section class="downloads">`)
		b.WriteString(`<a class="button" data-attr:href="'/api/export.csv?' + $exportQuery">Download Filtered Data as CSV</a> `)
		b.WriteString(`<a class="button secondary" data-attr:href="'/api/export.xlsx?' + $exportQuery">Download as Excel</a>`)
		b.WriteString(`</section>`)

		b.WriteString(`<div data-effect="window.renderCharts && window.renderCharts($monthlyData, $regionData, $regionCategoryData)"></div>`)
		b.WriteString(`</main></div>`)
		b.WriteString(`<footer>Superstore sales dashboard</footer>`)
		b.WriteString(`<script>` + chartsJS + `</script>`)
		b.WriteString(`</body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func initialSignals(opts *models.Options) string {
	signals := map[string]any{
		"regions":            []string{},
		"categories":         []string{},
		"products":           []string{},
		"search":             "",
		"exportQuery":        "",
		"monthlyData":        []any{},
		"regionData":         []any{},
		"regionCategoryData": []any{},
	}
	if opts != nil {
		signals["regions"] = opts.Default.Regions
		signals["categories"] = opts.Default.Categories
	}
	raw, err := json.Marshal(signals)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func writeInstructions(b *strings.Builder) {
	b.WriteString(`<details class="help" open><summary>How to Use This App</summary><ul>`)
	for _, step := range []string{
		"Upload your dataset or use the default one.",
		"Apply filters for Region and Category.",
		"Search products with the multi-select dropdown or the text box (comma-separated).",
		"View trends, region-wise breakdowns and recommendations.",
		"Download the filtered data after previewing it.",
	} {
		b.WriteString(`<li>` + templ.EscapeString(step) + `</li>`)
	}
	b.WriteString(`</ul></details>`)
}

func writeUploadForm(b *strings.Builder, data PageData) {
	b.WriteString(`<h3>Upload CSV Dataset</h3>`)
	b.WriteString(`<form method="post" action="/upload" enctype="multipart/form-data">`)
	b.WriteString(`<input type="file" name="file" accept=".csv,text/csv" required>`)
	b.WriteString(`<button type="submit">Upload</button></form>`)

	b.WriteString(`<div id="` + DatasetID + `" class="dataset">`)
	if data.Uploaded {
		fmt.Fprintf(b, `File uploaded: <strong>%s</strong>`, templ.EscapeString(data.DatasetName))
		b.WriteString(`<form method="post" action="/upload/reset"><button type="submit">Use default dataset</button></form>`)
	} else {
		fmt.Fprintf(b, `Using default dataset <strong>%s</strong>`, templ.EscapeString(data.DatasetName))
	}
	b.WriteString(`</div>`)
}

func writeFilters(b *strings.Builder, opts *models.Options) {
	refresh := `data-on:change="@get('/sse/dashboard')"`

	b.WriteString(`<label>Select Region(s):</label>`)
	writeMultiSelect(b, "regions", opts.Regions, refresh)
	b.WriteString(`<label>Select Category(s):</label>`)
	writeMultiSelect(b, "categories", opts.Categories, refresh)
	b.WriteString(`<label>Choose Products (from dropdown):</label>`)
	writeMultiSelect(b, "products", opts.Products, refresh)

	b.WriteString(`<label>Or type product name(s) [comma-separated]:</label>`)
	b.WriteString(`<input type="text" data-bind="search" data-on:input__debounce.400ms="@get('/sse/dashboard')">`)
}

func writeMultiSelect(b *strings.Builder, signal string, values []string, attrs string) {
	fmt.Fprintf(b, `<select multiple size="6" data-bind="%s" %s>`, signal, attrs)
	for _, v := range values {
		escaped := templ.EscapeString(v)
		fmt.Fprintf(b, `<option value="%s">%s</option>`, escaped, escaped)
	}
	b.WriteString(`</select>`)
}

func writeChartCard(b *strings.Builder, title, canvasID string) {
	fmt.Fprintf(b, `<section class="card"><h2>%s</h2><canvas id="%s"></canvas></section>`,
		templ.EscapeString(title), canvasID)
}

// PreviewTable renders the first rows of the filtered dataset.
func PreviewTable(view *models.ViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div id="` + PreviewID + `">`)
		fmt.Fprintf(&b, `<p class="meta">%d matching rows, total sales %.2f</p>`, view.RowCount, view.TotalSales)
		b.WriteString(`<div class="table-wrap"><table class="modern-table"><thead><tr>`)
		for _, c := range view.Columns {
			b.WriteString(`<th>` + templ.EscapeString(c) + `</th>`)
		}
		b.WriteString(`</tr></thead><tbody>`)
		for _, row := range view.Preview {
			b.WriteString(`<tr>`)
			for _, cell := range row {
				b.WriteString(`<td>` + templ.EscapeString(cell) + `</td>`)
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table></div></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// RecommendationBox renders the recommendation sentence with its three
// variable parts emphasised.
func RecommendationBox(rec *models.Recommendation) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div id="` + RecommendationID + `">`)
		if rec != nil {
			fmt.Fprintf(&b,
				`<p class="info">Based on your filters, customers in <strong>%s</strong> often buy <strong>%s</strong> items like <strong>%s</strong>.</p>`,
				templ.EscapeString(strings.Join(rec.Regions, ", ")),
				templ.EscapeString(rec.TopCategory),
				templ.EscapeString(rec.TopProduct))
		}
		b.WriteString(`</div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// WarningBox renders msg as a warning, or an empty placeholder when msg is "".
func WarningBox(msg string, isError bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		class := "warning"
		if isError {
			class = "error"
		}
		html := `<div id="` + WarningID + `"></div>`
		if msg != "" {
			html = `<div id="` + WarningID + `" class="` + class + `">` + templ.EscapeString(msg) + `</div>`
		}
		_, err := io.WriteString(w, html)
		return err
	})
}

// RenderString renders c into a string for SSE element patches.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

const pageCSS = `
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7fb;color:#1f2430}
header{padding:1rem 2rem;background:#1f3b73;color:#fff}
header h1{margin:0;font-size:1.6rem}
.subtitle{margin:.25rem 0 0;opacity:.8}
.help{margin:1rem 2rem;background:#fff;padding:.75rem 1rem;border-radius:6px}
.layout{display:flex;gap:1.5rem;padding:0 2rem 2rem}
.sidebar{flex:0 0 280px;display:flex;flex-direction:column;gap:.5rem}
.sidebar select,.sidebar input[type=text]{width:100%}
main{flex:1;min-width:0}
.grid{display:grid;grid-template-columns:1fr 1fr;gap:1rem}
.card{background:#fff;border-radius:6px;padding:1rem}
.table-wrap{overflow-x:auto}
.modern-table{border-collapse:collapse;width:100%;font-size:.85rem}
.modern-table th,.modern-table td{border-bottom:1px solid #e3e6ef;padding:.3rem .5rem;text-align:left;white-space:nowrap}
.warning{background:#fff4d6;border:1px solid #f0c36d;padding:.75rem;border-radius:6px}
.error{background:#fde2e2;border:1px solid #e08b8b;padding:.75rem;border-radius:6px}
.info{background:#e4f0fd;padding:.75rem;border-radius:6px}
.button{display:inline-block;background:#1f3b73;color:#fff;padding:.5rem 1rem;border-radius:4px;text-decoration:none}
.button.secondary{background:#5b6b8c}
.downloads{margin:1rem 0}
footer{text-align:center;padding:1rem;color:#777}
`

const chartsJS = `
window.dashboardCharts = {};
function drawChart(id, config) {
  const el = document.getElementById(id);
  if (!el || !window.Chart) return;
  if (window.dashboardCharts[id]) window.dashboardCharts[id].destroy();
  window.dashboardCharts[id] = new Chart(el, config);
}
window.renderCharts = function(monthly, regions, regionCategory) {
  monthly = monthly || []; regions = regions || []; regionCategory = regionCategory || [];
  drawChart('monthly-chart', {type: 'line', data: {labels: monthly.map(d => d.month),
    datasets: [{label: 'Sales', data: monthly.map(d => d.sales)}]}});
  drawChart('region-chart', {type: 'bar', data: {labels: regions.map(d => d.region),
    datasets: [{label: 'Sales', data: regions.map(d => d.sales)}]}});
  const regionNames = [...new Set(regionCategory.map(d => d.region))];
  const categories = [...new Set(regionCategory.map(d => d.category))];
  drawChart('region-category-chart', {type: 'bar', data: {labels: regionNames,
    datasets: categories.map(c => ({label: c, data: regionNames.map(r => {
      const hit = regionCategory.find(d => d.region === r && d.category === c);
      return hit ? hit.sales : 0;
    })}))}});
};
`
