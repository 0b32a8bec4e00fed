// Package charts renders the dashboard's aggregate summaries as PNG images.
package charts

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"superstore-dashboard/internal/models"
)

const (
	defaultWidth  = 900
	defaultHeight = 450
	barWidth      = 36
	barSpacing    = 18
)

// Chart names accepted by Render.
const (
	Monthly        = "monthly"
	Region         = "region"
	RegionCategory = "region-category"
)

var ErrNoData = errors.New("no data to chart")

var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorCyan,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorOrange,
	chart.ColorYellow,
}

// Render writes the named chart for view as PNG.
func Render(w io.Writer, name string, view *models.ViewModel) error {
	switch name {
	case Monthly:
		return MonthlyLine(w, view.MonthlySales)
	case Region:
		return RegionBars(w, view.RegionSales)
	case RegionCategory:
		return RegionCategoryBars(w, view.RegionCategory)
	default:
		return fmt.Errorf("unknown chart %q", name)
	}
}

// MonthlyLine draws monthly sales as a line over evenly spaced month ticks.
func MonthlyLine(w io.Writer, data []models.MonthlySales) error {
	if len(data) == 0 {
		return ErrNoData
	}

	xs := make([]float64, len(data))
	ys := make([]float64, len(data))
	ticks := make([]chart.Tick, len(data))
	for i, d := range data {
		xs[i] = float64(i)
		ys[i] = d.Sales
		ticks[i] = chart.Tick{Value: float64(i), Label: d.Month}
	}

	graph := chart.Chart{
		Title:      "Monthly Sales Trend",
		Width:      defaultWidth,
		Height:     defaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:  models.ColumnMonthYear,
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(1, float64(len(data)-1))},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  models.ColumnSales,
			Range: &chart.ContinuousRange{Min: 0, Max: upperBound(ys)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    models.ColumnSales,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					DotColor:    chart.ColorBlue,
					DotWidth:    3,
				},
			},
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render monthly chart: %w", err)
	}
	return nil
}

// RegionBars draws one bar per region.
func RegionBars(w io.Writer, data []models.RegionSales) error {
	if len(data) == 0 {
		return ErrNoData
	}

	bars := make([]chart.Value, len(data))
	ys := make([]float64, len(data))
	for i, d := range data {
		bars[i] = chart.Value{
			Label: d.Region,
			Value: d.Sales,
			Style: chart.Style{FillColor: palette[i%len(palette)], StrokeColor: palette[i%len(palette)]},
		}
		ys[i] = d.Sales
	}
	return renderBars(w, "Sales by Region", bars, ys)
}

// RegionCategoryBars draws bars grouped by region, one bar per category,
// coloured consistently per category.
func RegionCategoryBars(w io.Writer, data []models.RegionCategorySales) error {
	if len(data) == 0 {
		return ErrNoData
	}

	colors := make(map[string]drawing.Color)
	bars := make([]chart.Value, len(data))
	ys := make([]float64, len(data))
	for i, d := range data {
		c, ok := colors[d.Category]
		if !ok {
			c = palette[len(colors)%len(palette)]
			colors[d.Category] = c
		}
		bars[i] = chart.Value{
			Label: d.Region + " / " + d.Category,
			Value: d.Sales,
			Style: chart.Style{FillColor: c, StrokeColor: c},
		}
		ys[i] = d.Sales
	}
	return renderBars(w, "Category-wise Sales by Region", bars, ys)
}

func renderBars(w io.Writer, title string, bars []chart.Value, ys []float64) error {
	width := max(defaultWidth, len(bars)*(barWidth+barSpacing)+160)

	graph := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     defaultHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: upperBound(ys)},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s: %w", title, err)
	}
	return nil
}

// upperBound leaves headroom above the largest value and never returns a
// zero-height range, which go-chart rejects.
func upperBound(values []float64) float64 {
	top := 0.0
	for _, v := range values {
		top = math.Max(top, v)
	}
	if top <= 0 {
		return 1
	}
	return top * 1.1
}
