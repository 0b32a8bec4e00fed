package services

import (
	"errors"
	"fmt"
	"slices"

	"superstore-dashboard/internal/models"
)

const (
	PreviewRows = 10

	ExportCSVFilename  = "filtered_superstore_data.csv"
	ExportXLSXFilename = "filtered_superstore_data.xlsx"

	EmptyResultWarning = "No matching data. Try modifying filters or product search."
)

// Render runs Filter and every aggregation for one selection. An empty
// filter result is not an error: the returned view has Empty set, carries
// the warning, and holds no aggregates.
func Render(ds *models.Dataset, sel models.Selection) (*models.ViewModel, error) {
	filtered, err := Filter(ds, sel)
	if errors.Is(err, ErrEmptyResult) {
		return &models.ViewModel{
			Columns:        ExportColumns(ds),
			Empty:          true,
			Warning:        EmptyResultWarning,
			ExportFilename: ExportCSVFilename,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	view := &models.ViewModel{
		Columns:        ExportColumns(filtered),
		RowCount:       filtered.Len(),
		TotalSales:     filtered.TotalSales().InexactFloat64(),
		ExportFilename: ExportCSVFilename,
	}

	for _, rec := range filtered.Records[:min(PreviewRows, filtered.Len())] {
		view.Preview = append(view.Preview, ExportRow(filtered, rec))
	}

	if view.MonthlySales, err = MonthlyTrend(filtered); err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	if view.RegionSales, err = RegionTotals(filtered); err != nil {
		return nil, fmt.Errorf("region totals: %w", err)
	}
	if view.RegionCategory, err = RegionCategoryTotals(filtered); err != nil {
		return nil, fmt.Errorf("region category totals: %w", err)
	}
	if view.Recommendation, err = Recommend(filtered, sel.Regions); err != nil {
		return nil, fmt.Errorf("recommendation: %w", err)
	}

	return view, nil
}

// DatasetOptions lists the sorted distinct values for each multiselect. The
// default selection holds every region and category in first-seen order.
func DatasetOptions(ds *models.Dataset) *models.Options {
	regions := distinct(ds.Records, func(r models.Record) string { return r.Region })
	categories := distinct(ds.Records, func(r models.Record) string { return r.Category })
	products := distinct(ds.Records, func(r models.Record) string { return r.ProductName })

	opts := &models.Options{
		Regions:    slices.Sorted(slices.Values(regions)),
		Categories: slices.Sorted(slices.Values(categories)),
		Products:   slices.Sorted(slices.Values(products)),
		Default: models.Selection{
			Regions:    regions,
			Categories: categories,
			Products:   []string{},
		},
	}
	return opts
}

// DefaultSelection fills nil region or category lists with the dataset
// defaults. Non-nil empty lists are kept as an explicit empty selection.
func DefaultSelection(ds *models.Dataset, sel models.Selection) models.Selection {
	if sel.Regions != nil && sel.Categories != nil {
		return sel
	}
	opts := DatasetOptions(ds)
	if sel.Regions == nil {
		sel.Regions = opts.Default.Regions
	}
	if sel.Categories == nil {
		sel.Categories = opts.Default.Categories
	}
	return sel
}

func distinct(records []models.Record, field func(models.Record) string) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, rec := range records {
		v := field(rec)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}
