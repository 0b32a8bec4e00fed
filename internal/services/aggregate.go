package services

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"superstore-dashboard/internal/models"
)

// MonthlyTrend sums Sales per Month-Year in ascending "YYYY-MM" order.
func MonthlyTrend(ds *models.Dataset) ([]models.MonthlySales, error) {
	if ds.Len() == 0 {
		return nil, ErrEmptyResult
	}

	groups := make(map[string]decimal.Decimal)
	for _, rec := range ds.Records {
		groups[rec.MonthYear] = groups[rec.MonthYear].Add(rec.Sales)
	}

	result := make([]models.MonthlySales, 0, len(groups))
	for month, sales := range groups {
		result = append(result, models.MonthlySales{Month: month, Sales: sales.InexactFloat64()})
	}
	slices.SortFunc(result, func(a, b models.MonthlySales) int {
		return strings.Compare(a.Month, b.Month)
	})
	return result, nil
}

// RegionTotals sums Sales per Region, ordered by region name.
func RegionTotals(ds *models.Dataset) ([]models.RegionSales, error) {
	if ds.Len() == 0 {
		return nil, ErrEmptyResult
	}

	groups := make(map[string]decimal.Decimal)
	for _, rec := range ds.Records {
		groups[rec.Region] = groups[rec.Region].Add(rec.Sales)
	}

	result := make([]models.RegionSales, 0, len(groups))
	for region, sales := range groups {
		result = append(result, models.RegionSales{Region: region, Sales: sales.InexactFloat64()})
	}
	slices.SortFunc(result, func(a, b models.RegionSales) int {
		return strings.Compare(a.Region, b.Region)
	})
	return result, nil
}

// RegionCategoryTotals sums Sales per (Region, Category) pair, ordered by
// region then category.
func RegionCategoryTotals(ds *models.Dataset) ([]models.RegionCategorySales, error) {
	if ds.Len() == 0 {
		return nil, ErrEmptyResult
	}

	type key struct{ region, category string }
	groups := make(map[key]decimal.Decimal)
	for _, rec := range ds.Records {
		k := key{rec.Region, rec.Category}
		groups[k] = groups[k].Add(rec.Sales)
	}

	result := make([]models.RegionCategorySales, 0, len(groups))
	for k, sales := range groups {
		result = append(result, models.RegionCategorySales{
			Region:   k.region,
			Category: k.category,
			Sales:    sales.InexactFloat64(),
		})
	}
	slices.SortFunc(result, func(a, b models.RegionCategorySales) int {
		return cmp.Or(
			strings.Compare(a.Region, b.Region),
			strings.Compare(a.Category, b.Category),
		)
	})
	return result, nil
}

// Recommend picks the product with the highest summed Sales and the most
// frequent Category. Ties go to whichever value appears first in the
// dataset. regions is the user's region selection, quoted in the sentence
// in the order it was given.
func Recommend(ds *models.Dataset, regions []string) (*models.Recommendation, error) {
	if ds.Len() == 0 {
		return nil, ErrEmptyResult
	}

	productSales := make(map[string]decimal.Decimal)
	var productOrder []string
	categoryCounts := make(map[string]int)
	var categoryOrder []string

	for _, rec := range ds.Records {
		if _, ok := productSales[rec.ProductName]; !ok {
			productOrder = append(productOrder, rec.ProductName)
		}
		productSales[rec.ProductName] = productSales[rec.ProductName].Add(rec.Sales)

		if _, ok := categoryCounts[rec.Category]; !ok {
			categoryOrder = append(categoryOrder, rec.Category)
		}
		categoryCounts[rec.Category]++
	}

	topProduct := productOrder[0]
	for _, name := range productOrder[1:] {
		if productSales[name].GreaterThan(productSales[topProduct]) {
			topProduct = name
		}
	}

	topCategory := categoryOrder[0]
	for _, name := range categoryOrder[1:] {
		if categoryCounts[name] > categoryCounts[topCategory] {
			topCategory = name
		}
	}

	return &models.Recommendation{
		Regions:     slices.Clone(regions),
		TopCategory: topCategory,
		TopProduct:  topProduct,
		Text:        RecommendationText(regions, topCategory, topProduct),
	}, nil
}

// RecommendationText formats the recommendation sentence.
func RecommendationText(regions []string, category, product string) string {
	return fmt.Sprintf("Based on your filters, customers in %s often buy %s items like %s.",
		strings.Join(regions, ", "), category, product)
}
