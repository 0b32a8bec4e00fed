package services

import (
	"errors"
	"slices"
	"testing"

	"superstore-dashboard/internal/models"
)

func TestMonthlyTrend(t *testing.T) {
	ds := loadTestDataset(t, threeRowCSV)

	got, err := MonthlyTrend(ds)
	if err != nil {
		t.Fatalf("MonthlyTrend() failed: %v", err)
	}

	want := []models.MonthlySales{
		{Month: "2023-01", Sales: 300},
		{Month: "2023-02", Sales: 300},
	}
	if !slices.Equal(got, want) {
		t.Errorf("MonthlyTrend() = %+v, want %+v", got, want)
	}
}

func TestMonthlyTrend_SortedAcrossYears(t *testing.T) {
	ds := loadTestDataset(t, `Order Date,Region,Category,Product Name,Sales
2024-01-10,East,Tech,A,1
2023-12-01,East,Tech,B,2
2023-02-01,East,Tech,C,3
2024-01-20,East,Tech,D,4
`)

	got, err := MonthlyTrend(ds)
	if err != nil {
		t.Fatalf("MonthlyTrend() failed: %v", err)
	}

	want := []models.MonthlySales{
		{Month: "2023-02", Sales: 3},
		{Month: "2023-12", Sales: 2},
		{Month: "2024-01", Sales: 5},
	}
	if !slices.Equal(got, want) {
		t.Errorf("MonthlyTrend() = %+v, want %+v", got, want)
	}
}

func TestRegionTotals(t *testing.T) {
	ds := loadTestDataset(t, threeRowCSV)

	got, err := RegionTotals(ds)
	if err != nil {
		t.Fatalf("RegionTotals() failed: %v", err)
	}

	want := []models.RegionSales{
		{Region: "East", Sales: 400},
		{Region: "West", Sales: 200},
	}
	if !slices.Equal(got, want) {
		t.Errorf("RegionTotals() = %+v, want %+v", got, want)
	}
}

func TestRegionCategoryTotals(t *testing.T) {
	ds := loadTestDataset(t, threeRowCSV)

	got, err := RegionCategoryTotals(ds)
	if err != nil {
		t.Fatalf("RegionCategoryTotals() failed: %v", err)
	}

	want := []models.RegionCategorySales{
		{Region: "East", Category: "Furniture", Sales: 100},
		{Region: "East", Category: "Tech", Sales: 300},
		{Region: "West", Category: "Furniture", Sales: 200},
	}
	if !slices.Equal(got, want) {
		t.Errorf("RegionCategoryTotals() = %+v, want %+v", got, want)
	}
}

func TestAggregates_DecimalSums(t *testing.T) {
	ds := loadTestDataset(t, `Order Date,Region,Category,Product Name,Sales
2023-01-01,East,Tech,A,0.1
2023-01-02,East,Tech,A,0.2
`)

	monthly, err := MonthlyTrend(ds)
	if err != nil {
		t.Fatalf("MonthlyTrend() failed: %v", err)
	}
	if monthly[0].Sales != 0.3 {
		t.Errorf("Sales = %v, want exactly 0.3", monthly[0].Sales)
	}
}

func TestRecommend(t *testing.T) {
	ds := loadTestDataset(t, threeRowCSV)

	rec, err := Recommend(ds, []string{"East", "West"})
	if err != nil {
		t.Fatalf("Recommend() failed: %v", err)
	}

	if rec.TopProduct != "Laptop" {
		t.Errorf("TopProduct = %q, want Laptop", rec.TopProduct)
	}
	if rec.TopCategory != "Furniture" {
		t.Errorf("TopCategory = %q, want Furniture", rec.TopCategory)
	}
	want := "Based on your filters, customers in East, West often buy Furniture items like Laptop."
	if rec.Text != want {
		t.Errorf("Text = %q, want %q", rec.Text, want)
	}
}

func TestRecommend_TiesGoToFirstSeen(t *testing.T) {
	ds := loadTestDataset(t, `Order Date,Region,Category,Product Name,Sales
2023-01-01,East,Tech,Mouse,50
2023-01-02,East,Office,Stapler,20
2023-01-03,East,Office,Pen,30
2023-01-04,East,Tech,Keyboard,50
`)

	rec, err := Recommend(ds, []string{"East"})
	if err != nil {
		t.Fatalf("Recommend() failed: %v", err)
	}
	if rec.TopProduct != "Mouse" {
		t.Errorf("TopProduct = %q, want Mouse", rec.TopProduct)
	}
	if rec.TopCategory != "Tech" {
		t.Errorf("TopCategory = %q, want Tech", rec.TopCategory)
	}
}

func TestRecommend_SumsProductSales(t *testing.T) {
	ds := loadTestDataset(t, `Order Date,Region,Category,Product Name,Sales
2023-01-01,East,Tech,Big Item,100
2023-01-02,East,Tech,Small Item,60
2023-01-03,East,Tech,Small Item,60
`)

	rec, err := Recommend(ds, []string{"East"})
	if err != nil {
		t.Fatalf("Recommend() failed: %v", err)
	}
	if rec.TopProduct != "Small Item" {
		t.Errorf("TopProduct = %q, want Small Item", rec.TopProduct)
	}
}

func TestAggregates_EmptyDataset(t *testing.T) {
	ds := loadTestDataset(t, threeRowCSV).View(nil)

	if _, err := MonthlyTrend(ds); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("MonthlyTrend() err = %v", err)
	}
	if _, err := RegionTotals(ds); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("RegionTotals() err = %v", err)
	}
	if _, err := RegionCategoryTotals(ds); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("RegionCategoryTotals() err = %v", err)
	}
	if _, err := Recommend(ds, []string{"East"}); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("Recommend() err = %v", err)
	}
}
