package charts

import (
	"bytes"
	"errors"
	"testing"

	"superstore-dashboard/internal/models"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testView() *models.ViewModel {
	return &models.ViewModel{
		MonthlySales: []models.MonthlySales{
			{Month: "2023-01", Sales: 300},
			{Month: "2023-02", Sales: 300},
		},
		RegionSales: []models.RegionSales{
			{Region: "East", Sales: 400},
			{Region: "West", Sales: 200},
		},
		RegionCategory: []models.RegionCategorySales{
			{Region: "East", Category: "Furniture", Sales: 100},
			{Region: "East", Category: "Tech", Sales: 300},
			{Region: "West", Category: "Furniture", Sales: 200},
		},
	}
}

func TestRender(t *testing.T) {
	view := testView()

	for _, name := range []string{Monthly, Region, RegionCategory} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, name, view); err != nil {
				t.Fatalf("Render(%s) failed: %v", name, err)
			}
			if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
				t.Errorf("output is not a PNG (%d bytes)", buf.Len())
			}
		})
	}
}

func TestRender_SinglePoint(t *testing.T) {
	view := &models.ViewModel{
		MonthlySales: []models.MonthlySales{{Month: "2023-01", Sales: 0}},
		RegionSales:  []models.RegionSales{{Region: "East", Sales: 0}},
	}

	var buf bytes.Buffer
	if err := MonthlyLine(&buf, view.MonthlySales); err != nil {
		t.Fatalf("MonthlyLine() failed: %v", err)
	}
	buf.Reset()
	if err := RegionBars(&buf, view.RegionSales); err != nil {
		t.Fatalf("RegionBars() failed: %v", err)
	}
}

func TestRender_Errors(t *testing.T) {
	empty := &models.ViewModel{}

	for _, name := range []string{Monthly, Region, RegionCategory} {
		if err := Render(&bytes.Buffer{}, name, empty); !errors.Is(err, ErrNoData) {
			t.Errorf("Render(%s) on empty view err = %v, want ErrNoData", name, err)
		}
	}

	if err := Render(&bytes.Buffer{}, "pie", testView()); err == nil {
		t.Error("unknown chart should fail")
	}
}

func TestUpperBound(t *testing.T) {
	if got := upperBound(nil); got != 1 {
		t.Errorf("upperBound(nil) = %v, want 1", got)
	}
	if got := upperBound([]float64{0, 0}); got != 1 {
		t.Errorf("upperBound(zeros) = %v, want 1", got)
	}
	if got := upperBound([]float64{10, 100}); got <= 100 || got > 111 {
		t.Errorf("upperBound() = %v, want headroom above 100", got)
	}
}
