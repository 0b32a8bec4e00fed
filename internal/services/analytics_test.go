package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/observability"
)

// Test helper to create analytics over the three-row dataset
func newTestAnalytics(t *testing.T) *Analytics {
	t.Helper()
	return NewAnalytics(NewStaticSource(loadTestDataset(t, threeRowCSV)), nil, observability.NewMetrics())
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics(NewStaticSource(nil), nil, nil)

	if a == nil {
		t.Fatal("NewAnalytics() returned nil")
	}
	if a.logger == nil {
		t.Error("NewAnalytics() should default the logger")
	}
	if stats := a.Stats(); stats["runs"].(int64) != 0 {
		t.Errorf("runs = %v, want 0", stats["runs"])
	}
}

func TestAnalytics_Dashboard(t *testing.T) {
	a := newTestAnalytics(t)

	view, err := a.Dashboard(context.Background(), models.Selection{Regions: []string{"East"}})
	if err != nil {
		t.Fatalf("Dashboard() failed: %v", err)
	}

	// Categories default to all; regions are taken as given.
	if view.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", view.RowCount)
	}
	if got := view.Recommendation.Text; got != "Based on your filters, customers in East often buy Furniture items like Laptop." {
		t.Errorf("Text = %q", got)
	}

	stats := a.Stats()
	if stats["runs"].(int64) != 1 || stats["record_count"].(int64) != 3 {
		t.Errorf("stats = %v", stats)
	}
	if stats["dataset"] != "" {
		t.Errorf("dataset = %v, want unnamed", stats["dataset"])
	}
}

func TestAnalytics_DashboardEmpty(t *testing.T) {
	a := newTestAnalytics(t)

	view, err := a.Dashboard(context.Background(), models.Selection{Categories: []string{}})
	if err != nil {
		t.Fatalf("Dashboard() failed: %v", err)
	}
	if !view.Empty || view.Warning != EmptyResultWarning {
		t.Errorf("view = %+v", view)
	}
	if a.Stats()["empty_runs"].(int64) != 1 {
		t.Errorf("empty_runs = %v", a.Stats()["empty_runs"])
	}
}

func TestAnalytics_LoadFailure(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.csv"), nil, nil)
	a := NewAnalytics(src, nil, nil)

	_, err := a.Dashboard(context.Background(), models.Selection{})
	if !IsLoadError(err) {
		t.Fatalf("err = %v, want a load error", err)
	}
	if a.Stats()["failed_runs"].(int64) != 1 {
		t.Errorf("failed_runs = %v", a.Stats()["failed_runs"])
	}
}

func TestAnalytics_Filtered(t *testing.T) {
	a := newTestAnalytics(t)
	ctx := context.Background()

	ds, err := a.Filtered(ctx, models.Selection{Search: "oak"})
	if err != nil {
		t.Fatalf("Filtered() failed: %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ds.Len())
	}

	if _, err := a.Filtered(ctx, models.Selection{Search: "desk"}); !errors.Is(err, ErrEmptyResult) {
		t.Errorf("err = %v, want ErrEmptyResult", err)
	}
}

func TestAnalytics_UploadAndReset(t *testing.T) {
	a := newTestAnalytics(t)
	ctx := context.Background()

	if _, err := a.Upload(ctx, "bad.csv", []byte("nope\n")); !IsLoadError(err) {
		t.Errorf("invalid upload err = %v", err)
	}
	if _, err := a.Upload(ctx, "south.csv", []byte(uploadCSV)); err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}

	opts, ds, err := a.Options(ctx)
	if err != nil {
		t.Fatalf("Options() failed: %v", err)
	}
	if ds.Name != "south.csv" || len(opts.Regions) != 1 || opts.Regions[0] != "South" {
		t.Errorf("options after upload = %+v", opts)
	}

	if err := a.Reset(ctx); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	opts, _, _ = a.Options(ctx)
	if len(opts.Regions) != 2 {
		t.Errorf("Regions after reset = %v", opts.Regions)
	}
}

func TestAnalytics_ConcurrentAccess(t *testing.T) {
	a := newTestAnalytics(t)
	selections := []models.Selection{
		{},
		{Regions: []string{"West"}},
		{Search: "oak"},
		{Categories: []string{}},
	}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(sel models.Selection) {
			defer wg.Done()
			if _, err := a.Dashboard(context.Background(), sel); err != nil {
				t.Errorf("Dashboard() failed: %v", err)
			}
		}(selections[i%len(selections)])
	}
	wg.Wait()

	if runs := a.Stats()["runs"].(int64); runs != 20 {
		t.Errorf("runs = %d, want 20", runs)
	}
}

func BenchmarkAnalytics_Dashboard(b *testing.B) {
	ds, err := LoadCSV(context.Background(), strings.NewReader(threeRowCSV))
	if err != nil {
		b.Fatal(err)
	}
	a := NewAnalytics(NewStaticSource(ds), nil, nil)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.Dashboard(ctx, models.Selection{}); err != nil {
			b.Fatal(err)
		}
	}
}
