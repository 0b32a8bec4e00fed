package services

import (
	"errors"
	"slices"
	"testing"

	"superstore-dashboard/internal/models"
)

func productNames(ds *models.Dataset) []string {
	names := make([]string, 0, ds.Len())
	for _, r := range ds.Records {
		names = append(names, r.ProductName)
	}
	return names
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name     string
		products []string
		search   string
		want     []string
	}{
		{"nothing", nil, "", []string{}},
		{"dropdown only", []string{"Oak Chair", "Laptop"}, "", []string{"oak chair", "laptop"}},
		{"search only", nil, " Oak , DESK ", []string{"oak", "desk"}},
		{"both, deduplicated", []string{"Laptop"}, "laptop,oak", []string{"laptop", "oak"}},
		{"blank tokens dropped", nil, " , ,oak,, ", []string{"oak"}},
		{"whitespace only", nil, "   ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Keywords(tt.products, tt.search)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Keywords() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	ds := loadTestDataset(t, threeRowCSV)
	all := []string{"East", "West"}
	cats := []string{"Furniture", "Tech"}

	tests := []struct {
		name      string
		sel       models.Selection
		want      []string
		wantEmpty bool
	}{
		{
			name: "region only",
			sel:  models.Selection{Regions: []string{"East"}, Categories: cats},
			want: []string{"Oak Chair", "Laptop"},
		},
		{
			name: "keyword across regions",
			sel:  models.Selection{Regions: all, Categories: cats, Search: "oak"},
			want: []string{"Oak Chair", "Oak Table"},
		},
		{
			name: "keywords are case-insensitive",
			sel:  models.Selection{Regions: all, Categories: cats, Search: "OAK"},
			want: []string{"Oak Chair", "Oak Table"},
		},
		{
			name: "keywords are OR-combined",
			sel:  models.Selection{Regions: all, Categories: cats, Products: []string{"Laptop"}, Search: "table"},
			want: []string{"Oak Table", "Laptop"},
		},
		{
			name: "blank search applies no product filter",
			sel:  models.Selection{Regions: all, Categories: cats, Search: " , "},
			want: []string{"Oak Chair", "Oak Table", "Laptop"},
		},
		{
			name: "region and category combine",
			sel:  models.Selection{Regions: []string{"East"}, Categories: []string{"Furniture"}},
			want: []string{"Oak Chair"},
		},
		{
			name:      "empty category selection",
			sel:       models.Selection{Regions: all, Categories: []string{}},
			wantEmpty: true,
		},
		{
			name:      "empty region selection",
			sel:       models.Selection{Regions: nil, Categories: cats},
			wantEmpty: true,
		},
		{
			name:      "keyword with no match",
			sel:       models.Selection{Regions: all, Categories: cats, Search: "desk"},
			wantEmpty: true,
		},
		{
			name:      "unknown region",
			sel:       models.Selection{Regions: []string{"North"}, Categories: cats},
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(ds, tt.sel)
			if tt.wantEmpty {
				if !errors.Is(err, ErrEmptyResult) {
					t.Fatalf("err = %v, want ErrEmptyResult", err)
				}
				if got.Len() != 0 {
					t.Errorf("Len() = %d, want 0", got.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("Filter() failed: %v", err)
			}
			if names := productNames(got); !slices.Equal(names, tt.want) {
				t.Errorf("products = %q, want %q", names, tt.want)
			}
		})
	}
}

func TestFilter_MembershipProperty(t *testing.T) {
	ds := loadTestDataset(t, threeRowCSV)
	sel := models.Selection{
		Regions:    []string{"East"},
		Categories: []string{"Tech", "Furniture"},
		Search:     "a",
	}

	got, err := Filter(ds, sel)
	if err != nil {
		t.Fatalf("Filter() failed: %v", err)
	}
	for _, r := range got.Records {
		if !slices.Contains(sel.Regions, r.Region) || !slices.Contains(sel.Categories, r.Category) {
			t.Errorf("record outside selection: %+v", r)
		}
	}
	if got.Len() > ds.Len() {
		t.Errorf("filtered %d rows from %d", got.Len(), ds.Len())
	}
	if !slices.Equal(got.Columns, ds.Columns) {
		t.Errorf("Columns changed: %v", got.Columns)
	}
}
