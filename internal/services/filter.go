package services

import (
	"errors"
	"strings"

	"superstore-dashboard/internal/models"
)

// ErrEmptyResult is returned when a selection leaves no rows. Callers show a
// warning and stop; none of the aggregations run on an empty dataset.
var ErrEmptyResult = errors.New("no matching data")

// Keywords builds the product keyword set: lower-cased dropdown selections
// followed by the lower-cased, trimmed, comma-separated tokens of search.
// Blank tokens are dropped and duplicates keep their first position.
func Keywords(products []string, search string) []string {
	seen := make(map[string]struct{})
	keywords := make([]string, 0, len(products))

	add := func(kw string) {
		if kw == "" {
			return
		}
		if _, ok := seen[kw]; ok {
			return
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}

	for _, p := range products {
		add(strings.ToLower(p))
	}
	if strings.TrimSpace(search) != "" {
		for _, token := range strings.Split(search, ",") {
			add(strings.ToLower(strings.TrimSpace(token)))
		}
	}
	return keywords
}

// Filter keeps the records whose Region and Category are in the selection
// and, when the keyword set is non-empty, whose Product Name contains any
// keyword case-insensitively. An empty region or category selection matches
// nothing, while an empty keyword set applies no product filter.
func Filter(ds *models.Dataset, sel models.Selection) (*models.Dataset, error) {
	regions := toSet(sel.Regions)
	categories := toSet(sel.Categories)
	keywords := Keywords(sel.Products, sel.Search)

	kept := make([]models.Record, 0)
	for _, rec := range ds.Records {
		if _, ok := regions[rec.Region]; !ok {
			continue
		}
		if _, ok := categories[rec.Category]; !ok {
			continue
		}
		if len(keywords) > 0 && !containsAny(strings.ToLower(rec.ProductName), keywords) {
			continue
		}
		kept = append(kept, rec)
	}

	view := ds.View(kept)
	if len(kept) == 0 {
		return view, ErrEmptyResult
	}
	return view, nil
}

func containsAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
