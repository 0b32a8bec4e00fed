package handlers

import (
	"net/url"
	"strings"

	"superstore-dashboard/internal/models"
)

// Query parameters carrying a selection.
const (
	paramRegion   = "region"
	paramCategory = "category"
	paramProduct  = "product"
	paramSearch   = "q"
)

// ParseSelection reads a selection from query values. An absent region or
// category parameter leaves the list nil so the dataset default applies;
// a present but blank one selects nothing.
func ParseSelection(q url.Values) models.Selection {
	return models.Selection{
		Regions:    listParam(q, paramRegion),
		Categories: listParam(q, paramCategory),
		Products:   listParam(q, paramProduct),
		Search:     q.Get(paramSearch),
	}
}

func listParam(q url.Values, key string) []string {
	raw, ok := q[key]
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if strings.TrimSpace(v) != "" {
			values = append(values, v)
		}
	}
	return values
}

// EncodeSelection is the inverse of ParseSelection for a resolved selection.
// Empty region and category lists are kept as blank parameters.
func EncodeSelection(sel models.Selection) string {
	q := url.Values{}
	setList(q, paramRegion, sel.Regions, true)
	setList(q, paramCategory, sel.Categories, true)
	setList(q, paramProduct, sel.Products, false)
	if sel.Search != "" {
		q.Set(paramSearch, sel.Search)
	}
	return q.Encode()
}

func setList(q url.Values, key string, values []string, keepEmpty bool) {
	switch {
	case len(values) > 0:
		q[key] = values
	case keepEmpty && values != nil:
		q.Set(key, "")
	}
}
