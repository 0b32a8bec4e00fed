package models

// Selection is the set of filter controls for one dashboard run.
// Regions and Categories are matched exactly; an empty slice matches nothing.
// Products and Search feed the case-insensitive product keyword set.
type Selection struct {
	Regions    []string `json:"regions" yaml:"regions"`
	Categories []string `json:"categories" yaml:"categories"`
	Products   []string `json:"products" yaml:"products"`
	Search     string   `json:"search" yaml:"search"`
}

// Options lists the values offered by the multiselect controls.
type Options struct {
	Regions    []string  `json:"regions" yaml:"regions"`
	Categories []string  `json:"categories" yaml:"categories"`
	Products   []string  `json:"products" yaml:"products"`
	Default    Selection `json:"default" yaml:"default"`
}

// PreviewRow is a record rendered as strings in export column order.
type PreviewRow []string

// ViewModel is everything the dashboard shows for one selection.
type ViewModel struct {
	Columns        []string              `json:"columns" yaml:"columns"`
	Preview        []PreviewRow          `json:"preview" yaml:"preview"`
	RowCount       int                   `json:"row_count" yaml:"row_count"`
	TotalSales     float64               `json:"total_sales" yaml:"total_sales"`
	MonthlySales   []MonthlySales        `json:"monthly_sales" yaml:"monthly_sales"`
	RegionSales    []RegionSales         `json:"region_sales" yaml:"region_sales"`
	RegionCategory []RegionCategorySales `json:"region_category_sales" yaml:"region_category_sales"`
	Recommendation *Recommendation       `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	Empty          bool                  `json:"empty" yaml:"empty"`
	Warning        string                `json:"warning,omitempty" yaml:"warning,omitempty"`
	ExportFilename string                `json:"export_filename" yaml:"export_filename"`
}
