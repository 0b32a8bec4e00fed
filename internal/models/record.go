package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Column names the loader requires in every dataset.
const (
	ColumnOrderDate   = "Order Date"
	ColumnSales       = "Sales"
	ColumnRegion      = "Region"
	ColumnCategory    = "Category"
	ColumnProductName = "Product Name"
	ColumnMonthYear   = "Month-Year"
)

// Record is one row of the sales dataset. Fields keeps every raw cell in
// source column order so exports reproduce columns the pipeline never reads.
type Record struct {
	OrderDate   time.Time
	Sales       decimal.Decimal
	Region      string
	Category    string
	ProductName string
	MonthYear   string
	Fields      []string
}

// Dataset is an ordered set of records sharing one header. A filtered view
// is also a Dataset with the same Columns.
type Dataset struct {
	Name     string
	Uploaded bool
	Columns  []string
	Records  []Record
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// View returns a dataset with the same columns over the given records.
func (d *Dataset) View(records []Record) *Dataset {
	return &Dataset{Name: d.Name, Uploaded: d.Uploaded, Columns: d.Columns, Records: records}
}

// TotalSales sums Sales over every record.
func (d *Dataset) TotalSales() decimal.Decimal {
	total := decimal.Zero
	if d == nil {
		return total
	}
	for _, r := range d.Records {
		total = total.Add(r.Sales)
	}
	return total
}

type MonthlySales struct {
	Month string  `json:"month" yaml:"month"`
	Sales float64 `json:"sales" yaml:"sales"`
}

type RegionSales struct {
	Region string  `json:"region" yaml:"region"`
	Sales  float64 `json:"sales" yaml:"sales"`
}

type RegionCategorySales struct {
	Region   string  `json:"region" yaml:"region"`
	Category string  `json:"category" yaml:"category"`
	Sales    float64 `json:"sales" yaml:"sales"`
}

type Recommendation struct {
	Regions     []string `json:"regions" yaml:"regions"`
	TopCategory string   `json:"top_category" yaml:"top_category"`
	TopProduct  string   `json:"top_product" yaml:"top_product"`
	Text        string   `json:"text" yaml:"text"`
}
