package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"

	"superstore-dashboard/internal/models"
)

const xlsxSheet = "Filtered Data"

// ExportColumns is the dataset header followed by the derived Month-Year.
func ExportColumns(ds *models.Dataset) []string {
	columns := slices.Clone(ds.Columns)
	return append(columns, models.ColumnMonthYear)
}

// ExportRow renders a record in ExportColumns order. Order Date is written
// as a date (with the time of day only when one is present) and Sales in
// its canonical decimal form.
func ExportRow(ds *models.Dataset, rec models.Record) models.PreviewRow {
	row := make(models.PreviewRow, 0, len(rec.Fields)+1)
	for i, value := range rec.Fields {
		switch ds.Columns[i] {
		case models.ColumnOrderDate:
			value = FormatOrderDate(rec.OrderDate)
		case models.ColumnSales:
			value = rec.Sales.String()
		}
		row = append(row, value)
	}
	return append(row, rec.MonthYear)
}

func FormatOrderDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}

// WriteCSV writes the dataset as UTF-8 CSV with a header row.
func WriteCSV(w io.Writer, ds *models.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns(ds)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range ds.Records {
		if err := cw.Write(ExportRow(ds, rec)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the dataset as a single-sheet workbook. Sales cells are
// numeric so spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, ds *models.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	columns := ExportColumns(ds)
	salesPos := slices.Index(columns, models.ColumnSales)

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range ds.Records {
		values := ExportRow(ds, rec)
		row := make([]any, len(values))
		for j, v := range values {
			row[j] = v
		}
		if salesPos >= 0 {
			row[salesPos] = rec.Sales.InexactFloat64()
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
