package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"

	"superstore-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10

	// latin1BOM is a UTF-8 byte order mark after ISO-8859-1 decoding.
	latin1BOM = "ï»¿"
)

var (
	// ErrLoad matches every *LoadError via errors.Is.
	ErrLoad = errors.New("load dataset")

	errEmptyFile     = errors.New("file is empty")
	errNoRows        = errors.New("no data rows")
	errMissingColumn = errors.New("required column missing")
)

var requiredColumns = []string{
	models.ColumnOrderDate,
	models.ColumnSales,
	models.ColumnRegion,
	models.ColumnCategory,
	models.ColumnProductName,
}

// LoadError reports why a dataset could not be loaded. Line is the 1-based
// CSV line, zero when the failure is not tied to a row.
type LoadError struct {
	Line   int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("load dataset: line %d, column %q: %v", e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("load dataset: line %d: %v", e.Line, e.Err)
	case e.Column != "":
		return fmt.Sprintf("load dataset: column %q: %v", e.Column, e.Err)
	default:
		return fmt.Sprintf("load dataset: %v", e.Err)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

type columnIndex struct {
	orderDate, sales, region, category, product int
	// keep lists source columns copied into Record.Fields; a source
	// Month-Year column is dropped because it is always re-derived.
	keep []int
}

type rawRow struct {
	line   int
	fields []string
}

// LoadFile reads a dataset from a CSV file on disk.
func LoadFile(ctx context.Context, path string) (*models.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("open file: %w", err)}
	}
	defer file.Close()

	return LoadCSV(ctx, file)
}

// LoadCSV decodes an ISO-8859-1 CSV stream into a Dataset, parsing Order Date
// and Sales and deriving the Month-Year bucket for every row.
func LoadCSV(ctx context.Context, r io.Reader) (*models.Dataset, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &LoadError{Err: errEmptyFile}
	}
	if err != nil {
		return nil, csvLoadError(err)
	}
	header[0] = strings.TrimPrefix(header[0], latin1BOM)

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(idx.keep))
	for _, i := range idx.keep {
		columns = append(columns, header[i])
	}

	var rows []rawRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvLoadError(err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, rawRow{line: line, fields: fields})
	}

	if len(rows) == 0 {
		return nil, &LoadError{Err: errNoRows}
	}

	records, err := parseRows(ctx, rows, idx, header)
	if err != nil {
		return nil, err
	}

	return &models.Dataset{Columns: columns, Records: records}, nil
}

func indexColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	for _, name := range requiredColumns {
		if _, ok := positions[name]; !ok {
			return columnIndex{}, &LoadError{Column: name, Err: errMissingColumn}
		}
	}

	idx := columnIndex{
		orderDate: positions[models.ColumnOrderDate],
		sales:     positions[models.ColumnSales],
		region:    positions[models.ColumnRegion],
		category:  positions[models.ColumnCategory],
		product:   positions[models.ColumnProductName],
	}
	for i, name := range header {
		if name != models.ColumnMonthYear {
			idx.keep = append(idx.keep, i)
		}
	}
	return idx, nil
}

// parseRows converts raw rows in fixed-size batches on a bounded worker
// pool. Each batch writes its own slice window so input order is kept.
func parseRows(ctx context.Context, rows []rawRow, idx columnIndex, header []string) ([]models.Record, error) {
	records := make([]models.Record, len(rows))
	batches := (len(rows) + batchSize - 1) / batchSize
	batchErrs := make([]error, batches)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for b := 0; b < batches; b++ {
		start := b * batchSize
		end := min(start+batchSize, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := parseRecord(rows[i], idx, header)
				if err != nil {
					batchErrs[b] = err
					return err
				}
				records[i] = rec
			}
			return nil
		})
	}

	waitErr := g.Wait()
	for _, err := range batchErrs {
		if err != nil {
			return nil, err
		}
	}
	if waitErr != nil {
		return nil, waitErr
	}
	return records, nil
}

func parseRecord(row rawRow, idx columnIndex, header []string) (models.Record, error) {
	raw := strings.TrimSpace(row.fields[idx.orderDate])
	orderDate, err := parseOrderDate(raw)
	if err != nil {
		return models.Record{}, &LoadError{Line: row.line, Column: header[idx.orderDate], Err: err}
	}

	sales, err := decimal.NewFromString(strings.TrimSpace(row.fields[idx.sales]))
	if err != nil {
		return models.Record{}, &LoadError{Line: row.line, Column: header[idx.sales], Err: err}
	}

	fields := make([]string, 0, len(idx.keep))
	for _, i := range idx.keep {
		fields = append(fields, row.fields[i])
	}

	return models.Record{
		OrderDate:   orderDate,
		Sales:       sales,
		Region:      row.fields[idx.region],
		Category:    row.fields[idx.category],
		ProductName: row.fields[idx.product],
		MonthYear:   orderDate.Format("2006-01"),
		Fields:      fields,
	}, nil
}

func parseOrderDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	return dateparse.ParseIn(value, time.UTC)
}

func csvLoadError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &LoadError{Line: parseErr.Line, Err: parseErr.Err}
	}
	return &LoadError{Err: err}
}
