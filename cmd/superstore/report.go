package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"superstore-dashboard/internal/charts"
	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/services"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Filter the dataset and print its summaries",
		Example: `  superstore report --region East --region West --category Furniture
  superstore report --search "chair, desk" --format json
  superstore report --export filtered.csv --charts ./charts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runReport(cmd)
		},
	}

	f := cmd.Flags()
	f.StringSlice("region", nil, "regions to include (default all; repeat or comma-separate)")
	f.StringSlice("category", nil, "categories to include (default all)")
	f.StringSlice("product", nil, "product names chosen from the option list")
	f.String("search", "", "comma-separated product keywords")
	f.String("format", formatText, "output format: text, json or yaml")
	f.String("export", "", "write the filtered rows as CSV to this path")
	f.String("xlsx", "", "write the filtered rows as an Excel workbook to this path")
	f.String("charts", "", "write PNG charts into this directory")

	for _, name := range []string{"search", "format", "export", "xlsx", "charts"} {
		_ = a.v.BindPFlag(name, f.Lookup(name))
	}
	return cmd
}

// selectionFromFlags leaves region and category nil unless the flag was
// given, so that an explicit empty value still selects nothing.
func selectionFromFlags(cmd *cobra.Command, search string) (models.Selection, error) {
	var sel models.Selection
	f := cmd.Flags()

	for name, dst := range map[string]*[]string{
		"region":   &sel.Regions,
		"category": &sel.Categories,
		"product":  &sel.Products,
	} {
		if !f.Changed(name) {
			continue
		}
		values, err := f.GetStringSlice(name)
		if err != nil {
			return sel, err
		}
		*dst = trimAll(values)
	}
	sel.Search = search
	return sel, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (a *app) runReport(cmd *cobra.Command) error {
	format := a.v.GetString("format")
	switch format {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	path := a.v.GetString("file")
	ds, err := services.LoadFile(ctx, path)
	if err != nil {
		return err
	}
	ds.Name = filepath.Base(path)
	a.logger.Info("dataset loaded", "path", path, "records", ds.Len())

	sel, err := selectionFromFlags(cmd, a.v.GetString("search"))
	if err != nil {
		return err
	}
	sel = services.DefaultSelection(ds, sel)

	view, err := services.Render(ds, sel)
	if err != nil {
		return err
	}

	if err := writeReport(a.stdout, format, view); err != nil {
		return err
	}
	if view.Empty {
		a.logger.Warn("nothing to export", "reason", view.Warning)
		return nil
	}

	filtered, err := services.Filter(ds, sel)
	if err != nil {
		return err
	}
	if path := a.v.GetString("export"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return services.WriteCSV(w, filtered) }); err != nil {
			return err
		}
		a.logger.Info("csv written", "path", path, "rows", filtered.Len())
	}
	if path := a.v.GetString("xlsx"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return services.WriteXLSX(w, filtered) }); err != nil {
			return err
		}
		a.logger.Info("workbook written", "path", path, "rows", filtered.Len())
	}
	if dir := a.v.GetString("charts"); dir != "" {
		if err := writeCharts(dir, view); err != nil {
			return err
		}
		a.logger.Info("charts written", "dir", dir)
	}
	return nil
}

func writeReport(w io.Writer, format string, view *models.ViewModel) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w, view)
	}
}

func writeText(w io.Writer, view *models.ViewModel) error {
	if view.Empty {
		_, err := fmt.Fprintln(w, view.Warning)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Rows:\t%d\n", view.RowCount)
	fmt.Fprintf(tw, "Total sales:\t%.2f\n\n", view.TotalSales)

	fmt.Fprintln(tw, "MONTH\tSALES")
	for _, m := range view.MonthlySales {
		fmt.Fprintf(tw, "%s\t%.2f\n", m.Month, m.Sales)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "REGION\tSALES")
	for _, r := range view.RegionSales {
		fmt.Fprintf(tw, "%s\t%.2f\n", r.Region, r.Sales)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "REGION\tCATEGORY\tSALES")
	for _, rc := range view.RegionCategory {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\n", rc.Region, rc.Category, rc.Sales)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if view.Recommendation != nil {
		_, err := fmt.Fprintf(w, "\n%s\n", view.Recommendation.Text)
		return err
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeCharts(dir string, view *models.ViewModel) error {
	for _, name := range []string{charts.Monthly, charts.Region, charts.RegionCategory} {
		path := filepath.Join(dir, name+".png")
		if err := writeFile(path, func(w io.Writer) error { return charts.Render(w, name, view) }); err != nil {
			return err
		}
	}
	return nil
}
