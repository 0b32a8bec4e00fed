package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"superstore-dashboard/internal/models"
	"superstore-dashboard/internal/services"
)

func newOptionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the regions, categories and products in the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}

			ds, err := services.LoadFile(cmd.Context(), a.v.GetString("file"))
			if err != nil {
				return err
			}
			return writeOptions(a.stdout, format, services.DatasetOptions(ds))
		},
	}
	cmd.Flags().String("format", formatText, "output format: text, json or yaml")
	return cmd
}

func writeOptions(w io.Writer, format string, opts *models.Options) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(opts)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(opts); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		for _, section := range []struct {
			title  string
			values []string
		}{
			{"Regions", opts.Regions},
			{"Categories", opts.Categories},
			{"Products", opts.Products},
		} {
			if _, err := fmt.Fprintf(w, "%s (%d): %s\n", section.title, len(section.values), strings.Join(section.values, ", ")); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}
