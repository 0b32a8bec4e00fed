package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"superstore-dashboard/internal/config"
	"superstore-dashboard/internal/observability"
)

const defaultCSVFile = "Superstore_Enhanced.csv"

// app carries what every subcommand shares.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// newRootCmd builds the command tree. Flags can also be set through
// SUPERSTORE_* environment variables, e.g. SUPERSTORE_FILE.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		stdout: stdout,
		stderr: stderr,
	}
	a.v.SetEnvPrefix("SUPERSTORE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	a.v.SetDefault("file", defaultCSVFile)
	a.v.SetDefault("log-level", "warn")

	root := &cobra.Command{
		Use:           "superstore",
		Short:         "Superstore sales reports from the command line",
		Long:          `Filter a Superstore sales CSV by region, category and product, then print the monthly trend, regional totals and a recommendation, or export the filtered rows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = observability.NewLoggerTo(a.stderr, config.LoggerConfig{
				Level:  a.v.GetString("log-level"),
				Format: "text",
			}, false)
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.String("file", defaultCSVFile, "path to the sales CSV")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("file", pf.Lookup("file"))
	_ = a.v.BindPFlag("log-level", pf.Lookup("log-level"))

	root.AddCommand(newReportCmd(a), newOptionsCmd(a))
	return root
}
