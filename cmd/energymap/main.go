// Command energymap builds the U.S. state energy production choropleth and
// its companion files, and can preview them over HTTP.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/state-energy-map/internal/config"
	"github.com/couchcryptid/state-energy-map/internal/observability"
)

var (
	cfg    *config.Config
	logger *slog.Logger

	yearFlag      string
	outputDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "energymap",
	Short: "Build the state energy production and vulnerability map",
	Long: `energymap reads state boundaries, SEDS consumption and SEDS production tables,
computes one energy profile per state and renders an interactive HTML choropleth
plus optional static PNG, PDF report, XLSX workbook and GeoJSON exports.

Configuration comes from environment variables, optionally layered over the YAML
file named by CONFIG_FILE.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if yearFlag != "" {
			loaded.DataYear = yearFlag
		}
		if outputDirFlag != "" {
			loaded.OutputDir = outputDirFlag
		}
		cfg = loaded
		logger = observability.NewLogger(cfg)
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the pipeline once and write the output files",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build, then serve the output directory with health and metrics endpoints",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&yearFlag, "year", "", "data year column (overrides DATA_YEAR)")
	rootCmd.PersistentFlags().StringVar(&outputDirFlag, "output-dir", "", "output directory (overrides OUTPUT_DIR)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("energymap failed", "error", err)
		} else {
			slog.Error("energymap failed", "error", err)
		}
		os.Exit(1)
	}
}
