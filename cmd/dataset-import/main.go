// Command dataset-import converts a geonames cities dump and its
// countryInfo.txt into the board's dataset file.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-board/internal/dataset"
	"github.com/i474232898/weather-board/internal/logging"
)

type options struct {
	countryInfo   string
	output        string
	minPopulation int64
	logLevel      string
}

func main() {
	if err := command().Execute(); err != nil {
		os.Exit(1)
	}
}

func command() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "dataset-import [cities.txt]",
		Short: "Build the city dataset from a geonames dump",
		Long: `Reads a tab-separated geonames cities dump, keeps cities above the
population threshold and writes them grouped by country as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.countryInfo, "country-info", "c", "", "Path to geonames countryInfo.txt")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().Int64Var(&opts.minPopulation, "min-population", dataset.DefaultMinPopulation, "Population a city must exceed")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level")
	return cmd
}

func run(citiesPath string, opts options, stdout io.Writer) error {
	log := logging.New(logging.Config{Level: opts.logLevel})

	names := map[string]string{}
	if opts.countryInfo != "" {
		f, err := os.Open(opts.countryInfo)
		if err != nil {
			return err
		}
		names, err = dataset.ParseCountryNames(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	in, err := os.Open(citiesPath)
	if err != nil {
		return err
	}
	defer in.Close()

	ds, err := dataset.ImportGeonames(in, names, opts.minPopulation)
	if err != nil {
		return fmt.Errorf("importing %s: %w", filepath.Base(citiesPath), err)
	}

	out := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := ds.WriteJSON(out); err != nil {
		return err
	}
	log.Info().
		Int("cities", ds.Len()).
		Int("countries", len(ds.Options())).
		Msg("Dataset written")
	return nil
}
