package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scint-sim/scint-sim/sim"
	"github.com/scint-sim/scint-sim/sim/generator"
	"github.com/scint-sim/scint-sim/sim/spectrum"
)

var (
	spectrumMaterial  string
	spectrumComponent string
	spectrumFile      string
	spectrumConfig    string
)

// spectrumCmd prints the cumulative distribution the sampler inverts
var spectrumCmd = &cobra.Command{
	Use:   "spectrum",
	Short: "Print the cumulative distribution of an emission spectrum",
	Run: func(cmd *cobra.Command, args []string) {
		table, err := lookupSpectrum(spectrumConfig, spectrumFile, spectrumMaterial, spectrumComponent)
		if err != nil {
			logrus.Fatalf("Spectrum lookup failed: %v", err)
		}
		if err := writeSpectrum(os.Stdout, table); err != nil {
			logrus.Fatalf("Spectrum output failed: %v", err)
		}
	},
}

// lookupSpectrum reads the table from file when given, otherwise from the
// default library extended by the run spec at configPath.
func lookupSpectrum(configPath, file, material, component string) (sim.SpectrumTable, error) {
	if file != "" {
		return spectrum.LoadTableCSV(file)
	}
	spec := &generator.Spec{}
	if configPath != "" {
		loaded, err := generator.LoadSpec(configPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
	}
	lib, err := spec.BuildLibrary()
	if err != nil {
		return nil, err
	}
	table, err := lib.Spectrum(material, component)
	if err != nil {
		return nil, fmt.Errorf("%w; available: %v", err, lib.Components())
	}
	return table, nil
}

// writeSpectrum builds the cumulative distribution of table and writes it as CSV.
func writeSpectrum(w io.Writer, table sim.SpectrumTable) error {
	cdf, err := spectrum.BuildCumulative(table)
	if err != nil {
		return err
	}
	return spectrum.WriteCumulativeCSV(w, cdf)
}

func init() {
	spectrumCmd.Flags().StringVar(&spectrumMaterial, "material", "LXe", "Spectrum material")
	spectrumCmd.Flags().StringVar(&spectrumComponent, "component", spectrum.ComponentFast, "Spectrum component")
	spectrumCmd.Flags().StringVar(&spectrumFile, "file", "", "Read the spectrum from an energy,weight CSV file instead")
	spectrumCmd.Flags().StringVar(&spectrumConfig, "config", "", "Run spec whose extra spectra are also searched")
	rootCmd.AddCommand(spectrumCmd)
}
