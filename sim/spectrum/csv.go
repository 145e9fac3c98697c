package spectrum

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/scint-sim/scint-sim/sim"
)

// LoadTableCSV reads a two-column energy,weight CSV file.
func LoadTableCSV(path string) (sim.SpectrumTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening spectrum table: %w", err)
	}
	defer func() { _ = file.Close() }()
	return ReadTableCSV(file)
}

// ReadTableCSV parses energy,weight rows. A first row whose energy column is
// not a number is treated as a header and skipped; lines starting with '#'
// are comments. Validation of the values is left to BuildCumulative.
func ReadTableCSV(r io.Reader) (sim.SpectrumTable, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var table sim.SpectrumTable
	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", row, err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("CSV row %d has %d columns, expected 2", row, len(record))
		}
		energy, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			if row == 0 {
				continue // header
			}
			return nil, fmt.Errorf("CSV row %d: energy %q: %w", row, record[0], err)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("CSV row %d: weight %q: %w", row, record[1], err)
		}
		table = append(table, sim.SpectrumPoint{Energy: energy, Weight: weight})
	}
	return table, nil
}

// WriteCumulativeCSV writes energy, cumulative and normalised cumulative columns.
func WriteCumulativeCSV(w io.Writer, c *CumulativeDistribution) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"energy_ev", "cumulative", "probability"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i := 0; i < c.Len(); i++ {
		row := []string{
			strconv.FormatFloat(c.Energy(i), 'g', -1, 64),
			strconv.FormatFloat(c.Value(i), 'g', -1, 64),
			strconv.FormatFloat(c.Value(i)/c.Total(), 'f', 6, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
