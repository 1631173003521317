package trajectory

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/spatial/r2"
)

// Sample is one row of a trajectory CSV file. 1D recordings may omit y.
type Sample struct {
	T float64 `csv:"t"`
	X float64 `csv:"x"`
	Y float64 `csv:"y"`
}

// LoadCSV reads a trajectory file with a t,x,y header.
func LoadCSV(path string) (*Spline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrImportData, path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses trajectory rows from r and fits a spline through them.
func ReadCSV(r io.Reader) (*Spline, error) {
	var rows []*Sample
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("%w: parsing csv: %v", ErrImportData, err)
	}

	times := make([]float64, len(rows))
	positions := make([]r2.Vec, len(rows))
	for i, row := range rows {
		times[i] = row.T
		positions[i] = r2.Vec{X: row.X, Y: row.Y}
	}
	return NewSpline(times, positions)
}

// WriteCSV writes samples with a header row.
func WriteCSV(w io.Writer, samples []Sample) error {
	if err := gocsv.Marshal(samples, w); err != nil {
		return fmt.Errorf("writing trajectory: %w", err)
	}
	return nil
}
