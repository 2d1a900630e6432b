package fieldsim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the min/max/mean of every cell in a grid. Values are exact;
// rounding for display is left to the caller.
type Summary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Summarize reduces g to its Summary. An empty grid, or any empty row, is
// rejected with ErrInvalidArgument.
func Summarize(g Grid) (Summary, error) {
	cells, err := flatten(g)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Min: floats.Min(cells),
		Max: floats.Max(cells),
		Avg: stat.Mean(cells, nil),
	}, nil
}

// flatten copies g into a row-major slice.
func flatten(g Grid) ([]float64, error) {
	if len(g) == 0 {
		return nil, fmt.Errorf("%w: grid has no rows", ErrInvalidArgument)
	}
	n := 0
	for y, row := range g {
		if len(row) == 0 {
			return nil, fmt.Errorf("%w: grid row %d has no cells", ErrInvalidArgument, y)
		}
		n += len(row)
	}
	cells := make([]float64, 0, n)
	for _, row := range g {
		cells = append(cells, row...)
	}
	return cells, nil
}
