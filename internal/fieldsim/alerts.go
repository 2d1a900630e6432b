package fieldsim

import (
	"fmt"
	"math"
	"sort"
)

// Alert list caps. The coldest cells are listed ahead of the hottest.
const (
	MaxLowAlerts  = 6
	MaxHighAlerts = 4
)

// Thresholds are the band outside of which a cell raises an alert.
type Thresholds struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// DefaultThresholds returns the 66.5 / 72.5 comfort band.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 66.5, High: 72.5}
}

// AlertCell is a single out-of-band cell.
type AlertCell struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Value float64 `json:"value"`
}

// AlertSet lists low cells coldest first and high cells hottest first.
type AlertSet struct {
	Low  []AlertCell `json:"low"`
	High []AlertCell `json:"high"`
}

// ComputeAlerts scans g for cells strictly below th.Low or strictly above
// th.High. Equal values keep row-major scan order. Low may equal High, in
// which case every cell off that exact value raises an alert.
func ComputeAlerts(g Grid, th Thresholds) (AlertSet, error) {
	if len(g) == 0 {
		return AlertSet{}, fmt.Errorf("%w: grid has no rows", ErrInvalidArgument)
	}
	if math.IsNaN(th.Low) || math.IsNaN(th.High) {
		return AlertSet{}, fmt.Errorf("%w: thresholds must not be NaN", ErrInvalidArgument)
	}
	if th.Low > th.High {
		return AlertSet{}, fmt.Errorf("%w: low threshold %.2f exceeds high threshold %.2f", ErrInvalidArgument, th.Low, th.High)
	}

	low := []AlertCell{}
	high := []AlertCell{}
	for y, row := range g {
		for x, v := range row {
			switch {
			case v < th.Low:
				low = append(low, AlertCell{X: x, Y: y, Value: v})
			case v > th.High:
				high = append(high, AlertCell{X: x, Y: y, Value: v})
			}
		}
	}

	sort.SliceStable(low, func(i, j int) bool { return low[i].Value < low[j].Value })
	sort.SliceStable(high, func(i, j int) bool { return high[i].Value > high[j].Value })

	if len(low) > MaxLowAlerts {
		low = low[:MaxLowAlerts]
	}
	if len(high) > MaxHighAlerts {
		high = high[:MaxHighAlerts]
	}
	return AlertSet{Low: low, High: high}, nil
}
