package fieldsim

import (
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/banshee-data/slice0/internal/timeutil"
)

// Time series defaults. Each sample renders a SeriesGridWidth x
// SeriesGridHeight field.
const (
	DefaultPointCount    = 48
	DefaultStepMinutes   = 10
	DefaultAnchorMinutes = 14*60 + 20
	SeriesGridWidth      = 20
	SeriesGridHeight     = 12
	MaxPointCount        = 2016
	MaxStepMinutes       = 24 * 60
)

// TimeSeriesInput selects the window and simulation knobs for
// BuildTimeSeries. Nil fields take package defaults.
type TimeSeriesInput struct {
	PointCount    *int     `json:"point_count,omitempty"`
	StepMinutes   *int     `json:"step_minutes,omitempty"`
	AnchorMinutes *int     `json:"anchor_minutes,omitempty"`
	Seed          *uint32  `json:"seed,omitempty"`
	ZSlice        float64  `json:"z_slice"`
	DoorIntensity *float64 `json:"door_intensity,omitempty"`
	FanMix        *float64 `json:"fan_mix,omitempty"`
}

// TimeSeriesPoint is one summarised frame. Minute is the wrapped
// minute-of-day the label was formatted from.
type TimeSeriesPoint struct {
	TimeLabel string  `json:"time_label"`
	Minute    int     `json:"minute"`
	Avg       float64 `json:"avg"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// TimeSeries is ordered oldest sample first.
type TimeSeries []TimeSeriesPoint

// BuildTimeSeries simulates PointCount frames spaced StepMinutes apart and
// ending at AnchorMinutes, summarising each with values rounded to two
// decimals.
func BuildTimeSeries(in TimeSeriesInput) (TimeSeries, error) {
	count := DefaultPointCount
	if in.PointCount != nil {
		count = *in.PointCount
	}
	if count <= 0 || count > MaxPointCount {
		return nil, fmt.Errorf("%w: point count must be in [1, %d], got %d", ErrInvalidArgument, MaxPointCount, count)
	}
	step := DefaultStepMinutes
	if in.StepMinutes != nil {
		step = *in.StepMinutes
	}
	if step <= 0 || step > MaxStepMinutes {
		return nil, fmt.Errorf("%w: step must be in [1, %d] minutes, got %d", ErrInvalidArgument, MaxStepMinutes, step)
	}
	anchor := DefaultAnchorMinutes
	if in.AnchorMinutes != nil {
		anchor = *in.AnchorMinutes
	}

	series := make(TimeSeries, 0, count)
	for i := 0; i < count; i++ {
		minute := timeutil.WrapMinutes(anchor - (count-1-i)*step)

		p, err := Normalize(SimInput{
			Width:         SeriesGridWidth,
			Height:        SeriesGridHeight,
			ZSlice:        in.ZSlice,
			TimeMinutes:   minute,
			DoorIntensity: in.DoorIntensity,
			FanMix:        in.FanMix,
			Seed:          in.Seed,
		})
		if err != nil {
			return nil, err
		}
		field, err := Simulate(p)
		if err != nil {
			return nil, err
		}
		s, err := Summarize(field.Grid)
		if err != nil {
			return nil, err
		}

		series = append(series, TimeSeriesPoint{
			TimeLabel: timeutil.FormatTimeOfDay(minute),
			Minute:    minute,
			Avg:       scalar.Round(s.Avg, 2),
			Min:       scalar.Round(s.Min, 2),
			Max:       scalar.Round(s.Max, 2),
		})
	}
	return series, nil
}
