package fieldsim

import (
	"fmt"
	"math"
)

// Defaults applied by Normalize when the matching SimInput field is nil.
const (
	DefaultDoorIntensity = 0.5
	DefaultFanMix        = 0.5
	DefaultSeed          = uint32(11)
	DefaultClampMin      = 60.0
	DefaultClampMax      = 76.0
)

// MaxGridSide bounds Width and Height.
const MaxGridSide = 256

// SimInput is the caller-facing form of SimParams. Nil pointer fields take
// their defaults during Normalize.
type SimInput struct {
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	ZSlice        float64  `json:"z_slice"`
	TimeMinutes   int      `json:"time_minutes"`
	DoorIntensity *float64 `json:"door_intensity,omitempty"`
	FanMix        *float64 `json:"fan_mix,omitempty"`
	Seed          *uint32  `json:"seed,omitempty"`
	ClampMin      *float64 `json:"clamp_min,omitempty"`
	ClampMax      *float64 `json:"clamp_max,omitempty"`
}

// SimParams is a fully populated simulation request.
type SimParams struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	ZSlice        float64 `json:"z_slice"`
	TimeMinutes   int     `json:"time_minutes"`
	DoorIntensity float64 `json:"door_intensity"`
	FanMix        float64 `json:"fan_mix"`
	Seed          uint32  `json:"seed"`
	ClampMin      float64 `json:"clamp_min"`
	ClampMax      float64 `json:"clamp_max"`
}

// Normalize fills defaults and bounds the unit-interval fields (ZSlice,
// DoorIntensity, FanMix) to [0, 1]. It returns ErrInvalidArgument for
// NaN knobs, dimensions outside [1, MaxGridSide], non-finite clamp bounds,
// or an inverted clamp range.
func Normalize(in SimInput) (SimParams, error) {
	if math.IsNaN(in.ZSlice) {
		return SimParams{}, fmt.Errorf("%w: z_slice is NaN", ErrInvalidArgument)
	}
	if in.DoorIntensity != nil && math.IsNaN(*in.DoorIntensity) {
		return SimParams{}, fmt.Errorf("%w: door_intensity is NaN", ErrInvalidArgument)
	}
	if in.FanMix != nil && math.IsNaN(*in.FanMix) {
		return SimParams{}, fmt.Errorf("%w: fan_mix is NaN", ErrInvalidArgument)
	}
	p := SimParams{
		Width:         in.Width,
		Height:        in.Height,
		ZSlice:        Clamp(in.ZSlice, 0, 1),
		TimeMinutes:   in.TimeMinutes,
		DoorIntensity: DefaultDoorIntensity,
		FanMix:        DefaultFanMix,
		Seed:          DefaultSeed,
		ClampMin:      DefaultClampMin,
		ClampMax:      DefaultClampMax,
	}
	if in.DoorIntensity != nil {
		p.DoorIntensity = Clamp(*in.DoorIntensity, 0, 1)
	}
	if in.FanMix != nil {
		p.FanMix = Clamp(*in.FanMix, 0, 1)
	}
	if in.Seed != nil {
		p.Seed = *in.Seed
	}
	if in.ClampMin != nil {
		p.ClampMin = *in.ClampMin
	}
	if in.ClampMax != nil {
		p.ClampMax = *in.ClampMax
	}
	if err := p.Validate(); err != nil {
		return SimParams{}, err
	}
	return p, nil
}

// Validate reports whether p can produce a well-formed grid.
func (p SimParams) Validate() error {
	if p.Width <= 0 || p.Width > MaxGridSide {
		return fmt.Errorf("%w: width must be in [1, %d], got %d", ErrInvalidArgument, MaxGridSide, p.Width)
	}
	if p.Height <= 0 || p.Height > MaxGridSide {
		return fmt.Errorf("%w: height must be in [1, %d], got %d", ErrInvalidArgument, MaxGridSide, p.Height)
	}
	for name, v := range map[string]float64{
		"z_slice":        p.ZSlice,
		"door_intensity": p.DoorIntensity,
		"fan_mix":        p.FanMix,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in [0, 1], got %v", ErrInvalidArgument, name, v)
		}
	}
	if math.IsNaN(p.ClampMin) || math.IsInf(p.ClampMin, 0) {
		return fmt.Errorf("%w: clamp_min must be finite, got %v", ErrInvalidArgument, p.ClampMin)
	}
	if math.IsNaN(p.ClampMax) || math.IsInf(p.ClampMax, 0) {
		return fmt.Errorf("%w: clamp_max must be finite, got %v", ErrInvalidArgument, p.ClampMax)
	}
	if p.ClampMin > p.ClampMax {
		return fmt.Errorf("%w: clamp_min %.2f exceeds clamp_max %.2f", ErrInvalidArgument, p.ClampMin, p.ClampMax)
	}
	return nil
}
