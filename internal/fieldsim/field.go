package fieldsim

import (
	"math"

	"github.com/banshee-data/slice0/internal/prng"
)

// Field model constants. Distances are in grid cells, times in minutes.
const (
	baseValue          = 69.0
	pulsePeriodMinutes = 9.0
	noiseSpan          = 0.35 // uniform noise in [-0.175, 0.175]
	doorDecayCells     = 7.5
	doorRowFraction    = 0.45
	corridorSigma      = 1.4
	corridorWaveAmp    = 1.2
	tiltX              = 0.9
	tiltY              = -0.7
)

// pocket is a Gaussian bump placed at a fraction of the grid size.
type pocket struct {
	fx, fy float64
	radius float64
	bias   float64
}

var pockets = [...]pocket{
	{fx: 0.72, fy: 0.30, radius: 3.2, bias: -2.4}, // cold spot
	{fx: 0.28, fy: 0.72, radius: 2.8, bias: 2.1},  // warm spot
}

// Grid holds cell values indexed [y][x]; row 0 is the top of the room.
type Grid [][]float64

// Width returns the number of columns in the first row.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Height returns the number of rows.
func (g Grid) Height() int { return len(g) }

// DoorPoint marks the cell the door corridor emanates from.
type DoorPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Field is the output of one simulation step.
type Field struct {
	Grid      Grid      `json:"grid"`
	Door      DoorPoint `json:"door"`
	DoorPulse float64   `json:"door_pulse"`
}

// DoorFor returns the door location for a grid of the given height.
func DoorFor(height int) DoorPoint {
	return DoorPoint{X: 1, Y: int(math.Floor(float64(height) * doorRowFraction))}
}

// DoorPulse is the rectified sine door cycle: zero at every multiple of the
// nine minute period, peaking at 1 half way through it.
func DoorPulse(timeMinutes float64) float64 {
	phase := math.Mod(timeMinutes/pulsePeriodMinutes, 1)
	return math.Max(0, math.Sin(math.Pi*phase))
}

// Simulate renders the field described by p. It returns ErrInvalidArgument
// when p fails Validate.
func Simulate(p SimParams) (Field, error) {
	if err := p.Validate(); err != nil {
		return Field{}, err
	}

	rng := prng.New(prng.Derive(p.Seed, p.TimeMinutes, int(math.Round(p.ZSlice*100))))

	t := float64(p.TimeMinutes)
	vertical := Lerp(-1.2, 1.4, p.ZSlice)
	pulse := DoorPulse(t)
	mix := Lerp(0.98, 0.62, p.FanMix)
	door := DoorFor(p.Height)
	doorStrength := 1 + 2.6*p.DoorIntensity

	w, h := float64(p.Width), float64(p.Height)
	cx, cy := (w-1)/2, (h-1)/2

	grid := make(Grid, p.Height)
	for y := 0; y < p.Height; y++ {
		row := make([]float64, p.Width)
		fy := float64(y)
		for x := 0; x < p.Width; x++ {
			fx := float64(x)

			v := baseValue + vertical + tiltX*(fx-cx)/w + tiltY*(fy-cy)/h

			for _, pk := range pockets {
				dx := fx - pk.fx*w
				dy := fy - pk.fy*h
				v += pk.bias * math.Exp(-(dx*dx+dy*dy)/(2*pk.radius*pk.radius))
			}

			// Corridor centreline wanders with x and drifts with time.
			centre := float64(door.Y) + corridorWaveAmp*math.Sin(fx*0.55+t*0.35)
			dc := fy - centre
			corridor := math.Exp(-(dc * dc) / (2 * corridorSigma * corridorSigma))
			decay := math.Exp(-math.Hypot(fx-float64(door.X), fy-float64(door.Y)) / doorDecayCells)
			v -= doorStrength * pulse * corridor * decay

			v += (rng.Float64() - 0.5) * noiseSpan
			v = baseValue + (v-baseValue)*mix
			row[x] = Clamp(v, p.ClampMin, p.ClampMax)
		}
		grid[y] = row
	}

	return Field{Grid: grid, Door: door, DoorPulse: pulse}, nil
}
