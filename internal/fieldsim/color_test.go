package fieldsim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumidityToColor(t *testing.T) {
	assert.Equal(t, "rgba(56, 132, 255, 0.080)", HumidityToColor(62))
	assert.Equal(t, "rgba(56, 132, 255, 0.850)", HumidityToColor(74))
	assert.Equal(t, "rgba(56, 132, 255, 0.465)", HumidityToColor(68))
}

func TestHumidityAlpha_MonotonicInBand(t *testing.T) {
	prev := HumidityAlpha(62)
	for v := 62.0; v <= 74; v += 0.1 {
		a := HumidityAlpha(v)
		require.GreaterOrEqual(t, a, prev, "alpha decreased at %v", v)
		prev = a
	}
}

func TestHumidityAlpha_ConstantOutsideBand(t *testing.T) {
	low := HumidityAlpha(62)
	high := HumidityAlpha(74)
	for _, v := range []float64{-1000, 0, 50, 61.99} {
		assert.Equal(t, low, HumidityAlpha(v))
	}
	for _, v := range []float64{74.01, 80, 1e9, math.Inf(1)} {
		assert.Equal(t, high, HumidityAlpha(v))
	}
	assert.Equal(t, low, HumidityAlpha(math.Inf(-1)))
	assert.Equal(t, low, HumidityAlpha(math.NaN()))
}
