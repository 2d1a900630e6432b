// Package prng provides a small seeded pseudo-random stream whose output is
// identical on every platform for a given seed. The simulator relies on this
// so that a (seed, time, slice) triple always renders the same field.
package prng

// golden is the mulberry32 state increment.
const golden = 0x6D2B79F5

// Source is a mulberry32 generator with 32 bits of state.
// A Source is not safe for concurrent use; create one per call.
type Source struct {
	state uint32
}

// New returns a Source seeded with seed.
func New(seed uint32) *Source {
	return &Source{state: seed}
}

// Uint32 advances the state and returns the next 32-bit output.
func (s *Source) Uint32() uint32 {
	s.state += golden
	t := s.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return t ^ (t >> 14)
}

// Float64 returns the next value in [0, 1).
func (s *Source) Float64() float64 {
	return float64(s.Uint32()) / 4294967296.0
}

// Intn returns a value in [0, n). It returns 0 when n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Float64() * float64(n))
}

// Func returns a closure yielding successive Float64 values for seed.
func Func(seed uint32) func() float64 {
	return New(seed).Float64
}

// Derive folds integer parameters into a base seed using wrapping uint32
// arithmetic. Each part is scaled by a distinct odd multiplier so that
// swapping two parts yields a different seed.
func Derive(base uint32, parts ...int) uint32 {
	seed := base
	for i, p := range parts {
		seed += uint32(int32(p)) * multipliers[i%len(multipliers)]
	}
	return seed
}

var multipliers = [...]uint32{131, 17, 7919, 104729}
