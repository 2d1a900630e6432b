// Package fieldsim generates a deterministic synthetic scalar field (a
// humidity-like grid) and the derived summaries, alerts, time series and
// door events shown on the Slice 0 demo charts.
//
// Every function is pure: each call seeds its own PRNG and allocates its own
// grid, so calls are safe from any number of goroutines. Identical inputs
// always produce identical outputs.
package fieldsim
