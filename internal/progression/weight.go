// Package progression implements the 5/3/1 progression engine: set prescription from a training max, one-rep max
// estimation and the week, cycle and training max transitions that follow a completed workout.
//
// Everything in this package is pure. Persistence and locking belong to the caller.
package progression

import "math"

// DefaultRoundingIncrement is the smallest plate step used when rounding prescribed weights.
const DefaultRoundingIncrement = 2.5

// WeightForPercentage returns percent of trainingMax rounded half up to the nearest multiple of increment.
//
// A non-positive increment disables rounding.
func WeightForPercentage(trainingMax, percent, increment float64) float64 {
	return RoundToIncrement(trainingMax*percent/100, increment) //nolint:mnd // percent.
}

// RoundToIncrement rounds weight half up to the nearest multiple of increment.
func RoundToIncrement(weight, increment float64) float64 {
	if increment <= 0 {
		return weight
	}
	steps := math.Floor(weight/increment + 0.5) //nolint:mnd // half up.
	// Multiplying back can leave float noise such as 92.50000000000001.
	return math.Round(steps*increment*1e6) / 1e6 //nolint:mnd // six decimals is below any plate.
}
