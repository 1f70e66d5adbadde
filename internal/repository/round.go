package repository

import "math"

// round2 rounds to two decimal places for reported averages.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
