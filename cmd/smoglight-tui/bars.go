package main

import "math"

// Display scaling for the bar chart. CO2 and CO accumulate past 100 in
// raw units over long red streaks, so they use a saturating scale that
// stays readable as values grow; fresh O2 is already a 0-100 percentage
// and maps directly.
const saturationScale = 40.0

func scaledBarFraction(value float64, direct bool) float64 {
	if direct {
		return clampFraction(value / 100.0)
	}
	sat := 1.0 - math.Exp(-value/saturationScale)
	return clampFraction(sat)
}

func clampFraction(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
