package frequency

import "math"

// MaxClocks bounds the clock table of one domain.
const MaxClocks = 1 << 16

// Quantize rounds a computed clock to the whole MHz value the hardware
// reports, rounding halves up. Every reported clock and every range
// validation goes through this function.
func Quantize(mhz float64) float64 {
	return math.Trunc(mhz + 0.5)
}

// clockCount is the number of representable clocks in [hwMin, hwMax].
func clockCount(hwMin, hwMax, step float64) int {
	return int(math.Floor((hwMax-hwMin)/step)) + 1
}

func availableClocks(hwMin, hwMax, step float64) []float64 {
	n := clockCount(hwMin, hwMax, step)
	clocks := make([]float64, n)
	for i := range clocks {
		clocks[i] = Quantize(hwMin + step*float64(i))
	}

	return clocks
}
