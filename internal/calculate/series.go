package calculate

import (
	"math"

	"github.com/Alias1177/Sniper/models"
)

// Defined reports whether an indicator value is usable. Entries inside an
// indicator's warmup region are NaN and must never be treated as zero.
func Defined(v float64) bool { return !math.IsNaN(v) }

// Closes extracts the close series from candles.
func Closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Volumes extracts the volume series from candles.
func Volumes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}

// nanSlice returns a slice of length n filled with NaN.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
