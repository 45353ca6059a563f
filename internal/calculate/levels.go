package calculate

import (
	"math"

	"github.com/Alias1177/Sniper/models"
)

// RollingLow computes the rolling minimum of lows over period, used as a
// support level. Defined from index period-1.
func RollingLow(candles []models.Candle, period int) []float64 {
	out := nanSlice(len(candles))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(candles); i++ {
		lowest := math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			if candles[j].Low < lowest {
				lowest = candles[j].Low
			}
		}
		out[i] = lowest
	}
	return out
}

// RollingHigh computes the rolling maximum of highs over period, used as a
// resistance level. Defined from index period-1.
func RollingHigh(candles []models.Candle, period int) []float64 {
	out := nanSlice(len(candles))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(candles); i++ {
		highest := math.Inf(-1)
		for j := i - period + 1; j <= i; j++ {
			if candles[j].High > highest {
				highest = candles[j].High
			}
		}
		out[i] = highest
	}
	return out
}
