package calculate

import (
	"math"

	"github.com/Alias1177/Sniper/models"
)

// Stochastic computes the %K and %D oscillator series.
// %K = 100 * (close - lowestLow(kPeriod)) / (highestHigh(kPeriod) - lowestLow(kPeriod)),
// defined from index kPeriod-1; a flat range yields NaN rather than a
// division error. %D is the SMA of %K over dPeriod.
func Stochastic(candles []models.Candle, kPeriod, dPeriod int) (k, d []float64) {
	k = nanSlice(len(candles))
	if kPeriod <= 0 || dPeriod <= 0 {
		return k, nanSlice(len(candles))
	}
	for i := kPeriod - 1; i < len(candles); i++ {
		lowest := math.Inf(1)
		highest := math.Inf(-1)
		for j := i - kPeriod + 1; j <= i; j++ {
			if candles[j].Low < lowest {
				lowest = candles[j].Low
			}
			if candles[j].High > highest {
				highest = candles[j].High
			}
		}
		if highest-lowest > 0 {
			k[i] = 100.0 * (candles[i].Close - lowest) / (highest - lowest)
		}
	}
	d = SMA(k, dPeriod)
	return k, d
}
