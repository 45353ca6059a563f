package calculate

import (
	"math"

	"github.com/Alias1177/Sniper/models"
)

// TrueRange computes the per-bar true range:
// max(high-low, |high-prevClose|, |low-prevClose|). The first bar has no
// previous close, so its true range is simply high-low.
func TrueRange(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	if len(candles) == 0 {
		return out
	}
	out[0] = candles[0].High - candles[0].Low
	for i := 1; i < len(candles); i++ {
		highLow := candles[i].High - candles[i].Low
		highClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowClose := math.Abs(candles[i].Low - candles[i-1].Close)
		out[i] = math.Max(highLow, math.Max(highClose, lowClose))
	}
	return out
}

// ATR is the rolling mean of the true range over period, defined from index
// period-1.
func ATR(candles []models.Candle, period int) []float64 {
	return SMA(TrueRange(candles), period)
}
