package calculate

import (
	"math"

	"github.com/Alias1177/Sniper/models"
)

// VolumeRatio computes current volume divided by its rolling mean over
// period, defined from index period-1. A zero mean volume (a dead series)
// yields NaN rather than a division error.
func VolumeRatio(candles []models.Candle, period int) (ratio, volumeMA []float64) {
	volumeMA = SMA(Volumes(candles), period)
	ratio = nanSlice(len(candles))
	for i := range candles {
		if !math.IsNaN(volumeMA[i]) && volumeMA[i] > 0 {
			ratio[i] = candles[i].Volume / volumeMA[i]
		}
	}
	return ratio, volumeMA
}
