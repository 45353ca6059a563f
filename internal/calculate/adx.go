package calculate

import (
	"math"

	"github.com/Alias1177/Sniper/models"
)

// ADX computes the Wilder average directional index together with the +DI
// and -DI series. Directional movement follows the standard exclusivity
// rule: per bar only the larger of +DM/-DM is kept, the other is zeroed.
// +DI/-DI are defined from index period, ADX from index 2*period-1.
func ADX(candles []models.Candle, period int) (adx, plusDI, minusDI []float64) {
	n := len(candles)
	adx = nanSlice(n)
	plusDI = nanSlice(n)
	minusDI = nanSlice(n)
	if period <= 0 || n < 2*period {
		return adx, plusDI, minusDI
	}

	tr := TrueRange(candles)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	// Wilder smoothing: seed with the sum of the first period values, then
	// smoothed = smoothed - smoothed/period + current.
	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := nanSlice(n)
	for i := period; i < n; i++ {
		if i > period {
			smTR = smTR - smTR/float64(period) + tr[i]
			smPlus = smPlus - smPlus/float64(period) + plusDM[i]
			smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		}
		if smTR == 0 {
			continue
		}
		pdi := 100.0 * smPlus / smTR
		mdi := 100.0 * smMinus / smTR
		plusDI[i] = pdi
		minusDI[i] = mdi
		if pdi+mdi > 0 {
			dx[i] = 100.0 * math.Abs(pdi-mdi) / (pdi + mdi)
		}
	}

	// ADX seeds with the mean of the first period DX values.
	seed := 0.0
	for i := period; i < 2*period; i++ {
		if math.IsNaN(dx[i]) {
			return adx, plusDI, minusDI
		}
		seed += dx[i]
	}
	adx[2*period-1] = seed / float64(period)
	for i := 2 * period; i < n; i++ {
		if math.IsNaN(dx[i]) {
			adx[i] = adx[i-1]
			continue
		}
		adx[i] = (adx[i-1]*float64(period-1) + dx[i]) / float64(period)
	}
	return adx, plusDI, minusDI
}
