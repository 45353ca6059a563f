package calculate

import "github.com/Alias1177/Sniper/models"

// VWAP computes the volume weighted average price:
// cumulative(typicalPrice * volume) / cumulative(volume).
//
// The accumulation runs from the start of the supplied window and is NOT
// reset per trading session. Callers that want an intraday session VWAP
// must re-window the candle series before calling. Entries are NaN until
// the cumulative volume becomes positive.
func VWAP(candles []models.Candle) []float64 {
	out := nanSlice(len(candles))
	var cumVolume, cumTypical float64
	for i, c := range candles {
		typical := (c.High + c.Low + c.Close) / 3.0
		cumVolume += c.Volume
		cumTypical += typical * c.Volume
		if cumVolume > 0 {
			out[i] = cumTypical / cumVolume
		}
	}
	return out
}
