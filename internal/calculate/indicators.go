package calculate

import (
	"errors"

	"github.com/Alias1177/Sniper/models"
)

// Params holds the lookback periods and pattern thresholds shared by the
// strategies. Zero values are not filled in; use DefaultParams as the base.
type Params struct {
	SMAFastPeriod    int
	SMASlowPeriod    int
	EMAPeriod        int
	RSIPeriod        int
	StochKPeriod     int
	StochDPeriod     int
	ATRPeriod        int
	ADXPeriod        int
	MACDFast         int
	MACDSlow         int
	MACDSignal       int
	VolumeMAPeriod   int
	LevelPeriod      int
	PinbarThreshold  float64
	EngulfingRatio   float64
}

// DefaultParams returns the baseline parameter set.
func DefaultParams() Params {
	return Params{
		SMAFastPeriod:   20,
		SMASlowPeriod:   50,
		EMAPeriod:       20,
		RSIPeriod:       14,
		StochKPeriod:    14,
		StochDPeriod:    3,
		ATRPeriod:       14,
		ADXPeriod:       14,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		VolumeMAPeriod:  20,
		LevelPeriod:     20,
		PinbarThreshold: 2.0,
		EngulfingRatio:  1.5,
	}
}

// Validate checks that all periods are positive.
func (p Params) Validate() error {
	periods := []int{
		p.SMAFastPeriod, p.SMASlowPeriod, p.EMAPeriod, p.RSIPeriod,
		p.StochKPeriod, p.StochDPeriod, p.ATRPeriod,
		p.ADXPeriod, p.MACDFast, p.MACDSlow, p.MACDSignal,
		p.VolumeMAPeriod, p.LevelPeriod,
	}
	for _, v := range periods {
		if v <= 0 {
			return errors.New("all indicator periods must be positive")
		}
	}
	if p.PinbarThreshold <= 0 || p.EngulfingRatio <= 0 {
		return errors.New("pattern thresholds must be positive")
	}
	return nil
}

// RequiredHistorySize returns the minimum number of candles needed before
// every series in the set has settled, with a 50 bar safety margin.
func (p Params) RequiredHistorySize() int {
	maxPeriod := p.SMAFastPeriod
	for _, v := range []int{
		p.SMASlowPeriod,
		p.EMAPeriod,
		p.RSIPeriod,
		p.StochKPeriod + p.StochDPeriod,
		p.ATRPeriod,
		p.ADXPeriod * 2,
		p.MACDSlow + p.MACDSignal,
		p.VolumeMAPeriod,
		p.LevelPeriod,
	} {
		if v > maxPeriod {
			maxPeriod = v
		}
	}
	return maxPeriod + 50
}

// IndicatorSet holds every derived series, index-aligned with the candle
// series it was computed from. Warmup entries are NaN; check Defined before
// consuming a value.
type IndicatorSet struct {
	SMAFast     []float64
	SMASlow     []float64
	EMA         []float64
	RSI         []float64
	StochK      []float64
	StochD      []float64
	ATR         []float64
	ADX         []float64
	PlusDI      []float64
	MinusDI     []float64
	MACD        []float64
	MACDSignal  []float64
	MACDHist    []float64
	VWAP        []float64
	VolumeMA    []float64
	VolumeRatio []float64
	Support     []float64
	Resistance  []float64
}

// Calculate derives the full indicator set from a candle series. The
// computation is pure: the same candles and params always produce identical
// output, and the input series is never modified.
func Calculate(candles []models.Candle, p Params) *IndicatorSet {
	closes := Closes(candles)

	set := &IndicatorSet{
		SMAFast: SMA(closes, p.SMAFastPeriod),
		SMASlow: SMA(closes, p.SMASlowPeriod),
		EMA:     EMA(closes, p.EMAPeriod),
		RSI:     RSI(candles, p.RSIPeriod),
		ATR:     ATR(candles, p.ATRPeriod),
		VWAP:    VWAP(candles),
	}
	set.StochK, set.StochD = Stochastic(candles, p.StochKPeriod, p.StochDPeriod)
	set.ADX, set.PlusDI, set.MinusDI = ADX(candles, p.ADXPeriod)
	set.MACD, set.MACDSignal, set.MACDHist = MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	set.VolumeRatio, set.VolumeMA = VolumeRatio(candles, p.VolumeMAPeriod)
	set.Support = RollingLow(candles, p.LevelPeriod)
	set.Resistance = RollingHigh(candles, p.LevelPeriod)
	return set
}
