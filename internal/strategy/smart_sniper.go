package strategy

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/Alias1177/Sniper/internal/calculate"
	"github.com/Alias1177/Sniper/models"
)

// SmartSniper is the volume-trend strategy. On top of the momentum rules it
// requires the price to sit on the right side of VWAP, a volume ratio above
// 1.5 and RSI inside the directional band, and it anchors the stop-loss to
// VWAP instead of the raw bar extreme.
type SmartSniper struct {
	*Base
}

// NewSmartSniper builds the volume-trend strategy with its default
// parameters (SMA 5/20, Stochastic 5/3, RSI 14, MACD 12/26/9).
func NewSmartSniper(logger zerolog.Logger) (*SmartSniper, error) {
	params := calculate.DefaultParams()
	params.SMAFastPeriod = 5
	params.SMASlowPeriod = 20
	params.StochKPeriod = 5

	base, err := NewBase(models.StrategySmartSniper, params, logger)
	if err != nil {
		return nil, err
	}
	return &SmartSniper{Base: base}, nil
}

// Evaluate implements Strategy.
func (s *SmartSniper) Evaluate(symbol string, timeframe models.Timeframe, candles []models.Candle) *models.Signal {
	if !s.ready(symbol, timeframe, candles) {
		return nil
	}

	set := calculate.Calculate(candles, s.params)
	i := len(candles) - 1
	j := i - 1
	last := candles[i]

	if !defined(set.SMAFast[i], set.SMASlow[i], set.VWAP[i], set.RSI[i], set.ADX[i],
		set.ATR[i], set.VolumeRatio[i], set.StochK[i], set.StochD[i], set.StochK[j], set.StochD[j]) {
		s.logger.Warn().Str("symbol", symbol).Msg("indicators not settled, skipping bar")
		return nil
	}

	trendUp := set.SMAFast[i] > set.SMASlow[i] && last.Close > set.VWAP[i]
	trendDown := set.SMAFast[i] < set.SMASlow[i] && last.Close < set.VWAP[i]
	strongTrend := set.ADX[i] > 25
	highVolume := set.VolumeRatio[i] > 1.5

	stochCrossUp := set.StochK[i] > set.StochD[i] && set.StochK[j] < set.StochD[j]
	stochCrossDown := set.StochK[i] < set.StochD[i] && set.StochK[j] > set.StochD[j]

	buySignal := trendUp && strongTrend && highVolume &&
		set.RSI[i] > 50 && set.RSI[i] < 70 &&
		stochCrossUp &&
		set.MACDHist[i] > 0 && set.MACDHist[i] > set.MACDHist[j]

	sellSignal := trendDown && strongTrend && highVolume &&
		set.RSI[i] < 50 && set.RSI[i] > 30 &&
		stochCrossDown &&
		set.MACDHist[i] < 0 && set.MACDHist[i] < set.MACDHist[j]

	if buySignal && sellSignal {
		return s.conflicting(symbol, timeframe)
	}

	comment := fmt.Sprintf("strategy: %s, timeframe: %d", s.name, timeframe)

	switch {
	case buySignal:
		if s.alreadySignalled(symbol, timeframe, last.Time) {
			return nil
		}
		s.logger.Info().Str("symbol", symbol).Msg("buy signal detected")
		return &models.Signal{
			Action:     models.ActionBuy,
			Symbol:     symbol,
			Timeframe:  timeframe,
			Price:      last.Close,
			StopLoss:   math.Min(last.Low, set.VWAP[i]) - 2*set.ATR[i],
			TakeProfit: last.Close + 3*set.ATR[i],
			Strategy:   s.name,
			Comment:    comment,
		}
	case sellSignal:
		if s.alreadySignalled(symbol, timeframe, last.Time) {
			return nil
		}
		s.logger.Info().Str("symbol", symbol).Msg("sell signal detected")
		return &models.Signal{
			Action:     models.ActionSell,
			Symbol:     symbol,
			Timeframe:  timeframe,
			Price:      last.Close,
			StopLoss:   math.Max(last.High, set.VWAP[i]) + 2*set.ATR[i],
			TakeProfit: last.Close - 3*set.ATR[i],
			Strategy:   s.name,
			Comment:    comment,
		}
	}

	return nil
}
