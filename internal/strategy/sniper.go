package strategy

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alias1177/Sniper/internal/calculate"
	"github.com/Alias1177/Sniper/models"
)

// Sniper is the momentum strategy: a fast/slow SMA trend gate confirmed by
// ADX strength, above-average volume, a Stochastic crossover in the trend
// direction and an expanding MACD histogram.
type Sniper struct {
	*Base
}

// NewSniper builds the momentum strategy with its default parameters
// (SMA 10/20, Stochastic 14/3, ADX 14, MACD 12/26/9).
func NewSniper(logger zerolog.Logger) (*Sniper, error) {
	params := calculate.DefaultParams()
	params.SMAFastPeriod = 10
	params.SMASlowPeriod = 20

	base, err := NewBase(models.StrategySniper, params, logger)
	if err != nil {
		return nil, err
	}
	return &Sniper{Base: base}, nil
}

// Evaluate implements Strategy.
func (s *Sniper) Evaluate(symbol string, timeframe models.Timeframe, candles []models.Candle) *models.Signal {
	if !s.ready(symbol, timeframe, candles) {
		return nil
	}

	set := calculate.Calculate(candles, s.params)
	i := len(candles) - 1
	j := i - 1
	last := candles[i]

	if !defined(set.SMAFast[i], set.SMASlow[i], set.ADX[i], set.ATR[i],
		set.VolumeMA[i], set.StochK[i], set.StochD[i], set.StochK[j], set.StochD[j]) {
		s.logger.Warn().Str("symbol", symbol).Msg("indicators not settled, skipping bar")
		return nil
	}

	trendUp := set.SMAFast[i] > set.SMASlow[i] && last.Close > set.SMASlow[i]
	trendDown := set.SMAFast[i] < set.SMASlow[i] && last.Close < set.SMASlow[i]
	strongTrend := set.ADX[i] > 25
	highVolume := last.Volume > set.VolumeMA[i]

	stochCrossUp := set.StochK[i] > set.StochD[i] && set.StochK[j] < set.StochD[j]
	stochCrossDown := set.StochK[i] < set.StochD[i] && set.StochK[j] > set.StochD[j]

	buySignal := trendUp && strongTrend && highVolume &&
		stochCrossUp &&
		set.MACDHist[i] > 0 && set.MACDHist[i] > set.MACDHist[j]

	sellSignal := trendDown && strongTrend && highVolume &&
		stochCrossDown &&
		set.MACDHist[i] < 0 && set.MACDHist[i] < set.MACDHist[j]

	if buySignal && sellSignal {
		return s.conflicting(symbol, timeframe)
	}

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
			StopLoss:   last.Low - 2*set.ATR[i],
			TakeProfit: last.Close + 3*set.ATR[i],
			Strategy:   s.name,
			Comment:    fmt.Sprintf("strategy: %s", s.name),
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
			StopLoss:   last.High + 2*set.ATR[i],
			TakeProfit: last.Close - 3*set.ATR[i],
			Strategy:   s.name,
			Comment:    fmt.Sprintf("strategy: %s", s.name),
		}
	}

	s.logger.Debug().Str("symbol", symbol).Int("timeframe", int(timeframe)).Msg("no signal")
	return nil
}
