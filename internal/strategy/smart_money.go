package strategy

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/Alias1177/Sniper/internal/calculate"
	"github.com/Alias1177/Sniper/internal/patterns"
	"github.com/Alias1177/Sniper/models"
)

// SmartMoney is the price-action strategy. Instead of a moving-average
// crossover it looks for a trend stack or proximity to a rolling 20-bar
// support/resistance level, a qualifying candlestick pattern in the
// confirming direction, an RSI mid-band filter and a volume surge. Targets
// are wider than the momentum strategies since it hunts swing moves.
type SmartMoney struct {
	*Base
}

// NewSmartMoney builds the price-action strategy with its default
// parameters (SMA 50, EMA 20, RSI 14, ATR 14, 20-bar levels).
func NewSmartMoney(logger zerolog.Logger) (*SmartMoney, error) {
	params := calculate.DefaultParams()
	params.SMASlowPeriod = 50
	params.EMAPeriod = 20

	base, err := NewBase(models.StrategySmartMoney, params, logger)
	if err != nil {
		return nil, err
	}
	return &SmartMoney{Base: base}, nil
}

// Evaluate implements Strategy.
func (s *SmartMoney) Evaluate(symbol string, timeframe models.Timeframe, candles []models.Candle) *models.Signal {
	if !s.ready(symbol, timeframe, candles) {
		return nil
	}

	set := calculate.Calculate(candles, s.params)
	i := len(candles) - 1
	last, prev := candles[i], candles[i-1]

	if !defined(set.SMASlow[i], set.EMA[i], set.RSI[i], set.ATR[i],
		set.VolumeRatio[i], set.Support[i], set.Resistance[i]) {
		s.logger.Warn().Str("symbol", symbol).Msg("indicators not settled, skipping bar")
		return nil
	}

	support := set.Support[i]
	resistance := set.Resistance[i]

	trendUp := last.Close > set.EMA[i] && set.EMA[i] > set.SMASlow[i]
	trendDown := last.Close < set.EMA[i] && set.EMA[i] < set.SMASlow[i]
	highVolume := set.VolumeRatio[i] > 1.5
	nearSupport := math.Abs(last.Low-support) < 2*set.ATR[i]
	nearResistance := math.Abs(last.High-resistance) < 2*set.ATR[i]
	rsiMidBand := set.RSI[i] > 30 && set.RSI[i] < 70

	flags := patterns.Detect(prev, last, s.params.PinbarThreshold, s.params.EngulfingRatio)

	bullishPattern := (flags.IsPinbar && flags.DominantShadow == patterns.ShadowLower) ||
		(flags.IsEngulfing && flags.Bullish) ||
		(flags.IsPiercing && flags.Bullish)

	bearishPattern := (flags.IsPinbar && flags.DominantShadow == patterns.ShadowUpper) ||
		(flags.IsEngulfing && !flags.Bullish) ||
		(flags.IsPiercing && !flags.Bullish)

	buySignal := (trendUp || nearSupport) && highVolume && bullishPattern && rsiMidBand
	sellSignal := (trendDown || nearResistance) && highVolume && bearishPattern && rsiMidBand

	if buySignal && sellSignal {
		return s.conflicting(symbol, timeframe)
	}

	comment := fmt.Sprintf("strategy: %s, pattern: %s", s.name, flags.Name())

	switch {
	case buySignal:
		if s.alreadySignalled(symbol, timeframe, last.Time) {
			return nil
		}
		s.logger.Info().Str("symbol", symbol).Str("pattern", flags.Name()).Msg("buy signal detected")
		return &models.Signal{
			Action:     models.ActionBuy,
			Symbol:     symbol,
			Timeframe:  timeframe,
			Price:      last.Close,
			StopLoss:   math.Min(last.Low, support) - 2*set.ATR[i],
			TakeProfit: last.Close + 4*set.ATR[i],
			Strategy:   s.name,
			Comment:    comment,
		}
	case sellSignal:
		if s.alreadySignalled(symbol, timeframe, last.Time) {
			return nil
		}
		s.logger.Info().Str("symbol", symbol).Str("pattern", flags.Name()).Msg("sell signal detected")
		return &models.Signal{
			Action:     models.ActionSell,
			Symbol:     symbol,
			Timeframe:  timeframe,
			Price:      last.Close,
			StopLoss:   math.Max(last.High, resistance) + 2*set.ATR[i],
			TakeProfit: last.Close - 4*set.ATR[i],
			Strategy:   s.name,
			Comment:    comment,
		}
	}

	s.logger.Debug().Str("symbol", symbol).Int("timeframe", int(timeframe)).Msg("no signal")
	return nil
}
