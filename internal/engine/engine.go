// Package engine runs the polling trading loop: on every tick it pulls
// bars, asks each enabled strategy for a signal, sizes the trade through
// the risk manager and hands the order to the executor. The loop is
// single-threaded; the core never runs concurrently with itself.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/Sniper/internal/broker"
	"github.com/Alias1177/Sniper/internal/calculate"
	"github.com/Alias1177/Sniper/internal/risk"
	"github.com/Alias1177/Sniper/internal/strategy"
	"github.com/Alias1177/Sniper/models"
)

// Ledger is the narrow persistence contract the engine works through: the
// bar cache, the trade ledger and the indicator snapshot store.
type Ledger interface {
	SaveCandles(symbol string, timeframe models.Timeframe, candles []models.Candle) error
	GetCandles(symbol string, timeframe models.Timeframe, count int) ([]models.Candle, error)
	SaveTrade(t models.Trade) (int64, error)
	GetTradesSince(since time.Time) ([]models.Trade, error)
	CacheIndicator(symbol string, timeframe models.Timeframe, barTime time.Time, name string, value float64) error
	GetCachedIndicator(symbol string, timeframe models.Timeframe, barTime time.Time, name string) (float64, bool, error)
}

// Notifier is the push channel for fired signals and daily reports.
type Notifier interface {
	NotifySignal(sig *models.Signal, size *risk.PositionSizeResult)
	NotifyDailySummary(trades []models.Trade)
	NotifyError(msg string)
}

// Options wires an Engine.
type Options struct {
	Bars     broker.BarProvider
	Account  broker.AccountProvider
	Executor broker.OrderExecutor
	Risk     *risk.Manager

	Strategies []strategy.Strategy
	Symbols    []string
	Timeframe  models.Timeframe

	// CandleCount is the minimum number of bars requested per evaluation;
	// it is raised automatically to the largest strategy history
	// requirement.
	CandleCount  int
	PollInterval time.Duration

	// Ledger and Notifier are optional; nil disables persistence or
	// notifications respectively.
	Ledger   Ledger
	Notifier Notifier

	// SummarySchedule is a cron spec for the daily trade recap.
	SummarySchedule string
}

// Engine is the trading loop orchestrator.
type Engine struct {
	opts   Options
	logger zerolog.Logger
	cron   *cron.Cron
}

// New validates the options and builds an engine.
func New(opts Options) (*Engine, error) {
	if opts.Bars == nil || opts.Account == nil || opts.Executor == nil || opts.Risk == nil {
		return nil, fmt.Errorf("engine: bars, account, executor and risk are required")
	}
	if len(opts.Strategies) == 0 {
		return nil, fmt.Errorf("engine: at least one strategy is required")
	}
	if len(opts.Symbols) == 0 {
		return nil, fmt.Errorf("engine: at least one symbol is required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Minute
	}

	for _, st := range opts.Strategies {
		if need := st.RequiredHistorySize(); need > opts.CandleCount {
			opts.CandleCount = need
		}
	}

	return &Engine{
		opts:   opts,
		logger: log.With().Str("component", "engine").Logger(),
	}, nil
}

// Run starts the polling loop and blocks until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if e.opts.SummarySchedule != "" && e.opts.Notifier != nil {
		e.cron = cron.New()
		if _, err := e.cron.AddFunc(e.opts.SummarySchedule, e.dailySummary); err != nil {
			return fmt.Errorf("engine: invalid summary schedule: %w", err)
		}
		e.cron.Start()
		defer e.cron.Stop()
	}

	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	e.logger.Info().
		Strs("symbols", e.opts.Symbols).
		Int("timeframe", int(e.opts.Timeframe)).
		Dur("poll_interval", e.opts.PollInterval).
		Msg("trading loop started")

	// Evaluate once at startup, then on every tick.
	e.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("trading loop stopped")
			return ctx.Err()
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	for _, symbol := range e.opts.Symbols {
		candles := e.loadBars(ctx, symbol)
		if len(candles) == 0 {
			continue
		}

		for _, st := range e.opts.Strategies {
			sig := st.Evaluate(symbol, e.opts.Timeframe, candles)
			if sig == nil {
				continue
			}
			e.handleSignal(ctx, sig)
		}
	}
}

// loadBars fetches the evaluation window from the bridge, falling back to
// the bar cache during an outage. A short fresh series is merged with
// cached history so a bridge restart does not starve the strategies.
func (e *Engine) loadBars(ctx context.Context, symbol string) []models.Candle {
	candles, err := e.opts.Bars.GetCandles(ctx, symbol, e.opts.Timeframe, e.opts.CandleCount)
	if err != nil {
		e.logger.Error().Err(err).Str("symbol", symbol).Msg("failed to fetch bars")
		if e.opts.Ledger == nil {
			return nil
		}
		cached, cacheErr := e.opts.Ledger.GetCandles(symbol, e.opts.Timeframe, e.opts.CandleCount)
		if cacheErr != nil {
			e.logger.Error().Err(cacheErr).Str("symbol", symbol).Msg("bar cache read failed")
			return nil
		}
		if len(cached) > 0 {
			e.logger.Warn().Str("symbol", symbol).Int("count", len(cached)).Msg("evaluating on cached bars")
		}
		return cached
	}

	if e.opts.Ledger != nil {
		if len(candles) < e.opts.CandleCount {
			cached, cacheErr := e.opts.Ledger.GetCandles(symbol, e.opts.Timeframe, e.opts.CandleCount)
			if cacheErr != nil {
				e.logger.Warn().Err(cacheErr).Str("symbol", symbol).Msg("bar cache read failed")
			} else {
				candles = models.MergeCandles(cached, candles)
			}
		}
		if err := e.opts.Ledger.SaveCandles(symbol, e.opts.Timeframe, candles); err != nil {
			e.logger.Warn().Err(err).Str("symbol", symbol).Msg("failed to cache bars")
		}
		e.snapshotIndicators(symbol, candles)
	}
	return candles
}

// snapshotIndicators persists the latest settled values of the monitoring
// indicators for the newest bar.
func (e *Engine) snapshotIndicators(symbol string, candles []models.Candle) {
	p := calculate.DefaultParams()
	if len(candles) < p.RequiredHistorySize() {
		return
	}
	set := calculate.Calculate(candles, p)
	i := len(candles) - 1
	barTime := candles[i].Time

	for name, value := range map[string]float64{
		"rsi":  set.RSI[i],
		"atr":  set.ATR[i],
		"adx":  set.ADX[i],
		"vwap": set.VWAP[i],
	} {
		if !calculate.Defined(value) {
			continue
		}
		// Indicator values are settled once the bar has closed, so an
		// entry already in the cache is never rewritten.
		if _, ok, err := e.opts.Ledger.GetCachedIndicator(symbol, e.opts.Timeframe, barTime, name); err == nil && ok {
			continue
		}
		if err := e.opts.Ledger.CacheIndicator(symbol, e.opts.Timeframe, barTime, name, value); err != nil {
			e.logger.Warn().Err(err).Str("symbol", symbol).Str("indicator", name).Msg("failed to cache indicator")
			return
		}
	}
}

// handleSignal sizes and submits one signal. Every rejection path logs and
// returns; nothing here retries.
func (e *Engine) handleSignal(ctx context.Context, sig *models.Signal) {
	info, err := e.opts.Account.GetSymbolInfo(ctx, sig.Symbol)
	if err != nil || info == nil || info.Point <= 0 {
		e.logger.Error().Err(err).Str("symbol", sig.Symbol).Msg("no symbol metadata, signal dropped")
		return
	}

	// The stop distance is converted to points in decimal: subtracting two
	// float64 price levels directly leaves sub-point dust that the volume
	// flooring would turn into a whole missing step.
	stopPoints, _ := decimal.NewFromFloat(sig.Price).
		Sub(decimal.NewFromFloat(sig.StopLoss)).
		Abs().
		Div(decimal.NewFromFloat(info.Point)).
		Float64()
	size := e.opts.Risk.CalculatePositionSize(ctx, sig.Symbol, stopPoints)
	if size == nil {
		e.logger.Warn().Str("symbol", sig.Symbol).Str("strategy", sig.Strategy).Msg("signal not sized, dropped")
		return
	}
	if !e.opts.Risk.CheckAllTradesRisk(ctx, size.RiskAmount) {
		e.logger.Warn().Str("symbol", sig.Symbol).Msg("aggregate risk limit, signal dropped")
		return
	}

	orderID, err := e.opts.Executor.Submit(ctx, models.OrderRequest{
		Symbol:     sig.Symbol,
		Action:     sig.Action,
		Volume:     size.Volume,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		Comment:    sig.Comment,
	})
	if err != nil {
		e.logger.Error().Err(err).Str("symbol", sig.Symbol).Msg("order submission failed")
		if e.opts.Notifier != nil {
			e.opts.Notifier.NotifyError(fmt.Sprintf("order failed for %s: %v", sig.Symbol, err))
		}
		return
	}

	e.logger.Info().
		Str("symbol", sig.Symbol).
		Str("strategy", sig.Strategy).
		Str("order_id", orderID).
		Float64("volume", size.Volume).
		Msg("order placed")

	if e.opts.Ledger != nil {
		if _, err := e.opts.Ledger.SaveTrade(models.Trade{
			Symbol:   sig.Symbol,
			Strategy: sig.Strategy,
			Action:   sig.Action,
			Volume:   size.Volume,
			OpenedAt: time.Now(),
		}); err != nil {
			e.logger.Warn().Err(err).Msg("failed to record trade")
		}
	}
	if e.opts.Notifier != nil {
		e.opts.Notifier.NotifySignal(sig, size)
	}
}

func (e *Engine) dailySummary() {
	if e.opts.Ledger == nil || e.opts.Notifier == nil {
		return
	}
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	trades, err := e.opts.Ledger.GetTradesSince(dayStart)
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to load trades for daily summary")
		return
	}
	e.opts.Notifier.NotifyDailySummary(trades)
}
