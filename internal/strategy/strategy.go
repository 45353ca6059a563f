// Package strategy contains the signal evaluators. Each strategy consumes
// an already-fetched candle series plus the derived indicator set and emits
// at most one directional signal per completed bar. Strategies perform no
// I/O and never panic across their boundary: any undefined indicator value
// downgrades the evaluation to "no signal".
package strategy

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alias1177/Sniper/internal/calculate"
	"github.com/Alias1177/Sniper/models"
)

// Strategy is the shared evaluator contract.
type Strategy interface {
	Name() string
	Enabled() bool
	Enable()
	Disable()
	// RequiredHistorySize is the minimum candle count Evaluate needs:
	// the maximum indicator warmup plus a 50 bar safety margin.
	RequiredHistorySize() int
	// Evaluate classifies the latest completed bar. It returns nil when the
	// strategy is disabled, history is insufficient, any consulted indicator
	// is still in its warmup region, or no rule fires.
	Evaluate(symbol string, timeframe models.Timeframe, candles []models.Candle) *models.Signal
}

// Base carries the state and helpers shared by the concrete strategies.
type Base struct {
	name    string
	params  calculate.Params
	logger  zerolog.Logger
	enabled bool

	// lastBar tracks the bar timestamp of the last emitted signal per
	// (symbol, timeframe), enforcing at most one signal per completed bar.
	lastBar map[string]time.Time
}

// NewBase validates params and assembles the shared strategy state.
// Strategies start disabled and must be enabled explicitly.
func NewBase(name string, params calculate.Params, logger zerolog.Logger) (*Base, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", name, err)
	}
	return &Base{
		name:    name,
		params:  params,
		logger:  logger.With().Str("strategy", name).Logger(),
		lastBar: make(map[string]time.Time),
	}, nil
}

func (b *Base) Name() string  { return b.name }
func (b *Base) Enabled() bool { return b.enabled }

// Params exposes the indicator parameter set, mostly for tests and the
// engine's history sizing.
func (b *Base) Params() calculate.Params { return b.params }

func (b *Base) Enable() {
	b.enabled = true
	b.logger.Info().Msg("strategy enabled")
}

func (b *Base) Disable() {
	b.enabled = false
	b.logger.Info().Msg("strategy disabled")
}

// RequiredHistorySize derives the minimum candle count from the params.
func (b *Base) RequiredHistorySize() int {
	return b.params.RequiredHistorySize()
}

// ready performs the shared Evaluate preconditions. It returns false when
// the evaluation must stop without side effects.
func (b *Base) ready(symbol string, timeframe models.Timeframe, candles []models.Candle) bool {
	if !b.enabled {
		b.logger.Debug().Str("symbol", symbol).Msg("strategy disabled, skipping")
		return false
	}
	if len(candles) < b.RequiredHistorySize() {
		b.logger.Warn().
			Str("symbol", symbol).
			Int("have", len(candles)).
			Int("need", b.RequiredHistorySize()).
			Msg("not enough candles to evaluate")
		return false
	}
	return true
}

// alreadySignalled reports whether a signal was already emitted for this
// exact bar, and records the bar otherwise.
func (b *Base) alreadySignalled(symbol string, timeframe models.Timeframe, barTime time.Time) bool {
	key := fmt.Sprintf("%s_%d", symbol, timeframe)
	if t, ok := b.lastBar[key]; ok && t.Equal(barTime) {
		b.logger.Debug().
			Str("symbol", symbol).
			Time("bar", barTime).
			Msg("signal already emitted for this bar")
		return true
	}
	b.lastBar[key] = barTime
	return false
}

// conflicting logs the defensive both-directions case. Simultaneous buy and
// sell conditions point at broken input data, not a trading opportunity.
func (b *Base) conflicting(symbol string, timeframe models.Timeframe) *models.Signal {
	b.logger.Warn().
		Str("symbol", symbol).
		Int("timeframe", int(timeframe)).
		Msg("buy and sell conditions both true, refusing to choose")
	return nil
}

// defined reports whether all values are outside their warmup region.
func defined(values ...float64) bool {
	for _, v := range values {
		if !calculate.Defined(v) {
			return false
		}
	}
	return true
}
