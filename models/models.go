package models

import (
	"sort"
	"time"
)

// Timeframe is a bar duration in minutes, matching the MT5 timeframe table.
type Timeframe int

const (
	M1  Timeframe = 1
	M5  Timeframe = 5
	M15 Timeframe = 15
	M30 Timeframe = 30
	H1  Timeframe = 60
	H4  Timeframe = 240
	D1  Timeframe = 1440
	W1  Timeframe = 10080
	MN1 Timeframe = 43200
)

// Duration returns the bar duration of the timeframe.
func (tf Timeframe) Duration() time.Duration {
	return time.Duration(tf) * time.Minute
}

// TradeAction is the direction of a trade signal.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// Strategy display names.
const (
	StrategySniper      = "Sniper"
	StrategySmartSniper = "Smart Sniper"
	StrategySmartMoney  = "Smart Money"
)

// Candle represents a single OHLCV bar. Candles are immutable once produced
// and series are ordered by Time ascending.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Bullish reports whether the candle closed above its open.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// MergeCandles upserts src into dst by timestamp: a later write for the same
// timestamp replaces the earlier one. The result is sorted ascending. Bars are
// matched on the instant, so the same bar carried in different locations
// still collapses to one entry.
func MergeCandles(dst, src []Candle) []Candle {
	byTime := make(map[int64]Candle, len(dst)+len(src))
	for _, c := range dst {
		byTime[c.Time.Unix()] = c
	}
	for _, c := range src {
		byTime[c.Time.Unix()] = c
	}
	merged := make([]Candle, 0, len(byTime))
	for _, c := range byTime {
		merged = append(merged, c)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Time.Before(merged[j].Time) })
	return merged
}

// Signal is a directional trade recommendation produced by a strategy.
type Signal struct {
	Action     TradeAction `json:"action"`
	Symbol     string      `json:"symbol"`
	Timeframe  Timeframe   `json:"timeframe"`
	Price      float64     `json:"price"`
	StopLoss   float64     `json:"stop_loss"`
	TakeProfit float64     `json:"take_profit"`
	Strategy   string      `json:"strategy"`
	Comment    string      `json:"comment"`
}

// AccountInfo is a point-in-time snapshot of the trading account.
type AccountInfo struct {
	Equity   float64 `json:"equity"`
	Currency string  `json:"currency"`
}

// SymbolInfo describes the trading constraints of an instrument.
type SymbolInfo struct {
	Name       string  `json:"name"`
	TickValue  float64 `json:"tick_value"`
	VolumeMin  float64 `json:"volume_min"`
	VolumeMax  float64 `json:"volume_max"`
	VolumeStep float64 `json:"volume_step"`
	Point      float64 `json:"point"`
}

// Position is a currently open position on the account.
type Position struct {
	Symbol       string  `json:"symbol"`
	Volume       float64 `json:"volume"`
	PriceOpen    float64 `json:"price_open"`
	PriceCurrent float64 `json:"price_current"`
	Profit       float64 `json:"profit"`
}

// Trade is a closed trade in the ledger.
type Trade struct {
	ID       int64       `json:"id"`
	Symbol   string      `json:"symbol"`
	Strategy string      `json:"strategy"`
	Action   TradeAction `json:"action"`
	Volume   float64     `json:"volume"`
	Profit   float64     `json:"profit"`
	OpenedAt time.Time   `json:"opened_at"`
	ClosedAt time.Time   `json:"closed_at"`
}

// OrderRequest is what the engine hands to the order executor after a
// signal has been sized.
type OrderRequest struct {
	Symbol     string      `json:"symbol"`
	Action     TradeAction `json:"action"`
	Volume     float64     `json:"volume"`
	StopLoss   float64     `json:"stop_loss"`
	TakeProfit float64     `json:"take_profit"`
	Comment    string      `json:"comment"`
}
