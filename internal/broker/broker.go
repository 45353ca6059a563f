// Package broker defines the contracts against the external trading
// terminal. The core consumes them as data providers and an order executor;
// connection lifecycle and protocol details live behind the implementations.
package broker

import (
	"context"
	"time"

	"github.com/Alias1177/Sniper/models"
)

// BarProvider supplies historical candles. It may return fewer candles than
// requested; strategies treat a short series as "cannot evaluate".
type BarProvider interface {
	GetCandles(ctx context.Context, symbol string, timeframe models.Timeframe, count int) ([]models.Candle, error)
}

// AccountProvider supplies account and instrument metadata. A nil result
// makes the dependent risk operation fail closed.
type AccountProvider interface {
	GetAccountInfo(ctx context.Context) (*models.AccountInfo, error)
	GetSymbolInfo(ctx context.Context, symbol string) (*models.SymbolInfo, error)
}

// HistoryProvider supplies open positions and the closed-trade history,
// read-only inputs to the daily P&L and aggregate-risk calculations.
type HistoryProvider interface {
	GetOpenPositions(ctx context.Context) ([]models.Position, error)
	GetTradesSince(ctx context.Context, since time.Time) ([]models.Trade, error)
}

// OrderExecutor accepts a sized order and returns an opaque order
// identifier. The core does not retry submissions.
type OrderExecutor interface {
	Submit(ctx context.Context, req models.OrderRequest) (string, error)
}
