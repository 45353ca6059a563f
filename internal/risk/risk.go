// Package risk enforces the layered risk budgets: per trade, aggregate over
// open positions, and per trading day. All currency and percentage
// arithmetic uses fixed-precision decimals so that repeated daily resets and
// many small trades never accumulate binary floating point drift; float64
// appears only at the reporting edge.
package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/Sniper/internal/broker"
	"github.com/Alias1177/Sniper/models"
)

var hundred = decimal.NewFromInt(100)

// PositionSizeResult is the outcome of a position sizing calculation.
type PositionSizeResult struct {
	Volume         float64
	RiskAmount     float64
	RiskPercent    float64
	StopLossPoints float64
}

// ValidationError reports a rejected risk parameter update. The manager's
// state is untouched when it is returned.
type ValidationError struct {
	Parameter string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid risk parameter %s: %s", e.Parameter, e.Reason)
}

// Manager tracks daily risk budget consumption and converts a candidate
// trade's risk into a bounded, granularity-adjusted volume.
//
// Manager is not safe for concurrent use; give each evaluation loop its own
// instance or serialize access externally.
type Manager struct {
	account broker.AccountProvider
	history broker.HistoryProvider
	logger  zerolog.Logger
	now     func() time.Time

	riskPerTrade   decimal.Decimal // % of equity per trade
	riskAllTrades  decimal.Decimal // % of equity across open positions
	dailyRisk      decimal.Decimal // % of equity per trading day
	dailyLossLimit decimal.Decimal // currency
	dailyProfit    decimal.Decimal // realized P&L recorded this day
	today          time.Time
}

// NewManager builds a risk manager with the default budgets (1% per trade,
// 5% aggregate, 10% daily). now is the clock used for the day boundary;
// pass nil for the system clock.
func NewManager(account broker.AccountProvider, history broker.HistoryProvider, logger zerolog.Logger, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		account:       account,
		history:       history,
		logger:        logger.With().Str("component", "risk").Logger(),
		now:           now,
		riskPerTrade:  decimal.NewFromFloat(1.0),
		riskAllTrades: decimal.NewFromFloat(5.0),
		dailyRisk:     decimal.NewFromFloat(10.0),
		today:         dateOf(now()),
	}
}

// RiskPerTrade returns the per-trade budget in percent.
func (m *Manager) RiskPerTrade() float64 { return m.riskPerTrade.InexactFloat64() }

// RiskAllTrades returns the aggregate budget in percent.
func (m *Manager) RiskAllTrades() float64 { return m.riskAllTrades.InexactFloat64() }

// DailyRisk returns the daily budget in percent.
func (m *Manager) DailyRisk() float64 { return m.dailyRisk.InexactFloat64() }

// DailyLossLimit returns the current daily loss limit in account currency.
func (m *Manager) DailyLossLimit() float64 { return m.dailyLossLimit.InexactFloat64() }

// UpdateSettings replaces the three risk budgets. Each value must lie in
// (0,100] and the ordering perTrade <= allTrades <= daily must hold;
// otherwise a ValidationError is returned and nothing changes. On success
// the daily loss limit is recomputed from current equity.
func (m *Manager) UpdateSettings(ctx context.Context, perTrade, allTrades, daily float64) error {
	perTradeDec := decimal.NewFromFloat(perTrade)
	allTradesDec := decimal.NewFromFloat(allTrades)
	dailyDec := decimal.NewFromFloat(daily)

	if err := validateSettings(perTradeDec, allTradesDec, dailyDec); err != nil {
		m.logger.Warn().Err(err).Msg("risk settings rejected")
		return err
	}

	info, err := m.accountInfo(ctx)
	if err != nil {
		return fmt.Errorf("updating risk settings: %w", err)
	}

	m.riskPerTrade = perTradeDec
	m.riskAllTrades = allTradesDec
	m.dailyRisk = dailyDec
	m.recomputeDailyLimit(info)

	m.logger.Info().
		Float64("per_trade_pct", perTrade).
		Float64("all_trades_pct", allTrades).
		Float64("daily_pct", daily).
		Float64("daily_loss_limit", m.DailyLossLimit()).
		Msg("risk settings updated")
	return nil
}

func validateSettings(perTrade, allTrades, daily decimal.Decimal) error {
	for _, p := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"risk_per_trade", perTrade},
		{"risk_all_trades", allTrades},
		{"daily_risk", daily},
	} {
		if !p.value.IsPositive() || p.value.GreaterThan(hundred) {
			return &ValidationError{Parameter: p.name, Reason: "must be in (0,100]"}
		}
	}
	if perTrade.GreaterThan(allTrades) {
		return &ValidationError{Parameter: "risk_per_trade", Reason: "exceeds risk_all_trades"}
	}
	if allTrades.GreaterThan(daily) {
		return &ValidationError{Parameter: "risk_all_trades", Reason: "exceeds daily_risk"}
	}
	return nil
}

// RecordProfit adds a realized trade result to today's P&L accumulator.
func (m *Manager) RecordProfit(profit float64) {
	m.dailyProfit = m.dailyProfit.Add(decimal.NewFromFloat(profit))
}

// CheckDailyLimit rolls the trading day if the date changed and reports
// whether new trades are still allowed. Trading is blocked once today's
// total P&L (open positions plus closed trades since day start) reaches the
// negative daily loss limit. Missing account data fails closed.
func (m *Manager) CheckDailyLimit(ctx context.Context) bool {
	current := dateOf(m.now())
	if !current.Equal(m.today) {
		if !m.rollTradingDay(ctx, current) {
			return false
		}
	}
	if !m.dailyLossLimit.IsPositive() {
		info, err := m.accountInfo(ctx)
		if err != nil {
			m.logger.Error().Err(err).Msg("cannot compute daily loss limit, failing closed")
			return false
		}
		m.recomputeDailyLimit(info)
	}

	total, ok := m.dailyTotal(ctx, current)
	if !ok {
		return false
	}
	if total.LessThanOrEqual(m.dailyLossLimit.Neg()) {
		m.logger.Warn().
			Float64("daily_pnl", total.InexactFloat64()).
			Float64("limit", m.DailyLossLimit()).
			Msg("daily loss limit reached, trading blocked")
		return false
	}
	return true
}

func (m *Manager) rollTradingDay(ctx context.Context, current time.Time) bool {
	info, err := m.accountInfo(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("cannot roll trading day, failing closed")
		return false
	}
	m.today = current
	m.dailyProfit = decimal.Zero
	m.recomputeDailyLimit(info)
	m.logger.Info().
		Str("day", current.Format("2006-01-02")).
		Float64("daily_loss_limit", m.DailyLossLimit()).
		Msg("new trading day")
	return true
}

func (m *Manager) dailyTotal(ctx context.Context, dayStart time.Time) (decimal.Decimal, bool) {
	total := m.dailyProfit

	positions, err := m.history.GetOpenPositions(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("cannot read open positions, failing closed")
		return decimal.Zero, false
	}
	for _, p := range positions {
		total = total.Add(decimal.NewFromFloat(p.Profit))
	}

	trades, err := m.history.GetTradesSince(ctx, dayStart)
	if err != nil {
		m.logger.Error().Err(err).Msg("cannot read trade history, failing closed")
		return decimal.Zero, false
	}
	for _, t := range trades {
		total = total.Add(decimal.NewFromFloat(t.Profit))
	}
	return total, true
}

// CalculatePositionSize converts the per-trade risk budget into a tradable
// volume for symbol, given the stop-loss distance in points. It returns nil
// when the daily limit blocks trading, the stop distance is not positive, or
// account/symbol metadata is unavailable. It never returns a partial result.
func (m *Manager) CalculatePositionSize(ctx context.Context, symbol string, stopLossPoints float64) *PositionSizeResult {
	if !m.CheckDailyLimit(ctx) {
		m.logger.Warn().Str("symbol", symbol).Msg("daily limit exceeded, no position sized")
		return nil
	}
	if stopLossPoints <= 0 {
		m.logger.Warn().
			Str("symbol", symbol).
			Float64("stop_loss_points", stopLossPoints).
			Msg("stop-loss distance must be positive")
		return nil
	}

	info, err := m.accountInfo(ctx)
	if err != nil {
		m.logger.Error().Err(err).Str("symbol", symbol).Msg("no account info, no position sized")
		return nil
	}
	symbolInfo, err := m.symbolInfo(ctx, symbol)
	if err != nil {
		m.logger.Error().Err(err).Str("symbol", symbol).Msg("no symbol info, no position sized")
		return nil
	}
	tickValue := decimal.NewFromFloat(symbolInfo.TickValue)
	if !tickValue.IsPositive() {
		m.logger.Error().Str("symbol", symbol).Msg("non-positive tick value, cannot size")
		return nil
	}

	equity := decimal.NewFromFloat(info.Equity)
	stopDec := decimal.NewFromFloat(stopLossPoints)
	riskAmount := equity.Mul(m.riskPerTrade).Div(hundred)
	volume := riskAmount.Div(stopDec.Mul(tickValue))
	volume = adjustVolume(volume, symbolInfo)

	result := &PositionSizeResult{
		Volume:         volume.InexactFloat64(),
		RiskAmount:     riskAmount.InexactFloat64(),
		RiskPercent:    m.RiskPerTrade(),
		StopLossPoints: stopLossPoints,
	}
	m.logger.Info().
		Str("symbol", symbol).
		Float64("volume", result.Volume).
		Float64("risk_amount", result.RiskAmount).
		Str("currency", info.Currency).
		Msg("position sized")
	return result
}

// adjustVolume clamps to the symbol's volume bounds and floors to the step,
// never rounding up past the risk budget.
func adjustVolume(volume decimal.Decimal, info *models.SymbolInfo) decimal.Decimal {
	minVol := decimal.NewFromFloat(info.VolumeMin)
	maxVol := decimal.NewFromFloat(info.VolumeMax)
	step := decimal.NewFromFloat(info.VolumeStep)

	if volume.GreaterThan(maxVol) {
		volume = maxVol
	}
	if volume.LessThan(minVol) {
		volume = minVol
	}
	if step.IsPositive() {
		volume = volume.Div(step).Floor().Mul(step)
	}
	return volume
}

// CheckAllTradesRisk reports whether the aggregate exposure of all open
// positions plus the candidate trade's risk stays under the aggregate
// budget. Exposure per position is volume x current price x tick value.
func (m *Manager) CheckAllTradesRisk(ctx context.Context, candidateRisk float64) bool {
	info, err := m.accountInfo(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("no account info, failing aggregate risk check closed")
		return false
	}

	positions, err := m.history.GetOpenPositions(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("cannot read open positions, failing closed")
		return false
	}

	current := decimal.NewFromFloat(candidateRisk)
	for _, p := range positions {
		symbolInfo, err := m.symbolInfo(ctx, p.Symbol)
		if err != nil {
			m.logger.Warn().Err(err).Str("symbol", p.Symbol).Msg("skipping position without symbol info")
			continue
		}
		exposure := decimal.NewFromFloat(p.Volume).
			Mul(decimal.NewFromFloat(p.PriceCurrent)).
			Mul(decimal.NewFromFloat(symbolInfo.TickValue))
		current = current.Add(exposure)
	}

	maxRisk := decimal.NewFromFloat(info.Equity).Mul(m.riskAllTrades).Div(hundred)
	if current.GreaterThanOrEqual(maxRisk) {
		m.logger.Warn().
			Float64("current_risk", current.InexactFloat64()).
			Float64("max_risk", maxRisk.InexactFloat64()).
			Msg("aggregate risk limit exceeded")
		return false
	}
	return true
}

func (m *Manager) recomputeDailyLimit(info *models.AccountInfo) {
	equity := decimal.NewFromFloat(info.Equity)
	m.dailyLossLimit = equity.Mul(m.dailyRisk).Div(hundred)
}

func (m *Manager) accountInfo(ctx context.Context) (*models.AccountInfo, error) {
	info, err := m.account.GetAccountInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching account info: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("account info unavailable")
	}
	return info, nil
}

func (m *Manager) symbolInfo(ctx context.Context, symbol string) (*models.SymbolInfo, error) {
	info, err := m.account.GetSymbolInfo(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching symbol info for %s: %w", symbol, err)
	}
	if info == nil {
		return nil, fmt.Errorf("symbol info unavailable for %s", symbol)
	}
	return info, nil
}

// dateOf truncates a time to its wall-clock date.
func dateOf(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
