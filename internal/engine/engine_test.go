package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alias1177/Sniper/internal/risk"
	"github.com/Alias1177/Sniper/internal/strategy"
	"github.com/Alias1177/Sniper/models"
)

type stubBroker struct {
	candles    []models.Candle
	candlesErr error
	account    *models.AccountInfo
	symbols    map[string]*models.SymbolInfo

	submitted []models.OrderRequest
	submitErr error
}

func (s *stubBroker) GetCandles(ctx context.Context, symbol string, timeframe models.Timeframe, count int) ([]models.Candle, error) {
	if s.candlesErr != nil {
		return nil, s.candlesErr
	}
	return s.candles, nil
}

func (s *stubBroker) GetAccountInfo(ctx context.Context) (*models.AccountInfo, error) {
	return s.account, nil
}

func (s *stubBroker) GetSymbolInfo(ctx context.Context, symbol string) (*models.SymbolInfo, error) {
	return s.symbols[symbol], nil
}

func (s *stubBroker) GetOpenPositions(ctx context.Context) ([]models.Position, error) {
	return nil, nil
}

func (s *stubBroker) GetTradesSince(ctx context.Context, since time.Time) ([]models.Trade, error) {
	return nil, nil
}

func (s *stubBroker) Submit(ctx context.Context, req models.OrderRequest) (string, error) {
	if s.submitErr != nil {
		return "", s.submitErr
	}
	s.submitted = append(s.submitted, req)
	return "order-1", nil
}

// stubStrategy emits a canned signal on every evaluation.
type stubStrategy struct {
	name    string
	enabled bool
	history int
	signal  *models.Signal

	evaluated int
}

func (s *stubStrategy) Name() string             { return s.name }
func (s *stubStrategy) Enabled() bool            { return s.enabled }
func (s *stubStrategy) Enable()                  { s.enabled = true }
func (s *stubStrategy) Disable()                 { s.enabled = false }
func (s *stubStrategy) RequiredHistorySize() int { return s.history }

func (s *stubStrategy) Evaluate(symbol string, timeframe models.Timeframe, candles []models.Candle) *models.Signal {
	s.evaluated++
	if !s.enabled {
		return nil
	}
	return s.signal
}

type stubLedger struct {
	savedCandles    int
	cached          []models.Candle
	savedTrades     []models.Trade
	indicators      map[string]float64
	indicatorWrites int
}

func (l *stubLedger) SaveCandles(symbol string, timeframe models.Timeframe, candles []models.Candle) error {
	l.savedCandles++
	return nil
}

func (l *stubLedger) GetCandles(symbol string, timeframe models.Timeframe, count int) ([]models.Candle, error) {
	return l.cached, nil
}

func (l *stubLedger) CacheIndicator(symbol string, timeframe models.Timeframe, barTime time.Time, name string, value float64) error {
	if l.indicators == nil {
		l.indicators = make(map[string]float64)
	}
	l.indicators[name] = value
	l.indicatorWrites++
	return nil
}

func (l *stubLedger) GetCachedIndicator(symbol string, timeframe models.Timeframe, barTime time.Time, name string) (float64, bool, error) {
	v, ok := l.indicators[name]
	return v, ok, nil
}

func (l *stubLedger) SaveTrade(t models.Trade) (int64, error) {
	l.savedTrades = append(l.savedTrades, t)
	return int64(len(l.savedTrades)), nil
}

func (l *stubLedger) GetTradesSince(since time.Time) ([]models.Trade, error) {
	return l.savedTrades, nil
}

type stubNotifier struct {
	signals   int
	summaries int
	errors    []string
}

func (n *stubNotifier) NotifySignal(sig *models.Signal, size *risk.PositionSizeResult) {
	n.signals++
}

func (n *stubNotifier) NotifyDailySummary(trades []models.Trade) { n.summaries++ }
func (n *stubNotifier) NotifyError(msg string)                  { n.errors = append(n.errors, msg) }

func buySignal() *models.Signal {
	return &models.Signal{
		Action:     models.ActionBuy,
		Symbol:     "EURUSD",
		Timeframe:  models.M5,
		Price:      1.1000,
		StopLoss:   1.0950,
		TakeProfit: 1.1150,
		Strategy:   "stub",
	}
}

func testBroker() *stubBroker {
	return &stubBroker{
		candles: make([]models.Candle, 100),
		account: &models.AccountInfo{Equity: 10000, Currency: "USD"},
		symbols: map[string]*models.SymbolInfo{
			"EURUSD": {
				Name:       "EURUSD",
				TickValue:  1.0,
				VolumeMin:  0.01,
				VolumeMax:  100,
				VolumeStep: 0.01,
				Point:      0.0001,
			},
		},
	}
}

func testEngine(t *testing.T, b *stubBroker, st *stubStrategy, ledger Ledger, notifier Notifier) *Engine {
	t.Helper()
	e, err := New(Options{
		Bars:         b,
		Account:      b,
		Executor:     b,
		Risk:         risk.NewManager(b, b, zerolog.Nop(), nil),
		Strategies:   []strategy.Strategy{st},
		Symbols:      []string{"EURUSD"},
		Timeframe:    models.M5,
		PollInterval: time.Minute,
		Ledger:       ledger,
		Notifier:     notifier,
	})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestNewValidation(t *testing.T) {
	b := testBroker()
	riskMgr := risk.NewManager(b, b, zerolog.Nop(), nil)
	st := &stubStrategy{name: "stub", history: 10}

	tests := []struct {
		name string
		opts Options
	}{
		{"missing providers", Options{Strategies: []strategy.Strategy{st}, Symbols: []string{"EURUSD"}}},
		{"no strategies", Options{Bars: b, Account: b, Executor: b, Risk: riskMgr, Symbols: []string{"EURUSD"}}},
		{"no symbols", Options{Bars: b, Account: b, Executor: b, Risk: riskMgr, Strategies: []strategy.Strategy{st}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestNewRaisesCandleCount(t *testing.T) {
	b := testBroker()
	e, err := New(Options{
		Bars:       b,
		Account:    b,
		Executor:   b,
		Risk:       risk.NewManager(b, b, zerolog.Nop(), nil),
		Strategies: []strategy.Strategy{&stubStrategy{name: "stub", history: 240}},
		Symbols:    []string{"EURUSD"},
		Timeframe:  models.M5,
		// Deliberately below the strategy's requirement.
		CandleCount: 50,
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.opts.CandleCount != 240 {
		t.Errorf("candle count must be raised to the strategy requirement, got %d", e.opts.CandleCount)
	}
}

func TestTickPlacesOrder(t *testing.T) {
	b := testBroker()
	st := &stubStrategy{name: "stub", enabled: true, history: 10, signal: buySignal()}
	ledger := &stubLedger{}
	notifier := &stubNotifier{}
	e := testEngine(t, b, st, ledger, notifier)

	e.tick(context.Background())

	if st.evaluated != 1 {
		t.Fatalf("expected one evaluation, got %d", st.evaluated)
	}
	if len(b.submitted) != 1 {
		t.Fatalf("expected one order, got %d", len(b.submitted))
	}
	order := b.submitted[0]
	if order.Symbol != "EURUSD" || order.Action != models.ActionBuy {
		t.Errorf("unexpected order: %+v", order)
	}
	// 1% of 10000 = 100 at risk over a 50 point stop at tick value 1.
	if math.Abs(order.Volume-2.0) > 1e-9 {
		t.Errorf("expected volume 2.0, got %v", order.Volume)
	}
	if order.StopLoss != 1.0950 || order.TakeProfit != 1.1150 {
		t.Errorf("order must carry the signal levels: %+v", order)
	}

	if ledger.savedCandles != 1 {
		t.Errorf("bars must be cached once per symbol, got %d", ledger.savedCandles)
	}
	if len(ledger.savedTrades) != 1 {
		t.Errorf("the placed order must be recorded, got %d", len(ledger.savedTrades))
	}
	if notifier.signals != 1 {
		t.Errorf("the placed order must be notified, got %d", notifier.signals)
	}
}

func TestTickDisabledStrategy(t *testing.T) {
	b := testBroker()
	st := &stubStrategy{name: "stub", enabled: false, history: 10, signal: buySignal()}
	e := testEngine(t, b, st, nil, nil)

	e.tick(context.Background())

	if len(b.submitted) != 0 {
		t.Errorf("a disabled strategy must place no orders, got %d", len(b.submitted))
	}
}

func TestHandleSignalNoSymbolMetadata(t *testing.T) {
	b := testBroker()
	st := &stubStrategy{name: "stub", enabled: true, history: 10, signal: buySignal()}
	e := testEngine(t, b, st, nil, nil)

	sig := buySignal()
	sig.Symbol = "XAUUSD" // not in the stub's symbol table
	e.handleSignal(context.Background(), sig)

	if len(b.submitted) != 0 {
		t.Errorf("missing symbol metadata must drop the signal, got %d orders", len(b.submitted))
	}
}

func TestHandleSignalSubmitFailure(t *testing.T) {
	b := testBroker()
	b.submitErr = errors.New("bridge rejected the order")
	st := &stubStrategy{name: "stub", enabled: true, history: 10, signal: buySignal()}
	ledger := &stubLedger{}
	notifier := &stubNotifier{}
	e := testEngine(t, b, st, ledger, notifier)

	e.handleSignal(context.Background(), buySignal())

	if len(ledger.savedTrades) != 0 {
		t.Error("a failed submission must not be recorded as a trade")
	}
	if notifier.signals != 0 {
		t.Error("a failed submission must not be announced as placed")
	}
	if len(notifier.errors) != 1 {
		t.Errorf("a failed submission must raise an error notification, got %d", len(notifier.errors))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	b := testBroker()
	st := &stubStrategy{name: "stub", enabled: false, history: 10}
	e := testEngine(t, b, st, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestTickFallsBackToCachedBars(t *testing.T) {
	b := testBroker()
	b.candlesErr = errors.New("bridge down")
	st := &stubStrategy{name: "stub", enabled: true, history: 10}
	ledger := &stubLedger{cached: make([]models.Candle, 50)}
	e := testEngine(t, b, st, ledger, nil)

	e.tick(context.Background())

	if st.evaluated != 1 {
		t.Errorf("cached bars must still reach the strategies, evaluated %d times", st.evaluated)
	}
}

func TestTickNoBarsNoEvaluation(t *testing.T) {
	b := testBroker()
	b.candlesErr = errors.New("bridge down")
	st := &stubStrategy{name: "stub", enabled: true, history: 10}
	e := testEngine(t, b, st, nil, nil)

	e.tick(context.Background())

	if st.evaluated != 0 {
		t.Errorf("no bars from any source must skip evaluation, evaluated %d times", st.evaluated)
	}
}

// trendingBars builds a realistic trending series long enough for every
// monitoring indicator to settle.
func trendingBars(n int) []models.Candle {
	candles := make([]models.Candle, n)
	base := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	for i := range candles {
		price := 1.1000 + float64(i)*0.0005
		candles[i] = models.Candle{
			Time:   base.Add(time.Duration(i) * 5 * time.Minute),
			Open:   price - 0.0002,
			High:   price + 0.0003,
			Low:    price - 0.0003,
			Close:  price,
			Volume: 1000,
		}
	}
	return candles
}

func TestTickSnapshotsIndicators(t *testing.T) {
	b := testBroker()
	b.candles = trendingBars(120)
	st := &stubStrategy{name: "stub", enabled: false, history: 10}
	ledger := &stubLedger{}
	e := testEngine(t, b, st, ledger, nil)

	e.tick(context.Background())

	for _, name := range []string{"rsi", "atr", "adx", "vwap"} {
		if _, ok := ledger.indicators[name]; !ok {
			t.Errorf("expected a cached %s snapshot", name)
		}
	}
}

func TestTickSkipsAlreadyCachedIndicators(t *testing.T) {
	b := testBroker()
	b.candles = trendingBars(120)
	st := &stubStrategy{name: "stub", enabled: false, history: 10}
	ledger := &stubLedger{indicators: map[string]float64{"rsi": 55.5}}
	e := testEngine(t, b, st, ledger, nil)

	e.tick(context.Background())

	if ledger.indicators["rsi"] != 55.5 {
		t.Errorf("a cached value must not be rewritten, got %v", ledger.indicators["rsi"])
	}
	if ledger.indicatorWrites != 3 {
		t.Errorf("expected writes only for the uncached indicators, got %d", ledger.indicatorWrites)
	}
}
