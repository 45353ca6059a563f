package models

import (
	"testing"
	"time"
)

func TestTimeframeDuration(t *testing.T) {
	tests := []struct {
		tf       Timeframe
		expected time.Duration
	}{
		{M1, time.Minute},
		{M5, 5 * time.Minute},
		{M15, 15 * time.Minute},
		{H1, time.Hour},
		{H4, 4 * time.Hour},
		{D1, 24 * time.Hour},
	}
	for _, tt := range tests {
		if got := tt.tf.Duration(); got != tt.expected {
			t.Errorf("%d: expected %v, got %v", tt.tf, tt.expected, got)
		}
	}
}

func TestCandleBullish(t *testing.T) {
	if !(Candle{Open: 100, Close: 101}).Bullish() {
		t.Error("close above open must be bullish")
	}
	if (Candle{Open: 100, Close: 99}).Bullish() {
		t.Error("close below open must not be bullish")
	}
	if (Candle{Open: 100, Close: 100}).Bullish() {
		t.Error("a doji must not be bullish")
	}
}

func TestMergeCandles(t *testing.T) {
	base := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	bar := func(offset int, close float64) Candle {
		return Candle{Time: base.Add(time.Duration(offset) * time.Minute), Close: close}
	}

	dst := []Candle{bar(0, 100), bar(1, 101), bar(2, 102)}
	src := []Candle{bar(2, 102.5), bar(3, 103)} // bar 2 revised, bar 3 new

	merged := MergeCandles(dst, src)
	if len(merged) != 4 {
		t.Fatalf("expected 4 candles, got %d", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if !merged[i-1].Time.Before(merged[i].Time) {
			t.Fatal("merged candles must be sorted ascending")
		}
	}
	if merged[2].Close != 102.5 {
		t.Errorf("the later write for a timestamp must win, got %v", merged[2].Close)
	}
	if merged[3].Close != 103 {
		t.Errorf("new candles must be appended, got %v", merged[3].Close)
	}
}

func TestMergeCandlesAcrossLocations(t *testing.T) {
	// The cache hands bars back in a fixed-offset zone while the bridge
	// produces UTC; the same instant must still collapse to one bar.
	instant := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	cached := []Candle{{Time: instant.In(time.FixedZone("", 0)), Close: 1}}
	fresh := []Candle{{Time: instant, Close: 2}}

	merged := MergeCandles(cached, fresh)
	if len(merged) != 1 {
		t.Fatalf("expected 1 candle for the same instant, got %d", len(merged))
	}
	if merged[0].Close != 2 {
		t.Errorf("the later write must win, got close %v", merged[0].Close)
	}
}
