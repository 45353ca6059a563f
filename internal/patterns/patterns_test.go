package patterns

import (
	"testing"

	"github.com/Alias1177/Sniper/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		prev     models.Candle
		cur      models.Candle
		check    func(f Flags) bool
		expected string
	}{
		{
			name: "bullish pin-bar",
			prev: models.Candle{Open: 100, High: 101, Low: 99, Close: 100.5},
			cur:  models.Candle{Open: 100, High: 100.6, Low: 95, Close: 100.5},
			check: func(f Flags) bool {
				return f.IsPinbar && f.DominantShadow == ShadowLower
			},
			expected: "bullish pin-bar",
		},
		{
			name: "bearish pin-bar",
			prev: models.Candle{Open: 100, High: 101, Low: 99, Close: 100.5},
			cur:  models.Candle{Open: 100.5, High: 105, Low: 99.9, Close: 100},
			check: func(f Flags) bool {
				return f.IsPinbar && f.DominantShadow == ShadowUpper
			},
			expected: "bearish pin-bar",
		},
		{
			name: "bullish engulfing",
			prev: models.Candle{Open: 101, High: 101.5, Low: 99.5, Close: 100},
			cur:  models.Candle{Open: 99.5, High: 102.5, Low: 99, Close: 102},
			check: func(f Flags) bool {
				return f.IsEngulfing && f.Bullish
			},
			expected: "bullish engulfing",
		},
		{
			name: "bearish engulfing",
			prev: models.Candle{Open: 100, High: 101.5, Low: 99.5, Close: 101},
			cur:  models.Candle{Open: 101.5, High: 102, Low: 98, Close: 98.5},
			check: func(f Flags) bool {
				return f.IsEngulfing && !f.Bullish
			},
			expected: "bearish engulfing",
		},
		{
			name: "piercing line",
			prev: models.Candle{Open: 102, High: 102.5, Low: 99.5, Close: 100},
			cur:  models.Candle{Open: 99.8, High: 101.8, Low: 99.6, Close: 101.5},
			check: func(f Flags) bool {
				return f.IsPiercing && f.Bullish
			},
			expected: "piercing line",
		},
		{
			name: "dark cloud cover",
			prev: models.Candle{Open: 100, High: 102.5, Low: 99.5, Close: 102},
			cur:  models.Candle{Open: 102.2, High: 102.4, Low: 100.2, Close: 100.5},
			check: func(f Flags) bool {
				return f.IsPiercing && !f.Bullish
			},
			expected: "dark cloud cover",
		},
		{
			name: "plain bullish candle",
			prev: models.Candle{Open: 100, High: 101, Low: 99, Close: 100.5},
			cur:  models.Candle{Open: 100.5, High: 101.2, Low: 100.3, Close: 101},
			check: func(f Flags) bool {
				return !f.IsPinbar && !f.IsEngulfing && !f.IsPiercing && f.Bullish
			},
			expected: "bullish candle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Detect(tt.prev, tt.cur, 2.0, 1.5)
			if !tt.check(f) {
				t.Errorf("unexpected flags: %+v", f)
			}
			if got := f.Name(); got != tt.expected {
				t.Errorf("expected label %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestDetectZeroBody(t *testing.T) {
	prev := models.Candle{Open: 100, High: 101, Low: 99, Close: 100.5}
	cur := models.Candle{Open: 100, High: 104, Low: 100, Close: 100}

	f := Detect(prev, cur, 2.0, 1.5)
	if f.IsPinbar {
		t.Error("a zero-body doji must not classify as a pin-bar")
	}
}

func TestDetectShadowMeasures(t *testing.T) {
	cur := models.Candle{Open: 100, High: 103, Low: 98, Close: 101}
	f := Detect(models.Candle{}, cur, 2.0, 1.5)

	if f.BodySize != 1 || f.UpperShadow != 2 || f.LowerShadow != 2 {
		t.Errorf("unexpected geometry: %+v", f)
	}
	if f.DominantShadow != ShadowNone {
		t.Errorf("equal shadows must report none, got %v", f.DominantShadow)
	}
}
