// Package patterns classifies candlestick patterns from raw bar geometry.
// Every check is limited to the current bar and its immediate predecessor;
// no indicator input is involved.
package patterns

import (
	"math"

	"github.com/Alias1177/Sniper/models"
)

// ShadowSide marks which shadow of a candle dominates.
type ShadowSide string

const (
	ShadowNone  ShadowSide = "none"
	ShadowUpper ShadowSide = "upper"
	ShadowLower ShadowSide = "lower"
)

// Flags is the per-bar pattern classification.
type Flags struct {
	IsPinbar       bool
	IsEngulfing    bool
	IsPiercing     bool
	DominantShadow ShadowSide
	Bullish        bool
	BodySize       float64
	UpperShadow    float64
	LowerShadow    float64
}

// Name returns a human-readable pattern label for signal comments.
func (f Flags) Name() string {
	switch {
	case f.IsPinbar && f.DominantShadow == ShadowLower:
		return "bullish pin-bar"
	case f.IsPinbar:
		return "bearish pin-bar"
	case f.IsEngulfing && f.Bullish:
		return "bullish engulfing"
	case f.IsEngulfing:
		return "bearish engulfing"
	case f.IsPiercing && f.Bullish:
		return "piercing line"
	case f.IsPiercing:
		return "dark cloud cover"
	case f.Bullish:
		return "bullish candle"
	default:
		return "bearish candle"
	}
}

// Detect classifies the pattern formed by prev and cur.
//
// Pin-bar: the larger shadow exceeds the body by more than pinbarThreshold
// and the body is non-zero (a zero-body bar is defined as not a pin-bar to
// avoid dividing by zero). Engulfing: the current body exceeds the previous
// body by engulfingRatio and the open/close straddle the previous candle in
// the opposite direction. Piercing: the close crosses the midpoint of the
// previous opposite-color body.
func Detect(prev, cur models.Candle, pinbarThreshold, engulfingRatio float64) Flags {
	body := math.Abs(cur.Close - cur.Open)
	upper := cur.High - math.Max(cur.Open, cur.Close)
	lower := math.Min(cur.Open, cur.Close) - cur.Low

	f := Flags{
		Bullish:     cur.Bullish(),
		BodySize:    body,
		UpperShadow: upper,
		LowerShadow: lower,
	}
	if upper > lower {
		f.DominantShadow = ShadowUpper
	} else if lower > upper {
		f.DominantShadow = ShadowLower
	} else {
		f.DominantShadow = ShadowNone
	}

	if body > 0 && (upper/body > pinbarThreshold || lower/body > pinbarThreshold) {
		f.IsPinbar = true
	}

	prevBody := math.Abs(prev.Close - prev.Open)
	if body > prevBody*engulfingRatio {
		bullishEngulfing := cur.Close > cur.Open &&
			cur.Close > prev.Open &&
			cur.Open < prev.Close
		bearishEngulfing := cur.Close < cur.Open &&
			cur.Close < prev.Open &&
			cur.Open > prev.Close
		f.IsEngulfing = bullishEngulfing || bearishEngulfing
	}

	prevMid := (prev.Open + prev.Close) / 2
	if cur.Close > cur.Open && prev.Close < prev.Open && cur.Close > prevMid {
		f.IsPiercing = true
	}
	if cur.Close < cur.Open && prev.Close > prev.Open && cur.Close < prevMid {
		f.IsPiercing = true
	}

	return f
}
