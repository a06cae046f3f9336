package engine

import "math"

// epsilon guards the spread division against a zero ask without biasing
// normal-magnitude prices.
const epsilon = 1e-4

// Direction identifies which way an arbitrage trade flows between the two
// scanned venues.
type Direction int

const (
	// DirectionAToB buys on venue A and sells on venue B.
	DirectionAToB Direction = iota
	// DirectionBToA buys on venue B and sells on venue A.
	DirectionBToA
)

// Spread evaluates both trade directions between two quoted venues and
// returns the larger signed spread percentage, rounded to two decimals, with
// the direction it belongs to. Ties favor A to B. All four prices must be
// present; callers pre-filter symbols with a missing side.
func Spread(bidA, askA, bidB, askB float64) (float64, Direction) {
	aToB := (bidB - askA) / (askA + epsilon) * 100
	bToA := (bidA - askB) / (askB + epsilon) * 100

	if aToB >= bToA {
		return round2(aToB), DirectionAToB
	}
	return round2(bToA), DirectionBToA
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round5(v float64) float64 {
	return math.Round(v*100000) / 100000
}
