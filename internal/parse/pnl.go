package parse

import (
	"math"

	"analyseman/internal/domain"
)

// ComputePnlPercent derives the signed percentage return from entry and
// exit prices. Both prices must be finite and positive. A SHORT position
// profits when the price falls, so the change is negated.
//
// Leverage is deliberately not applied here: the explicit command path
// multiplies the computed value by leverage itself, while a PnL extracted
// from text is assumed to already reflect the realized return and is taken
// at face value.
func ComputePnlPercent(side domain.Side, entry, exit float64) (float64, bool) {
	if !isFinitePositive(entry) || !isFinitePositive(exit) {
		return 0, false
	}
	change := (exit - entry) / entry
	if side == domain.SideShort {
		change = -change
	}
	return change * 100, true
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
