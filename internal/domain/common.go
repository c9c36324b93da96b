package domain

// Side represents the direction of a reported position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
	// SideUnknown is used when the report text never states a direction.
	SideUnknown Side = ""
)

// MaxPnlPercent bounds accepted PnL values. Extractions outside the bound
// are clamped rather than rejected, matching the historical behaviour of
// the bot (a typo'd decimal point yields ±5000, not a dropped trade).
const MaxPnlPercent = 5000.0

// ClampPnl bounds a PnL percentage to [-MaxPnlPercent, MaxPnlPercent].
func ClampPnl(pnl float64) float64 {
	if pnl > MaxPnlPercent {
		return MaxPnlPercent
	}
	if pnl < -MaxPnlPercent {
		return -MaxPnlPercent
	}
	return pnl
}
