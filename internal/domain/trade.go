package domain

import "time"

// TradeRecord is one parsed trade report. A record is created exactly once,
// at parse time, and is immutable afterwards. SourceID keys idempotent
// inserts so a channel backfill can be re-run safely.
type TradeRecord struct {
	ID         int64     // Assigned by the store
	SourceID   string    // Identity of the originating message
	Trader     string    // Display name as posted (not globally unique)
	Symbol     string    // Uppercase ticker, empty if unknown
	Side       Side      // LONG/SHORT, SideUnknown if not detected
	Leverage   int       // Positive multiplier, 0 when not stated
	EntryPrice float64   // 0 when not stated
	ExitPrice  float64   // 0 when not stated
	PnlPercent float64   // Signed percentage return, always present
	Timestamp  time.Time // Creation time of the source message
	SourceLink string    // Permalink back to the original post, display only
}

// LeverageOrDefault returns the stated leverage, or 1 when absent.
// The default applies only to PnL computed from prices; an explicitly
// stated PnL is never re-scaled.
func (t *TradeRecord) LeverageOrDefault() int {
	if t.Leverage > 0 {
		return t.Leverage
	}
	return 1
}
