package leaderboard

import (
	"sort"
	"strings"
	"time"

	"analyseman/internal/domain"
)

// Order selects the ranking direction.
type Order int

const (
	// Best ranks by descending PnL percentage.
	Best Order = iota
	// Worst ranks by ascending PnL percentage.
	Worst
)

// Options parameterize one ranking query.
type Options struct {
	WindowDays int // Only trades newer than now-WindowDays*24h; 0 means all time
	TopN       int // Truncate after sorting; 0 means no truncation
	Order      Order
}

// RankTrades filters trades to the optional time window, sorts them by PnL
// and truncates to TopN. The sort is stable: equal PnL values keep their
// input order, so output is deterministic given identical input ordering.
func RankTrades(trades []*domain.TradeRecord, now time.Time, opts Options) []*domain.TradeRecord {
	ranked := make([]*domain.TradeRecord, 0, len(trades))
	if opts.WindowDays > 0 {
		cutoff := now.Add(-time.Duration(opts.WindowDays) * 24 * time.Hour)
		for _, t := range trades {
			if !t.Timestamp.Before(cutoff) {
				ranked = append(ranked, t)
			}
		}
	} else {
		ranked = append(ranked, trades...)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if opts.Order == Worst {
			return ranked[i].PnlPercent < ranked[j].PnlPercent
		}
		return ranked[i].PnlPercent > ranked[j].PnlPercent
	})

	if opts.TopN > 0 && len(ranked) > opts.TopN {
		ranked = ranked[:opts.TopN]
	}
	return ranked
}

// TraderTotal is the aggregate line for one trader.
type TraderTotal struct {
	Trader string
	Total  float64 // Sum of PnL percentages across the trader's records
	Trades int
	Wins   int
}

// AggregateTotals sums PnL per distinct trader string and sorts descending
// by total. Grouping is case-sensitive on the literal display name; variant
// names for the same human stay separate on purpose. Traders matching the
// denylist (case-insensitive exact or substring) are excluded.
func AggregateTotals(trades []*domain.TradeRecord, denylist []string) []TraderTotal {
	byTrader := make(map[string]*TraderTotal)
	var order []string

	for _, t := range trades {
		if isExcluded(t.Trader, denylist) {
			continue
		}
		agg, ok := byTrader[t.Trader]
		if !ok {
			agg = &TraderTotal{Trader: t.Trader}
			byTrader[t.Trader] = agg
			order = append(order, t.Trader)
		}
		agg.Total += t.PnlPercent
		agg.Trades++
		if t.PnlPercent > 0 {
			agg.Wins++
		}
	}

	totals := make([]TraderTotal, 0, len(order))
	for _, name := range order {
		totals = append(totals, *byTrader[name])
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total > totals[j].Total
	})
	return totals
}

func isExcluded(trader string, denylist []string) bool {
	lower := strings.ToLower(trader)
	for _, entry := range denylist {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if lower == entry || strings.Contains(lower, entry) {
			return true
		}
	}
	return false
}
