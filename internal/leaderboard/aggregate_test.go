package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analyseman/internal/domain"
)

func mkTrade(trader string, pnl float64, age time.Duration, now time.Time) *domain.TradeRecord {
	return &domain.TradeRecord{
		Trader:     trader,
		PnlPercent: pnl,
		Timestamp:  now.Add(-age),
	}
}

func TestRankTradesBestOrderStable(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	a := mkTrade("a", 10, time.Hour, now)
	b := mkTrade("b", 5, time.Hour, now)
	c := mkTrade("c", 10, time.Hour, now)
	d := mkTrade("d", -3, time.Hour, now)

	ranked := RankTrades([]*domain.TradeRecord{a, b, c, d}, now, Options{Order: Best})
	require.Len(t, ranked, 4)
	// Equal PnL keeps input order: a before c.
	assert.Equal(t, []*domain.TradeRecord{a, c, b, d}, ranked)
}

func TestRankTradesWorstOrder(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	a := mkTrade("a", 10, time.Hour, now)
	b := mkTrade("b", -20, time.Hour, now)
	c := mkTrade("c", 3, time.Hour, now)

	ranked := RankTrades([]*domain.TradeRecord{a, b, c}, now, Options{Order: Worst})
	assert.Equal(t, []*domain.TradeRecord{b, c, a}, ranked)
}

func TestRankTradesWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	recent := mkTrade("recent", 1, 24*time.Hour, now)
	edge := mkTrade("edge", 2, 7*24*time.Hour, now) // exactly on the cutoff stays in
	stale := mkTrade("stale", 99, 8*24*time.Hour, now)

	ranked := RankTrades([]*domain.TradeRecord{recent, edge, stale}, now, Options{WindowDays: 7, Order: Best})
	require.Len(t, ranked, 2)
	assert.Equal(t, "edge", ranked[0].Trader)
	assert.Equal(t, "recent", ranked[1].Trader)
}

func TestRankTradesTopN(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var trades []*domain.TradeRecord
	for i := 0; i < 30; i++ {
		trades = append(trades, mkTrade("t", float64(i), time.Hour, now))
	}

	ranked := RankTrades(trades, now, Options{TopN: 10, Order: Best})
	require.Len(t, ranked, 10)
	assert.Equal(t, 29.0, ranked[0].PnlPercent)
	assert.Equal(t, 20.0, ranked[9].PnlPercent)

	// Zero means no truncation.
	assert.Len(t, RankTrades(trades, now, Options{Order: Best}), 30)
}

func TestRankTradesEmpty(t *testing.T) {
	now := time.Now()
	assert.Empty(t, RankTrades(nil, now, Options{TopN: 10}))
}

func TestAggregateTotals(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	trades := []*domain.TradeRecord{
		mkTrade("alice", 10, time.Hour, now),
		mkTrade("bob", 30, time.Hour, now),
		mkTrade("alice", -4, time.Hour, now),
		mkTrade("alice", 6, time.Hour, now),
		mkTrade("bob", -50, time.Hour, now),
	}

	totals := AggregateTotals(trades, nil)
	require.Len(t, totals, 2)
	assert.Equal(t, TraderTotal{Trader: "alice", Total: 12, Trades: 3, Wins: 2}, totals[0])
	assert.Equal(t, TraderTotal{Trader: "bob", Total: -20, Trades: 2, Wins: 1}, totals[1])
}

func TestAggregateTotalsCaseSensitiveGrouping(t *testing.T) {
	now := time.Now()
	trades := []*domain.TradeRecord{
		mkTrade("Alice", 5, time.Hour, now),
		mkTrade("alice", 5, time.Hour, now),
	}
	totals := AggregateTotals(trades, nil)
	assert.Len(t, totals, 2)
}

func TestAggregateTotalsDenylist(t *testing.T) {
	now := time.Now()
	trades := []*domain.TradeRecord{
		mkTrade("alice", 5, time.Hour, now),
		mkTrade("SignalBot", 500, time.Hour, now),
		mkTrade("signalbot-pro", 400, time.Hour, now), // substring match
	}

	totals := AggregateTotals(trades, []string{" signalbot "})
	require.Len(t, totals, 1)
	assert.Equal(t, "alice", totals[0].Trader)
}
