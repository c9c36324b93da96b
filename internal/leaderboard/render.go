package leaderboard

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"analyseman/internal/domain"
)

// Row is one display line of a leaderboard block, with an optional
// hyperlink back to the source trade.
type Row struct {
	Text string
	Link string
}

// TradeRows formats ranked trades into display rows, rank is 1-based.
func TradeRows(trades []*domain.TradeRecord) []Row {
	rows := make([]Row, 0, len(trades))
	for i, t := range trades {
		var sb strings.Builder
		fmt.Fprintf(&sb, "**%d.** %s %+.2f%%", i+1, t.Trader, t.PnlPercent)
		if detail := tradeDetail(t); detail != "" {
			sb.WriteString(" (" + detail + ")")
		}
		rows = append(rows, Row{Text: sb.String(), Link: t.SourceLink})
	}
	return rows
}

func tradeDetail(t *domain.TradeRecord) string {
	var parts []string
	if t.Symbol != "" {
		parts = append(parts, t.Symbol)
	}
	if t.Side != domain.SideUnknown {
		parts = append(parts, string(t.Side))
	}
	if t.Leverage > 0 {
		parts = append(parts, fmt.Sprintf("%dx", t.Leverage))
	}
	return strings.Join(parts, " ")
}

// TotalsRows formats per-trader totals into display rows.
func TotalsRows(totals []TraderTotal) []Row {
	rows := make([]Row, 0, len(totals))
	for i, tt := range totals {
		text := fmt.Sprintf("**%d.** %s %+.2f%% (%d trades, %d wins)",
			i+1, tt.Trader, tt.Total, tt.Trades, tt.Wins)
		rows = append(rows, Row{Text: text})
	}
	return rows
}

// RenderBounded renders a titled block that never exceeds budget bytes.
// Degradation ladder when the full render is too large:
//  1. all rows with links
//  2. all rows, links omitted
//  3. row count reduced by 10%, repeatedly
//  4. hard truncation of whatever remains
//
// The ladder is deterministic and always produces a valid string, never an
// error.
func RenderBounded(title string, rows []Row, budget int) string {
	if budget <= 0 {
		return ""
	}

	out := render(title, rows, true)
	if len(out) <= budget {
		return out
	}

	out = render(title, rows, false)
	if len(out) <= budget {
		return out
	}

	n := len(rows)
	for n > 0 {
		drop := (n + 9) / 10 // at least one row per step
		n -= drop
		out = render(title, rows[:n], false)
		if len(out) <= budget {
			return out
		}
	}

	return truncate(render(title, nil, false), budget)
}

func render(title string, rows []Row, withLinks bool) string {
	var sb strings.Builder
	sb.WriteString(title)
	for _, r := range rows {
		sb.WriteString("\n")
		sb.WriteString(r.Text)
		if withLinks && r.Link != "" {
			sb.WriteString(" [↗](" + r.Link + ")")
		}
	}
	return sb.String()
}

// truncate cuts a string to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
