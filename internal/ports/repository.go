package ports

import (
	"context"
	"time"

	"analyseman/internal/domain"
)

// TradeRepository defines the interface for the durable, append-only store
// of parsed trade records.
type TradeRepository interface {
	// InsertTrade saves a new trade record. The insert is idempotent per
	// SourceID: re-inserting a record derived from the same source message
	// is a no-op. Returns true when a new row was written.
	InsertTrade(ctx context.Context, trade *domain.TradeRecord) (bool, error)
	// FindAll retrieves every stored trade, ordered by timestamp ascending
	// (insertion order, which ranking tie-breaks depend on).
	FindAll(ctx context.Context) ([]*domain.TradeRecord, error)
	// FindSince retrieves trades with Timestamp >= since, same ordering.
	FindSince(ctx context.Context, since time.Time) ([]*domain.TradeRecord, error)
	// CountTrades returns the number of stored trades.
	CountTrades(ctx context.Context) (int, error)
}
