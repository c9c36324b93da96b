package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"analyseman/config"
	"analyseman/internal/domain"
	"analyseman/internal/leaderboard"
	"analyseman/internal/parse"
	"analyseman/internal/ports"
)

const addTradeUsage = "Invalid input. Expected: /addtrade symbol:<TICKER> side:<LONG|SHORT> entry:<price> exit:<price> [leverage:<n>] [pnl:<percent>]"

// Service orchestrates scanning, explicit trade commands, scheduled
// leaderboard posts and history backfill.
type Service struct {
	cfg      *config.Config
	logger   ports.Logger
	repo     ports.TradeRepository
	source   ports.MessageSource
	pub      ports.Publisher
	verifier ports.SymbolVerifier // Optional, nil disables verification

	now func() time.Time // Injectable for tests
}

// NewService creates a new application service instance.
func NewService(
	cfg *config.Config,
	logger ports.Logger,
	repo ports.TradeRepository,
	source ports.MessageSource,
	pub ports.Publisher,
	verifier ports.SymbolVerifier,
) (*Service, error) {
	if cfg == nil || logger == nil || repo == nil || source == nil || pub == nil {
		return nil, fmt.Errorf("missing required dependencies for Service")
	}
	if cfg.WeeklyTopN <= 0 || cfg.AllTimeTopN <= 0 {
		return nil, fmt.Errorf("configuration Top-N values must be positive")
	}
	if cfg.MaxBlockBytes <= 0 {
		return nil, fmt.Errorf("configuration MaxBlockBytes must be positive")
	}

	return &Service{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		source:   source,
		pub:      pub,
		verifier: verifier,
		now:      time.Now,
	}, nil
}

// HandleMessage scans one inbound message for a trade report. Messages
// outside the trade-log channel, and messages that are not trade reports,
// are silently ignored.
func (s *Service) HandleMessage(ctx context.Context, msg ports.ChatMessage) {
	if msg.ChannelID != s.cfg.TradeLogChannel {
		return
	}
	rec := s.recordFromMessage(msg)
	if rec == nil {
		return
	}
	created, err := s.repo.InsertTrade(ctx, rec)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to store scanned trade", map[string]interface{}{"sourceID": rec.SourceID})
		return
	}
	if created {
		s.logger.Info(ctx, "Trade scanned", map[string]interface{}{
			"trader": rec.Trader, "symbol": rec.Symbol, "pnl": rec.PnlPercent,
		})
	}
}

// recordFromMessage extracts a trade record from a message, or nil when the
// message is not a trade report.
func (s *Service) recordFromMessage(msg ports.ChatMessage) *domain.TradeRecord {
	pt := parse.ExtractTrade(parse.InputFromMessage(msg))
	if pt == nil || pt.Pnl == nil || msg.Author == "" {
		return nil
	}
	rec := &domain.TradeRecord{
		SourceID:   msg.ID,
		Trader:     msg.Author,
		Symbol:     pt.Symbol,
		Side:       pt.Side,
		PnlPercent: *pt.Pnl,
		Timestamp:  msg.Timestamp,
		SourceLink: msg.Link,
	}
	if pt.Entry != nil {
		rec.EntryPrice = *pt.Entry
	}
	if pt.Exit != nil {
		rec.ExitPrice = *pt.Exit
	}
	if pt.Leverage != nil {
		if lv := int(math.Round(*pt.Leverage)); lv > 0 {
			rec.Leverage = lv
		}
	}
	return rec
}

// AddTrade implements the explicit command path. Invalid input yields an
// actionable reply naming the expected argument shape, not an error.
func (s *Service) AddTrade(ctx context.Context, cmd ports.AddTradeCommand) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(cmd.Symbol))
	side := domain.Side(strings.ToUpper(strings.TrimSpace(cmd.Side)))

	if symbol == "" || cmd.Trader == "" {
		return addTradeUsage, nil
	}
	if side != domain.SideLong && side != domain.SideShort {
		return addTradeUsage, nil
	}
	if !(cmd.Entry > 0) || !(cmd.Exit > 0) || math.IsInf(cmd.Entry, 0) || math.IsInf(cmd.Exit, 0) {
		return addTradeUsage, nil
	}
	if cmd.Leverage < 0 {
		return addTradeUsage, nil
	}

	if s.verifier != nil {
		listed, err := s.verifier.VerifySymbol(ctx, symbol)
		if err != nil {
			// Verification is best-effort; record the trade anyway.
			s.logger.Warn(ctx, "Symbol verification unavailable", map[string]interface{}{
				"symbol": symbol, "error": err.Error(),
			})
		} else if !listed {
			return fmt.Sprintf("Unknown symbol %q. %s", symbol, addTradeUsage), nil
		}
	}

	leverage := cmd.Leverage
	if leverage == 0 {
		leverage = 1
	}

	// An explicit PnL override is taken at face value; a computed one is
	// scaled by leverage.
	var pnl float64
	if cmd.Pnl != nil {
		pnl = *cmd.Pnl
	} else {
		v, ok := parse.ComputePnlPercent(side, cmd.Entry, cmd.Exit)
		if !ok {
			return addTradeUsage, nil
		}
		pnl = v * float64(leverage)
	}
	pnl = domain.ClampPnl(pnl)

	now := s.now()
	rec := &domain.TradeRecord{
		SourceID:   fmt.Sprintf("cmd-%d", now.UnixNano()),
		Trader:     cmd.Trader,
		Symbol:     symbol,
		Side:       side,
		Leverage:   leverage,
		EntryPrice: cmd.Entry,
		ExitPrice:  cmd.Exit,
		PnlPercent: pnl,
		Timestamp:  now,
	}
	if _, err := s.repo.InsertTrade(ctx, rec); err != nil {
		return "", fmt.Errorf("failed to record trade: %w", err)
	}
	return fmt.Sprintf("Recorded %s %s %+.2f%% for %s.", symbol, side, pnl, cmd.Trader), nil
}

// PostWeekly publishes the weekly-window Top-N into the leaderboard channel.
func (s *Service) PostWeekly(ctx context.Context) error {
	trades, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	ranked := leaderboard.RankTrades(trades, s.now(), leaderboard.Options{
		WindowDays: s.cfg.WeeklyWindow,
		TopN:       s.cfg.WeeklyTopN,
		Order:      leaderboard.Best,
	})
	title := fmt.Sprintf("**🏆 Top %d (last %d days)**", s.cfg.WeeklyTopN, s.cfg.WeeklyWindow)
	block := leaderboard.RenderBounded(title, leaderboard.TradeRows(ranked), s.cfg.MaxBlockBytes)
	return s.publish(ctx, block)
}

// PostAllTime publishes the all-time best and worst Top-N. Both blocks go
// into one message and share its size ceiling.
func (s *Service) PostAllTime(ctx context.Context) error {
	trades, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	now := s.now()
	best := leaderboard.RankTrades(trades, now, leaderboard.Options{TopN: s.cfg.AllTimeTopN, Order: leaderboard.Best})
	worst := leaderboard.RankTrades(trades, now, leaderboard.Options{TopN: s.cfg.AllTimeTopN, Order: leaderboard.Worst})

	perBlock := (s.cfg.MaxBlockBytes - 2) / 2
	winsTitle := fmt.Sprintf("**📈 All-Time Top %d Wins**", s.cfg.AllTimeTopN)
	lossTitle := fmt.Sprintf("**📉 All-Time Top %d Losses**", s.cfg.AllTimeTopN)
	content := leaderboard.RenderBounded(winsTitle, leaderboard.TradeRows(best), perBlock) +
		"\n\n" +
		leaderboard.RenderBounded(lossTitle, leaderboard.TradeRows(worst), perBlock)
	return s.publish(ctx, content)
}

// PostTotals publishes summed PnL per trader, best to worst.
func (s *Service) PostTotals(ctx context.Context) error {
	trades, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	totals := leaderboard.AggregateTotals(trades, s.cfg.ExcludedTraders)
	block := leaderboard.RenderBounded("**Σ Totals per trader**", leaderboard.TotalsRows(totals), s.cfg.MaxBlockBytes)
	return s.publish(ctx, block)
}

// publish sends a block to the leaderboard channel and pins it, unpinning
// the bot's previous posts first so only the latest results stay pinned.
func (s *Service) publish(ctx context.Context, content string) error {
	channel := s.cfg.LeaderboardChannel
	msgID, err := s.pub.SendBlock(ctx, channel, content)
	if err != nil {
		return fmt.Errorf("failed to publish leaderboard: %w", err)
	}

	if pins, err := s.pub.ListOwnPins(ctx, channel); err != nil {
		s.logger.Warn(ctx, "Could not list existing pins", map[string]interface{}{"error": err.Error()})
	} else {
		for _, id := range pins {
			if err := s.pub.Unpin(ctx, channel, id); err != nil {
				s.logger.Warn(ctx, "Could not unpin previous post", map[string]interface{}{
					"messageID": id, "error": err.Error(),
				})
			}
		}
	}

	if err := s.pub.Pin(ctx, channel, msgID); err != nil {
		s.logger.Warn(ctx, "Could not pin leaderboard post", map[string]interface{}{
			"messageID": msgID, "error": err.Error(),
		})
	}
	s.logger.Info(ctx, "Leaderboard published", map[string]interface{}{"messageID": msgID, "bytes": len(content)})
	return nil
}

// Backfill walks the trade-log channel history page by page, rebuilding
// trade records. Inserts are idempotent per source message, so partial
// completion or re-running is safe. Returns the number of new records.
func (s *Service) Backfill(ctx context.Context) (int, error) {
	var scanned, inserted int
	beforeID := ""

	for scanned < s.cfg.BackfillMaxMessages {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}

		page, err := s.source.FetchMessages(ctx, s.cfg.TradeLogChannel, s.cfg.BackfillPageSize, beforeID)
		if err != nil {
			return inserted, fmt.Errorf("backfill fetch failed: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, msg := range page {
			scanned++
			rec := s.recordFromMessage(msg)
			if rec == nil {
				continue
			}
			created, err := s.repo.InsertTrade(ctx, rec)
			if err != nil {
				s.logger.Warn(ctx, "Backfill insert failed", map[string]interface{}{
					"sourceID": rec.SourceID, "error": err.Error(),
				})
				continue
			}
			if created {
				inserted++
			}
		}

		// Pages are newest first; the last entry is the oldest seen.
		beforeID = page[len(page)-1].ID

		// Inter-page throttle to stay friendly to the API.
		select {
		case <-ctx.Done():
			return inserted, ctx.Err()
		case <-time.After(s.cfg.BackfillPageDelay):
		}
	}

	s.logger.Info(ctx, "Backfill finished", map[string]interface{}{
		"scanned": scanned, "inserted": inserted,
	})
	return inserted, nil
}
