package ports

import (
	"context"
	"time"
)

// EmbedField is one name/value pair attached to a rich embed.
type EmbedField struct {
	Name  string
	Value string
}

// Embed carries the text fragments of a rich embed. Trade-signal services
// commonly post the trader name and PnL in the embed author line, so the
// extractor treats AuthorName fragments with higher priority.
type Embed struct {
	AuthorName  string
	Title       string
	Description string
	Footer      string
	Fields      []EmbedField
}

// ChatMessage is a channel message as seen by the core, decoupled from the
// gateway wire types.
type ChatMessage struct {
	ID        string
	ChannelID string
	Author    string // Display name of the poster
	Content   string
	Embeds    []Embed
	Timestamp time.Time
	Link      string // Permalink to the message, display only
}

// MessageSource fetches channel history. Pagination is cursor-based: pass
// the ID of the oldest message seen so far as beforeID, empty for the most
// recent page.
type MessageSource interface {
	FetchMessages(ctx context.Context, channelID string, limit int, beforeID string) ([]ChatMessage, error)
}

// Publisher sends and pins leaderboard output.
type Publisher interface {
	// SendBlock posts a text block and returns the new message's ID.
	SendBlock(ctx context.Context, channelID, content string) (string, error)
	// Pin pins a message in its channel.
	Pin(ctx context.Context, channelID, messageID string) error
	// Unpin removes a pin.
	Unpin(ctx context.Context, channelID, messageID string) error
	// ListOwnPins returns the IDs of currently pinned messages authored by
	// the bot itself, oldest first.
	ListOwnPins(ctx context.Context, channelID string) ([]string, error)
}

// SymbolVerifier checks whether a ticker is listed on the reference
// exchange. Used only by the explicit add-trade command path; free-text
// scanning never performs I/O.
type SymbolVerifier interface {
	// VerifySymbol reports whether base (e.g. "BTC") resolves to a listed
	// market. Implementations may normalise quote suffixes themselves.
	VerifySymbol(ctx context.Context, base string) (bool, error)
}
