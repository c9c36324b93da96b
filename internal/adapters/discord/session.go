package discord

import (
	"context"
	"fmt"
	"net/http"

	"analyseman/internal/ports"

	"github.com/bwmarrin/discordgo"
)

// Session implements ports.MessageSource and ports.Publisher over a
// Discord gateway connection.
type Session struct {
	s       *discordgo.Session
	guildID string
	logger  ports.Logger
	userID  string // Bot's own user ID, known after Open
}

// Config holds configuration specific to the Discord adapter.
type Config struct {
	Token   string
	GuildID string
	Logger  ports.Logger
}

// New creates the Discord adapter. The gateway connection is not opened
// until Open is called.
func New(cfg Config) (*Session, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Discord adapter")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("bot token is empty: %w", ports.ErrConfigurationError)
	}

	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	return &Session{
		s:       s,
		guildID: cfg.GuildID,
		logger:  cfg.Logger,
	}, nil
}

// Open connects to the gateway.
func (d *Session) Open(ctx context.Context) error {
	if err := d.s.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", d.translate(err))
	}
	d.userID = d.s.State.User.ID
	d.logger.Info(ctx, "Gateway connection established", map[string]interface{}{
		"bot": d.s.State.User.Username,
	})
	return nil
}

// Close disconnects from the gateway.
func (d *Session) Close() error {
	return d.s.Close()
}

// OnMessage registers a callback for newly posted channel messages. The
// bot's own messages are skipped; messages from other bots are not, since
// signal services post trade reports through bot accounts.
func (d *Session) OnMessage(fn func(ctx context.Context, msg ports.ChatMessage)) {
	d.s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.ID == d.userID {
			return
		}
		fn(context.Background(), d.toChatMessage(m.Message))
	})
}

// FetchMessages implements ports.MessageSource. Messages come back newest
// first; pass the oldest seen ID as beforeID to page further into history.
func (d *Session) FetchMessages(ctx context.Context, channelID string, limit int, beforeID string) ([]ports.ChatMessage, error) {
	raw, err := d.s.ChannelMessages(channelID, limit, beforeID, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages from channel %s: %w", channelID, d.translate(err))
	}
	msgs := make([]ports.ChatMessage, 0, len(raw))
	for _, m := range raw {
		msgs = append(msgs, d.toChatMessage(m))
	}
	return msgs, nil
}

// SendBlock implements ports.Publisher.
func (d *Session) SendBlock(ctx context.Context, channelID, content string) (string, error) {
	m, err := d.s.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", fmt.Errorf("failed to send message to channel %s: %w", channelID, d.translate(err))
	}
	return m.ID, nil
}

// Pin implements ports.Publisher.
func (d *Session) Pin(ctx context.Context, channelID, messageID string) error {
	if err := d.s.ChannelMessagePin(channelID, messageID); err != nil {
		return fmt.Errorf("failed to pin message %s: %w", messageID, d.translate(err))
	}
	return nil
}

// Unpin implements ports.Publisher.
func (d *Session) Unpin(ctx context.Context, channelID, messageID string) error {
	if err := d.s.ChannelMessageUnpin(channelID, messageID); err != nil {
		return fmt.Errorf("failed to unpin message %s: %w", messageID, d.translate(err))
	}
	return nil
}

// ListOwnPins returns the IDs of pinned messages authored by the bot.
func (d *Session) ListOwnPins(ctx context.Context, channelID string) ([]string, error) {
	pinned, err := d.s.ChannelMessagesPinned(channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pins in channel %s: %w", channelID, d.translate(err))
	}
	var ids []string
	for _, m := range pinned {
		if m.Author != nil && m.Author.ID == d.userID {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (d *Session) toChatMessage(m *discordgo.Message) ports.ChatMessage {
	guildID := m.GuildID
	if guildID == "" {
		guildID = d.guildID
	}
	msg := ports.ChatMessage{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		Link:      fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, m.ChannelID, m.ID),
	}
	if m.Author != nil {
		msg.Author = m.Author.Username
	}
	for _, e := range m.Embeds {
		embed := ports.Embed{
			Title:       e.Title,
			Description: e.Description,
		}
		if e.Author != nil {
			embed.AuthorName = e.Author.Name
		}
		if e.Footer != nil {
			embed.Footer = e.Footer.Text
		}
		for _, f := range e.Fields {
			if f == nil {
				continue
			}
			embed.Fields = append(embed.Fields, ports.EmbedField{Name: f.Name, Value: f.Value})
		}
		msg.Embeds = append(msg.Embeds, embed)
	}
	return msg
}

// translate maps REST errors onto the standard ports sentinels.
func (d *Session) translate(err error) error {
	if err == nil {
		return nil
	}
	if restErr, ok := err.(*discordgo.RESTError); ok && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ports.ErrAuthenticationFailed, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %v", ports.ErrPermissionDenied, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ports.ErrChannelNotFound, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ports.ErrRateLimited, err)
		}
	}
	return err
}
