package discord

import (
	"context"
	"fmt"

	"analyseman/internal/ports"

	"github.com/bwmarrin/discordgo"
)

func commandDefs() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "lb_alltime",
			Description: "Post the all-time Top 25 (wins & losses)",
		},
		{
			Name:        "lb_weekly",
			Description: "Post the Top 10 of the last 7 days",
		},
		{
			Name:        "totals",
			Description: "Post total +/- PnL % per trader (best to worst)",
		},
		{
			Name:        "addtrade",
			Description: "Record a trade explicitly",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "symbol",
					Description: "Ticker, e.g. BTC",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "side",
					Description: "Position direction",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "LONG", Value: "LONG"},
						{Name: "SHORT", Value: "SHORT"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        "entry",
					Description: "Entry price",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        "exit",
					Description: "Exit price",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "leverage",
					Description: "Leverage multiplier (default 1)",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        "pnl",
					Description: "Explicit PnL % override",
					Required:    false,
				},
			},
		},
	}
}

// RegisterCommands registers the guild-scoped slash commands. Must be
// called after Open.
func (d *Session) RegisterCommands(ctx context.Context) error {
	for _, def := range commandDefs() {
		if _, err := d.s.ApplicationCommandCreate(d.userID, d.guildID, def); err != nil {
			return fmt.Errorf("failed to register command %s: %w", def.Name, d.translate(err))
		}
		d.logger.Debug(ctx, "Slash command registered", map[string]interface{}{"command": def.Name})
	}
	d.logger.Info(ctx, "Slash commands registered", map[string]interface{}{"count": len(commandDefs())})
	return nil
}

// BindCommands dispatches incoming slash-command interactions to the
// application handler.
func (d *Session) BindCommands(h ports.CommandHandler) {
	d.s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		ctx := context.Background()
		data := i.ApplicationCommandData()

		var reply string
		var err error
		switch data.Name {
		case "lb_alltime":
			err = h.PostAllTime(ctx)
			reply = "All-time leaderboard posted."
		case "lb_weekly":
			err = h.PostWeekly(ctx)
			reply = "Weekly leaderboard posted."
		case "totals":
			err = h.PostTotals(ctx)
			reply = "Trader totals posted."
		case "addtrade":
			reply, err = h.AddTrade(ctx, addTradeFromInteraction(i))
		default:
			return
		}
		if err != nil {
			d.logger.Error(ctx, err, "Slash command failed", map[string]interface{}{"command": data.Name})
			reply = "Something went wrong, please try again later."
		}
		d.respond(ctx, i, reply)
	})
}

func addTradeFromInteraction(i *discordgo.InteractionCreate) ports.AddTradeCommand {
	cmd := ports.AddTradeCommand{Trader: interactionUser(i)}
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "symbol":
			cmd.Symbol = opt.StringValue()
		case "side":
			cmd.Side = opt.StringValue()
		case "entry":
			cmd.Entry = opt.FloatValue()
		case "exit":
			cmd.Exit = opt.FloatValue()
		case "leverage":
			cmd.Leverage = int(opt.IntValue())
		case "pnl":
			v := opt.FloatValue()
			cmd.Pnl = &v
		}
	}
	return cmd
}

func interactionUser(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	if i.User != nil {
		return i.User.Username
	}
	return "unknown"
}

func (d *Session) respond(ctx context.Context, i *discordgo.InteractionCreate, content string) {
	err := d.s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		d.logger.Error(ctx, d.translate(err), "Failed to respond to interaction")
	}
}
