package ports

import "context"

// AddTradeCommand is the structured alternative to free-text reports: an
// explicit "add trade" action from the command surface. Pnl, when set,
// overrides the computed value and is taken at face value (no leverage
// scaling).
type AddTradeCommand struct {
	Trader   string
	Symbol   string
	Side     string
	Entry    float64
	Exit     float64
	Leverage int      // 0 means not provided, defaults to 1
	Pnl      *float64 // Optional explicit override
}

// CommandHandler is what the command surface needs from the application.
// Post methods publish into the leaderboard channel; AddTrade returns the
// user-facing reply text (including the actionable usage message on
// invalid input).
type CommandHandler interface {
	PostAllTime(ctx context.Context) error
	PostWeekly(ctx context.Context) error
	PostTotals(ctx context.Context) error
	AddTrade(ctx context.Context, cmd AddTradeCommand) (string, error)
}
