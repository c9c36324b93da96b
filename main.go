package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"analyseman/config"
	"analyseman/internal/adapters/binanceclient"
	"analyseman/internal/adapters/discord"
	"analyseman/internal/adapters/logger"
	"analyseman/internal/adapters/schedule"
	"analyseman/internal/adapters/sqlite"
	"analyseman/internal/app"
	"analyseman/internal/ports"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Trade Store
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize trade store: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing trade store")
		}
	}()

	// 4. Initialize Discord Adapter
	session, err := discord.New(discord.Config{
		Token:   cfg.Token,
		GuildID: cfg.GuildID,
		Logger:  appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Discord adapter: %v", err)
	}

	// 5. Optional symbol verifier for the explicit add-trade path
	var verifier ports.SymbolVerifier
	if cfg.VerifySymbols {
		v, err := binanceclient.New(binanceclient.Config{Logger: appLogger})
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize symbol verifier: %v", err)
		}
		verifier = v
	}

	// 6. Application Service
	service, err := app.NewService(cfg, appLogger, repo, session, session, verifier)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize service: %v", err)
	}

	// 7. Wire gateway events, connect, register commands
	session.OnMessage(service.HandleMessage)
	session.BindCommands(service)
	if err := session.Open(ctx); err != nil {
		log.Fatalf("FATAL: Failed to connect to Discord: %v", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing gateway connection")
		}
	}()
	if err := session.RegisterCommands(ctx); err != nil {
		appLogger.Error(ctx, err, "Failed to register slash commands")
	}

	// 8. Backfill channel history in the background
	if cfg.BackfillOnStart {
		go func() {
			if _, err := service.Backfill(ctx); err != nil {
				appLogger.Error(ctx, err, "Backfill aborted")
			}
		}()
	}

	// 9. Scheduled leaderboard posts
	runner := schedule.New(appLogger, ctx, cfg.Location)
	if _, err := runner.Add(cfg.DailyCron, func(jobCtx context.Context) {
		if err := service.PostWeekly(jobCtx); err != nil {
			appLogger.Error(jobCtx, err, "Scheduled weekly post failed")
		}
	}); err != nil {
		log.Fatalf("FATAL: Invalid DAILY_CRON expression: %v", err)
	}
	if _, err := runner.Add(cfg.WeeklyCron, func(jobCtx context.Context) {
		if err := service.PostAllTime(jobCtx); err != nil {
			appLogger.Error(jobCtx, err, "Scheduled all-time post failed")
		}
		if err := service.PostTotals(jobCtx); err != nil {
			appLogger.Error(jobCtx, err, "Scheduled totals post failed")
		}
	}); err != nil {
		log.Fatalf("FATAL: Invalid WEEKLY_CRON expression: %v", err)
	}
	runner.Start()
	defer runner.Stop()

	appLogger.Info(ctx, "Analyseman is running", map[string]interface{}{
		"tradeLog":    cfg.TradeLogChannel,
		"leaderboard": cfg.LeaderboardChannel,
		"timezone":    cfg.Timezone,
	})

	// Block until shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	appLogger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
	cancel()
}
