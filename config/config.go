package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"analyseman/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration. It is constructed once at
// process start and passed explicitly to the components that need it.
type Config struct {
	// Discord
	Token              string
	GuildID            string
	TradeLogChannel    string // Channel scanned for trade reports
	LeaderboardChannel string // Channel receiving the ranked posts

	// Leaderboard Parameters
	WeeklyTopN      int      // Weekly window size, historically 10
	AllTimeTopN     int      // All-time list size, historically 25
	WeeklyWindow    int      // Window in days for the weekly list
	ExcludedTraders []string // Denylist for totals output
	MaxBlockBytes   int      // Combined size ceiling for one posted message

	// Scheduling
	Timezone   string
	Location   *time.Location
	DailyCron  string // Posts the weekly-window Top-N
	WeeklyCron string // Posts all-time Top-N plus trader totals

	// Backfill
	BackfillOnStart     bool
	BackfillPageSize    int
	BackfillPageDelay   time.Duration
	BackfillMaxMessages int

	// Symbol verification (explicit add-trade path only)
	VerifySymbols bool

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Discord
	cfg.Token = getEnv("DISCORD_TOKEN", "")
	if cfg.Token == "" {
		errs = append(errs, "DISCORD_TOKEN must be set")
	}
	cfg.GuildID = getEnv("GUILD_ID", getEnv("SERVER_ID", ""))
	if cfg.GuildID == "" {
		errs = append(errs, "GUILD_ID must be set")
	}
	cfg.TradeLogChannel = getEnv("TRADE_LOG_CHANNEL", "")
	if cfg.TradeLogChannel == "" {
		errs = append(errs, "TRADE_LOG_CHANNEL must be set")
	}
	cfg.LeaderboardChannel = getEnv("LEADERBOARD_CHANNEL", "")
	if cfg.LeaderboardChannel == "" {
		errs = append(errs, "LEADERBOARD_CHANNEL must be set")
	}

	// Leaderboard Parameters
	cfg.WeeklyTopN, err = getEnvAsIntRequired("WEEKLY_TOP_N", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid WEEKLY_TOP_N: %v", err))
	} else if cfg.WeeklyTopN <= 0 {
		errs = append(errs, "WEEKLY_TOP_N must be positive")
	}

	cfg.AllTimeTopN, err = getEnvAsIntRequired("ALLTIME_TOP_N", 25)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ALLTIME_TOP_N: %v", err))
	} else if cfg.AllTimeTopN <= 0 {
		errs = append(errs, "ALLTIME_TOP_N must be positive")
	}

	cfg.WeeklyWindow = getEnvAsInt("WEEKLY_WINDOW_DAYS", 7)
	if cfg.WeeklyWindow <= 0 {
		errs = append(errs, "WEEKLY_WINDOW_DAYS must be positive")
	}

	if raw := getEnv("EXCLUDED_TRADERS", ""); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.ExcludedTraders = append(cfg.ExcludedTraders, name)
			}
		}
	}

	// One posted message carries multiple blocks; stay under the 2000-char
	// platform ceiling with headroom for separators.
	cfg.MaxBlockBytes = getEnvAsInt("MAX_BLOCK_BYTES", 1900)
	if cfg.MaxBlockBytes <= 0 || cfg.MaxBlockBytes > 2000 {
		errs = append(errs, "MAX_BLOCK_BYTES must be between 1 and 2000")
	}

	// Scheduling
	cfg.Timezone = getEnv("TZ", "Europe/Amsterdam")
	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TZ %q: %v", cfg.Timezone, err))
	}
	cfg.DailyCron = getEnv("DAILY_CRON", "0 9 * * *")    // Every morning
	cfg.WeeklyCron = getEnv("WEEKLY_CRON", "0 9 * * 1") // Monday morning

	// Backfill
	cfg.BackfillOnStart = getEnvAsBool("BACKFILL_ON_START", true)
	cfg.BackfillPageSize = getEnvAsInt("BACKFILL_PAGE_SIZE", 100)
	if cfg.BackfillPageSize <= 0 || cfg.BackfillPageSize > 100 {
		errs = append(errs, "BACKFILL_PAGE_SIZE must be between 1 and 100")
	}
	delayMs := getEnvAsInt("BACKFILL_PAGE_DELAY_MS", 750)
	if delayMs < 0 {
		errs = append(errs, "BACKFILL_PAGE_DELAY_MS cannot be negative")
	}
	cfg.BackfillPageDelay = time.Duration(delayMs) * time.Millisecond
	cfg.BackfillMaxMessages = getEnvAsInt("BACKFILL_MAX_MESSAGES", 10000)
	if cfg.BackfillMaxMessages <= 0 {
		errs = append(errs, "BACKFILL_MAX_MESSAGES must be positive")
	}

	// Symbol verification
	cfg.VerifySymbols = getEnvAsBool("VERIFY_SYMBOLS", false)

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/analyseman.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
