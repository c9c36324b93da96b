package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"analyseman/internal/ports"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
)

// quoteAssets are tried when a bare base ticker does not match a listed
// market directly.
var quoteAssets = []string{"USDT", "USDC", "USD"}

// Client implements ports.SymbolVerifier against the Binance spot
// exchange-info endpoint. Only public endpoints are used, so no API keys
// are required. The listed-symbol set is cached to keep the command path
// cheap.
type Client struct {
	spot   *binance.Client
	logger ports.Logger
	ttl    time.Duration

	mu      sync.Mutex
	symbols map[string]struct{}
	fetched time.Time
}

// Config holds configuration specific to the Binance verifier adapter.
type Config struct {
	Logger   ports.Logger
	CacheTTL time.Duration // How long the symbol set stays fresh, default 1h
}

// New creates a new Binance verifier adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Client{
		spot:   binance.NewClient("", ""),
		logger: cfg.Logger,
		ttl:    ttl,
	}, nil
}

// VerifySymbol reports whether base (e.g. "BTC") resolves to a market that
// is actively trading, either as-is or with a common quote suffix.
func (c *Client) VerifySymbol(ctx context.Context, base string) (bool, error) {
	set, err := c.symbolSet(ctx)
	if err != nil {
		return false, err
	}

	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		return false, nil
	}
	if _, ok := set[base]; ok {
		return true, nil
	}
	for _, quote := range quoteAssets {
		if _, ok := set[base+quote]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) symbolSet(ctx context.Context) (map[string]struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.symbols != nil && time.Since(c.fetched) < c.ttl {
		return c.symbols, nil
	}

	info, err := c.spot.NewExchangeInfoService().Do(ctx)
	if err != nil {
		// Serve a stale set rather than failing the command outright.
		if c.symbols != nil {
			c.logger.Warn(ctx, "Exchange info refresh failed, using stale symbol set", map[string]interface{}{
				"error": err.Error(),
			})
			return c.symbols, nil
		}
		return nil, c.handleError(ctx, err, "exchangeInfo")
	}

	set := make(map[string]struct{}, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" {
			continue
		}
		set[s.Symbol] = struct{}{}
	}
	c.symbols = set
	c.fetched = time.Now()
	c.logger.Debug(ctx, "Exchange symbol set refreshed", map[string]interface{}{"symbols": len(set)})
	return set, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		var mapped error
		switch apiErr.Code {
		case -1003:
			mapped = ports.ErrRateLimited
		case -1021:
			mapped = ports.ErrTimeout
		default:
			mapped = ports.ErrUnknown
		}
		c.logger.Error(ctx, err, "Binance API error", fields)
		return fmt.Errorf("%w: binance api error %d: %s", mapped, apiErr.Code, apiErr.Message)
	}

	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ports.ErrContextCanceled, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ports.ErrTimeout, err)
	}

	c.logger.Error(ctx, err, "Binance request failed", fields)
	return fmt.Errorf("%w: %v", ports.ErrConnectionFailed, err)
}
