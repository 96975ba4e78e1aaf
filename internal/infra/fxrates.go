package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const fxCacheTTL = 4 * time.Hour

// fxAPIResponse is the shape returned by the external rate provider
// for GET {base_url}/latest?base=USD&symbols=EUR.
type fxAPIResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// FXClient fetches currency conversion rates from an external provider.
// Rates are cached in Redis for 4 hours and every upstream call goes
// through a circuit breaker so a downed provider cannot stall requests.
type FXClient struct {
	baseURL    string
	httpClient *http.Client
	rdb        *redis.Client
	cb         *Breaker
}

func NewFXClient(baseURL string, rdb *redis.Client, cb *Breaker) *FXClient {
	return &FXClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		rdb:        rdb,
		cb:         cb,
	}
}

// BreakerState exposes the breaker state for health checks and the refresh cron.
func (c *FXClient) BreakerState() BreakerState {
	return c.cb.State()
}

func fxCacheKey(base, quote string) string {
	return fmt.Sprintf("fx:%s:%s", strings.ToUpper(base), strings.ToUpper(quote))
}

// GetRate returns the conversion rate base→quote, serving from the Redis
// cache when possible and falling through to the provider otherwise.
func (c *FXClient) GetRate(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	key := fxCacheKey(base, quote)
	if cached, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if rate, derr := decimal.NewFromString(cached); derr == nil {
			return rate, nil
		}
	}
	return c.Refresh(ctx, base, quote)
}

// Refresh fetches the rate from the provider through the circuit breaker
// and rewrites the cache entry. Used by GetRate on cache miss and by the
// background refresh cron to keep hot pairs warm.
func (c *FXClient) Refresh(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	base = strings.ToUpper(base)
	quote = strings.ToUpper(quote)

	var rate decimal.Decimal
	err := c.cb.Execute(func() error {
		fetched, err := c.fetch(ctx, base, quote)
		if err != nil {
			return err
		}
		rate = fetched
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	// Cache write is best-effort — a cold cache just means another fetch
	_ = c.rdb.Set(ctx, fxCacheKey(base, quote), rate.String(), fxCacheTTL).Err()
	return rate, nil
}

func (c *FXClient) fetch(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/latest?base=%s&symbols=%s", c.baseURL, base, quote)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fx: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fx: provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fx: provider returned %d", resp.StatusCode)
	}

	var result fxAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Zero, fmt.Errorf("fx: decode response: %w", err)
	}

	raw, ok := result.Rates[quote]
	if !ok {
		return decimal.Zero, fmt.Errorf("fx: provider response missing rate for %s", quote)
	}
	return decimal.NewFromFloat(raw), nil
}
