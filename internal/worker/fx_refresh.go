package worker

// fx_refresh.go
// Background goroutine that periodically refreshes the cached FX rates
// used for cross-currency price comparisons. Uses the Circuit Breaker
// inside FXClient to avoid hammering a downed rate provider.

import (
	"context"
	"time"

	"steelpricing/internal/infra"

	"github.com/rs/zerolog/log"
)

const fxRefreshInterval = 1 * time.Hour

// FXRefreshConfig holds all dependencies for the refresh goroutine.
type FXRefreshConfig struct {
	FXClient *infra.FXClient
	// Pairs to keep warm, e.g. [["USD","EUR"],["USD","INR"]]
	Pairs [][2]string
}

// StartFXRefresh launches a background goroutine that ticks hourly and
// re-fetches each configured currency pair so API reads stay cache-warm.
// It respects the context for graceful shutdown.
func StartFXRefresh(ctx context.Context, cfg FXRefreshConfig) {
	go func() {
		ticker := time.NewTicker(fxRefreshInterval)
		defer ticker.Stop()

		log.Info().Int("pairs", len(cfg.Pairs)).Msg("fx_refresh: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("fx_refresh: shutting down")
				return
			case <-ticker.C:
				refreshPairs(ctx, cfg)
			}
		}
	}()
}

func refreshPairs(ctx context.Context, cfg FXRefreshConfig) {
	// If the breaker is open, skip entirely — don't hammer a downed provider
	if cfg.FXClient.BreakerState() == infra.BreakerOpen {
		log.Debug().Msg("fx_refresh: circuit breaker is open, skipping tick")
		return
	}

	for _, pair := range cfg.Pairs {
		// Breaker may have tripped mid-batch
		if cfg.FXClient.BreakerState() == infra.BreakerOpen {
			log.Debug().Msg("fx_refresh: circuit breaker opened mid-batch, stopping")
			return
		}

		rate, err := cfg.FXClient.Refresh(ctx, pair[0], pair[1])
		if err != nil {
			log.Warn().Err(err).Str("base", pair[0]).Str("quote", pair[1]).Msg("fx_refresh: refresh failed")
			continue
		}
		log.Debug().Str("base", pair[0]).Str("quote", pair[1]).Str("rate", rate.String()).Msg("fx_refresh: rate refreshed")
	}
}
