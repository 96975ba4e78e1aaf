package infra

import (
	"errors"
	"sync"
	"time"
)

// ── FX provider breaker ───────────────────────────────────────────────────────
// Breaker guards the outbound calls to the exchange-rate provider. After
// MaxFailures straight errors it trips and fails fast; once Cooldown has
// passed the next call runs as a probe, and ProbeTarget good probes close
// it again.

// BreakerState is the breaker's position, exposed on /health as a string.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned by Execute while the breaker is failing fast.
var ErrBreakerOpen = errors.New("fx provider circuit open")

type BreakerConfig struct {
	MaxFailures int           // straight failures before tripping
	ProbeTarget int           // good probes needed to close again
	Cooldown    time.Duration // fail-fast window after tripping
}

// FXBreakerConfig is tuned to the rate provider: trip after three straight
// errors, fail fast for two minutes (cache reads keep serving meanwhile),
// and let a single good probe close the breaker.
func FXBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 3,
		ProbeTarget: 1,
		Cooldown:    2 * time.Minute,
	}
}

type Breaker struct {
	mu        sync.Mutex
	cfg       BreakerConfig
	state     BreakerState
	failures  int
	probes    int
	trippedAt time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.ProbeTarget <= 0 {
		cfg.ProbeTarget = 1
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 2 * time.Minute
	}
	return &Breaker{cfg: cfg}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

// stateLocked flips open → half-open once the cooldown has elapsed.
// Callers must hold b.mu.
func (b *Breaker) stateLocked() BreakerState {
	if b.state == BreakerOpen && time.Since(b.trippedAt) >= b.cfg.Cooldown {
		b.state = BreakerHalfOpen
		b.probes = 0
	}
	return b.state
}

// Execute runs fn unless the breaker is open, in which case it returns
// ErrBreakerOpen without touching the provider.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	if b.stateLocked() == BreakerOpen {
		b.mu.Unlock()
		return ErrBreakerOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *Breaker) recordFailure() {
	b.failures++
	b.trippedAt = time.Now()

	switch b.state {
	case BreakerClosed:
		if b.failures >= b.cfg.MaxFailures {
			b.state = BreakerOpen
			b.probes = 0
		}
	case BreakerHalfOpen:
		// failed probe: back to fail-fast for another cooldown
		b.state = BreakerOpen
		b.failures = 0
	}
}

func (b *Breaker) recordSuccess() {
	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.probes++
		if b.probes >= b.cfg.ProbeTarget {
			b.state = BreakerClosed
			b.failures = 0
			b.probes = 0
		}
	}
}
