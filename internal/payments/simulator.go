package payments

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
	"github.com/ariefcatur/sparkleclean-booking/internal/task"
)

// ErrDeclined is a simulated, retryable authorization failure.
var ErrDeclined = errors.New("payments: payment failed, try again or use a different card")

// Authorization is what a successful attempt yields.
type Authorization struct {
	Reference    string    `json:"reference"`
	AuthorizedAt time.Time `json:"authorizedAt"`
}

type SimulatorConfig struct {
	Delay       time.Duration
	SuccessRate float64
}

func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{Delay: 1500 * time.Millisecond, SuccessRate: 0.9}
}

// Simulator stands in for a payment gateway. The outcome is a uniform random draw
// and never depends on the card.
type Simulator struct {
	cfg    SimulatorConfig
	logger *logging.Logger
	now    func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Simulator)

// WithRand makes outcomes reproducible.
func WithRand(r *rand.Rand) Option { return func(s *Simulator) { s.rng = r } }

func WithClock(now func() time.Time) Option { return func(s *Simulator) { s.now = now } }

func NewSimulator(cfg SimulatorConfig, logger *logging.Logger, opts ...Option) *Simulator {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SuccessRate < 0 || cfg.SuccessRate > 1 {
		cfg.SuccessRate = DefaultSimulatorConfig().SuccessRate
	}
	s := &Simulator{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Authorize starts an attempt. The result arrives after the configured delay, or
// earlier with ctx.Err() if ctx is cancelled.
func (s *Simulator) Authorize(ctx context.Context, card CardInput) *task.Task[Authorization] {
	last4 := card.Last4()
	return task.Go(ctx, func(ctx context.Context) (Authorization, error) {
		if err := task.Sleep(ctx, s.cfg.Delay); err != nil {
			return Authorization{}, err
		}
		if !s.draw() {
			s.logger.Warn("payment declined", "card_last4", last4)
			return Authorization{}, ErrDeclined
		}
		auth := Authorization{Reference: "AUTH-" + uuid.NewString(), AuthorizedAt: s.now().UTC()}
		s.logger.Info("payment authorized", "card_last4", last4, "reference", auth.Reference)
		return auth, nil
	})
}

func (s *Simulator) draw() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.cfg.SuccessRate
}
