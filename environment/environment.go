// Package environment carries the ambient resources spec.md §5
// describes as shared across one solver run: a master RNG with
// deterministic per-worker derived streams, a cancellable quota, a
// thread count, and a structured logger.
package environment

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Environment is the immutable-after-construction bundle every
// long-running loop (evolution, ruin, recreate, local search) reads
// from; nothing in this package mutates shared state except the quota's
// atomic expiry flag.
type Environment struct {
	masterSeed  uint64
	threadCount int
	logger      hclog.Logger
	quota       *Quota
}

// Option configures an Environment at construction time.
type Option func(*Environment)

// WithSeed sets the master RNG seed. Defaults to a fixed constant so
// runs are reproducible unless the caller opts into randomness.
func WithSeed(seed uint64) Option {
	return func(e *Environment) { e.masterSeed = seed }
}

// WithThreadCount sets how many worker streams DerivedRNG and the
// evolution loop's worker pool should plan for.
func WithThreadCount(n int) Option {
	return func(e *Environment) { e.threadCount = n }
}

// WithLogger overrides the default logger.
func WithLogger(logger hclog.Logger) Option {
	return func(e *Environment) { e.logger = logger }
}

// WithQuota overrides the default unbounded quota.
func WithQuota(q *Quota) Option {
	return func(e *Environment) { e.quota = q }
}

// New builds an Environment with sensible defaults: seed 1, one
// thread, an hclog.Default()-derived named logger, and an unbounded
// quota.
func New(opts ...Option) *Environment {
	e := &Environment{
		masterSeed:  1,
		threadCount: 1,
		logger:      hclog.Default().Named("vrpcore"),
		quota:       NewQuota(context.Background()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Logger returns the environment's structured logger.
func (e *Environment) Logger() hclog.Logger { return e.logger }

// ThreadCount returns the configured worker count.
func (e *Environment) ThreadCount() int { return e.threadCount }

// Quota returns the shared cancellation handle.
func (e *Environment) Quota() *Quota { return e.quota }

// MasterRNG returns the top-level RNG stream. Per §5 this stream is
// never to be shared across goroutines without a lock; use DerivedRNG
// for worker-local streams instead.
func (e *Environment) MasterRNG() *rand.Rand {
	return rand.New(rand.NewPCG(e.masterSeed, 0))
}

// DerivedRNG returns an independent, deterministic stream for worker
// workerIdx, seeded by splitting the master seed through splitmix64 —
// the same scheme used to decorrelate sibling PCG streams without
// sharing mutable state or taking a lock.
func (e *Environment) DerivedRNG(workerIdx int) *rand.Rand {
	hi := splitmix64(e.masterSeed + uint64(workerIdx)*2)
	lo := splitmix64(e.masterSeed + uint64(workerIdx)*2 + 1)
	return rand.New(rand.NewPCG(hi, lo))
}

// splitmix64 is the standard SplitMix64 step, used only to decorrelate
// derived PCG seeds from the master seed and each other.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// Quota is the shared cancellation handle named in spec.md §5: an
// atomic expired flag plus a context deadline, polled by long inner
// loops rather than pre-empted.
type Quota struct {
	ctx     context.Context
	cancel  context.CancelFunc
	expired atomic.Bool
}

// NewQuota wraps ctx with no additional deadline; the quota expires
// only when ctx is cancelled or Expire is called explicitly (use
// NewQuotaWithTimeout for a time-bounded quota).
func NewQuota(ctx context.Context) *Quota {
	c, cancel := context.WithCancel(ctx)
	return &Quota{ctx: c, cancel: cancel}
}

// NewQuotaWithTimeout returns a Quota that expires after d elapses.
func NewQuotaWithTimeout(ctx context.Context, d time.Duration) *Quota {
	c, cancel := context.WithTimeout(ctx, d)
	return &Quota{ctx: c, cancel: cancel}
}

// Expired reports whether the quota has run out, either because its
// deadline passed or Expire was called directly.
func (q *Quota) Expired() bool {
	if q.expired.Load() {
		return true
	}
	select {
	case <-q.ctx.Done():
		return true
	default:
		return false
	}
}

// Expire marks the quota exhausted immediately, used when an outer
// caller (e.g. a CLI --max-time flag) decides to stop early without a
// context deadline.
func (q *Quota) Expire() {
	q.expired.Store(true)
	q.cancel()
}

// Context returns the quota's context, so callers that already thread
// context.Context (insertion, ruin, recreate) can select on it directly.
func (q *Quota) Context() context.Context { return q.ctx }
