// Package reclaimer implements a background worker that owns destruction
// of payloads retired by one or more Sources.
//
// Handing a retired payload to a Reclaimer instead of releasing it
// in-line keeps disposal off the writer's critical path: Update only
// needs to append a pointer to a slice under a short mutex, not run
// whatever T's release hook does.
package reclaimer

import (
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ty7swkr/gorcu/internal/rcu/goid"
)

// Logger is the minimal logging interface the Reclaimer needs for its
// best-effort diagnostics. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

// Policy selects how the worker decides a retired entry is safe to drop.
type Policy int

const (
	// PolicyRefcountOnly drops an entry only once nothing else holds a
	// reference to it (Payload.IsUnique reports true). This is the
	// default; the Reclaimer's Release is then the last one, so the
	// payload's disposal runs on the worker goroutine.
	PolicyRefcountOnly Policy = iota

	// PolicyUnconditional drops every entry on every sweep, regardless
	// of outstanding references, skipping the IsUnique check. Dropping
	// an entry only releases the Reclaimer's own reference: a payload
	// still referenced elsewhere is disposed of later, on whichever
	// goroutine releases its last reference.
	PolicyUnconditional
)

// releasable is the minimal interface a retired payload must satisfy:
// core.Payload[T] for any T implements it.
type releasable interface {
	Release()
	IsUnique() bool
}

// Option configures a Reclaimer.
type Option func(*config)

type config struct {
	interval          time.Duration
	waitUntilStarted  bool
	policy            Policy
	logger            Logger
	capacity          int
	shrinkRatioThresh float64
}

func defaultConfig() config {
	return config{
		interval:          10 * time.Millisecond,
		policy:            PolicyRefcountOnly,
		logger:            log.New(os.Stderr, "rcu/reclaimer: ", log.LstdFlags),
		capacity:          100,
		shrinkRatioThresh: 1.5,
	}
}

// WithScanInterval sets how often the worker sweeps retired payloads.
func WithScanInterval(d time.Duration) Option {
	return func(c *config) { c.interval = d }
}

// WithWaitUntilStarted makes New block until the worker goroutine has
// captured its own goroutine identity and is about to enter its loop,
// mirroring reclaimer_thread's wait_until_execution constructor option.
func WithWaitUntilStarted() Option {
	return func(c *config) { c.waitUntilStarted = true }
}

// WithPolicy selects the disposal policy. Default is PolicyRefcountOnly.
func WithPolicy(p Policy) Option {
	return func(c *config) { c.policy = p }
}

// WithLogger overrides the default stderr logger used for diagnostics.
func WithLogger(l Logger) Option {
	return func(c *config) { c.logger = l }
}

// Reclaimer owns a double-buffered queue of retired payloads and a single
// worker goroutine that periodically sweeps it.
type Reclaimer struct {
	cfg config

	mu      sync.Mutex
	front   []releasable
	back    []releasable
	pending map[releasable]struct{}

	goroutineID atomic.Int64
	stop        chan struct{}
	stopped     chan struct{}
	closeOnce   sync.Once
}

// New starts a Reclaimer and its background worker.
func New(opts ...Option) *Reclaimer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Reclaimer{
		cfg:     cfg,
		front:   make([]releasable, 0, cfg.capacity),
		back:    make([]releasable, 0, cfg.capacity),
		pending: make(map[releasable]struct{}, cfg.capacity),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	if cfg.waitUntilStarted {
		started := make(chan struct{})
		go r.run(started)
		<-started
	} else {
		go r.run(nil)
	}

	return r
}

// Push hands p to the Reclaimer for eventual disposal. Accepts anything
// implementing Release/IsUnique, which every core.Payload[T] does
// regardless of T. Pushing the same handle more than once has the same
// effect as pushing it once: a handle already queued (whether still
// waiting or already swapped into the worker's front buffer) is not
// queued a second time, so a caller that retires the same payload twice
// cannot leave a duplicate entry stuck behind in the retained set once
// the first copy's reference count has already dropped.
func (r *Reclaimer) Push(p releasable) {
	if p == nil {
		return
	}
	r.mu.Lock()
	if _, queued := r.pending[p]; queued {
		r.mu.Unlock()
		return
	}
	r.pending[p] = struct{}{}
	r.back = append(r.back, p)
	r.mu.Unlock()
}

// ThreadID returns the goroutine id of the worker, 0 before it starts.
func (r *Reclaimer) ThreadID() int64 {
	return r.goroutineID.Load()
}

// Close stops the worker and performs one final best-effort sweep of
// whatever remains queued. It does not guarantee every retired payload
// has been disposed of by the time it returns: payloads still held
// elsewhere under PolicyRefcountOnly are simply dropped from the queue
// and logged, not force-released.
func (r *Reclaimer) Close() {
	r.closeOnce.Do(func() {
		close(r.stop)
		<-r.stopped
	})
}

func (r *Reclaimer) run(started chan struct{}) {
	r.goroutineID.Store(goid.Current())
	defer close(r.stopped)

	if started != nil {
		close(started)
	}

	ticker := time.NewTicker(r.cfg.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			r.drainOnShutdown()
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Reclaimer) sweep() {
	r.mu.Lock()
	r.front, r.back = r.back, r.front
	r.mu.Unlock()

	if cap(r.front) > r.cfg.capacity &&
		float64(cap(r.front)) > float64(len(r.front))*r.cfg.shrinkRatioThresh {
		shrunk := make([]releasable, len(r.front))
		copy(shrunk, r.front)
		r.front = shrunk
	}

	kept := r.front[:0]
	for _, p := range r.front {
		if r.cfg.policy == PolicyUnconditional || p.IsUnique() {
			p.Release()
			r.mu.Lock()
			delete(r.pending, p)
			r.mu.Unlock()
			continue
		}
		kept = append(kept, p)
	}
	r.front = kept

	if len(r.front) == 0 {
		return
	}
	r.mu.Lock()
	r.back = append(r.back, r.front...)
	r.mu.Unlock()
	r.front = r.front[:0]
}

func (r *Reclaimer) drainOnShutdown() {
	r.mu.Lock()
	pending := append(r.front, r.back...)
	r.front, r.back = nil, nil
	r.mu.Unlock()

	leftover := 0
	for _, p := range pending {
		if r.cfg.policy == PolicyUnconditional || p.IsUnique() {
			p.Release()
			continue
		}
		leftover++
	}
	if leftover > 0 && r.cfg.logger != nil {
		r.cfg.logger.Printf("shutting down with %d payload(s) still referenced elsewhere; dropped without releasing", leftover)
	}
}
