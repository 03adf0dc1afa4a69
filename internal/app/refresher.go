package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bft-labs/repokit/internal/domain"
	"github.com/bft-labs/repokit/internal/ports"
	"github.com/bft-labs/repokit/pkg/log"
	"github.com/bft-labs/repokit/pkg/result"
)

// DefaultRefreshInterval is the pause between successful refresh passes.
const DefaultRefreshInterval = time.Minute

// RefresherConfig contains configuration for the refresh loop.
type RefresherConfig struct {
	Interval       time.Duration
	BackoffInitial time.Duration
	BackoffMax     time.Duration

	// Once runs a single pass and returns its error.
	Once bool
}

// RefreshObserver is notified after every refresh pass.
type RefreshObserver interface {
	OnRefresh(items int, err error)
}

// Refresher keeps a local cache warm by running a refresh pass on an
// interval, backing off exponentially while passes fail.
type Refresher struct {
	config    RefresherConfig
	source    ports.Refresher
	logger    log.Logger
	observer  RefreshObserver
	lifecycle *Lifecycle
	done      chan error
}

// NewRefresher creates a refresher. observer may be nil.
func NewRefresher(config RefresherConfig, source ports.Refresher, logger log.Logger, observer RefreshObserver) *Refresher {
	if config.Interval <= 0 {
		config.Interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Refresher{
		config:    config,
		source:    source,
		logger:    logger,
		observer:  observer,
		lifecycle: NewLifecycle(logger, nil),
	}
}

// RefreshAll adapts a GetAll-style repository read into a Refresher. With a
// caching strategy the read itself writes the cache.
func RefreshAll[E any](getAll func(context.Context) result.Result[[]E]) ports.Refresher {
	return ports.RefreshFunc(func(ctx context.Context) (int, error) {
		entities, err := getAll(ctx).Unwrap()
		return len(entities), err
	})
}

// Run executes the refresh loop until ctx is done. In Once mode it returns
// after the first pass.
func (r *Refresher) Run(ctx context.Context) error {
	bo := newBackoff(r.config.BackoffInitial, r.config.BackoffMax)

	for {
		n, err := r.pass(ctx)
		if r.config.Once {
			return err
		}

		wait := r.config.Interval
		if err != nil {
			wait = bo.Next()
			r.logger.Warn("refresh failed, backing off",
				log.Err(err),
				log.Duration("retry_in", wait),
			)
		} else {
			bo.Reset()
			r.logger.Info("cache refreshed", log.Items(n))
		}

		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (r *Refresher) pass(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := r.source.Refresh(ctx)
	if r.observer != nil {
		r.observer.OnRefresh(n, err)
	}
	r.logger.Debug("refresh pass",
		log.Items(n),
		log.Duration("duration", time.Since(start)),
		log.Err(err),
	)
	return n, err
}

// Start runs the loop in the background.
func (r *Refresher) Start(ctx context.Context) error {
	if !r.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := r.lifecycle.TransitionTo(StateStarting, "start requested"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.lifecycle.SetCancel(cancel)
	r.done = make(chan error, 1)

	r.lifecycle.AddWorker()
	go func() {
		defer r.lifecycle.WorkerDone()
		err := r.Run(runCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			r.lifecycle.TransitionTo(StateCrashed, err.Error())
		}
		r.done <- err
	}()

	return r.lifecycle.TransitionTo(StateRunning, "loop started")
}

// Stop cancels the loop and waits up to timeout for it to exit.
func (r *Refresher) Stop(timeout time.Duration) error {
	if !r.lifecycle.CanStop() {
		return domain.ErrNotRunning
	}
	if err := r.lifecycle.TransitionTo(StateStopping, "stop requested"); err != nil {
		return err
	}
	r.lifecycle.Cancel()

	if err := r.lifecycle.WaitWithTimeout(timeout); err != nil {
		r.lifecycle.TransitionTo(StateCrashed, "shutdown timeout")
		return err
	}
	return r.lifecycle.TransitionTo(StateStopped, "loop exited")
}

// Done returns a channel that receives the loop's exit error once.
func (r *Refresher) Done() <-chan error {
	return r.done
}

// State returns the lifecycle state.
func (r *Refresher) State() State {
	return r.lifecycle.State()
}

func (r *Refresher) String() string {
	return fmt.Sprintf("refresher(%s, every %s)", r.State(), r.config.Interval)
}
