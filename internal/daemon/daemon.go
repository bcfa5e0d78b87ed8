package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"onboardbot/internal/config"
	"onboardbot/internal/dispatch"
	"onboardbot/internal/logging"
	"onboardbot/internal/recognition"
	"onboardbot/internal/store"
	"onboardbot/internal/transport/telegram"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	pool      *dispatch.Pool
	scheduler *recognition.Scheduler
	poller    *telegram.Poller

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Options collects the daemon's already-constructed services.
type Options struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     *store.Store
	Pool      *dispatch.Pool
	Scheduler *recognition.Scheduler
	Poller    *telegram.Poller
}

// New constructs a daemon with initialized dependencies.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil || opts.Store == nil || opts.Logger == nil || opts.Pool == nil || opts.Scheduler == nil || opts.Poller == nil {
		return nil, errors.New("daemon requires config, store, logger, pool, scheduler, and poller")
	}

	lockPath := opts.Config.LockPath()
	return &Daemon{
		cfg:       opts.Config,
		logger:    logging.NewComponentLogger(opts.Logger, "daemon"),
		store:     opts.Store,
		pool:      opts.Pool,
		scheduler: opts.Scheduler,
		poller:    opts.Poller,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and launches the scheduler and the
// long-poll loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another onboardd instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(2)
	go func() {
		defer d.wg.Done()
		d.scheduler.Run(runCtx)
	}()
	go func() {
		defer d.wg.Done()
		d.poller.Run(runCtx)
	}()

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	d.pool.Close()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
