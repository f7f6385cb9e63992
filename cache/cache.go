// Package cache owns the current conversion snapshot and keeps it fresh.
//
// A Cache is seeded synchronously from the fallback table, so Current never
// blocks and never returns nil. Refreshes replace the snapshot wholesale with
// an atomic pointer swap; once live data has been installed, a failed refresh
// keeps it instead of going back to fallback data.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	currency "github.com/malusev998/trip-currency"
	"github.com/malusev998/trip-currency/matrix"
	"github.com/malusev998/trip-currency/metrics"
	"github.com/malusev998/trip-currency/scheduler"
)

const DefaultInterval = 10 * time.Minute

var (
	ErrRefreshInFlight = errors.New("refresh already in flight")
	ErrClosed          = errors.New("cache is closed")
)

type (
	Scheduler interface {
		Every(interval time.Duration, job func()) (scheduler.Job, error)
	}

	// Metrics receives refresh outcomes and every installed snapshot.
	Metrics interface {
		RecordRefresh(outcome string, duration time.Duration)
		RecordSnapshot(snapshot *currency.Snapshot)
	}

	Option func(*Cache)

	nopMetrics struct{}

	Cache struct {
		source    currency.RateSource
		registry  *currency.Registry
		logger    logrus.FieldLogger
		scheduler Scheduler
		metrics   Metrics
		interval  time.Duration
		now       func() time.Time

		current  atomic.Pointer[currency.Snapshot]
		hasLive  atomic.Bool
		inFlight atomic.Bool
		closed   atomic.Bool

		// mu serializes Start, Close and snapshot installation.
		mu  sync.Mutex
		job scheduler.Job
	}
)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func WithInterval(interval time.Duration) Option {
	return func(c *Cache) {
		c.interval = interval
	}
}

func WithScheduler(s Scheduler) Option {
	return func(c *Cache) {
		c.scheduler = s
	}
}

// WithMetrics reports to m. Without it the cache records nothing.
func WithMetrics(m Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New builds a cache holding a fallback snapshot. No network activity happens
// until Start or Refresh is called.
func New(source currency.RateSource, registry *currency.Registry, opts ...Option) (*Cache, error) {
	c := &Cache{
		source:   source,
		registry: registry,
		logger:   logrus.StandardLogger(),
		metrics:  nopMetrics{},
		interval: DefaultInterval,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.registry == nil {
		c.registry = currency.DefaultRegistry()
	}

	if c.scheduler == nil {
		c.scheduler = scheduler.New(c.logger)
	}

	m, err := matrix.FromRegistry(source.Fallback(), c.registry)
	if err != nil {
		return nil, fmt.Errorf("seeding from fallback rates: %w", err)
	}

	c.install(currency.NewSnapshot(c.registry.Base(), m, currency.OriginFallback, c.now()))

	return c, nil
}

// Open is New followed by Start.
func Open(source currency.RateSource, registry *currency.Registry, opts ...Option) (*Cache, error) {
	c, err := New(source, registry, opts...)
	if err != nil {
		return nil, err
	}

	if err := c.Start(); err != nil {
		return nil, err
	}

	return c, nil
}

// Start triggers one asynchronous refresh and arms the periodic refresh job.
// Calling it again is a no-op.
func (c *Cache) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return ErrClosed
	}

	if c.job != nil {
		return nil
	}

	job, err := c.scheduler.Every(c.interval, c.tick)
	if err != nil {
		return fmt.Errorf("scheduling rate refresh: %w", err)
	}

	c.job = job

	go c.tick()

	c.logger.WithField("interval", c.interval.String()).Info("rate refresher started")

	return nil
}

// Close cancels the periodic job. A fetch already in flight finishes on its
// own, but its result is dropped.
func (c *Cache) Close() error {
	c.mu.Lock()

	if c.closed.Swap(true) {
		c.mu.Unlock()
		return nil
	}

	job := c.job
	c.job = nil
	c.mu.Unlock()

	if job != nil {
		job.Stop()
	}

	c.logger.Info("rate refresher stopped")

	return nil
}

// Current returns the installed snapshot without blocking.
func (c *Cache) Current() *currency.Snapshot {
	return c.current.Load()
}

func (c *Cache) State() currency.State {
	switch {
	case c.current.Load() == nil:
		return currency.StateSeeding
	case c.inFlight.Load():
		return currency.StateRefreshing
	case c.hasLive.Load():
		return currency.StateLiveActive
	default:
		return currency.StateFallbackActive
	}
}

func (c *Cache) Registry() *currency.Registry {
	return c.registry
}

// Refresh fetches a new table and installs it as the live snapshot. Any error
// leaves the current snapshot untouched; ErrRefreshInFlight means another
// attempt was already running and this one was skipped.
func (c *Cache) Refresh(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		c.logger.Debug("rate refresh skipped, another refresh is in flight")
		c.metrics.RecordRefresh(metrics.OutcomeSkipped, 0)

		return ErrRefreshInFlight
	}
	defer c.inFlight.Store(false)

	start := time.Now()
	snapshot, err := c.fetch(ctx)
	elapsed := time.Since(start)

	if err != nil {
		c.logger.WithError(err).
			WithField("origin", c.Current().Origin).
			Warn("rate refresh failed, keeping current snapshot")
		c.metrics.RecordRefresh(metrics.OutcomeFailure, elapsed)

		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		c.logger.Debug("cache closed during refresh, discarding fetched rates")
		c.metrics.RecordRefresh(metrics.OutcomeDiscarded, elapsed)

		return ErrClosed
	}

	c.install(snapshot)
	c.hasLive.Store(true)
	c.metrics.RecordRefresh(metrics.OutcomeSuccess, elapsed)

	c.logger.WithFields(logrus.Fields{
		"snapshot_id": snapshot.ID.String(),
		"captured_at": snapshot.CapturedAt.Format(time.RFC3339),
	}).Info("live rates installed")

	return nil
}

func (c *Cache) fetch(ctx context.Context) (*currency.Snapshot, error) {
	table, err := c.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	m, err := matrix.FromRegistry(table, c.registry)
	if err != nil {
		return nil, err
	}

	return currency.NewSnapshot(c.registry.Base(), m, currency.OriginLive, c.now()), nil
}

func (c *Cache) install(snapshot *currency.Snapshot) {
	c.current.Store(snapshot)
	c.metrics.RecordSnapshot(snapshot)
}

func (c *Cache) tick() {
	_ = c.Refresh(context.Background())
}

func (nopMetrics) RecordRefresh(string, time.Duration) {}

func (nopMetrics) RecordSnapshot(*currency.Snapshot) {}
