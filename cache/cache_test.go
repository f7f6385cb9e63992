package cache_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	currency "github.com/malusev998/trip-currency"
	"github.com/malusev998/trip-currency/cache"
	"github.com/malusev998/trip-currency/metrics"
	"github.com/malusev998/trip-currency/scheduler"
)

type (
	mockSource struct {
		mock.Mock
	}

	manualScheduler struct {
		mu       sync.Mutex
		interval time.Duration
		job      func()
		stopped  bool
	}

	manualJob struct {
		scheduler *manualScheduler
	}

	mockMetrics struct {
		mock.Mock
	}
)

var _ cache.Metrics = metrics.Collector{}

var liveTable = currency.BaseRateTable{
	"IDR": 16000, "EUR": 0.9, "SGD": 1.3, "MYR": 4.2, "JPY": 150, "AUD": 1.5, "GBP": 0.75,
}

func (m *mockSource) Fetch(ctx context.Context) (currency.BaseRateTable, error) {
	args := m.Called(ctx)
	table := args.Get(0)

	if table == nil {
		return nil, args.Error(1)
	}

	return table.(currency.BaseRateTable), args.Error(1)
}

func (m *mockSource) Fallback() currency.BaseRateTable {
	return currency.FallbackRates()
}

func (s *manualScheduler) Every(interval time.Duration, job func()) (scheduler.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = interval
	s.job = job

	return manualJob{scheduler: s}, nil
}

func (s *manualScheduler) Fire() {
	s.mu.Lock()
	job, stopped := s.job, s.stopped
	s.mu.Unlock()

	if job != nil && !stopped {
		job()
	}
}

func (s *manualScheduler) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (j manualJob) Stop() {
	j.scheduler.mu.Lock()
	j.scheduler.stopped = true
	j.scheduler.mu.Unlock()
}

func (m *mockMetrics) RecordRefresh(outcome string, duration time.Duration) {
	m.Called(outcome, duration)
}

func (m *mockMetrics) RecordSnapshot(snapshot *currency.Snapshot) {
	m.Called(snapshot)
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newCache(t *testing.T, source currency.RateSource, opts ...cache.Option) (*cache.Cache, *manualScheduler) {
	s := &manualScheduler{}
	opts = append([]cache.Option{cache.WithScheduler(s), cache.WithLogger(quietLogger())}, opts...)

	c, err := cache.New(source, currency.DefaultRegistry(), opts...)
	require.NoError(t, err)

	return c, s
}

func TestNew_InstantAvailability(t *testing.T) {
	t.Parallel()
	assert := require.New(t)
	source := &mockSource{}

	c, _ := newCache(t, source)

	snapshot := c.Current()
	assert.NotNil(snapshot)
	assert.Equal(currency.OriginFallback, snapshot.Origin)
	assert.Equal(currency.StateFallbackActive, c.State())

	rate, ok := snapshot.Matrix.Rate("USD", "IDR")
	assert.True(ok)
	assert.Equal(15750.0, rate)

	source.AssertNotCalled(t, "Fetch", mock.Anything)
}

func TestNew_MalformedFallback(t *testing.T) {
	t.Parallel()
	assert := require.New(t)

	registry, err := currency.NewRegistry("USD", currency.Currency{Code: "USD"}, currency.Currency{Code: "CHF"})
	assert.NoError(err)

	c, err := cache.New(&mockSource{}, registry, cache.WithLogger(quietLogger()))
	assert.Nil(c)
	assert.True(errors.Is(err, currency.ErrMalformedRateTable))
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	t.Run("Success_Installs_Live_Snapshot", func(t *testing.T) {
		t.Parallel()
		assert := require.New(t)
		captured := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
		source := &mockSource{}
		source.On("Fetch", mock.Anything).Return(liveTable, nil)

		c, _ := newCache(t, source, cache.WithClock(func() time.Time { return captured }))
		fallback := c.Current()

		assert.NoError(c.Refresh(context.Background()))

		snapshot := c.Current()
		assert.Equal(currency.OriginLive, snapshot.Origin)
		assert.Equal(captured, snapshot.CapturedAt)
		assert.NotEqual(fallback.ID, snapshot.ID)
		assert.Equal(currency.StateLiveActive, c.State())

		rate, _ := snapshot.Matrix.Rate("USD", "IDR")
		assert.Equal(16000.0, rate)

		fallbackRate, _ := fallback.Matrix.Rate("USD", "IDR")
		assert.Equal(15750.0, fallbackRate)
	})

	t.Run("Failure_Before_Live_Keeps_Fallback", func(t *testing.T) {
		t.Parallel()
		assert := require.New(t)
		source := &mockSource{}
		source.On("Fetch", mock.Anything).Return(nil, currency.ErrSourceUnavailable)

		c, _ := newCache(t, source)
		fallback := c.Current()

		err := c.Refresh(context.Background())

		assert.True(errors.Is(err, currency.ErrSourceUnavailable))
		assert.Same(fallback, c.Current())
		assert.Equal(currency.StateFallbackActive, c.State())
	})

	t.Run("Failure_After_Live_Does_Not_Regress", func(t *testing.T) {
		t.Parallel()
		assert := require.New(t)
		source := &mockSource{}
		source.On("Fetch", mock.Anything).Return(liveTable, nil).Once()
		source.On("Fetch", mock.Anything).Return(nil, errors.New("connection reset")).Once()

		c, _ := newCache(t, source)
		assert.NoError(c.Refresh(context.Background()))
		live := c.Current()

		assert.Error(c.Refresh(context.Background()))

		assert.Same(live, c.Current())
		assert.Equal(currency.OriginLive, c.Current().Origin)
		assert.Equal(currency.StateLiveActive, c.State())
		source.AssertNumberOfCalls(t, "Fetch", 2)
	})

	t.Run("Malformed_Table_Is_Skipped", func(t *testing.T) {
		t.Parallel()
		assert := require.New(t)
		source := &mockSource{}
		source.On("Fetch", mock.Anything).Return(currency.BaseRateTable{"IDR": 16000, "EUR": 0}, nil)

		c, _ := newCache(t, source)
		fallback := c.Current()

		err := c.Refresh(context.Background())

		assert.True(errors.Is(err, currency.ErrMalformedRateTable))
		assert.Same(fallback, c.Current())
	})

	t.Run("Concurrent_Refresh_Is_Coalesced", func(t *testing.T) {
		t.Parallel()
		assert := require.New(t)
		release := make(chan struct{})
		started := make(chan struct{})
		source := &mockSource{}
		source.On("Fetch", mock.Anything).
			Run(func(mock.Arguments) {
				close(started)
				<-release
			}).
			Return(liveTable, nil).
			Once()

		c, _ := newCache(t, source)

		done := make(chan error)
		go func() { done <- c.Refresh(context.Background()) }()
		<-started

		assert.Equal(currency.StateRefreshing, c.State())
		assert.True(errors.Is(c.Refresh(context.Background()), cache.ErrRefreshInFlight))
		assert.Equal(currency.OriginFallback, c.Current().Origin)

		close(release)
		assert.NoError(<-done)
		assert.Equal(currency.OriginLive, c.Current().Origin)
		source.AssertNumberOfCalls(t, "Fetch", 1)
	})
}

func TestStart(t *testing.T) {
	t.Parallel()

	t.Run("Refreshes_Immediately_And_On_Timer", func(t *testing.T) {
		t.Parallel()
		assert := require.New(t)
		source := &mockSource{}
		source.On("Fetch", mock.Anything).Return(liveTable, nil)

		c, s := newCache(t, source, cache.WithInterval(5*time.Minute))
		assert.Equal(currency.OriginFallback, c.Current().Origin)

		assert.NoError(c.Start())
		assert.NoError(c.Start())
		defer c.Close()

		assert.Eventually(func() bool { return c.Current().Origin == currency.OriginLive }, time.Second, 5*time.Millisecond)
		assert.Equal(5*time.Minute, s.interval)

		first := c.Current()
		assert.Eventually(func() bool { return c.State() == currency.StateLiveActive }, time.Second, 5*time.Millisecond)
		s.Fire()

		assert.NotEqual(first.ID, c.Current().ID)
		source.AssertNumberOfCalls(t, "Fetch", 2)
	})

	t.Run("Close_Cancels_Timer", func(t *testing.T) {
		t.Parallel()
		assert := require.New(t)
		source := &mockSource{}
		source.On("Fetch", mock.Anything).Return(nil, currency.ErrSourceUnavailable)

		c, s := newCache(t, source)
		assert.NoError(c.Start())
		assert.NoError(c.Close())
		assert.NoError(c.Close())
		assert.True(s.Stopped())

		assert.True(errors.Is(c.Refresh(context.Background()), cache.ErrClosed))
		assert.True(errors.Is(c.Start(), cache.ErrClosed))
		assert.NotNil(c.Current())
	})

	t.Run("Result_Discarded_After_Close", func(t *testing.T) {
		t.Parallel()
		assert := require.New(t)
		release := make(chan struct{})
		started := make(chan struct{})
		source := &mockSource{}
		source.On("Fetch", mock.Anything).
			Run(func(mock.Arguments) {
				close(started)
				<-release
			}).
			Return(liveTable, nil).
			Once()

		c, _ := newCache(t, source)

		done := make(chan error)
		go func() { done <- c.Refresh(context.Background()) }()
		<-started

		assert.NoError(c.Close())
		close(release)

		assert.True(errors.Is(<-done, cache.ErrClosed))
		assert.Equal(currency.OriginFallback, c.Current().Origin)
	})
}

func TestOpen(t *testing.T) {
	t.Parallel()
	assert := require.New(t)
	source := &mockSource{}
	source.On("Fetch", mock.Anything).Return(liveTable, nil)

	c, err := cache.Open(source, nil, cache.WithScheduler(&manualScheduler{}), cache.WithLogger(quietLogger()))
	assert.NoError(err)
	defer c.Close()

	assert.NotNil(c.Current())
	assert.Equal(currency.DefaultRegistry().Codes(), c.Registry().Codes())
	assert.Eventually(func() bool { return c.Current().IsLive() }, time.Second, 5*time.Millisecond)
}

func TestWithMetrics(t *testing.T) {
	t.Parallel()
	assert := require.New(t)
	isOrigin := func(origin currency.Origin) interface{} {
		return mock.MatchedBy(func(s *currency.Snapshot) bool { return s.Origin == origin })
	}

	recorder := &mockMetrics{}
	recorder.On("RecordSnapshot", isOrigin(currency.OriginFallback)).Once()
	recorder.On("RecordSnapshot", isOrigin(currency.OriginLive)).Once()
	recorder.On("RecordRefresh", metrics.OutcomeSuccess, mock.Anything).Once()
	recorder.On("RecordRefresh", metrics.OutcomeFailure, mock.Anything).Once()
	recorder.On("RecordRefresh", metrics.OutcomeSkipped, time.Duration(0)).Once()

	release := make(chan struct{})
	started := make(chan struct{})
	source := &mockSource{}
	source.On("Fetch", mock.Anything).Return(liveTable, nil).Once()
	source.On("Fetch", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil, currency.ErrSourceUnavailable).
		Once()

	c, _ := newCache(t, source, cache.WithMetrics(recorder))
	assert.NoError(c.Refresh(context.Background()))

	done := make(chan error)
	go func() { done <- c.Refresh(context.Background()) }()
	<-started

	assert.True(errors.Is(c.Refresh(context.Background()), cache.ErrRefreshInFlight))
	close(release)
	assert.Error(<-done)

	recorder.AssertExpectations(t)
}

func TestNew_WithoutMetrics_LeavesRegistryAlone(t *testing.T) {
	t.Parallel()
	assert := require.New(t)
	source := &mockSource{}
	source.On("Fetch", mock.Anything).Return(liveTable, nil)

	c, _ := newCache(t, source)
	assert.NoError(c.Refresh(context.Background()))
	assert.True(c.Current().IsLive())

	families, err := metrics.Registry.Gather()
	assert.NoError(err)

	for _, family := range families {
		switch family.GetName() {
		case "trip_currency_rates_snapshot_live":
			assert.Equal(0.0, family.GetMetric()[0].GetGauge().GetValue())
		case "trip_currency_rates_refresh_attempts_total":
			assert.Fail("refresh attempts recorded without a metrics option")
		}
	}
}
