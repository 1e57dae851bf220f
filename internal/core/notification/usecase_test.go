package notification

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/core/subscription"
	"weatherbot.app/internal/mocks"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
	"weatherbot.app/pkg/metrics"
)

type stubFinder struct {
	subs  []*subscription.Subscription
	err   error
	calls atomic.Int32
}

func (f *stubFinder) FindDueSubscriptions(_ context.Context, _ string) ([]*subscription.Subscription, error) {
	f.calls.Add(1)
	return f.subs, f.err
}

type dispatchFixture struct {
	useCase  *UseCase
	provider *mocks.WeatherProvider
	notifier *mocks.Notifier
	finder   *stubFinder
	metrics  *metrics.Collector
}

func newDispatchFixture(t *testing.T, cfg mocks.StaticConfig, subs ...*subscription.Subscription) *dispatchFixture {
	t.Helper()

	provider := mocks.NewWeatherProvider(t)
	notifier := mocks.NewNotifier(t)
	finder := &stubFinder{subs: subs}
	collector := metrics.NewCollector(prometheus.NewRegistry())

	useCase, err := NewUseCase(UseCaseDependencies{
		Subscriptions: finder,
		Pipeline:      newTestPipeline(t, provider),
		Notifier:      notifier,
		Config:        cfg,
		Logger:        mocks.NopLogger{},
		Metrics:       collector,
	})
	require.NoError(t, err)

	return &dispatchFixture{
		useCase:  useCase,
		provider: provider,
		notifier: notifier,
		finder:   finder,
		metrics:  collector,
	}
}

func weatherFor(name string) *ports.CurrentWeather {
	w := kyivWeather()
	w.Name = name
	return w
}

func textContains(s string) interface{} {
	return mock.MatchedBy(func(text string) bool { return strings.Contains(text, s) })
}

func TestNewUseCase_Validation(t *testing.T) {
	pipeline := newTestPipeline(t, mocks.NewWeatherProvider(t))
	valid := UseCaseDependencies{
		Subscriptions: &stubFinder{},
		Pipeline:      pipeline,
		Notifier:      mocks.NewNotifier(t),
		Config:        mocks.DefaultConfig(),
		Logger:        mocks.NopLogger{},
		Metrics:       metrics.NewCollector(prometheus.NewRegistry()),
	}

	zeroConcurrency := mocks.DefaultConfig()
	zeroConcurrency.Scheduler.MaxConcurrency = 0

	tests := []struct {
		name   string
		mutate func(*UseCaseDependencies)
	}{
		{"missing finder", func(d *UseCaseDependencies) { d.Subscriptions = nil }},
		{"missing pipeline", func(d *UseCaseDependencies) { d.Pipeline = nil }},
		{"missing notifier", func(d *UseCaseDependencies) { d.Notifier = nil }},
		{"missing config", func(d *UseCaseDependencies) { d.Config = nil }},
		{"missing logger", func(d *UseCaseDependencies) { d.Logger = nil }},
		{"missing metrics", func(d *UseCaseDependencies) { d.Metrics = nil }},
		{"zero concurrency", func(d *UseCaseDependencies) { d.Config = zeroConcurrency }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := valid
			tt.mutate(&deps)

			_, err := NewUseCase(deps)

			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestDispatchDue_TwoCities(t *testing.T) {
	f := newDispatchFixture(t, mocks.DefaultConfig(),
		sub(1, "alice", "kyiv", subscription.TypeWeather),
		sub(2, "bob", "paris", subscription.TypeWeather),
	)
	f.provider.On("CurrentWeather", mock.Anything, "kyiv").Return(weatherFor("Kyiv"), nil).Once()
	f.provider.On("CurrentWeather", mock.Anything, "paris").Return(weatherFor("Paris"), nil).Once()
	f.notifier.On("Send", mock.Anything, "alice", textContains("<b>Kyiv</b>")).Return(nil).Once()
	f.notifier.On("Send", mock.Anything, "bob", textContains("<b>Paris</b>")).Return(nil).Once()

	report, err := f.useCase.DispatchDue(context.Background(), "07:30")

	require.NoError(t, err)
	assert.NotEmpty(t, report.TickID)
	assert.Equal(t, "07:30", report.ClockTime)
	assert.Equal(t, 2, report.Due)
	assert.Equal(t, 2, report.Sent)
	assert.Zero(t, report.Skipped)
	assert.Zero(t, report.Failed)
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.Notifications.WithLabelValues("weather", metrics.OutcomeSent)))
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.DueSubscriptions))
}

func TestDispatchDue_SameCityFetchedOnce(t *testing.T) {
	f := newDispatchFixture(t, mocks.DefaultConfig(),
		sub(1, "alice", "kyiv", subscription.TypeWeather),
		sub(2, "bob", "kyiv", subscription.TypeWind),
		sub(3, "carol", "kyiv", subscription.TypeSun),
	)
	f.provider.On("CurrentWeather", mock.Anything, "kyiv").Return(weatherFor("Kyiv"), nil).Once()
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Times(3)

	report, err := f.useCase.DispatchDue(context.Background(), "07:30")

	require.NoError(t, err)
	assert.Equal(t, 3, report.Sent)
	f.provider.AssertNumberOfCalls(t, "CurrentWeather", 1)
}

func TestDispatchDue_ProviderFailureDoesNotBlockOthers(t *testing.T) {
	f := newDispatchFixture(t, mocks.DefaultConfig(),
		sub(1, "alice", "kyiv", subscription.TypeWeather),
		sub(2, "bob", "paris", subscription.TypeWeather),
		sub(3, "carol", "rome", subscription.TypeWeather),
	)
	f.provider.On("CurrentWeather", mock.Anything, "kyiv").Return(weatherFor("Kyiv"), nil).Once()
	f.provider.On("CurrentWeather", mock.Anything, "paris").
		Return(nil, errors.NewExternalAPIError("upstream down", nil)).Once()
	f.provider.On("CurrentWeather", mock.Anything, "rome").Return(weatherFor("Rome"), nil).Once()
	f.notifier.On("Send", mock.Anything, "alice", mock.Anything).Return(nil).Once()
	f.notifier.On("Send", mock.Anything, "carol", mock.Anything).Return(nil).Once()

	report, err := f.useCase.DispatchDue(context.Background(), "07:30")

	require.NoError(t, err)
	assert.Equal(t, 3, report.Due)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Failed)
	f.notifier.AssertNotCalled(t, "Send", mock.Anything, "bob", mock.Anything)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Notifications.WithLabelValues("weather", metrics.OutcomeSkipped)))
}

func TestDispatchDue_SendFailureIsIsolated(t *testing.T) {
	f := newDispatchFixture(t, mocks.DefaultConfig(),
		sub(1, "alice", "kyiv", subscription.TypeWeather),
		sub(2, "bob", "kyiv", subscription.TypeWeather),
	)
	f.provider.On("CurrentWeather", mock.Anything, "kyiv").Return(weatherFor("Kyiv"), nil).Once()
	f.notifier.On("Send", mock.Anything, "alice", mock.Anything).
		Return(errors.NewDeliveryError("chat not found", nil)).Once()
	f.notifier.On("Send", mock.Anything, "bob", mock.Anything).Return(nil).Once()

	report, err := f.useCase.DispatchDue(context.Background(), "07:30")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Notifications.WithLabelValues("weather", metrics.OutcomeFailed)))
}

func TestDispatchDue_PanickingSendCountsAsFailure(t *testing.T) {
	f := newDispatchFixture(t, mocks.DefaultConfig(),
		sub(1, "alice", "kyiv", subscription.TypeWeather),
		sub(2, "bob", "kyiv", subscription.TypeWeather),
	)
	f.provider.On("CurrentWeather", mock.Anything, "kyiv").Return(weatherFor("Kyiv"), nil).Once()
	f.notifier.On("Send", mock.Anything, "alice", mock.Anything).
		Run(func(mock.Arguments) { panic("boom") }).Return(nil).Once()
	f.notifier.On("Send", mock.Anything, "bob", mock.Anything).Return(nil).Once()

	report, err := f.useCase.DispatchDue(context.Background(), "07:30")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Failed)
}

func TestDispatchDue_StoreFailureAbortsTick(t *testing.T) {
	f := newDispatchFixture(t, mocks.DefaultConfig())
	f.finder.err = errors.NewDatabaseError("connection refused", nil)

	report, err := f.useCase.DispatchDue(context.Background(), "07:30")

	require.Error(t, err)
	assert.True(t, errors.IsDatabaseError(err))
	assert.Equal(t, "07:30", report.ClockTime)
	assert.Zero(t, report.Due)
	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchDue_NothingDue(t *testing.T) {
	f := newDispatchFixture(t, mocks.DefaultConfig())

	report, err := f.useCase.DispatchDue(context.Background(), "03:00")

	require.NoError(t, err)
	assert.Zero(t, report.Due)
	assert.Zero(t, report.Sent)
	assert.Equal(t, int32(1), f.finder.calls.Load())
}

func TestDispatchDue_UnknownTypeSkipped(t *testing.T) {
	f := newDispatchFixture(t, mocks.DefaultConfig(),
		sub(1, "alice", "kyiv", subscription.TypeUnknown),
	)

	report, err := f.useCase.DispatchDue(context.Background(), "07:30")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
}

func TestDispatchDue_RespectsConcurrencyLimit(t *testing.T) {
	cfg := mocks.DefaultConfig()
	cfg.Scheduler.MaxConcurrency = 2

	subs := []*subscription.Subscription{
		sub(1, "u1", "kyiv", subscription.TypeWeather),
		sub(2, "u2", "kyiv", subscription.TypeWeather),
		sub(3, "u3", "kyiv", subscription.TypeWeather),
		sub(4, "u4", "kyiv", subscription.TypeWeather),
		sub(5, "u5", "kyiv", subscription.TypeWeather),
		sub(6, "u6", "kyiv", subscription.TypeWeather),
	}
	f := newDispatchFixture(t, cfg, subs...)
	f.provider.On("CurrentWeather", mock.Anything, "kyiv").Return(weatherFor("Kyiv"), nil).Once()

	var inFlight, peak atomic.Int32
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
		}).Return(nil).Times(len(subs))

	report, err := f.useCase.DispatchDue(context.Background(), "07:30")

	require.NoError(t, err)
	assert.Equal(t, len(subs), report.Sent)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestDispatchDue_SendUsesTimeout(t *testing.T) {
	cfg := mocks.DefaultConfig()
	cfg.Scheduler.SendTimeout = 50 * time.Millisecond

	f := newDispatchFixture(t, cfg, sub(1, "alice", "kyiv", subscription.TypeWeather))
	f.provider.On("CurrentWeather", mock.Anything, "kyiv").Return(weatherFor("Kyiv"), nil).Once()
	f.notifier.On("Send", mock.Anything, "alice", mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		}).Once()

	report, err := f.useCase.DispatchDue(context.Background(), "07:30")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
}
