// Package scheduler triggers notification ticks once per wall-clock minute
// and runs them one at a time.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

const clockLayout = "15:04"

// Sweeper drops expired cache entries and reports how many were removed
type Sweeper interface {
	Sweep(ctx context.Context) int
}

type Params struct {
	CronSpec   string
	Location   *time.Location
	QueueSize  int
	Dispatcher ports.TickDispatcher
	Logger     ports.Logger

	// Sweeper is optional. It runs after every SweepEvery ticks.
	Sweeper    Sweeper
	SweepEvery int
}

// Scheduler enqueues the current "HH:MM" on every cron firing. A single
// worker drains the queue, so ticks never overlap and none is coalesced.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	location   *time.Location
	dispatcher ports.TickDispatcher
	sweeper    Sweeper
	sweepEvery int
	logger     ports.Logger
	now        func() time.Time

	queue    chan string
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	ticks    int
}

func NewScheduler(params Params) (*Scheduler, error) {
	if params.Dispatcher == nil {
		return nil, errors.NewValidationError("tick dispatcher is required")
	}
	if params.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if params.QueueSize <= 0 {
		return nil, errors.NewValidationError("queue size must be positive")
	}

	spec := params.CronSpec
	if spec == "" {
		spec = "* * * * *"
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, errors.NewValidationError("invalid cron spec: " + err.Error())
	}

	loc := params.Location
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		spec:       spec,
		location:   loc,
		dispatcher: params.Dispatcher,
		sweeper:    params.Sweeper,
		sweepEvery: params.SweepEvery,
		logger:     params.Logger,
		now:        time.Now,
		queue:      make(chan string, params.QueueSize),
		done:       make(chan struct{}),
	}, nil
}

// Start registers the minute trigger and launches the tick worker.
// Ticks run under ctx until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, s.fire); err != nil {
		return errors.NewConfigurationError("register scheduler trigger", err)
	}

	s.wg.Add(1)
	go s.run(ctx)

	s.cron.Start()
	s.logger.Info("Notification scheduler started",
		ports.F("spec", s.spec),
		ports.F("location", s.location.String()))
	return nil
}

// Stop halts the trigger and waits for the in-flight tick to finish or ctx to expire.
// Ticks still queued are dropped.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
		close(s.done)
	})

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		s.logger.Info("Notification scheduler stopped", ports.F("dropped", len(s.queue)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue schedules a tick for the minute containing t. It blocks while the
// queue is full and reports false once the scheduler is stopped.
func (s *Scheduler) Enqueue(t time.Time) bool {
	clock := t.In(s.location).Format(clockLayout)
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.queue <- clock:
		return true
	case <-s.done:
		return false
	}
}

func (s *Scheduler) fire() {
	if !s.Enqueue(s.now()) {
		s.logger.Warn("Tick dropped, scheduler is stopping")
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case clock := <-s.queue:
			s.tick(ctx, clock)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, clock string) {
	report, err := s.dispatcher.DispatchDue(ctx, clock)
	if err != nil {
		s.logger.Error("Notification tick failed",
			ports.F("tick_id", report.TickID),
			ports.F("clock_time", clock),
			ports.F("error", err))
	}

	s.ticks++
	if s.sweeper == nil || s.sweepEvery <= 0 || s.ticks%s.sweepEvery != 0 {
		return
	}
	if removed := s.sweeper.Sweep(ctx); removed > 0 {
		s.logger.Debug("Expired cache entries swept", ports.F("removed", removed))
	}
}
