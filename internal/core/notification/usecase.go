package notification

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"weatherbot.app/internal/core/subscription"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
	"weatherbot.app/pkg/metrics"
)

type UseCase struct {
	subscriptions DueSubscriptionFinder
	pipeline      *Pipeline
	notifier      ports.Notifier
	config        ports.ConfigProvider
	logger        ports.Logger
	metrics       ports.NotificationMetrics
	now           func() time.Time
}

type UseCaseDependencies struct {
	Subscriptions DueSubscriptionFinder
	Pipeline      *Pipeline
	Notifier      ports.Notifier
	Config        ports.ConfigProvider
	Logger        ports.Logger
	Metrics       ports.NotificationMetrics
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Subscriptions == nil {
		return nil, errors.NewValidationError("subscription finder is required")
	}
	if deps.Pipeline == nil {
		return nil, errors.NewValidationError("pipeline is required")
	}
	if deps.Notifier == nil {
		return nil, errors.NewValidationError("notifier is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.Metrics == nil {
		return nil, errors.NewValidationError("metrics is required")
	}

	cfg := deps.Config.GetSchedulerConfig()
	if cfg.MaxConcurrency <= 0 {
		return nil, errors.NewValidationError("max concurrency must be positive")
	}

	return &UseCase{
		subscriptions: deps.Subscriptions,
		pipeline:      deps.Pipeline,
		notifier:      deps.Notifier,
		config:        deps.Config,
		logger:        deps.Logger,
		metrics:       deps.Metrics,
		now:           time.Now,
	}, nil
}

// DispatchDue renders and sends every subscription due at clockTime.
// Only a failure to load the due set is returned; per-subscription failures
// are counted in the report and never affect siblings.
func (uc *UseCase) DispatchDue(ctx context.Context, clockTime string) (ports.TickReport, error) {
	start := uc.now()
	report := ports.TickReport{TickID: uuid.NewString(), ClockTime: clockTime}

	due, err := uc.subscriptions.FindDueSubscriptions(ctx, clockTime)
	if err != nil {
		uc.logger.Error("Tick aborted",
			ports.F("tick_id", report.TickID),
			ports.F("clock_time", clockTime),
			ports.F("error", err))
		return report, fmt.Errorf("dispatch tick %s: %w", clockTime, err)
	}

	report.Due = len(due)
	uc.logger.Info("Tick started",
		ports.F("tick_id", report.TickID),
		ports.F("clock_time", clockTime),
		ports.F("due", report.Due))

	cfg := uc.config.GetSchedulerConfig()
	var sent, skipped, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(cfg.MaxConcurrency)
	for _, sub := range due {
		g.Go(func() error {
			outcome := uc.deliver(ctx, cfg, report.TickID, sub)
			switch outcome {
			case metrics.OutcomeSent:
				sent.Add(1)
			case metrics.OutcomeSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
			}
			uc.metrics.RecordNotification(sub.Type.String(), outcome)
			return nil
		})
	}
	_ = g.Wait()

	report.Sent = int(sent.Load())
	report.Skipped = int(skipped.Load())
	report.Failed = int(failed.Load())
	report.Duration = uc.now().Sub(start)
	uc.metrics.RecordTick(report.Due, report.Duration)

	uc.logger.Info("Tick completed",
		ports.F("tick_id", report.TickID),
		ports.F("clock_time", clockTime),
		ports.F("due", report.Due),
		ports.F("sent", report.Sent),
		ports.F("skipped", report.Skipped),
		ports.F("failed", report.Failed),
		ports.F("duration_ms", report.Duration.Milliseconds()))

	return report, nil
}

func (uc *UseCase) deliver(ctx context.Context, cfg ports.SchedulerConfig, tickID string, sub *subscription.Subscription) (outcome string) {
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("Notification panicked",
				ports.F("tick_id", tickID),
				ports.F("subscriptionID", sub.ID),
				ports.F("panic", r))
			outcome = metrics.OutcomeFailed
		}
	}()

	fetchCtx, cancelFetch := withTimeout(ctx, cfg.FetchTimeout)
	msg, ok := uc.pipeline.Process(fetchCtx, sub)
	cancelFetch()
	if !ok {
		return metrics.OutcomeSkipped
	}

	sendCtx, cancelSend := withTimeout(ctx, cfg.SendTimeout)
	defer cancelSend()
	if err := uc.notifier.Send(sendCtx, msg.RecipientID, msg.Text); err != nil {
		uc.logger.Error("Failed to send notification",
			ports.F("tick_id", tickID),
			ports.F("subscriptionID", sub.ID),
			ports.F("recipient", msg.RecipientID),
			ports.F("type", sub.Type.String()),
			ports.F("error", err))
		return metrics.OutcomeFailed
	}

	uc.logger.Debug("Notification sent",
		ports.F("tick_id", tickID),
		ports.F("subscriptionID", sub.ID),
		ports.F("type", sub.Type.String()))
	return metrics.OutcomeSent
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
