package ports

import (
	"context"
	"time"
)

// TickReport summarizes one scheduler tick.
type TickReport struct {
	TickID    string
	ClockTime string
	Due       int
	Sent      int
	Skipped   int
	Failed    int
	Duration  time.Duration
}

// TickDispatcher processes every subscription due at clockTime ("HH:MM").
type TickDispatcher interface {
	DispatchDue(ctx context.Context, clockTime string) (TickReport, error)
}
