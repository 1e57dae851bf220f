package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"weatherbot.app/internal/ports"
)

type Notifier struct {
	mock.Mock
}

var _ ports.Notifier = (*Notifier)(nil)

func NewNotifier(t *testing.T) *Notifier {
	m := &Notifier{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Notifier) Send(ctx context.Context, recipientID, text string) error {
	args := m.Called(ctx, recipientID, text)
	return args.Error(0)
}
