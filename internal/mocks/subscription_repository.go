package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"weatherbot.app/internal/ports"
)

type SubscriptionRepository struct {
	mock.Mock
}

var _ ports.SubscriptionRepository = (*SubscriptionRepository)(nil)

// NewSubscriptionRepository creates the mock and asserts its expectations on cleanup.
func NewSubscriptionRepository(t *testing.T) *SubscriptionRepository {
	m := &SubscriptionRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SubscriptionRepository) SeedTypes(ctx context.Context, types []ports.SubscriptionTypeData) error {
	args := m.Called(ctx, types)
	return args.Error(0)
}

func (m *SubscriptionRepository) ListTypes(ctx context.Context) ([]*ports.SubscriptionTypeData, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ports.SubscriptionTypeData), args.Error(1)
}

func (m *SubscriptionRepository) GetOrCreateUser(ctx context.Context, externalID string) (*ports.UserData, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.UserData), args.Error(1)
}

func (m *SubscriptionRepository) Upsert(ctx context.Context, key ports.SubscriptionKey) (*ports.SubscriptionData, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.SubscriptionData), args.Error(1)
}

func (m *SubscriptionRepository) Delete(ctx context.Context, filter ports.SubscriptionFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SubscriptionRepository) ListByUser(ctx context.Context, externalID string) ([]*ports.SubscriptionData, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ports.SubscriptionData), args.Error(1)
}

func (m *SubscriptionRepository) FindByTime(ctx context.Context, clockTime string) ([]*ports.SubscriptionData, error) {
	args := m.Called(ctx, clockTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ports.SubscriptionData), args.Error(1)
}
