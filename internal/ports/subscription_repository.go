package ports

import (
	"context"
	"time"
)

// UserData represents a messaging-platform user for persistence
type UserData struct {
	ID         uint
	ExternalID string
	CreatedAt  time.Time
}

// SubscriptionTypeData represents a catalog entry for persistence
type SubscriptionTypeData struct {
	ID          uint
	Code        string
	Description string
}

// SubscriptionData represents subscription data for persistence
type SubscriptionData struct {
	ID              uint
	UserID          uint
	ExternalID      string
	City            string
	TypeCode        string
	TypeDescription string
	Time            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SubscriptionKey identifies a subscription by its unique tuple.
// City must already be normalized.
type SubscriptionKey struct {
	ExternalID string
	City       string
	TypeCode   string
	Time       string
}

// SubscriptionFilter selects subscriptions of one user. Empty fields match everything.
type SubscriptionFilter struct {
	ExternalID string
	City       string
	TypeCode   string
	Time       string
}

// SubscriptionRepository defines the contract for subscription data persistence
type SubscriptionRepository interface {
	SeedTypes(ctx context.Context, types []SubscriptionTypeData) error
	ListTypes(ctx context.Context) ([]*SubscriptionTypeData, error)
	GetOrCreateUser(ctx context.Context, externalID string) (*UserData, error)
	Upsert(ctx context.Context, key SubscriptionKey) (*SubscriptionData, error)
	Delete(ctx context.Context, filter SubscriptionFilter) (int64, error)
	ListByUser(ctx context.Context, externalID string) ([]*SubscriptionData, error)
	FindByTime(ctx context.Context, clockTime string) ([]*SubscriptionData, error)
}
