package subscription

import (
	"context"
	"fmt"

	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
	"weatherbot.app/pkg/validation"
)

type UseCase struct {
	subscriptionRepo ports.SubscriptionRepository
	logger           ports.Logger
}

type UseCaseDependencies struct {
	SubscriptionRepo ports.SubscriptionRepository
	Logger           ports.Logger
}

// AddParams carries one validated onboarding tuple. Time must already be "HH:MM".
type AddParams struct {
	ExternalID string
	City       string
	TypeCode   string
	Time       string
}

// AddManyParams requests the same city and type at several times of day.
type AddManyParams struct {
	ExternalID string
	City       string
	TypeCode   string
	Times      []string
}

// RemoveParams selects subscriptions to delete. Empty filters match everything.
type RemoveParams struct {
	ExternalID string
	City       string
	TypeCode   string
	Time       string
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.SubscriptionRepo == nil {
		return nil, errors.NewValidationError("subscription repository is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &UseCase{
		subscriptionRepo: deps.SubscriptionRepo,
		logger:           deps.Logger,
	}, nil
}

// SeedTypes writes the fixed catalog. Safe to call on every start.
func (uc *UseCase) SeedTypes(ctx context.Context) error {
	types := AllTypes()
	data := make([]ports.SubscriptionTypeData, 0, len(types))
	for _, t := range types {
		data = append(data, ports.SubscriptionTypeData{Code: t.String(), Description: t.Description()})
	}

	if err := uc.subscriptionRepo.SeedTypes(ctx, data); err != nil {
		return fmt.Errorf("seed subscription types: %w", err)
	}

	uc.logger.Info("Subscription types seeded", ports.F("count", len(data)))
	return nil
}

func (uc *UseCase) ListTypes(ctx context.Context) ([]TypeInfo, error) {
	data, err := uc.subscriptionRepo.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscription types: %w", err)
	}

	types := make([]TypeInfo, 0, len(data))
	for _, d := range data {
		types = append(types, TypeInfo{Code: d.Code, Description: d.Description})
	}
	return types, nil
}

func (uc *UseCase) GetOrCreateUser(ctx context.Context, externalID string) (*User, error) {
	if !validation.IsNotEmpty(externalID) {
		return nil, errors.NewValidationError("external id is required")
	}

	data, err := uc.subscriptionRepo.GetOrCreateUser(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("get or create user %s: %w", externalID, err)
	}

	return &User{ID: data.ID, ExternalID: data.ExternalID, CreatedAt: data.CreatedAt}, nil
}

// AddSubscription stores the subscription or refreshes the identical existing one.
func (uc *UseCase) AddSubscription(ctx context.Context, params AddParams) (*Subscription, error) {
	if !validation.IsNotEmpty(params.ExternalID) {
		return nil, errors.NewValidationError("external id is required")
	}
	city := validation.NormalizeCity(params.City)
	if city == "" {
		return nil, errors.NewValidationError("city is required")
	}
	if !TypeFromString(params.TypeCode).IsValid() {
		return nil, errors.NewUnknownSubscriptionTypeError(params.TypeCode)
	}

	data, err := uc.subscriptionRepo.Upsert(ctx, ports.SubscriptionKey{
		ExternalID: params.ExternalID,
		City:       city,
		TypeCode:   params.TypeCode,
		Time:       params.Time,
	})
	if err != nil {
		return nil, fmt.Errorf("add subscription: %w", err)
	}

	uc.logger.Debug("Subscription stored",
		ports.F("externalID", params.ExternalID),
		ports.F("city", city),
		ports.F("type", params.TypeCode),
		ports.F("time", params.Time))

	return convertFromPortsSubscription(data), nil
}

// AddSubscriptions validates every requested time and stores one row per time.
func (uc *UseCase) AddSubscriptions(ctx context.Context, params AddManyParams) ([]*Subscription, error) {
	if len(params.Times) == 0 {
		return nil, errors.NewValidationError("at least one time is required")
	}
	for _, t := range params.Times {
		if !validation.IsValidClockTime(t) {
			return nil, errors.NewValidationError(fmt.Sprintf("time %q must be in HH:MM format", t))
		}
	}

	subs := make([]*Subscription, 0, len(params.Times))
	for _, t := range params.Times {
		sub, err := uc.AddSubscription(ctx, AddParams{
			ExternalID: params.ExternalID,
			City:       params.City,
			TypeCode:   params.TypeCode,
			Time:       t,
		})
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// RemoveSubscriptions deletes the user's subscriptions matching the filters
// and returns how many rows were removed.
func (uc *UseCase) RemoveSubscriptions(ctx context.Context, params RemoveParams) (int64, error) {
	if !validation.IsNotEmpty(params.ExternalID) {
		return 0, errors.NewValidationError("external id is required")
	}
	// An unknown code cannot match any stored row.
	if params.TypeCode != "" && !TypeFromString(params.TypeCode).IsValid() {
		return 0, nil
	}

	removed, err := uc.subscriptionRepo.Delete(ctx, ports.SubscriptionFilter{
		ExternalID: params.ExternalID,
		City:       validation.NormalizeCity(params.City),
		TypeCode:   params.TypeCode,
		Time:       params.Time,
	})
	if err != nil {
		return 0, fmt.Errorf("remove subscriptions: %w", err)
	}

	uc.logger.Info("Subscriptions removed",
		ports.F("externalID", params.ExternalID),
		ports.F("removed", removed))
	return removed, nil
}

func (uc *UseCase) ListSubscriptions(ctx context.Context, externalID string) ([]*Subscription, error) {
	if !validation.IsNotEmpty(externalID) {
		return nil, errors.NewValidationError("external id is required")
	}

	data, err := uc.subscriptionRepo.ListByUser(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return convertFromPortsSubscriptions(data), nil
}

// FindDueSubscriptions returns every subscription whose time equals clockTime.
func (uc *UseCase) FindDueSubscriptions(ctx context.Context, clockTime string) ([]*Subscription, error) {
	data, err := uc.subscriptionRepo.FindByTime(ctx, clockTime)
	if err != nil {
		return nil, fmt.Errorf("find subscriptions due at %s: %w", clockTime, err)
	}
	return convertFromPortsSubscriptions(data), nil
}

func convertFromPortsSubscriptions(data []*ports.SubscriptionData) []*Subscription {
	subs := make([]*Subscription, 0, len(data))
	for _, d := range data {
		subs = append(subs, convertFromPortsSubscription(d))
	}
	return subs
}

func convertFromPortsSubscription(data *ports.SubscriptionData) *Subscription {
	return &Subscription{
		ID:              data.ID,
		UserID:          data.UserID,
		ExternalID:      data.ExternalID,
		City:            data.City,
		Type:            TypeFromString(data.TypeCode),
		TypeDescription: data.TypeDescription,
		Time:            data.Time,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}
