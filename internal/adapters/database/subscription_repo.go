package database

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// SubscriptionRepositoryAdapter implements the SubscriptionRepository port using GORM.
// Write races are settled by unique constraints and ON CONFLICT DO NOTHING.
type SubscriptionRepositoryAdapter struct {
	db *gorm.DB
}

// NewSubscriptionRepositoryAdapter creates a new subscription repository adapter
func NewSubscriptionRepositoryAdapter(db *gorm.DB) ports.SubscriptionRepository {
	return &SubscriptionRepositoryAdapter{db: db}
}

// SeedTypes inserts missing catalog entries and leaves existing ones untouched
func (r *SubscriptionRepositoryAdapter) SeedTypes(ctx context.Context, types []ports.SubscriptionTypeData) error {
	if len(types) == 0 {
		return nil
	}

	models := make([]SubscriptionTypeModel, 0, len(types))
	for _, t := range types {
		models = append(models, SubscriptionTypeModel{Code: t.Code, Description: t.Description})
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&models)
	if result.Error != nil {
		return errors.NewDatabaseError("failed to seed subscription types", result.Error)
	}
	return nil
}

func (r *SubscriptionRepositoryAdapter) ListTypes(ctx context.Context) ([]*ports.SubscriptionTypeData, error) {
	var models []SubscriptionTypeModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, errors.NewDatabaseError("failed to list subscription types", err)
	}

	types := make([]*ports.SubscriptionTypeData, 0, len(models))
	for _, m := range models {
		types = append(types, &ports.SubscriptionTypeData{ID: m.ID, Code: m.Code, Description: m.Description})
	}
	return types, nil
}

// GetOrCreateUser returns the user with externalID, inserting it first when absent
func (r *SubscriptionRepositoryAdapter) GetOrCreateUser(ctx context.Context, externalID string) (*ports.UserData, error) {
	if externalID == "" {
		return nil, errors.NewValidationError("external id cannot be empty")
	}

	user, err := getOrCreateUser(r.db.WithContext(ctx), externalID)
	if err != nil {
		return nil, err
	}
	return &ports.UserData{ID: user.ID, ExternalID: user.ExternalID, CreatedAt: user.CreatedAt}, nil
}

// Upsert stores the subscription identified by key. An existing identical row is returned as is.
func (r *SubscriptionRepositoryAdapter) Upsert(ctx context.Context, key ports.SubscriptionKey) (*ports.SubscriptionData, error) {
	var stored SubscriptionModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := getOrCreateUser(tx, key.ExternalID)
		if err != nil {
			return err
		}

		var subType SubscriptionTypeModel
		if err := tx.Where("code = ?", key.TypeCode).First(&subType).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.NewUnknownSubscriptionTypeError(key.TypeCode)
			}
			return errors.NewDatabaseError("failed to find subscription type", err)
		}

		model := SubscriptionModel{
			UserID: user.ID,
			City:   key.City,
			TypeID: subType.ID,
			Time:   key.Time,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit("User", "Type").Create(&model).Error; err != nil {
			return errors.NewDatabaseError("failed to insert subscription", err)
		}

		err = tx.Preload("User").Preload("Type").
			Where("subscriptions.user_id = ? AND subscriptions.city = ? AND subscriptions.type_id = ? AND subscriptions.time = ?",
				user.ID, key.City, subType.ID, key.Time).
			First(&stored).Error
		if err != nil {
			return errors.NewDatabaseError("failed to read subscription", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.modelToData(&stored), nil
}

// Delete removes the user's subscriptions matching every non-empty filter field
func (r *SubscriptionRepositoryAdapter) Delete(ctx context.Context, filter ports.SubscriptionFilter) (int64, error) {
	if filter.ExternalID == "" {
		return 0, errors.NewValidationError("external id cannot be empty")
	}

	db := r.db.WithContext(ctx)
	query := db.Where("user_id IN (?)",
		db.Model(&UserModel{}).Select("id").Where("external_id = ?", filter.ExternalID))

	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.TypeCode != "" {
		query = query.Where("type_id IN (?)",
			db.Model(&SubscriptionTypeModel{}).Select("id").Where("code = ?", filter.TypeCode))
	}
	if filter.Time != "" {
		query = query.Where("subscriptions.time = ?", filter.Time)
	}

	result := query.Delete(&SubscriptionModel{})
	if result.Error != nil {
		return 0, errors.NewDatabaseError("failed to delete subscriptions", result.Error)
	}
	return result.RowsAffected, nil
}

// ListByUser returns the user's subscriptions ordered by time of day. Unknown users have none.
func (r *SubscriptionRepositoryAdapter) ListByUser(ctx context.Context, externalID string) ([]*ports.SubscriptionData, error) {
	var models []SubscriptionModel
	err := r.db.WithContext(ctx).
		Preload("User").Preload("Type").
		Joins("JOIN users ON users.id = subscriptions.user_id").
		Where("users.external_id = ?", externalID).
		Order("subscriptions.time, subscriptions.city, subscriptions.id").
		Find(&models).Error
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list subscriptions", err)
	}
	return r.modelsToData(models), nil
}

// FindByTime returns every subscription scheduled at clockTime with user and type loaded
func (r *SubscriptionRepositoryAdapter) FindByTime(ctx context.Context, clockTime string) ([]*ports.SubscriptionData, error) {
	var models []SubscriptionModel
	err := r.db.WithContext(ctx).
		Preload("User").Preload("Type").
		Where("subscriptions.time = ?", clockTime).
		Order("subscriptions.id").
		Find(&models).Error
	if err != nil {
		return nil, errors.NewDatabaseError("failed to find due subscriptions", err)
	}
	return r.modelsToData(models), nil
}

func getOrCreateUser(tx *gorm.DB, externalID string) (*UserModel, error) {
	candidate := UserModel{ExternalID: externalID}
	err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_id"}}, DoNothing: true}).
		Create(&candidate).Error
	if err != nil {
		return nil, errors.NewDatabaseError("failed to insert user", err)
	}

	var user UserModel
	if err := tx.Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, errors.NewDatabaseError("failed to read user", err)
	}
	return &user, nil
}

func (r *SubscriptionRepositoryAdapter) modelsToData(models []SubscriptionModel) []*ports.SubscriptionData {
	subscriptions := make([]*ports.SubscriptionData, len(models))
	for i := range models {
		subscriptions[i] = r.modelToData(&models[i])
	}
	return subscriptions
}

// modelToData converts database model to port data
func (r *SubscriptionRepositoryAdapter) modelToData(model *SubscriptionModel) *ports.SubscriptionData {
	return &ports.SubscriptionData{
		ID:              model.ID,
		UserID:          model.UserID,
		ExternalID:      model.User.ExternalID,
		City:            model.City,
		TypeCode:        model.Type.Code,
		TypeDescription: model.Type.Description,
		Time:            model.Time,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
