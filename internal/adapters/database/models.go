package database

import (
	"time"

	"gorm.io/gorm"
)

// UserModel is a messaging-platform user that owns subscriptions
type UserModel struct {
	ID         uint   `gorm:"primaryKey"`
	ExternalID string `gorm:"size:64;uniqueIndex;not null"`
	CreatedAt  time.Time
}

func (UserModel) TableName() string {
	return "users"
}

// SubscriptionTypeModel is one entry of the fixed type catalog
type SubscriptionTypeModel struct {
	ID          uint   `gorm:"primaryKey"`
	Code        string `gorm:"size:32;uniqueIndex;not null"`
	Description string `gorm:"not null"`
}

func (SubscriptionTypeModel) TableName() string {
	return "subscription_types"
}

// SubscriptionModel is unique over (user, city, type, time). Rows go away with their user.
type SubscriptionModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index;uniqueIndex:idx_subscriptions_key,priority:1"`
	City      string `gorm:"size:128;not null;uniqueIndex:idx_subscriptions_key,priority:2"`
	TypeID    uint   `gorm:"not null;uniqueIndex:idx_subscriptions_key,priority:3"`
	Time      string `gorm:"size:5;not null;index;uniqueIndex:idx_subscriptions_key,priority:4"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User UserModel             `gorm:"constraint:OnDelete:CASCADE"`
	Type SubscriptionTypeModel `gorm:"foreignKey:TypeID;constraint:OnDelete:RESTRICT"`
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// AutoMigrate creates or updates the schema in dependency order
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&SubscriptionTypeModel{},
		&SubscriptionModel{},
	)
}
