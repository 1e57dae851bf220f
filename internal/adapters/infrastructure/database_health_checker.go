package infrastructure

import (
	"context"

	"gorm.io/gorm"
	"weatherbot.app/internal/adapters/database"
	"weatherbot.app/internal/ports"
)

// DatabaseHealthChecker pings the subscription store and reports its size.
type DatabaseHealthChecker struct {
	db *gorm.DB
}

func NewDatabaseHealthChecker(db *gorm.DB) *DatabaseHealthChecker {
	return &DatabaseHealthChecker{db: db}
}

// Check is degraded while the type catalog is empty, since no subscription can be stored.
func (d *DatabaseHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "database",
		Status:    "unhealthy",
		Details:   make(map[string]interface{}),
	}

	if d.db == nil {
		status.Error = "database instance is nil"
		return status
	}
	status.Details["driver"] = d.db.Dialector.Name()

	sqlDB, err := d.db.DB()
	if err != nil {
		status.Error = "failed to get underlying database connection"
		return status
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		status.Error = err.Error()
		return status
	}
	status.Details["openConnections"] = sqlDB.Stats().OpenConnections

	db := d.db.WithContext(ctx)
	var types, subscriptions int64
	if err := db.Model(&database.SubscriptionTypeModel{}).Count(&types).Error; err != nil {
		status.Error = "subscription catalog unavailable: " + err.Error()
		return status
	}
	if err := db.Model(&database.SubscriptionModel{}).Count(&subscriptions).Error; err != nil {
		status.Error = "subscriptions unavailable: " + err.Error()
		return status
	}
	status.Details["subscriptionTypes"] = types
	status.Details["subscriptions"] = subscriptions

	status.Status = "healthy"
	if types == 0 {
		status.Status = "degraded"
		status.Error = "subscription catalog is not seeded"
	}
	return status
}
