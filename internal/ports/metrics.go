package ports

import "time"

// CacheMetrics records external data cache activity per partition
type CacheMetrics interface {
	RecordCacheHit(partition string)
	RecordCacheMiss(partition string)
	RecordCacheFetchError(partition string)
	RecordCacheFetchLatency(partition string, duration time.Duration)
}

// NotificationMetrics records scheduler tick and delivery outcomes
type NotificationMetrics interface {
	RecordNotification(typeCode, outcome string)
	RecordTick(due int, duration time.Duration)
}
