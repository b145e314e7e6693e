package entity

import "time"

// HealthStatsEntity is the 1:1 per-config health row, periodically flushed
// from the in-memory HealthAggregator.
type HealthStatsEntity struct {
	WebhookConfigID   string `gorm:"primaryKey;type:uuid"`
	TotalSent         int64
	TotalDelivered    int64
	TotalFailed       int64
	AvgResponseTimeMs float64
	LastSuccessTime   *time.Time
	LastErrorTime     *time.Time
	LastError         string    `gorm:"type:text"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (HealthStatsEntity) TableName() string {
	return "webhook_health_stats"
}
