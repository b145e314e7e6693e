package entity

import "time"

// DeliveryAttemptEntity is the GORM row for domain.DeliveryAttempt.
// Append-only: rows are never updated after insert.
type DeliveryAttemptEntity struct {
	ID                string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MessageID         string `gorm:"type:uuid;not null;index;uniqueIndex:idx_msg_attempt_number"`
	AttemptNumber     int    `gorm:"not null;uniqueIndex:idx_msg_attempt_number"`
	Timestamp         time.Time `gorm:"autoCreateTime"`
	StatusCode        *int
	ResponseBody      string `gorm:"type:text"`
	Error             string `gorm:"type:text"`
	RequestDurationMs int
	TargetURL         string `gorm:"type:varchar(2048)"`
	ResponseHeadersJSON string `gorm:"type:text"`
	ProcessingNode    string `gorm:"type:varchar(255)"`
}

func (DeliveryAttemptEntity) TableName() string {
	return "webhook_delivery_attempts"
}
