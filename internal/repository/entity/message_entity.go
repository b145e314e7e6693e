package entity

import (
	"time"

	"gorm.io/gorm"
)

// MessageEntity is the GORM row for domain.Message.
type MessageEntity struct {
	ID              string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	WebhookConfigID string `gorm:"type:uuid;not null;index"`
	Payload         []byte `gorm:"type:bytea;not null"`
	TargetURL       string `gorm:"type:varchar(2048);not null"`
	Signature       string `gorm:"type:varchar(80);not null"`
	HeadersJSON     string `gorm:"type:text"`
	Status          string `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_msg_status_next_retry;index:idx_msg_status_updated_at"`
	RetryCount      int    `gorm:"not null;default:0"`
	NextRetry       *time.Time     `gorm:"index:idx_msg_status_next_retry"`
	LastError       string         `gorm:"type:text"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime;index:idx_msg_status_updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (MessageEntity) TableName() string {
	return "webhook_messages"
}
