package entity

import (
	"time"

	"gorm.io/gorm"
)

// WebhookConfigEntity is the GORM row for domain.WebhookConfig.
type WebhookConfigEntity struct {
	ID               string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name             string `gorm:"type:varchar(50);not null;uniqueIndex"`
	TargetURL        string `gorm:"type:varchar(2048);not null"`
	Secret           string `gorm:"type:varchar(255);not null"`
	MaxRetries       int    `gorm:"not null;default:5"`
	BackoffStrategy  string `gorm:"type:varchar(20);not null;default:'exponential'"`
	InitialIntervalS int    `gorm:"not null;default:10"`
	BackoffFactor    float64 `gorm:"not null;default:2.0"`
	MaxIntervalS     int     `gorm:"not null;default:300"`
	MaxAgeS          int     `gorm:"not null;default:86400"`
	HeadersJSON      string  `gorm:"type:text"`
	Active           bool    `gorm:"not null;default:true"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (WebhookConfigEntity) TableName() string {
	return "webhook_configs"
}
