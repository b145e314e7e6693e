package impl

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/repository/entity"
	"github.com/jangulo01/webhookd/internal/repository/interfaces"
	"github.com/jangulo01/webhookd/internal/repository/mapper"
)

type healthStore struct {
	db *gorm.DB
}

func NewHealthStore(db *gorm.DB) interfaces.HealthStore {
	return &healthStore{db: db}
}

func (r *healthStore) Upsert(ctx context.Context, stats *domain.WebhookHealthStats) error {
	e := mapper.HealthToEntity(stats)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "webhook_config_id"}},
			UpdateAll: true,
		}).
		Create(e).Error
}

func (r *healthStore) GetByConfigID(ctx context.Context, configID string) (*domain.WebhookHealthStats, error) {
	var e entity.HealthStatsEntity
	if err := r.db.WithContext(ctx).Where("webhook_config_id = ?", configID).First(&e).Error; err != nil {
		return nil, err
	}
	return mapper.HealthToDomain(&e), nil
}
