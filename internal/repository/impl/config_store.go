package impl

import (
	"context"

	"gorm.io/gorm"

	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/repository/entity"
	"github.com/jangulo01/webhookd/internal/repository/interfaces"
	"github.com/jangulo01/webhookd/internal/repository/mapper"
)

type configStore struct {
	db *gorm.DB
}

func NewConfigStore(db *gorm.DB) interfaces.ConfigStore {
	return &configStore{db: db}
}

func (r *configStore) Create(ctx context.Context, cfg *domain.WebhookConfig) error {
	e := mapper.ConfigToEntity(cfg)
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return err
	}
	cfg.ID = e.ID
	cfg.CreatedAt = e.CreatedAt
	cfg.UpdatedAt = e.UpdatedAt
	return nil
}

func (r *configStore) GetByID(ctx context.Context, id string) (*domain.WebhookConfig, error) {
	var e entity.WebhookConfigEntity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return mapper.ConfigToDomain(&e), nil
}

func (r *configStore) GetActiveByName(ctx context.Context, name string) (*domain.WebhookConfig, error) {
	var e entity.WebhookConfigEntity
	err := r.db.WithContext(ctx).Where("name = ? AND active = ?", name, true).First(&e).Error
	if err != nil {
		return nil, err
	}
	return mapper.ConfigToDomain(&e), nil
}

func (r *configStore) Update(ctx context.Context, cfg *domain.WebhookConfig) error {
	e := mapper.ConfigToEntity(cfg)
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *configStore) List(ctx context.Context, limit, offset int) ([]*domain.WebhookConfig, int64, error) {
	var entities []*entity.WebhookConfigEntity
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.WebhookConfigEntity{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Order("created_at DESC").Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	result := make([]*domain.WebhookConfig, len(entities))
	for i, e := range entities {
		result[i] = mapper.ConfigToDomain(e)
	}
	return result, total, nil
}
