package impl

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/repository/entity"
	"github.com/jangulo01/webhookd/internal/repository/interfaces"
	"github.com/jangulo01/webhookd/internal/repository/mapper"
)

type messageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) interfaces.MessageStore {
	return &messageStore{db: db}
}

func (r *messageStore) CreateMessage(ctx context.Context, msg *domain.Message) error {
	e := mapper.MessageToEntity(msg)
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return err
	}
	msg.ID = e.ID
	msg.CreatedAt = e.CreatedAt
	msg.UpdatedAt = e.UpdatedAt
	return nil
}

// ClaimForProcessing is the one CAS the whole concurrency model rests on: a
// conditional UPDATE guarded by the current status, checked against
// RowsAffected to detect a lost race.
func (r *messageStore) ClaimForProcessing(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.MessageEntity{}).
		Where("id = ? AND status IN ?", id, []string{string(domain.StatusPending), string(domain.StatusFailed)}).
		Updates(map[string]interface{}{
			"status":     string(domain.StatusProcessing),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *messageStore) FinishDelivered(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.MessageEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(domain.StatusDelivered),
			"next_retry": nil,
		}).Error
}

func (r *messageStore) FinishCancelled(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.MessageEntity{}).
		Where("id = ? AND status IN ?", id, []string{string(domain.StatusPending), string(domain.StatusFailed)}).
		Updates(map[string]interface{}{
			"status":     string(domain.StatusCancelled),
			"next_retry": nil,
		}).Error
}

func (r *messageStore) MarkFailed(ctx context.Context, id string, lastError string, nextRetry *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.MessageEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(domain.StatusFailed),
			"last_error": lastError,
			"next_retry": nextRetry,
		}).Error
}

func (r *messageStore) SetTargetURL(ctx context.Context, id string, targetURL string) error {
	return r.db.WithContext(ctx).
		Model(&entity.MessageEntity{}).
		Where("id = ?", id).
		Update("target_url", targetURL).Error
}

func (r *messageStore) AppendAttempt(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	e := mapper.AttemptToEntity(attempt)
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return err
	}
	attempt.ID = e.ID
	attempt.Timestamp = e.Timestamp
	return nil
}

func (r *messageStore) AppendAttemptAndFinishDelivered(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e := mapper.AttemptToEntity(attempt)
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		attempt.ID = e.ID
		attempt.Timestamp = e.Timestamp

		return tx.Model(&entity.MessageEntity{}).
			Where("id = ?", attempt.MessageID).
			Updates(map[string]interface{}{
				"status":      string(domain.StatusDelivered),
				"retry_count": attempt.AttemptNumber,
				"next_retry":  nil,
				"last_error":  "",
			}).Error
	})
}

func (r *messageStore) AppendAttemptAndMarkFailed(ctx context.Context, attempt *domain.DeliveryAttempt, lastError string, nextRetry *time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e := mapper.AttemptToEntity(attempt)
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		attempt.ID = e.ID
		attempt.Timestamp = e.Timestamp

		return tx.Model(&entity.MessageEntity{}).
			Where("id = ?", attempt.MessageID).
			Updates(map[string]interface{}{
				"status":      string(domain.StatusFailed),
				"retry_count": attempt.AttemptNumber,
				"next_retry":  nextRetry,
				"last_error":  lastError,
			}).Error
	})
}

func (r *messageStore) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var e entity.MessageEntity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return mapper.MessageToDomain(&e), nil
}

func (r *messageStore) GetAttempts(ctx context.Context, messageID string) ([]*domain.DeliveryAttempt, error) {
	var entities []entity.DeliveryAttemptEntity
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("attempt_number ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return mapper.AttemptsToDomain(entities), nil
}

func (r *messageStore) FindReadyForRetry(ctx context.Context, now time.Time, limit int) ([]*domain.Message, error) {
	var entities []*entity.MessageEntity
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry IS NOT NULL AND next_retry <= ?", string(domain.StatusFailed), now).
		Order("next_retry ASC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return mapper.MessagesToDomain(entities), nil
}

func (r *messageStore) FindPending(ctx context.Context, limit int) ([]*domain.Message, error) {
	var entities []*entity.MessageEntity
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.StatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return mapper.MessagesToDomain(entities), nil
}

func (r *messageStore) FindStuck(ctx context.Context, threshold time.Time, limit int) ([]*domain.Message, error) {
	var entities []*entity.MessageEntity
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", string(domain.StatusProcessing), threshold).
		Order("updated_at ASC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return mapper.MessagesToDomain(entities), nil
}

func (r *messageStore) DeleteOld(ctx context.Context, cutoff time.Time, statuses []domain.MessageStatus) (int64, error) {
	statusStrs := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrs[i] = string(s)
	}

	// A FAILED row with next_retry still set is not actually terminal yet;
	// exclude it even if the caller passed StatusFailed in statuses.
	result := r.db.WithContext(ctx).
		Where("created_at < ? AND status IN ? AND (status != ? OR next_retry IS NULL)",
			cutoff, statusStrs, string(domain.StatusFailed)).
		Delete(&entity.MessageEntity{})
	return result.RowsAffected, result.Error
}
