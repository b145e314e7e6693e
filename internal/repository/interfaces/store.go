// Package interfaces defines the transactional repository contract the
// core requires, independent of the backing database.
package interfaces

import (
	"context"
	"time"

	"github.com/jangulo01/webhookd/internal/domain"
)

// ConfigStore is the read/write surface for WebhookConfig rows. Config CRUD
// is an administrative addition; delivery itself only ever reads through
// GetActiveByName/GetByID.
type ConfigStore interface {
	Create(ctx context.Context, cfg *domain.WebhookConfig) error
	GetByID(ctx context.Context, id string) (*domain.WebhookConfig, error)
	GetActiveByName(ctx context.Context, name string) (*domain.WebhookConfig, error)
	Update(ctx context.Context, cfg *domain.WebhookConfig) error
	List(ctx context.Context, limit, offset int) ([]*domain.WebhookConfig, int64, error)
}

// MessageStore is the transactional repository contract for delivery state.
type MessageStore interface {
	// CreateMessage inserts a new message row, PENDING, retry_count=0.
	CreateMessage(ctx context.Context, msg *domain.Message) error

	// ClaimForProcessing is the sole serialization point: an atomic
	// compare-and-set from {PENDING,FAILED} to PROCESSING, bumping
	// updated_at. Returns false if the row was in any other state.
	ClaimForProcessing(ctx context.Context, id string) (bool, error)

	// FinishDelivered is a write-once terminal transition.
	FinishDelivered(ctx context.Context, id string) error

	// FinishCancelled is a write-once terminal transition, valid only from
	// PENDING/FAILED (enforced by the caller).
	FinishCancelled(ctx context.Context, id string) error

	// MarkFailed sets status=FAILED with the given error and next_retry.
	// next_retry=nil makes the transition terminal.
	MarkFailed(ctx context.Context, id string, lastError string, nextRetry *time.Time) error

	// SetTargetURL overrides a message's target_url, used by the retry and
	// bulk_retry admin operations' optional target_override.
	SetTargetURL(ctx context.Context, id string, targetURL string) error

	// AppendAttempt must run in the same transaction as the status update
	// that reflects it; use AppendAttemptAndMarkFailed /
	// AppendAttemptAndFinishDelivered for that guarantee.
	AppendAttempt(ctx context.Context, attempt *domain.DeliveryAttempt) error

	// AppendAttemptAndFinishDelivered appends the attempt and transitions to
	// DELIVERED in one transaction.
	AppendAttemptAndFinishDelivered(ctx context.Context, attempt *domain.DeliveryAttempt) error

	// AppendAttemptAndMarkFailed appends the attempt and transitions to
	// FAILED (terminal if nextRetry is nil) in one transaction.
	AppendAttemptAndMarkFailed(ctx context.Context, attempt *domain.DeliveryAttempt, lastError string, nextRetry *time.Time) error

	GetByID(ctx context.Context, id string) (*domain.Message, error)
	GetAttempts(ctx context.Context, messageID string) ([]*domain.DeliveryAttempt, error)

	// FindReadyForRetry returns FAILED messages with next_retry <= now,
	// ordered by next_retry ASC.
	FindReadyForRetry(ctx context.Context, now time.Time, limit int) ([]*domain.Message, error)

	// FindPending returns PENDING messages (e.g. publish failures that
	// never reached the bus), ordered by created_at ASC.
	FindPending(ctx context.Context, limit int) ([]*domain.Message, error)

	// FindStuck returns PROCESSING messages with updated_at < threshold.
	FindStuck(ctx context.Context, threshold time.Time, limit int) ([]*domain.Message, error)

	// DeleteOld deletes messages in a terminal status older than cutoff.
	// Message rows carry gorm.DeletedAt, so the delete is a soft delete; no
	// foreign key links attempts to messages, and attempt rows are not removed.
	DeleteOld(ctx context.Context, cutoff time.Time, statuses []domain.MessageStatus) (int64, error)
}

// HealthStore persists the periodic flush of the in-memory HealthAggregator.
type HealthStore interface {
	Upsert(ctx context.Context, stats *domain.WebhookHealthStats) error
	GetByConfigID(ctx context.Context, configID string) (*domain.WebhookHealthStats, error)
}
