package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/platform/logger"
	"github.com/jangulo01/webhookd/internal/repository/interfaces"
)

// Janitor sweeps terminal messages older than its retention window.
type Janitor struct {
	messages      interfaces.MessageStore
	interval      time.Duration
	retentionDays int
	log           *logger.Logger
	stop          chan struct{}
}

func NewJanitor(messages interfaces.MessageStore, interval time.Duration, retentionDays int) *Janitor {
	return &Janitor{
		messages:      messages,
		interval:      interval,
		retentionDays: retentionDays,
		log:           logger.New("janitor"),
		stop:          make(chan struct{}),
	}
}

func (j *Janitor) Start(ctx context.Context) {
	j.log.Info(fmt.Sprintf("janitor started (interval=%v, retention_days=%d)", j.interval, j.retentionDays))

	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		j.sweep(ctx)

		for {
			select {
			case <-ticker.C:
				j.sweep(ctx)
			case <-j.stop:
				j.log.Info("janitor stopped")
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (j *Janitor) Stop() {
	close(j.stop)
}

func (j *Janitor) sweep(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)
	terminal := []domain.MessageStatus{domain.StatusDelivered, domain.StatusCancelled, domain.StatusFailed}

	deleted, err := j.messages.DeleteOld(ctx, cutoff, terminal)
	if err != nil {
		j.log.Error("janitor: cleanup failed: " + err.Error())
		return
	}
	if deleted > 0 {
		j.log.Info(fmt.Sprintf("janitor: removed %d messages older than %d days", deleted, j.retentionDays))
	}
}
