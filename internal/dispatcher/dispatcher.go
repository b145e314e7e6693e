// Package dispatcher implements dispatch(id): a single delivery attempt per
// call, claimed atomically and resolved in one transaction. It deliberately
// avoids a blocking in-process retry loop that sleeps between attempts in
// one goroutine — next_retry must be durable, and re-dispatch comes from a
// separate scheduler tick or bus redelivery, never a sleeping goroutine.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/jangulo01/webhookd/internal/backoff"
	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/health"
	"github.com/jangulo01/webhookd/internal/platform/logger"
	"github.com/jangulo01/webhookd/internal/repository/interfaces"
	"github.com/jangulo01/webhookd/internal/sender"
)

const (
	retryDelayFactorTooManyRequests = 2.0
	retryDelayFactorConnectionError = 1.2
	retryDelayFactorDefault         = 1.0
)

type Dispatcher struct {
	configs  interfaces.ConfigStore
	messages interfaces.MessageStore
	sender   *sender.Sender
	health   *health.Aggregator
	log      *logger.Logger
}

func New(configs interfaces.ConfigStore, messages interfaces.MessageStore, snd *sender.Sender, agg *health.Aggregator) *Dispatcher {
	return &Dispatcher{configs: configs, messages: messages, sender: snd, health: agg, log: logger.New("dispatcher")}
}

// Dispatch claims the message, makes one delivery attempt, and resolves it.
// It returns nil on any outcome that was handled (including a terminal
// failure) — a non-nil error means the attempt itself could not be
// recorded, which the caller should treat as "redeliver me".
func (d *Dispatcher) Dispatch(ctx context.Context, id string) error {
	claimed, err := d.messages.ClaimForProcessing(ctx, id)
	if err != nil {
		return fmt.Errorf("dispatcher: claim failed for %s: %w", id, err)
	}
	if !claimed {
		return nil // another worker has it, or it's already terminal
	}

	msg, err := d.messages.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("dispatcher: failed to load message %s after claim: %w", id, err)
	}

	cfg, err := d.configs.GetByID(ctx, msg.WebhookConfigID)
	if err != nil {
		return fmt.Errorf("dispatcher: failed to load config %s for message %s: %w", msg.WebhookConfigID, id, err)
	}

	maxAge := time.Duration(cfg.MaxAgeS) * time.Second
	if time.Since(msg.CreatedAt) > maxAge {
		attempt := &domain.DeliveryAttempt{
			MessageID:     id,
			AttemptNumber: msg.RetryCount + 1,
			TargetURL:     msg.TargetURL,
			Error:         "expired",
		}
		if err := d.messages.AppendAttemptAndMarkFailed(ctx, attempt, "expired", nil); err != nil {
			return fmt.Errorf("dispatcher: failed to record expiry for %s: %w", id, err)
		}
		return nil
	}

	attemptNumber := msg.RetryCount + 1
	outcome := d.sender.Send(ctx, msg, attemptNumber)

	attempt := buildAttempt(id, attemptNumber, msg.TargetURL, outcome)

	if outcome.Success() {
		if err := d.messages.AppendAttemptAndFinishDelivered(ctx, attempt); err != nil {
			return fmt.Errorf("dispatcher: failed to record success for %s: %w", id, err)
		}
		d.health.RecordSuccess(cfg.ID, outcome.DurationMs)
		return nil
	}

	deliveryErr := outcome.Error
	if deliveryErr == nil {
		deliveryErr = fmt.Errorf("http %d", outcome.StatusCode)
	}
	d.health.RecordFailure(cfg.ID, deliveryErr)

	if !outcome.Retryable() {
		if err := d.messages.AppendAttemptAndMarkFailed(ctx, attempt, deliveryErr.Error(), nil); err != nil {
			return fmt.Errorf("dispatcher: failed to record non-retryable failure for %s: %w", id, err)
		}
		return nil
	}

	factor := retryDelayFactor(outcome)
	delay := time.Duration(float64(backoff.Delay(cfg.BackoffStrategy, msg.RetryCount, cfg.InitialIntervalS, cfg.BackoffFactor, cfg.MaxIntervalS)) * factor)

	exhausted := attemptNumber >= cfg.MaxRetries
	expiresBeforeNextAttempt := time.Now().Add(delay).After(msg.CreatedAt.Add(maxAge))

	if exhausted || expiresBeforeNextAttempt {
		if err := d.messages.AppendAttemptAndMarkFailed(ctx, attempt, deliveryErr.Error(), nil); err != nil {
			return fmt.Errorf("dispatcher: failed to record exhausted failure for %s: %w", id, err)
		}
		return nil
	}

	nextRetry := time.Now().Add(delay)
	if err := d.messages.AppendAttemptAndMarkFailed(ctx, attempt, deliveryErr.Error(), &nextRetry); err != nil {
		return fmt.Errorf("dispatcher: failed to record retryable failure for %s: %w", id, err)
	}
	return nil
}

func retryDelayFactor(o sender.Outcome) float64 {
	switch {
	case o.StatusCode == 429:
		return retryDelayFactorTooManyRequests
	case o.ConnectionError:
		return retryDelayFactorConnectionError
	default:
		return retryDelayFactorDefault
	}
}

func buildAttempt(messageID string, attemptNumber int, targetURL string, o sender.Outcome) *domain.DeliveryAttempt {
	a := &domain.DeliveryAttempt{
		MessageID:         messageID,
		AttemptNumber:     attemptNumber,
		TargetURL:         targetURL,
		ResponseBody:      o.Body,
		ResponseHeaders:   o.Headers,
		RequestDurationMs: o.DurationMs,
	}
	if o.StatusCode != 0 {
		sc := o.StatusCode
		a.StatusCode = &sc
	}
	if o.Error != nil {
		a.Error = o.Error.Error()
	}
	return a
}
