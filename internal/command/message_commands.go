// Package command implements the admin façade operations as thin CQRS
// Command/Handler pairs over Store and Dispatcher (cqrs.BaseCommand +
// CommandName + Validate, paired with a *Handler implementing Handle).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/platform/cqrs"
	"github.com/jangulo01/webhookd/internal/platform/logger"
	"github.com/jangulo01/webhookd/internal/repository/interfaces"
)

// DispatchFunc lets command handlers trigger a dispatch attempt without
// importing the dispatcher package directly.
type DispatchFunc func(ctx context.Context, id string) error

// CancelMessageCommand cancels a message still in PENDING or FAILED.
type CancelMessageCommand struct {
	cqrs.BaseCommand
}

func (c *CancelMessageCommand) CommandName() string { return "cancel_message" }
func (c *CancelMessageCommand) Validate() error {
	if c.AggregateID == "" {
		return errors.New("message id is required")
	}
	return nil
}

type CancelMessageHandler struct {
	messages interfaces.MessageStore
	log      *logger.Logger
}

func NewCancelMessageHandler(messages interfaces.MessageStore) *CancelMessageHandler {
	return &CancelMessageHandler{messages: messages, log: logger.New("command.cancel_message")}
}

func (h *CancelMessageHandler) Handle(ctx context.Context, cmd cqrs.Command) error {
	c := cmd.(*CancelMessageCommand)

	msg, err := h.messages.GetByID(ctx, c.AggregateID)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrMessageNotFound, c.AggregateID)
	}
	if !msg.Cancellable() {
		return fmt.Errorf("%w: message %s is %s", domain.ErrNotCancellable, c.AggregateID, msg.Status)
	}

	if err := h.messages.FinishCancelled(ctx, c.AggregateID); err != nil {
		return fmt.Errorf("command: failed to cancel %s: %w", c.AggregateID, err)
	}
	h.log.Info("cancelled message " + c.AggregateID)
	return nil
}

// RetryMessageCommand forces a FAILED (non-terminal or terminal) message
// back to immediate eligibility, optionally overriding its target_url.
type RetryMessageCommand struct {
	cqrs.BaseCommand
	TargetOverride string `json:"target_override,omitempty"`
}

func (c *RetryMessageCommand) CommandName() string { return "retry_message" }
func (c *RetryMessageCommand) Validate() error {
	if c.AggregateID == "" {
		return errors.New("message id is required")
	}
	return nil
}

type RetryMessageHandler struct {
	messages interfaces.MessageStore
	dispatch DispatchFunc
	log      *logger.Logger
}

func NewRetryMessageHandler(messages interfaces.MessageStore, dispatch DispatchFunc) *RetryMessageHandler {
	return &RetryMessageHandler{messages: messages, dispatch: dispatch, log: logger.New("command.retry_message")}
}

func (h *RetryMessageHandler) Handle(ctx context.Context, cmd cqrs.Command) error {
	c := cmd.(*RetryMessageCommand)

	msg, err := h.messages.GetByID(ctx, c.AggregateID)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrMessageNotFound, c.AggregateID)
	}
	if msg.Status != domain.StatusFailed {
		return fmt.Errorf("message %s is not in FAILED state (current: %s)", c.AggregateID, msg.Status)
	}

	if c.TargetOverride != "" {
		if err := h.messages.SetTargetURL(ctx, c.AggregateID, c.TargetOverride); err != nil {
			return fmt.Errorf("command: failed to override target for %s: %w", c.AggregateID, err)
		}
	}

	now := time.Now()
	if err := h.messages.MarkFailed(ctx, c.AggregateID, "", &now); err != nil {
		return fmt.Errorf("command: failed to reschedule %s: %w", c.AggregateID, err)
	}

	if err := h.dispatch(ctx, c.AggregateID); err != nil {
		h.log.Error(fmt.Sprintf("command: immediate dispatch for %s failed, scheduler will pick it up: %v", c.AggregateID, err))
	}
	return nil
}

// BulkRetryCommand re-dispatches FAILED messages whose next_retry is due and
// that were created within the last `hours`. At most `limit` candidates are
// fetched before the created_at filter is applied.
type BulkRetryCommand struct {
	cqrs.BaseCommand
	Hours          int    `json:"hours"`
	Limit          int    `json:"limit"`
	TargetOverride string `json:"target_override,omitempty"`
}

func (c *BulkRetryCommand) CommandName() string { return "bulk_retry" }
func (c *BulkRetryCommand) Validate() error {
	if c.Hours <= 0 {
		return errors.New("hours must be positive")
	}
	if c.Limit <= 0 {
		return errors.New("limit must be positive")
	}
	return nil
}

type BulkRetryHandler struct {
	messages interfaces.MessageStore
	dispatch DispatchFunc
	log      *logger.Logger
}

func NewBulkRetryHandler(messages interfaces.MessageStore, dispatch DispatchFunc) *BulkRetryHandler {
	return &BulkRetryHandler{messages: messages, dispatch: dispatch, log: logger.New("command.bulk_retry")}
}

func (h *BulkRetryHandler) Handle(ctx context.Context, cmd cqrs.Command) error {
	c := cmd.(*BulkRetryCommand)

	cutoff := time.Now().Add(-time.Duration(c.Hours) * time.Hour)
	msgs, err := h.messages.FindReadyForRetry(ctx, time.Now(), c.Limit)
	if err != nil {
		return fmt.Errorf("command: bulk_retry failed to list candidates: %w", err)
	}

	retried := 0
	for _, msg := range msgs {
		if msg.CreatedAt.Before(cutoff) {
			continue
		}
		if c.TargetOverride != "" {
			if err := h.messages.SetTargetURL(ctx, msg.ID, c.TargetOverride); err != nil {
				h.log.Error(fmt.Sprintf("command: bulk_retry target override failed for %s: %v", msg.ID, err))
				continue
			}
		}
		if err := h.dispatch(ctx, msg.ID); err != nil {
			h.log.Error(fmt.Sprintf("command: bulk_retry dispatch failed for %s: %v", msg.ID, err))
			continue
		}
		retried++
	}
	h.log.Info(fmt.Sprintf("bulk_retry dispatched %d of %d candidates", retried, len(msgs)))
	return nil
}
