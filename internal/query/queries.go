// Package query implements the read-side admin façade operations:
// get_message, list_attempts, health, list_webhook_configs.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/platform/cqrs"
	"github.com/jangulo01/webhookd/internal/repository/interfaces"
)

type GetMessageQuery struct {
	cqrs.BaseQuery
	ID string
}

func (q *GetMessageQuery) QueryName() string { return "get_message" }

type GetMessageHandler struct {
	messages interfaces.MessageStore
}

func NewGetMessageHandler(messages interfaces.MessageStore) *GetMessageHandler {
	return &GetMessageHandler{messages: messages}
}

func (h *GetMessageHandler) Handle(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(*GetMessageQuery)
	if q.ID == "" {
		return nil, errors.New("message id is required")
	}
	msg, err := h.messages.GetByID(ctx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMessageNotFound, q.ID)
	}
	return msg, nil
}

type ListAttemptsQuery struct {
	cqrs.BaseQuery
	MessageID string
}

func (q *ListAttemptsQuery) QueryName() string { return "list_attempts" }

type ListAttemptsHandler struct {
	messages interfaces.MessageStore
}

func NewListAttemptsHandler(messages interfaces.MessageStore) *ListAttemptsHandler {
	return &ListAttemptsHandler{messages: messages}
}

func (h *ListAttemptsHandler) Handle(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(*ListAttemptsQuery)
	if q.MessageID == "" {
		return nil, errors.New("message id is required")
	}
	return h.messages.GetAttempts(ctx, q.MessageID)
}

type HealthQuery struct {
	cqrs.BaseQuery
	ConfigID string
}

func (q *HealthQuery) QueryName() string { return "health" }

type HealthHandler struct {
	health interfaces.HealthStore
}

func NewHealthHandler(health interfaces.HealthStore) *HealthHandler {
	return &HealthHandler{health: health}
}

func (h *HealthHandler) Handle(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(*HealthQuery)
	if q.ConfigID == "" {
		return nil, errors.New("webhook config id is required")
	}
	stats, err := h.health.GetByConfigID(ctx, q.ConfigID)
	if err != nil {
		return &domain.WebhookHealthStats{WebhookConfigID: q.ConfigID}, nil
	}
	return stats, nil
}

type ListWebhookConfigsQuery struct {
	cqrs.BaseQuery
	Limit  int
	Offset int
}

func (q *ListWebhookConfigsQuery) QueryName() string { return "list_webhook_configs" }

type ListWebhookConfigsResult struct {
	Configs []*domain.WebhookConfig `json:"configs"`
	Total   int64                   `json:"total"`
}

type ListWebhookConfigsHandler struct {
	configs interfaces.ConfigStore
}

func NewListWebhookConfigsHandler(configs interfaces.ConfigStore) *ListWebhookConfigsHandler {
	return &ListWebhookConfigsHandler{configs: configs}
}

func (h *ListWebhookConfigsHandler) Handle(ctx context.Context, query cqrs.Query) (interface{}, error) {
	q := query.(*ListWebhookConfigsQuery)
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	configs, total, err := h.configs.List(ctx, limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("query: failed to list webhook configs: %w", err)
	}
	return &ListWebhookConfigsResult{Configs: configs, Total: total}, nil
}
