// Package mapper converts between domain structs and GORM entities, keeping
// the storage schema (internal/repository/entity) decoupled from the
// in-memory model (internal/domain).
package mapper

import (
	"encoding/json"

	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/repository/entity"
)

func ConfigToEntity(c *domain.WebhookConfig) *entity.WebhookConfigEntity {
	headers, _ := json.Marshal(c.Headers)
	return &entity.WebhookConfigEntity{
		ID:               c.ID,
		Name:             c.Name,
		TargetURL:        c.TargetURL,
		Secret:           c.Secret,
		MaxRetries:       c.MaxRetries,
		BackoffStrategy:  string(c.BackoffStrategy),
		InitialIntervalS: c.InitialIntervalS,
		BackoffFactor:    c.BackoffFactor,
		MaxIntervalS:     c.MaxIntervalS,
		MaxAgeS:          c.MaxAgeS,
		HeadersJSON:      string(headers),
		Active:           c.Active,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func ConfigToDomain(e *entity.WebhookConfigEntity) *domain.WebhookConfig {
	var headers map[string]string
	_ = json.Unmarshal([]byte(e.HeadersJSON), &headers)
	return &domain.WebhookConfig{
		ID:               e.ID,
		Name:             e.Name,
		TargetURL:        e.TargetURL,
		Secret:           e.Secret,
		MaxRetries:       e.MaxRetries,
		BackoffStrategy:  domain.BackoffStrategy(e.BackoffStrategy),
		InitialIntervalS: e.InitialIntervalS,
		BackoffFactor:    e.BackoffFactor,
		MaxIntervalS:     e.MaxIntervalS,
		MaxAgeS:          e.MaxAgeS,
		Headers:          headers,
		Active:           e.Active,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func MessageToEntity(m *domain.Message) *entity.MessageEntity {
	headers, _ := json.Marshal(m.Headers)
	return &entity.MessageEntity{
		ID:              m.ID,
		WebhookConfigID: m.WebhookConfigID,
		Payload:         m.Payload,
		TargetURL:       m.TargetURL,
		Signature:       m.Signature,
		HeadersJSON:     string(headers),
		Status:          string(m.Status),
		RetryCount:      m.RetryCount,
		NextRetry:       m.NextRetry,
		LastError:       m.LastError,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func MessageToDomain(e *entity.MessageEntity) *domain.Message {
	var headers map[string]string
	_ = json.Unmarshal([]byte(e.HeadersJSON), &headers)
	return &domain.Message{
		ID:              e.ID,
		WebhookConfigID: e.WebhookConfigID,
		Payload:         e.Payload,
		TargetURL:       e.TargetURL,
		Signature:       e.Signature,
		Headers:         headers,
		Status:          domain.MessageStatus(e.Status),
		RetryCount:      e.RetryCount,
		NextRetry:       e.NextRetry,
		LastError:       e.LastError,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func MessagesToDomain(entities []*entity.MessageEntity) []*domain.Message {
	result := make([]*domain.Message, len(entities))
	for i, e := range entities {
		result[i] = MessageToDomain(e)
	}
	return result
}

func AttemptToEntity(a *domain.DeliveryAttempt) *entity.DeliveryAttemptEntity {
	headers, _ := json.Marshal(a.ResponseHeaders)
	return &entity.DeliveryAttemptEntity{
		ID:                  a.ID,
		MessageID:           a.MessageID,
		AttemptNumber:       a.AttemptNumber,
		Timestamp:           a.Timestamp,
		StatusCode:          a.StatusCode,
		ResponseBody:        a.ResponseBody,
		Error:               a.Error,
		RequestDurationMs:   a.RequestDurationMs,
		TargetURL:           a.TargetURL,
		ResponseHeadersJSON: string(headers),
		ProcessingNode:      a.ProcessingNode,
	}
}

func AttemptToDomain(e *entity.DeliveryAttemptEntity) *domain.DeliveryAttempt {
	var headers map[string]string
	_ = json.Unmarshal([]byte(e.ResponseHeadersJSON), &headers)
	return &domain.DeliveryAttempt{
		ID:                e.ID,
		MessageID:         e.MessageID,
		AttemptNumber:     e.AttemptNumber,
		Timestamp:         e.Timestamp,
		StatusCode:        e.StatusCode,
		ResponseBody:      e.ResponseBody,
		Error:             e.Error,
		RequestDurationMs: e.RequestDurationMs,
		TargetURL:         e.TargetURL,
		ResponseHeaders:   headers,
		ProcessingNode:    e.ProcessingNode,
	}
}

func AttemptsToDomain(entities []entity.DeliveryAttemptEntity) []*domain.DeliveryAttempt {
	result := make([]*domain.DeliveryAttempt, len(entities))
	for i := range entities {
		result[i] = AttemptToDomain(&entities[i])
	}
	return result
}

func HealthToEntity(h *domain.WebhookHealthStats) *entity.HealthStatsEntity {
	return &entity.HealthStatsEntity{
		WebhookConfigID:   h.WebhookConfigID,
		TotalSent:         h.TotalSent,
		TotalDelivered:    h.TotalDelivered,
		TotalFailed:       h.TotalFailed,
		AvgResponseTimeMs: h.AvgResponseTimeMs,
		LastSuccessTime:   h.LastSuccessTime,
		LastErrorTime:     h.LastErrorTime,
		LastError:         h.LastError,
	}
}

func HealthToDomain(e *entity.HealthStatsEntity) *domain.WebhookHealthStats {
	return &domain.WebhookHealthStats{
		WebhookConfigID:   e.WebhookConfigID,
		TotalSent:         e.TotalSent,
		TotalDelivered:    e.TotalDelivered,
		TotalFailed:       e.TotalFailed,
		AvgResponseTimeMs: e.AvgResponseTimeMs,
		LastSuccessTime:   e.LastSuccessTime,
		LastErrorTime:     e.LastErrorTime,
		LastError:         e.LastError,
	}
}
