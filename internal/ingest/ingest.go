// Package ingest implements Receive: the cheap, I/O-to-destination-free
// entry point that turns a validated (webhook_name, payload, client_info)
// tuple into a durably persisted, signed PENDING Message.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jangulo01/webhookd/internal/bus"
	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/platform/logger"
	"github.com/jangulo01/webhookd/internal/repository/interfaces"
	"github.com/jangulo01/webhookd/internal/signer"
)

// MaxPayloadBytes bounds the estimated JSON-encoded size of an ingested
// payload.
const MaxPayloadBytes = 1 << 20 // 1 MiB

// ClientInfo carries the caller-supplied overrides and headers that
// accompany a raw payload. TargetURL, if set, overrides the config's
// target_url for this one message only.
type ClientInfo struct {
	TargetURL *string
	Headers   map[string]string
}

// Result is what Receive hands back to the caller.
type Result struct {
	ID     string
	Status domain.MessageStatus
}

type Ingest struct {
	configs  interfaces.ConfigStore
	messages interfaces.MessageStore
	bus      bus.Bus
	direct   bool
	log      *logger.Logger
}

func New(configs interfaces.ConfigStore, messages interfaces.MessageStore, b bus.Bus, directMode bool) *Ingest {
	return &Ingest{configs: configs, messages: messages, bus: b, direct: directMode, log: logger.New("ingest")}
}

// Receive loads the config, canonicalizes and signs the payload, persists a
// PENDING message, and hands it to the bus (or dispatches it inline in
// direct mode).
func (i *Ingest) Receive(ctx context.Context, webhookName string, payloadObj interface{}, client ClientInfo) (*Result, error) {
	cfg, err := i.configs.GetActiveByName(ctx, webhookName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, webhookName)
	}

	canonical, err := canonicalize(payloadObj)
	if err != nil {
		return nil, fmt.Errorf("%w: payload not serializable: %v", domain.ErrPayloadRejected, err)
	}
	if len(canonical) == 0 || len(canonical) > MaxPayloadBytes {
		return nil, fmt.Errorf("%w", domain.ErrPayloadRejected)
	}

	signature := signer.Sign(cfg.Secret, canonical)

	targetURL := cfg.TargetURL
	if client.TargetURL != nil && *client.TargetURL != "" {
		targetURL = *client.TargetURL
	}

	headers := mergeHeaders(cfg.Headers, client.Headers)

	msg := &domain.Message{
		ID:              uuid.New().String(),
		WebhookConfigID: cfg.ID,
		Payload:         canonical,
		TargetURL:       targetURL,
		Signature:       signature,
		Headers:         headers,
		Status:          domain.StatusPending,
		RetryCount:      0,
	}

	if err := i.messages.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("ingest: failed to persist message: %w", err)
	}

	// In direct mode the bus is a directBus whose Publish synchronously
	// invokes the Dispatcher in this goroutine; otherwise Publish just
	// hands the id to the broker for a worker to pick up later.
	if err := i.bus.Publish(ctx, bus.TopicEvents, msg.ID, []byte(msg.ID)); err != nil {
		i.log.Error(fmt.Sprintf("ingest: publish failed for message %s, leaving PENDING for scheduler pickup: %v", msg.ID, err))
	}

	result := &Result{ID: msg.ID, Status: msg.Status}
	if i.direct {
		delivered, err := i.messages.GetByID(ctx, msg.ID)
		if err == nil {
			result.Status = delivered.Status
		}
	}
	return result, nil
}

// mergeHeaders overlays request headers on top of config headers, request
// headers winning on key conflict.
func mergeHeaders(configHeaders, requestHeaders map[string]string) map[string]string {
	merged := make(map[string]string, len(configHeaders)+len(requestHeaders))
	for k, v := range configHeaders {
		merged[k] = v
	}
	for k, v := range requestHeaders {
		merged[k] = v
	}
	return merged
}

// DecodePayload is a convenience for HTTP handlers: it decodes a raw JSON
// request body into the interface{} shape Receive expects, preserving
// object key order irrelevance since canonicalize re-sorts regardless.
func DecodePayload(raw []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", domain.ErrPayloadRejected, err)
	}
	return v, nil
}
