package command

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/ingest"
	"github.com/jangulo01/webhookd/internal/platform/cqrs"
	"github.com/jangulo01/webhookd/internal/platform/logger"
	"github.com/jangulo01/webhookd/internal/repository/interfaces"
)

// CreateWebhookConfigCommand creates a new named destination. Config CRUD
// is a supplemented feature: the core ingestion/delivery path only ever
// reads configs by name, but a complete service needs somewhere to create
// them from.
type CreateWebhookConfigCommand struct {
	cqrs.BaseCommand
	Name             string            `json:"name"`
	TargetURL        string            `json:"target_url"`
	Secret           string            `json:"secret"`
	MaxRetries       int               `json:"max_retries"`
	BackoffStrategy  string            `json:"backoff_strategy"`
	InitialIntervalS int               `json:"initial_interval_s"`
	BackoffFactor    float64           `json:"backoff_factor"`
	MaxIntervalS     int               `json:"max_interval_s"`
	MaxAgeS          int               `json:"max_age_s"`
	Headers          map[string]string `json:"headers"`
}

func (c *CreateWebhookConfigCommand) CommandName() string { return "create_webhook_config" }
func (c *CreateWebhookConfigCommand) Validate() error {
	if c.Name == "" {
		return errors.New("webhook config name is required")
	}
	return nil
}

type CreateWebhookConfigHandler struct {
	configs interfaces.ConfigStore
	log     *logger.Logger
}

func NewCreateWebhookConfigHandler(configs interfaces.ConfigStore) *CreateWebhookConfigHandler {
	return &CreateWebhookConfigHandler{configs: configs, log: logger.New("command.create_webhook_config")}
}

func (h *CreateWebhookConfigHandler) Handle(ctx context.Context, cmd cqrs.Command) error {
	c := cmd.(*CreateWebhookConfigCommand)

	if existing, _ := h.configs.GetActiveByName(ctx, c.Name); existing != nil {
		return fmt.Errorf("%w: %s", domain.ErrConfigExists, c.Name)
	}

	cfg := &domain.WebhookConfig{
		ID:               uuid.New().String(),
		Name:             c.Name,
		TargetURL:        c.TargetURL,
		Secret:           c.Secret,
		MaxRetries:       c.MaxRetries,
		BackoffStrategy:  domain.BackoffStrategy(c.BackoffStrategy),
		InitialIntervalS: c.InitialIntervalS,
		BackoffFactor:    c.BackoffFactor,
		MaxIntervalS:     c.MaxIntervalS,
		MaxAgeS:          c.MaxAgeS,
		Headers:          c.Headers,
		Active:           true,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := h.configs.Create(ctx, cfg); err != nil {
		return fmt.Errorf("command: failed to create webhook config %s: %w", c.Name, err)
	}
	h.log.Info("created webhook config " + c.Name)
	return nil
}

// UpdateWebhookConfigCommand patches the mutable fields of an existing
// config. Pointer fields distinguish "not supplied" from "set to zero
// value" for a partial update.
type UpdateWebhookConfigCommand struct {
	cqrs.BaseCommand
	TargetURL        *string            `json:"target_url"`
	MaxRetries       *int               `json:"max_retries"`
	BackoffStrategy  *string            `json:"backoff_strategy"`
	InitialIntervalS *int               `json:"initial_interval_s"`
	BackoffFactor    *float64           `json:"backoff_factor"`
	MaxIntervalS     *int               `json:"max_interval_s"`
	MaxAgeS          *int               `json:"max_age_s"`
	Headers          *map[string]string `json:"headers"`
}

func (c *UpdateWebhookConfigCommand) CommandName() string { return "update_webhook_config" }
func (c *UpdateWebhookConfigCommand) Validate() error {
	if c.AggregateID == "" {
		return errors.New("webhook config id is required")
	}
	return nil
}

type UpdateWebhookConfigHandler struct {
	configs interfaces.ConfigStore
	log     *logger.Logger
}

func NewUpdateWebhookConfigHandler(configs interfaces.ConfigStore) *UpdateWebhookConfigHandler {
	return &UpdateWebhookConfigHandler{configs: configs, log: logger.New("command.update_webhook_config")}
}

func (h *UpdateWebhookConfigHandler) Handle(ctx context.Context, cmd cqrs.Command) error {
	c := cmd.(*UpdateWebhookConfigCommand)

	cfg, err := h.configs.GetByID(ctx, c.AggregateID)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrConfigNotFound, c.AggregateID)
	}

	if c.TargetURL != nil {
		cfg.TargetURL = *c.TargetURL
	}
	if c.MaxRetries != nil {
		cfg.MaxRetries = *c.MaxRetries
	}
	if c.BackoffStrategy != nil {
		cfg.BackoffStrategy = domain.BackoffStrategy(*c.BackoffStrategy)
	}
	if c.InitialIntervalS != nil {
		cfg.InitialIntervalS = *c.InitialIntervalS
	}
	if c.BackoffFactor != nil {
		cfg.BackoffFactor = *c.BackoffFactor
	}
	if c.MaxIntervalS != nil {
		cfg.MaxIntervalS = *c.MaxIntervalS
	}
	if c.MaxAgeS != nil {
		cfg.MaxAgeS = *c.MaxAgeS
	}
	if c.Headers != nil {
		cfg.Headers = *c.Headers
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := h.configs.Update(ctx, cfg); err != nil {
		return fmt.Errorf("command: failed to update webhook config %s: %w", c.AggregateID, err)
	}
	h.log.Info("updated webhook config " + c.AggregateID)
	return nil
}

// ToggleWebhookConfigCommand flips active without touching anything else.
type ToggleWebhookConfigCommand struct {
	cqrs.BaseCommand
	Active bool `json:"active"`
}

func (c *ToggleWebhookConfigCommand) CommandName() string { return "toggle_webhook_config" }
func (c *ToggleWebhookConfigCommand) Validate() error {
	if c.AggregateID == "" {
		return errors.New("webhook config id is required")
	}
	return nil
}

type ToggleWebhookConfigHandler struct {
	configs interfaces.ConfigStore
	log     *logger.Logger
}

func NewToggleWebhookConfigHandler(configs interfaces.ConfigStore) *ToggleWebhookConfigHandler {
	return &ToggleWebhookConfigHandler{configs: configs, log: logger.New("command.toggle_webhook_config")}
}

func (h *ToggleWebhookConfigHandler) Handle(ctx context.Context, cmd cqrs.Command) error {
	c := cmd.(*ToggleWebhookConfigCommand)

	cfg, err := h.configs.GetByID(ctx, c.AggregateID)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrConfigNotFound, c.AggregateID)
	}
	cfg.Active = c.Active
	if err := h.configs.Update(ctx, cfg); err != nil {
		return fmt.Errorf("command: failed to toggle webhook config %s: %w", c.AggregateID, err)
	}
	h.log.Info(fmt.Sprintf("set webhook config %s active=%v", c.AggregateID, c.Active))
	return nil
}

// RegenerateSecretCommand replaces a config's signing secret with a fresh
// random value, invalidating every signature computed under the old one.
type RegenerateSecretCommand struct {
	cqrs.BaseCommand
}

func (c *RegenerateSecretCommand) CommandName() string { return "regenerate_secret" }
func (c *RegenerateSecretCommand) Validate() error {
	if c.AggregateID == "" {
		return errors.New("webhook config id is required")
	}
	return nil
}

type RegenerateSecretHandler struct {
	configs interfaces.ConfigStore
	log     *logger.Logger
}

func NewRegenerateSecretHandler(configs interfaces.ConfigStore) *RegenerateSecretHandler {
	return &RegenerateSecretHandler{configs: configs, log: logger.New("command.regenerate_secret")}
}

func (h *RegenerateSecretHandler) Handle(ctx context.Context, cmd cqrs.Command) error {
	c := cmd.(*RegenerateSecretCommand)

	cfg, err := h.configs.GetByID(ctx, c.AggregateID)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrConfigNotFound, c.AggregateID)
	}

	secret, err := randomSecret(32)
	if err != nil {
		return fmt.Errorf("command: failed to generate secret: %w", err)
	}
	cfg.Secret = secret

	if err := h.configs.Update(ctx, cfg); err != nil {
		return fmt.Errorf("command: failed to regenerate secret for %s: %w", c.AggregateID, err)
	}
	h.log.Info("regenerated secret for webhook config " + c.AggregateID)
	return nil
}

func randomSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// SendTestEventCommand pushes a synthetic event through the normal
// Ingest->Dispatcher path for a config, so an operator can confirm a
// destination is reachable without waiting for real traffic.
type SendTestEventCommand struct {
	cqrs.BaseCommand
}

func (c *SendTestEventCommand) CommandName() string { return "send_test_event" }
func (c *SendTestEventCommand) Validate() error {
	if c.AggregateID == "" {
		return errors.New("webhook config id is required")
	}
	return nil
}

type SendTestEventHandler struct {
	configs interfaces.ConfigStore
	ingest  *ingest.Ingest
	log     *logger.Logger
}

func NewSendTestEventHandler(configs interfaces.ConfigStore, ing *ingest.Ingest) *SendTestEventHandler {
	return &SendTestEventHandler{configs: configs, ingest: ing, log: logger.New("command.send_test_event")}
}

func (h *SendTestEventHandler) Handle(ctx context.Context, cmd cqrs.Command) error {
	c := cmd.(*SendTestEventCommand)

	cfg, err := h.configs.GetByID(ctx, c.AggregateID)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrConfigNotFound, c.AggregateID)
	}

	payload := map[string]interface{}{
		"event":      "test.webhook",
		"webhook_id": cfg.ID,
		"message":    "this is a test webhook delivery",
		"sent_at":    time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := h.ingest.Receive(ctx, cfg.Name, payload, ingest.ClientInfo{}); err != nil {
		return fmt.Errorf("command: failed to send test event for %s: %w", c.AggregateID, err)
	}
	h.log.Info("sent test event for webhook config " + c.AggregateID)
	return nil
}
