package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// BackoffStrategy names the pure retry-delay function (internal/backoff)
// applies for a config.
type BackoffStrategy string

const (
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
	BackoffFixed       BackoffStrategy = "fixed"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)

// WebhookConfig is the immutable-per-message snapshot Ingest reads by name.
// Mutation is only ever done through the admin CRUD commands
// (internal/command), never by the delivery pipeline.
type WebhookConfig struct {
	ID                string
	Name              string
	TargetURL         string
	Secret            string
	MaxRetries        int
	BackoffStrategy   BackoffStrategy
	InitialIntervalS  int
	BackoffFactor     float64
	MaxIntervalS      int
	MaxAgeS           int
	Headers           map[string]string
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate enforces the field bounds a WebhookConfig must satisfy.
func (c *WebhookConfig) Validate() error {
	if !namePattern.MatchString(c.Name) {
		return fmt.Errorf("%w: name must be 3-50 chars of [A-Za-z0-9_-]", ErrInvalidConfig)
	}
	u, err := url.Parse(c.TargetURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: target_url must be an absolute http(s) URL", ErrInvalidConfig)
	}
	if len(c.Secret) < 8 {
		return fmt.Errorf("%w: secret must be at least 8 characters", ErrInvalidConfig)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("%w: max_retries must be in 0..10", ErrInvalidConfig)
	}
	switch c.BackoffStrategy {
	case BackoffLinear, BackoffExponential, BackoffFixed:
	default:
		return fmt.Errorf("%w: unknown backoff_strategy %q", ErrInvalidConfig, c.BackoffStrategy)
	}
	if c.InitialIntervalS < 5 {
		return fmt.Errorf("%w: initial_interval_s must be >= 5", ErrInvalidConfig)
	}
	if c.BackoffFactor < 1.0 || c.BackoffFactor > 5.0 {
		return fmt.Errorf("%w: backoff_factor must be in 1.0..5.0", ErrInvalidConfig)
	}
	if c.MaxIntervalS < 60 {
		return fmt.Errorf("%w: max_interval_s must be >= 60", ErrInvalidConfig)
	}
	if c.MaxAgeS < 3600 {
		return fmt.Errorf("%w: max_age_s must be >= 3600", ErrInvalidConfig)
	}
	return nil
}
