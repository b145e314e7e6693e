package domain

import "testing"

func validConfig() *WebhookConfig {
	return &WebhookConfig{
		ID:               "cfg-1",
		Name:             "orders-webhook",
		TargetURL:        "https://example.com/hooks/orders",
		Secret:           "a-long-enough-secret",
		MaxRetries:       5,
		BackoffStrategy:  BackoffExponential,
		InitialIntervalS: 10,
		BackoffFactor:    2.0,
		MaxIntervalS:     3600,
		MaxAgeS:          86400,
	}
}

func TestWebhookConfig_Validate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("expected a valid config to pass, got %v", err)
	}
}

func TestWebhookConfig_Validate_BadName(t *testing.T) {
	cfg := validConfig()
	cfg.Name = "a"
	if err := cfg.Validate(); err == nil {
		t.Error("expected short name to fail validation")
	}
}

func TestWebhookConfig_Validate_NonHTTPTargetURL(t *testing.T) {
	cfg := validConfig()
	cfg.TargetURL = "ftp://example.com/hooks"
	if err := cfg.Validate(); err == nil {
		t.Error("expected non-http(s) target_url to fail validation")
	}
}

func TestWebhookConfig_Validate_RelativeTargetURL(t *testing.T) {
	cfg := validConfig()
	cfg.TargetURL = "/hooks/orders"
	if err := cfg.Validate(); err == nil {
		t.Error("expected relative target_url to fail validation")
	}
}

func TestWebhookConfig_Validate_ShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Secret = "short"
	if err := cfg.Validate(); err == nil {
		t.Error("expected secret under 8 chars to fail validation")
	}
}

func TestWebhookConfig_Validate_MaxRetriesOutOfRange(t *testing.T) {
	for _, n := range []int{-1, 11} {
		cfg := validConfig()
		cfg.MaxRetries = n
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected max_retries=%d to fail validation", n)
		}
	}
}

func TestWebhookConfig_Validate_UnknownBackoffStrategy(t *testing.T) {
	cfg := validConfig()
	cfg.BackoffStrategy = BackoffStrategy("made-up")
	if err := cfg.Validate(); err == nil {
		t.Error("expected unknown backoff_strategy to fail validation")
	}
}

func TestWebhookConfig_Validate_IntervalBounds(t *testing.T) {
	cfg := validConfig()
	cfg.InitialIntervalS = 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected initial_interval_s below 5 to fail validation")
	}

	cfg = validConfig()
	cfg.MaxIntervalS = 10
	if err := cfg.Validate(); err == nil {
		t.Error("expected max_interval_s below 60 to fail validation")
	}

	cfg = validConfig()
	cfg.MaxAgeS = 100
	if err := cfg.Validate(); err == nil {
		t.Error("expected max_age_s below 3600 to fail validation")
	}
}

func TestWebhookConfig_Validate_BackoffFactorBounds(t *testing.T) {
	for _, f := range []float64{0.5, 5.1} {
		cfg := validConfig()
		cfg.BackoffFactor = f
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected backoff_factor=%v to fail validation", f)
		}
	}
}
