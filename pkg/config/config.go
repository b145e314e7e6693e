// Package config loads webhookd's service-level configuration, layering
// scheduler/cleanup/sender/signing settings on top of the platform's shared
// database/server/redis config blocks.
package config

import (
	platformConfig "github.com/jangulo01/webhookd/internal/platform/config"
)

type KafkaConfig struct {
	Brokers []string
	GroupID string
}

type RetrySchedulerConfig struct {
	IntervalMs      int
	BatchSize       int
	ZombieTimeoutS  int
}

type CleanupConfig struct {
	Enabled       bool
	IntervalHours int
	RetentionDays int
}

type HTTPClientConfig struct {
	ConnectTimeoutMs int
	ReadTimeoutMs    int
}

type HMACConfig struct {
	HeaderName string
}

type ResponseConfig struct {
	MaxCaptureBytes int
}

type Config struct {
	Environment string
	Port        string

	Database platformConfig.DatabaseConfig
	Server   platformConfig.ServerConfig
	Redis    platformConfig.RedisConfig
	Kafka    KafkaConfig

	DirectMode bool

	RetryScheduler RetrySchedulerConfig
	Cleanup        CleanupConfig
	HTTPClient     HTTPClientConfig
	HMAC           HMACConfig
	Response       ResponseConfig
}

// Load reads every setting from the environment, falling back to sensible
// defaults for each.
func Load() *Config {
	return &Config{
		Environment: platformConfig.GetEnv("ENVIRONMENT", "development"),
		Port:        platformConfig.GetEnv("PORT", "8080"),

		Database: platformConfig.LoadDatabaseConfig(),
		Server:   platformConfig.LoadServerConfig(),
		Redis:    platformConfig.LoadRedisConfig(),

		Kafka: KafkaConfig{
			Brokers: platformConfig.GetEnvAsSlice("KAFKA_BROKERS", "localhost:19092"),
			GroupID: platformConfig.GetEnv("KAFKA_GROUP_ID", "webhookd"),
		},

		DirectMode: platformConfig.GetEnvAsBool("DIRECT_MODE", false),

		RetryScheduler: RetrySchedulerConfig{
			IntervalMs:     platformConfig.GetEnvAsInt("RETRY_SCHEDULER_INTERVAL_MS", 5000),
			BatchSize:      platformConfig.GetEnvAsInt("RETRY_SCHEDULER_BATCH_SIZE", 100),
			ZombieTimeoutS: platformConfig.GetEnvAsInt("ZOMBIE_TIMEOUT_S", 300),
		},

		Cleanup: CleanupConfig{
			Enabled:       platformConfig.GetEnvAsBool("CLEANUP_ENABLED", true),
			IntervalHours: platformConfig.GetEnvAsInt("CLEANUP_INTERVAL_HOURS", 1),
			RetentionDays: platformConfig.GetEnvAsInt("CLEANUP_RETENTION_DAYS", 30),
		},

		HTTPClient: HTTPClientConfig{
			ConnectTimeoutMs: platformConfig.GetEnvAsInt("HTTP_CONNECT_TIMEOUT_MS", 10000),
			ReadTimeoutMs:    platformConfig.GetEnvAsInt("HTTP_READ_TIMEOUT_MS", 30000),
		},

		HMAC: HMACConfig{
			HeaderName: platformConfig.GetEnv("HMAC_HEADER_NAME", "X-Webhook-Signature"),
		},

		Response: ResponseConfig{
			MaxCaptureBytes: platformConfig.GetEnvAsInt("RESPONSE_MAX_CAPTURE_BYTES", 4096),
		},
	}
}
