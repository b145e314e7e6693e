package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/jangulo01/webhookd/internal/bus"
	"github.com/jangulo01/webhookd/internal/command"
	"github.com/jangulo01/webhookd/internal/dispatcher"
	httphandler "github.com/jangulo01/webhookd/internal/handler/http"
	"github.com/jangulo01/webhookd/internal/health"
	"github.com/jangulo01/webhookd/internal/ingest"
	"github.com/jangulo01/webhookd/internal/platform/cqrs"
	"github.com/jangulo01/webhookd/internal/platform/database"
	"github.com/jangulo01/webhookd/internal/platform/logger"
	"github.com/jangulo01/webhookd/internal/query"
	"github.com/jangulo01/webhookd/internal/repository/entity"
	"github.com/jangulo01/webhookd/internal/repository/impl"
	"github.com/jangulo01/webhookd/internal/scheduler"
	"github.com/jangulo01/webhookd/internal/sender"
	"github.com/jangulo01/webhookd/pkg/config"
)

func main() {
	_ = godotenv.Load()

	logger.Init()
	logger.Info("Starting webhookd...")

	cfg := config.Load()
	logger.Info(fmt.Sprintf("Loaded configuration: HTTP port %s, direct_mode=%v", cfg.Port, cfg.DirectMode))

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to connect to database: %v", err))
		os.Exit(1)
	}
	logger.Info("Connected to database successfully")

	if err := db.AutoMigrate(
		&entity.WebhookConfigEntity{},
		&entity.MessageEntity{},
		&entity.DeliveryAttemptEntity{},
		&entity.HealthStatsEntity{},
	); err != nil {
		logger.Error(fmt.Sprintf("Failed to migrate database: %v", err))
		os.Exit(1)
	}
	logger.Info("Database migration completed")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	rawConfigStore := impl.NewConfigStore(db)
	configStore := impl.NewCachedConfigStore(rawConfigStore, redisClient, cfg.Redis.DefaultTTL)
	messageStore := impl.NewMessageStore(db)
	healthStore := impl.NewHealthStore(db)
	logger.Info("Stores initialized")

	healthAggregator := health.New(healthStore)

	senderCfg := sender.DefaultConfig()
	senderCfg.ConnectTimeout = time.Duration(cfg.HTTPClient.ConnectTimeoutMs) * time.Millisecond
	senderCfg.ReadTimeout = time.Duration(cfg.HTTPClient.ReadTimeoutMs) * time.Millisecond
	senderCfg.SignatureHeader = cfg.HMAC.HeaderName
	deliverySender := sender.New(senderCfg)

	dispatch := dispatcher.New(rawConfigStore, messageStore, deliverySender, healthAggregator)

	var messageBus bus.Bus
	if cfg.DirectMode {
		messageBus = bus.NewDirectBus(func(ctx context.Context, key string, value []byte) error {
			return dispatch.Dispatch(ctx, key)
		})
		logger.Info("Bus running in direct mode (no Kafka)")
	} else {
		kafkaBus, err := bus.NewKafkaBus(cfg.Kafka.Brokers)
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to create kafka bus: %v", err))
			os.Exit(1)
		}
		messageBus = kafkaBus
		logger.Info(fmt.Sprintf("Bus connected to kafka brokers: %v", cfg.Kafka.Brokers))
	}

	ing := ingest.New(configStore, messageStore, messageBus, cfg.DirectMode)

	rootCtx, cancelRoot := context.WithCancel(context.Background())

	if !cfg.DirectMode {
		go func() {
			err := messageBus.Subscribe(rootCtx, bus.TopicEvents, cfg.Kafka.GroupID, func(ctx context.Context, key string, value []byte) error {
				return dispatch.Dispatch(ctx, key)
			})
			if err != nil {
				logger.Error(fmt.Sprintf("bus subscribe loop exited: %v", err))
			}
		}()
		logger.Info("Bus subscriber started")
	}

	retryScheduler := scheduler.NewRetryScheduler(messageStore, dispatch.Dispatch, scheduler.RetryConfig{
		Interval:      time.Duration(cfg.RetryScheduler.IntervalMs) * time.Millisecond,
		BatchSize:     cfg.RetryScheduler.BatchSize,
		ZombieTimeout: time.Duration(cfg.RetryScheduler.ZombieTimeoutS) * time.Second,
	})
	retryScheduler.Start(rootCtx)

	var janitor *scheduler.Janitor
	if cfg.Cleanup.Enabled {
		janitor = scheduler.NewJanitor(messageStore, time.Duration(cfg.Cleanup.IntervalHours)*time.Hour, cfg.Cleanup.RetentionDays)
		janitor.Start(rootCtx)
	}

	go healthAggregator.Run(rootCtx, 30*time.Second)

	commandBus := cqrs.NewCommandBus()
	commandBus.RegisterHandler("cancel_message", command.NewCancelMessageHandler(messageStore))
	commandBus.RegisterHandler("retry_message", command.NewRetryMessageHandler(messageStore, dispatch.Dispatch))
	commandBus.RegisterHandler("bulk_retry", command.NewBulkRetryHandler(messageStore, dispatch.Dispatch))
	commandBus.RegisterHandler("create_webhook_config", command.NewCreateWebhookConfigHandler(rawConfigStore))
	commandBus.RegisterHandler("update_webhook_config", command.NewUpdateWebhookConfigHandler(rawConfigStore))
	commandBus.RegisterHandler("toggle_webhook_config", command.NewToggleWebhookConfigHandler(rawConfigStore))
	commandBus.RegisterHandler("regenerate_secret", command.NewRegenerateSecretHandler(rawConfigStore))
	commandBus.RegisterHandler("send_test_event", command.NewSendTestEventHandler(rawConfigStore, ing))

	queryBus := cqrs.NewQueryBus()
	queryBus.RegisterHandler("get_message", query.NewGetMessageHandler(messageStore))
	queryBus.RegisterHandler("list_attempts", query.NewListAttemptsHandler(messageStore))
	queryBus.RegisterHandler("health", query.NewHealthHandler(healthStore))
	queryBus.RegisterHandler("list_webhook_configs", query.NewListWebhookConfigsHandler(rawConfigStore))
	logger.Info("Command/query buses wired")

	httpServer := httphandler.NewServer(commandBus, queryBus, ing, db)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpServer.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(fmt.Sprintf("HTTP server starting on port %s", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(fmt.Sprintf("HTTP server failed: %v", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down webhookd...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(fmt.Sprintf("HTTP server shutdown error: %v", err))
	}

	if err := messageBus.Close(); err != nil {
		logger.Error(fmt.Sprintf("Error closing bus: %v", err))
	}

	retryScheduler.Stop()
	if janitor != nil {
		janitor.Stop()
	}
	cancelRoot()

	if err := redisClient.Close(); err != nil {
		logger.Error(fmt.Sprintf("Error closing redis client: %v", err))
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("webhookd stopped")
}
