package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/jangulo01/webhookd/internal/platform/logger"
)

// kafkaBus publishes with a sarama SyncProducer and subscribes with kafka-go
// Readers built around GroupTopics, one library per direction.
type kafkaBus struct {
	brokers  []string
	producer sarama.SyncProducer
	log      *logger.Logger

	mu      sync.Mutex
	readers []*kafkago.Reader
}

// NewKafkaBus dials a sarama sync producer against brokers. Readers are
// created lazily, one per Subscribe call.
func NewKafkaBus(brokers []string) (Bus, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Timeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("bus: failed to create kafka producer: %w", err)
	}

	log := logger.New("bus")
	log.Info(fmt.Sprintf("kafka producer connected to brokers: %v", brokers))

	return &kafkaBus{brokers: brokers, producer: producer, log: log}, nil
}

func (b *kafkaBus) Publish(ctx context.Context, topic, key string, value []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("published_at"), Value: []byte(time.Now().Format(time.RFC3339))},
		},
	}

	partition, offset, err := b.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("bus: failed to publish to %s: %w", topic, err)
	}
	b.log.Info(fmt.Sprintf("published to %s (partition %d, offset %d)", topic, partition, offset))
	return nil
}

func (b *kafkaBus) Subscribe(ctx context.Context, topic, group string, handler Handler) error {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     b.brokers,
		GroupTopics: []string{topic},
		GroupID:     group,
		MinBytes:    10e3,
		MaxBytes:    10e6,
		StartOffset: kafkago.LastOffset,
	})

	b.mu.Lock()
	b.readers = append(b.readers, reader)
	b.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.log.Error(fmt.Sprintf("bus: fetch from %s failed: %v", topic, err))
			continue
		}

		if err := handler(ctx, string(msg.Key), msg.Value); err != nil {
			b.log.Error(fmt.Sprintf("bus: handler for %s failed, leaving uncommitted: %v", topic, err))
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			b.log.Error(fmt.Sprintf("bus: commit on %s failed: %v", topic, err))
		}
	}
}

func (b *kafkaBus) Close() error {
	b.mu.Lock()
	readers := b.readers
	b.mu.Unlock()

	for _, r := range readers {
		if err := r.Close(); err != nil {
			b.log.Error(fmt.Sprintf("bus: error closing reader: %v", err))
		}
	}
	return b.producer.Close()
}
