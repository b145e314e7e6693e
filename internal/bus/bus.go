// Package bus carries inbound webhook messages from Ingest to Dispatch.
// Publish and subscribe deliberately use two different client libraries:
// Subscribe reads with segmentio/kafka-go, Publish writes with IBM/sarama.
package bus

import "context"

// TopicEvents carries newly ingested messages awaiting first dispatch.
const TopicEvents = "webhook-events"

// Handler processes one message's worth of bus payload. The key is the
// message id; returning a non-nil error leaves the message uncommitted so
// it is redelivered.
type Handler func(ctx context.Context, key string, value []byte) error

// Bus is the publish/subscribe seam between Ingest and Dispatch. A direct
// mode implementation bypasses messaging and invokes the Dispatcher inline,
// for deployments that don't run Kafka.
type Bus interface {
	// Publish hands value to topic under key (the message id). Publish is
	// called synchronously from Ingest after the message is durably
	// persisted; a publish failure leaves the message PENDING for the
	// retry scheduler's FindPending sweep to pick up later.
	Publish(ctx context.Context, topic, key string, value []byte) error

	// Subscribe runs handler for every message received on topic under
	// group, blocking until ctx is cancelled. Subscribe commits offsets
	// only after handler returns nil.
	Subscribe(ctx context.Context, topic, group string, handler Handler) error

	Close() error
}
