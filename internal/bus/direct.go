package bus

import "context"

// directBus skips messaging entirely and invokes handler inline from
// Publish, for single-process deployments that set direct_mode and don't
// run Kafka. Subscribe is a no-op since nothing is ever queued.
type directBus struct {
	handler Handler
}

// NewDirectBus returns a Bus whose Publish synchronously calls handler
// instead of writing to a topic. handler is normally the Dispatcher's
// Dispatch method, wired in cmd/server/main.go when direct_mode is set.
func NewDirectBus(handler Handler) Bus {
	return &directBus{handler: handler}
}

func (b *directBus) Publish(ctx context.Context, topic, key string, value []byte) error {
	return b.handler(ctx, key, value)
}

func (b *directBus) Subscribe(ctx context.Context, topic, group string, handler Handler) error {
	<-ctx.Done()
	return nil
}

func (b *directBus) Close() error {
	return nil
}
