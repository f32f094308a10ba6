package messaging

import "context"

// Broker publishes domain events to interested consumers. The API process
// only publishes; subscriptions belong to out-of-process consumers.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
