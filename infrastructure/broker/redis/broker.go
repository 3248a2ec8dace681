// ABOUTME: ChangeBroker on Redis Pub/Sub so several API instances share change notifications
// ABOUTME: Each user has one channel: <prefix>articles:<userID>

package redis

import (
	"context"
	"fmt"
	"sync"

	"highlights-app-api/core/interfaces"
	"github.com/redis/go-redis/v9"
)

// Broker implements interfaces.ChangeBroker with Redis Pub/Sub
type Broker struct {
	client *redis.Client
	prefix string
	logger interfaces.Logger
}

// NewBroker wraps client. logger may be nil.
func NewBroker(client *redis.Client, prefix string, logger interfaces.Logger) *Broker {
	return &Broker{client: client, prefix: prefix, logger: logger}
}

// Channel returns the Pub/Sub channel name for userID
func (b *Broker) Channel(userID string) string {
	return b.prefix + "articles:" + userID
}

// Publish announces that userID's articles changed
func (b *Broker) Publish(ctx context.Context, userID string) error {
	if err := b.client.Publish(ctx, b.Channel(userID), "changed").Err(); err != nil {
		return fmt.Errorf("failed to publish change for %s: %w", userID, err)
	}
	return nil
}

// Subscribe listens on userID's channel until cancel is called or ctx ends.
// It returns once Redis has confirmed the subscription.
func (b *Broker) Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error) {
	pubsub := b.client.Subscribe(ctx, b.Channel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", b.Channel(userID), err)
	}

	out := make(chan struct{}, 1)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if err := pubsub.Close(); err != nil && b.logger != nil {
				b.logger.Warn("Failed to close subscription", map[string]interface{}{
					"user_id": userID,
					"error":   err.Error(),
				})
			}
		})
	}

	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case <-ctx.Done():
				cancel()
				return
			case <-done:
				return
			}
		}
	}()

	return out, cancel, nil
}
