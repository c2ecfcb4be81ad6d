package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"nautia-api/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Broker fans chat messages out to subscribed clients through redis
// pub/sub. Every message insert publishes to the session's channel; the SSE
// endpoint subscribes and re-renders the widget. This is the reactive layer:
// subscribers see new messages without polling.
type Broker interface {
	Publish(ctx context.Context, message *domain.ChatMessage) error
	Subscribe(ctx context.Context, sessionID uuid.UUID) (<-chan *domain.ChatMessage, func())
}

type redisBroker struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisBroker creates a Broker backed by redis pub/sub.
func NewRedisBroker(client *redis.Client, logger *zap.Logger) Broker {
	return &redisBroker{client: client, logger: logger}
}

func channelFor(sessionID uuid.UUID) string {
	return fmt.Sprintf("chat:session:%s", sessionID)
}

// Publish sends a message to the session's channel. Delivery is best-effort
// fan-out; the message is already durably stored before this is called.
func (b *redisBroker) Publish(ctx context.Context, message *domain.ChatMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to encode chat message: %w", err)
	}

	if err := b.client.Publish(ctx, channelFor(message.SessionID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish chat message: %w", err)
	}

	return nil
}

// Subscribe returns a channel of messages for one session. The returned
// cancel function must be called when the subscriber disconnects.
func (b *redisBroker) Subscribe(ctx context.Context, sessionID uuid.UUID) (<-chan *domain.ChatMessage, func()) {
	pubsub := b.client.Subscribe(ctx, channelFor(sessionID))
	out := make(chan *domain.ChatMessage, 16)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			message := &domain.ChatMessage{}
			if err := json.Unmarshal([]byte(msg.Payload), message); err != nil {
				b.logger.Warn("Dropping malformed chat message payload",
					zap.String("session_id", sessionID.String()),
					zap.Error(err),
				)
				continue
			}
			select {
			case out <- message:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		if err := pubsub.Close(); err != nil {
			b.logger.Debug("Failed to close pubsub subscription", zap.Error(err))
		}
	}

	return out, cancel
}
