package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const correlationIDMetadataKey = "correlation_id"

// EventBus publishes JSON-encoded payloads to named topics.
type EventBus interface {
	Publish(ctx context.Context, topic string, payload any) error
	Close() error
}

type watermillEventBus struct {
	publisher message.Publisher
}

// New wraps a watermill publisher in the EventBus interface.
func New(publisher message.Publisher) EventBus {
	return &watermillEventBus{publisher: publisher}
}

// NewEventBus connects to NATS and returns a ready EventBus.
func NewEventBus(natsURL string, logger *slog.Logger) (EventBus, error) {
	publisher, err := NewPublisher(natsURL, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, err
	}
	return New(publisher), nil
}

func (b *watermillEventBus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for topic %s: %w", topic, err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.SetContext(ctx)
	if id, ok := ctx.Value(correlationCtxKey{}).(string); ok {
		msg.Metadata.Set(correlationIDMetadataKey, id)
	}

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

func (b *watermillEventBus) Close() error {
	return b.publisher.Close()
}

type correlationCtxKey struct{}

// WithCorrelationID tags outgoing messages published with this context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationCtxKey{}, id)
}
