package service

import (
	"context"

	"github.com/Skotchmaster/food_order/internal/logging"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Notifier interface {
	Notify(userID string)
}

// publish logs failures instead of returning them.
func publish(ctx context.Context, p EventPublisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("kafka_publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
