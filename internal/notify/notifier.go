// Package notify delivers session lifecycle events to the presentation
// layer. Delivery is fire-and-forget: a failed notification is logged and
// never rolls back the state change that produced it.
package notify

import (
	"context"
	"encoding/json"

	"civdraft/internal/domain"
	"civdraft/pkg/redis"

	"go.uber.org/zap"
)

// Notifier receives session lifecycle events.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event)
}

// LogNotifier writes events to the structured log. It is the default sink
// when no Redis is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the event.
func (n *LogNotifier) Notify(ctx context.Context, event domain.Event) {
	n.logger.Info("session event",
		zap.String("event_type", string(event.Type)),
		zap.String("session_id", event.SessionID),
		zap.String("from_phase", string(event.FromPhase)),
		zap.String("to_phase", string(event.ToPhase)),
		zap.String("reason", event.Reason))
}

// RedisNotifier publishes events as JSON on the draft events channel for
// presentation consumers (bot shards, web frontends).
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier creates a pub/sub-backed notifier.
func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

// Notify publishes the event; failures are logged and swallowed.
func (n *RedisNotifier) Notify(ctx context.Context, event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("failed to encode session event", zap.Error(err))
		return
	}
	channel := n.client.KeyBuilder.ChannelEvents()
	if err := n.client.Publish(ctx, channel, payload); err != nil {
		n.logger.Warn("failed to publish session event",
			zap.String("event_type", string(event.Type)),
			zap.String("session_id", event.SessionID),
			zap.Error(err))
	}
}

// Fanout delivers every event to each of the wrapped notifiers in order.
type Fanout []Notifier

// Notify forwards the event to every sink.
func (f Fanout) Notify(ctx context.Context, event domain.Event) {
	for _, n := range f {
		n.Notify(ctx, event)
	}
}
