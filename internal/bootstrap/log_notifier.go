package bootstrap

import (
	"context"

	"go-leaveflow/internal/messaging/kafka/consumer"

	"go.uber.org/zap"
)

// LogNotifier writes notifications to the structured log. It stands in until
// a real delivery channel (email, chat webhook) is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (l *LogNotifier) Notify(_ context.Context, n consumer.Notification) error {
	zap.L().Named("notifier").Info("notification",
		zap.String("action", n.Action),
		zap.String("entity_type", n.EntityType),
		zap.String("entity_id", n.EntityID),
		zap.String("actor_id", n.ActorID),
		zap.Any("changes", n.Changes),
	)
	return nil
}
