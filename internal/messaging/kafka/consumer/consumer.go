package consumer

import (
	"context"
	"encoding/json"

	"go-leaveflow/internal/audit"
	"go-leaveflow/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Notification is a decision outcome worth telling the requester about.
type Notification struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
	Changes    map[string]any
}

// Notifier delivers notifications to whatever channel is configured. A
// returned error leaves the message uncommitted so delivery is retried.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// notifiableActions are the audit actions that trigger a notification;
// everything else on the topic is committed silently.
var notifiableActions = map[string]struct{}{
	audit.ActionLeaveApproved:   {},
	audit.ActionLeaveRejected:   {},
	audit.ActionLeaveOverridden: {},
	audit.ActionBalanceUpdated:  {},
}

func ConsumeAuditEvents(
	ctx context.Context,
	reader *kafkago.Reader,
	notifier Notifier,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.audit_events")
	log.Info("audit event consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("audit event consumer stopped")
				return
			}
			log.Error("fetch audit event message failed", zap.Error(err))
			continue
		}

		var event events.AuditRecordedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// Malformed payloads are dropped; redelivery cannot fix them.
			log.Error("decode audit event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if _, ok := notifiableActions[event.Action]; ok {
			err := notifier.Notify(ctx, Notification{
				Action:     event.Action,
				EntityType: event.EntityType,
				EntityID:   event.EntityID,
				ActorID:    event.ActorID,
				Changes:    event.Changes,
			})
			if err != nil {
				log.Error("deliver notification failed",
					zap.String("action", event.Action),
					zap.String("entity_id", event.EntityID),
					zap.Error(err),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit audit event message failed", zap.Error(err))
			continue
		}
	}
}
