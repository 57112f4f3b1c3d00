package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go-leaveflow/internal/events"
	"go-leaveflow/internal/messaging/kafka"
	"go-leaveflow/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry is what callers hand to the Recorder. Client info is taken from the
// request context when present, so services never plumb it through.
type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
	Changes    map[string]any
}

// Recorder persists audit entries without ever failing the caller. A lost
// audit record is logged and dropped; the business operation it describes
// has already committed.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

type recorder struct {
	db     *sql.DB
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewRecorder(db *sql.DB, outbox kafka.OutboxRepository, logger ...*zap.Logger) Recorder {
	l := zap.L().Named("audit.recorder")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.recorder")
	}
	return &recorder{db: db, outbox: outbox, logger: l}
}

func (r *recorder) Record(ctx context.Context, e Entry) {
	client := contextutil.GetClientInfo(ctx)
	requestID := contextutil.GetRequestID(ctx)

	log := AuditLog{
		ID:         uuid.New(),
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		ActorID:    e.ActorID,
		Changes:    e.Changes,
		IPAddress:  client.IPAddress,
		UserAgent:  client.UserAgent,
	}

	// Detach from the request lifecycle: the caller's response must not wait
	// on audit persistence, and a cancelled request must not lose the record.
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := r.persist(ctx, log, requestID); err != nil {
			r.logger.Error("audit record dropped",
				zap.String("action", log.Action),
				zap.String("entity_type", log.EntityType),
				zap.String("entity_id", log.EntityID),
				zap.Error(err),
			)
		}
	}()
}

func (r *recorder) persist(ctx context.Context, log AuditLog, requestID string) error {
	payload, err := json.Marshal(events.AuditRecordedEvent{
		EventType:  log.Action,
		AuditID:    log.ID.String(),
		Action:     log.Action,
		EntityType: log.EntityType,
		EntityID:   log.EntityID,
		ActorID:    log.ActorID,
		Changes:    log.Changes,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	repo := NewRepository(r.db).WithTx(tx)
	if err := repo.Create(ctx, log); err != nil {
		return err
	}

	if err := r.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		AggregateType: log.EntityType,
		AggregateID:   log.EntityID,
		EventType:     log.Action,
		Topic:         events.AuditRecordedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		return err
	}

	return tx.Commit()
}

// NopRecorder discards every entry. Used when the audit store is not wired,
// for example in the outbox relay worker.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) {}
