package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/repository"
)

const defaultStoreWriteTimeout = 5 * time.Second

type EventStore interface {
	Insert(ctx context.Context, ext repository.RepoExtension, event *model.SyncEvent) error
	Update(ctx context.Context, ext repository.RepoExtension, id uuid.UUID, upd model.SyncEventUpdate) error
}

// Recorder writes sync history on a best-effort basis. Store failures are
// logged and never returned, so delivery is not gated on the audit trail.
type Recorder struct {
	l       *zap.Logger
	store   EventStore
	timeout time.Duration
}

func NewRecorder(l *zap.Logger, store EventStore, timeout time.Duration) *Recorder {
	if timeout <= 0 {
		timeout = defaultStoreWriteTimeout
	}

	return &Recorder{
		l:       l.With(zap.String("component", "sync_recorder")),
		store:   store,
		timeout: timeout,
	}
}

// Record inserts one event and returns its id. ok is false when the row
// could not be written; callers then skip every later update.
func (r *Recorder) Record(ctx context.Context, event *model.SyncEvent) (id uuid.UUID, ok bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.store.Insert(ctx, nil, event); err != nil {
		r.l.Error("Failed to record sync event",
			zap.Error(err),
			zap.String("entity_type", event.EntityType),
			zap.String("entity_id", event.EntityID),
			zap.String("action", event.Action),
			zap.String("status", string(event.Status)),
		)

		return uuid.Nil, false
	}

	return event.ID, true
}

func (r *Recorder) Update(ctx context.Context, id uuid.UUID, upd model.SyncEventUpdate) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.store.Update(ctx, nil, id, upd); err != nil {
		r.l.Error("Failed to update sync event",
			zap.Error(err),
			zap.String("event_id", id.String()),
			zap.String("status", string(upd.Status)),
		)
	}
}
