package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

const (
	DefaultSyncEventLimit = 50
	MaxSyncEventLimit     = 200
)

const syncEventsTable = "sync_events"

var syncEventColumns = []string{
	"id",
	"entity_type",
	"entity_id",
	"action",
	"status",
	"retry_count",
	"max_retries",
	"payload",
	"response_status_code",
	"response_body",
	"error_message",
	"created_at",
	"last_attempted_at",
	"completed_at",
}

// SyncEventRepository is the durable audit log of sync attempts.
type SyncEventRepository struct {
	db      *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

func NewSyncEventRepository(db *pgxpool.Pool) *SyncEventRepository {
	return &SyncEventRepository{
		db:      db,
		builder: newBuilder(),
	}
}

// Insert stores a new event. created_at is filled from the database; rows
// created in a non-pending status are stamped as attempted.
func (r *SyncEventRepository) Insert(ctx context.Context, ext RepoExtension, event *model.SyncEvent) error {
	if ext == nil {
		ext = r.db
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	if event.Status == "" {
		event.Status = model.SyncStatusPending
	}

	payload := event.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	query := r.builder.
		Insert(syncEventsTable).
		Columns("id", "entity_type", "entity_id", "action", "status", "retry_count", "max_retries", "payload").
		Values(event.ID, event.EntityType, event.EntityID, event.Action, event.Status, event.RetryCount, event.MaxRetries, payload).
		Suffix("RETURNING created_at")

	if event.Status != model.SyncStatusPending {
		query = r.builder.
			Insert(syncEventsTable).
			Columns("id", "entity_type", "entity_id", "action", "status", "retry_count", "max_retries", "payload", "last_attempted_at").
			Values(event.ID, event.EntityType, event.EntityID, event.Action, event.Status, event.RetryCount, event.MaxRetries, payload, squirrel.Expr("NOW()")).
			Suffix("RETURNING created_at, last_attempted_at")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	row := ext.QueryRow(ctx, sql, args...)
	if event.Status != model.SyncStatusPending {
		err = row.Scan(&event.CreatedAt, &event.LastAttemptedAt)
	} else {
		err = row.Scan(&event.CreatedAt)
	}

	if err != nil {
		return err
	}

	event.Payload = payload

	return nil
}

// Update sets the status and every non-nil field of upd, stamps
// last_attempted_at, and stamps completed_at when the status becomes success.
func (r *SyncEventRepository) Update(ctx context.Context, ext RepoExtension, id uuid.UUID, upd model.SyncEventUpdate) error {
	if ext == nil {
		ext = r.db
	}

	query := r.builder.
		Update(syncEventsTable).
		Set("status", upd.Status).
		Set("last_attempted_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if upd.ResponseStatusCode != nil {
		query = query.Set("response_status_code", *upd.ResponseStatusCode)
	}

	if upd.ResponseBody != nil {
		query = query.Set("response_body", truncate(*upd.ResponseBody, model.MaxResponseBodyLength))
	}

	if upd.ErrorMessage != nil {
		query = query.Set("error_message", truncate(*upd.ErrorMessage, model.MaxErrorMessageLength))
	}

	if upd.RetryCount != nil {
		query = query.Set("retry_count", *upd.RetryCount)
	}

	if upd.Status == model.SyncStatusSuccess {
		query = query.Set("completed_at", squirrel.Expr("NOW()"))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := ext.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrSyncEventNotFound
	}

	return nil
}

// MarkSuperseded retires a failed event after a later dispatch of the same
// payload succeeded. Attempt timestamps are left untouched.
func (r *SyncEventRepository) MarkSuperseded(ctx context.Context, ext RepoExtension, id uuid.UUID, message string) error {
	if ext == nil {
		ext = r.db
	}

	sql, args, err := r.builder.
		Update(syncEventsTable).
		Set("status", model.SyncStatusSuperseded).
		Set("error_message", truncate(message, model.MaxErrorMessageLength)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := ext.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrSyncEventNotFound
	}

	return nil
}

func (r *SyncEventRepository) SelectByID(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.SyncEvent, error) {
	if ext == nil {
		ext = r.db
	}

	sql, args, err := r.builder.
		Select(syncEventColumns...).
		From(syncEventsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	event, err := scanSyncEvent(ext.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSyncEventNotFound
		}

		return nil, err
	}

	return event, nil
}

// SelectByStatus returns every event in the given status, oldest first.
func (r *SyncEventRepository) SelectByStatus(ctx context.Context, ext RepoExtension, status model.SyncStatus) ([]model.SyncEvent, error) {
	if ext == nil {
		ext = r.db
	}

	sql, args, err := r.builder.
		Select(syncEventColumns...).
		From(syncEventsTable).
		Where(squirrel.Eq{"status": status}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	return r.queryEvents(ctx, ext, sql, args)
}

// List pages events newest first. The limit is clamped to [1, MaxSyncEventLimit]
// and the returned total counts every row matching the filter.
func (r *SyncEventRepository) List(ctx context.Context, ext RepoExtension, filter model.SyncEventFilter) ([]model.SyncEvent, int, error) {
	if ext == nil {
		ext = r.db
	}

	filter.Limit = ClampSyncEventLimit(filter.Limit)
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	where := squirrel.And{}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}

	if filter.EntityType != "" {
		where = append(where, squirrel.Eq{"entity_type": filter.EntityType})
	}

	countSQL, countArgs, err := r.builder.
		Select("COUNT(*)").
		From(syncEventsTable).
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := ext.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql, args, err := r.builder.
		Select(syncEventColumns...).
		From(syncEventsTable).
		Where(where).
		OrderBy("created_at DESC").
		Offset(uint64(filter.Skip)).
		Limit(uint64(filter.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	events, err := r.queryEvents(ctx, ext, sql, args)
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// AggregateCounts returns the status counters in a single scan.
func (r *SyncEventRepository) AggregateCounts(ctx context.Context, ext RepoExtension) (model.SyncCounts, error) {
	if ext == nil {
		ext = r.db
	}

	sql, args, err := r.builder.
		Select(
			"COUNT(*)",
			"COUNT(*) FILTER (WHERE status = 'pending')",
			"COUNT(*) FILTER (WHERE status = 'failed')",
			"COUNT(*) FILTER (WHERE status = 'success')",
		).
		From(syncEventsTable).
		ToSql()
	if err != nil {
		return model.SyncCounts{}, fmt.Errorf("failed to build count query: %w", err)
	}

	var counts model.SyncCounts
	if err := ext.QueryRow(ctx, sql, args...).Scan(
		&counts.Total,
		&counts.Pending,
		&counts.Failed,
		&counts.Success,
	); err != nil {
		return model.SyncCounts{}, err
	}

	return counts, nil
}

func (r *SyncEventRepository) queryEvents(ctx context.Context, ext RepoExtension, sql string, args []any) ([]model.SyncEvent, error) {
	rows, err := ext.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	events := make([]model.SyncEvent, 0)

	for rows.Next() {
		event, err := scanSyncEvent(rows)
		if err != nil {
			return nil, err
		}

		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func scanSyncEvent(row pgx.Row) (*model.SyncEvent, error) {
	var (
		event   model.SyncEvent
		payload []byte
	)

	if err := row.Scan(
		&event.ID,
		&event.EntityType,
		&event.EntityID,
		&event.Action,
		&event.Status,
		&event.RetryCount,
		&event.MaxRetries,
		&payload,
		&event.ResponseStatusCode,
		&event.ResponseBody,
		&event.ErrorMessage,
		&event.CreatedAt,
		&event.LastAttemptedAt,
		&event.CompletedAt,
	); err != nil {
		return nil, err
	}

	event.Payload = payload

	return &event, nil
}

func ClampSyncEventLimit(limit int) int {
	switch {
	case limit < 1:
		return 1
	case limit > MaxSyncEventLimit:
		return MaxSyncEventLimit
	default:
		return limit
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
