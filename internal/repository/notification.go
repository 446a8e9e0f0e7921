package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

const notificationsTable = "notifications"

var notificationColumns = []string{
	"id",
	"title",
	"message",
	"type",
	"target",
	"target_spec",
	"priority",
	"is_active",
	"created_by",
	"expires_at",
	"created_at",
	"updated_at",
}

type NotificationRepository struct {
	db      *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{
		db:      db,
		builder: newBuilder(),
	}
}

func (r *NotificationRepository) Insert(ctx context.Context, ext RepoExtension, n *model.Notification) (*model.Notification, error) {
	if ext == nil {
		ext = r.db
	}

	if n.TargetSpec == nil {
		n.TargetSpec = map[string]any{}
	}

	const query = `
		INSERT INTO notifications (id, title, message, type, target, target_spec, priority, is_active, created_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at;
	`

	if err := ext.QueryRow(ctx, query,
		n.ID,
		n.Title,
		n.Message,
		n.Type,
		n.Target,
		n.TargetSpec,
		n.Priority,
		n.IsActive,
		n.CreatedBy,
		n.ExpiresAt,
	).Scan(
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return n, nil
}

func (r *NotificationRepository) SelectByID(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.Notification, error) {
	if ext == nil {
		ext = r.db
	}

	query := `SELECT ` + joinColumns(notificationColumns) + ` FROM notifications WHERE id = $1;`

	n, err := scanNotification(ext.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotificationNotFound
		}

		return nil, err
	}

	return n, nil
}

func (r *NotificationRepository) List(ctx context.Context, ext RepoExtension, filter model.NotificationFilter) ([]model.Notification, int, error) {
	if ext == nil {
		ext = r.db
	}

	where := squirrel.And{}
	if filter.Type != "" {
		where = append(where, squirrel.Eq{"type": filter.Type})
	}

	if filter.IsActive != nil {
		where = append(where, squirrel.Eq{"is_active": *filter.IsActive})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(notificationsTable).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := ext.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql, args, err := r.builder.
		Select(notificationColumns...).
		From(notificationsTable).
		Where(where).
		OrderBy("created_at DESC").
		Offset(uint64(filter.Skip)).
		Limit(uint64(filter.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := ext.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	notifications := make([]model.Notification, 0)

	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}

		notifications = append(notifications, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *NotificationRepository) Update(ctx context.Context, ext RepoExtension, n *model.Notification) (*model.Notification, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE notifications
		SET title = $1,
		    message = $2,
		    type = $3,
		    priority = $4,
		    is_active = $5,
		    expires_at = $6,
		    updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at;
	`

	if err := ext.QueryRow(ctx, query,
		n.Title,
		n.Message,
		n.Type,
		n.Priority,
		n.IsActive,
		n.ExpiresAt,
		n.ID,
	).Scan(&n.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotificationNotFound
		}

		return nil, err
	}

	return n, nil
}

// Deactivate soft-deletes a notification.
func (r *NotificationRepository) Deactivate(ctx context.Context, ext RepoExtension, id uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE notifications
		SET is_active = false,
		    updated_at = NOW()
		WHERE id = $1;
	`

	res, err := ext.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}

	return nil
}

// Stats counts all notifications, the active ones, and those created after since.
func (r *NotificationRepository) Stats(ctx context.Context, ext RepoExtension, since time.Time) (model.NotificationStats, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active = true),
		       COUNT(*) FILTER (WHERE created_at >= $1)
		FROM notifications;
	`

	var stats model.NotificationStats
	if err := ext.QueryRow(ctx, query, since).Scan(
		&stats.TotalNotifications,
		&stats.ActiveNotifications,
		&stats.RecentNotifications,
	); err != nil {
		return model.NotificationStats{}, err
	}

	return stats, nil
}

func scanNotification(row pgx.Row) (*model.Notification, error) {
	var n model.Notification

	if err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Message,
		&n.Type,
		&n.Target,
		&n.TargetSpec,
		&n.Priority,
		&n.IsActive,
		&n.CreatedBy,
		&n.ExpiresAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &n, nil
}
