package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/repository"
)

const notificationColumns = "id, user_id, message, is_read, created_at"

// NotificationRepository implements port.NotificationRepository using PostgreSQL.
type NotificationRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewNotificationRepository wires a PostgreSQL-backed notification repository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *NotificationRepository) WithTx(tx pgx.Tx) *NotificationRepository {
	if tx == nil {
		return r
	}
	return &NotificationRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new notification row.
func (r *NotificationRepository) Create(ctx context.Context, notification domain.Notification) error {
	stmt, args, err := r.builder.Insert("gameverse.notifications").
		Columns("id", "user_id", "message", "is_read", "created_at").
		Values(notification.ID, notification.UserID, notification.Message, notification.IsRead, notification.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert notification sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// GetByID retrieves a notification by identifier.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	stmt, args, err := r.builder.Select(notificationColumns).
		From("gameverse.notifications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select notification sql: %w", err)
	}

	var notification domain.Notification
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&notification.ID,
		&notification.UserID,
		&notification.Message,
		&notification.IsRead,
		&notification.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}

	return &notification, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	stmt, args, err := r.builder.Select(notificationColumns).
		From("gameverse.notifications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list notifications sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		var notification domain.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.Message,
			&notification.IsRead,
			&notification.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flags a single notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("gameverse.notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark notification read sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// MarkAllRead flags all of a user's notifications as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	stmt, args, err := r.builder.Update("gameverse.notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark all notifications read sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}

	return nil
}

var _ port.NotificationRepository = (*NotificationRepository)(nil)
