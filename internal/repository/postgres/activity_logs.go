package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
)

// ActivityLogRepository implements port.ActivityLogRepository using
// PostgreSQL. The audit trail is append-only; no update or delete is exposed.
type ActivityLogRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewActivityLogRepository wires a PostgreSQL-backed activity log repository.
func NewActivityLogRepository(pool *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append inserts an audit record.
func (r *ActivityLogRepository) Append(ctx context.Context, entry domain.ActivityLog) error {
	var detailsValue any
	if entry.Details != nil && *entry.Details != "" {
		detailsValue = *entry.Details
	}

	stmt, args, err := r.builder.Insert("gameverse.activity_logs").
		Columns("id", "admin_id", "action", "target_type", "target_id", "details", "created_at").
		Values(entry.ID, entry.AdminID, entry.Action, entry.TargetType, entry.TargetID, detailsValue, entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert activity log sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}

	return nil
}

// ListRecent returns the newest audit records up to limit.
func (r *ActivityLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	query := r.builder.Select("id", "admin_id", "action", "target_type", "target_id", "details", "created_at").
		From("gameverse.activity_logs").
		OrderBy("created_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list activity logs sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity logs: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.ActivityLog, 0)
	for rows.Next() {
		var (
			entry   domain.ActivityLog
			details sql.NullString
		)

		if err := rows.Scan(
			&entry.ID,
			&entry.AdminID,
			&entry.Action,
			&entry.TargetType,
			&entry.TargetID,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan activity log: %w", err)
		}

		if details.Valid {
			val := details.String
			entry.Details = &val
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity logs: %w", err)
	}

	return entries, nil
}

var _ port.ActivityLogRepository = (*ActivityLogRepository)(nil)
