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

const resetTokenColumns = "id, email, code_hash, created_at, expires_at, used"

// ResetTokenRepository implements port.ResetTokenRepository using PostgreSQL.
type ResetTokenRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewResetTokenRepository wires a PostgreSQL-backed reset token repository.
func NewResetTokenRepository(pool *pgxpool.Pool) *ResetTokenRepository {
	return &ResetTokenRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new reset token row.
func (r *ResetTokenRepository) Create(ctx context.Context, token domain.PasswordResetToken) error {
	stmt, args, err := r.builder.Insert("gameverse.password_reset_tokens").
		Columns("id", "email", "code_hash", "created_at", "expires_at", "used").
		Values(token.ID, token.Email, token.CodeHash, token.CreatedAt, token.ExpiresAt, token.Used).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert reset token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}

	return nil
}

// GetLatestUnused returns the most recent unused token matching the email
// and code hash.
func (r *ResetTokenRepository) GetLatestUnused(ctx context.Context, email, codeHash string) (*domain.PasswordResetToken, error) {
	stmt, args, err := r.builder.Select(resetTokenColumns).
		From("gameverse.password_reset_tokens").
		Where(squirrel.Eq{"email": email, "code_hash": codeHash, "used": false}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select reset token sql: %w", err)
	}

	var token domain.PasswordResetToken
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&token.ID,
		&token.Email,
		&token.CodeHash,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.Used,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan reset token: %w", err)
	}

	return &token, nil
}

// MarkUsed flags a single token as used.
func (r *ResetTokenRepository) MarkUsed(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("gameverse.password_reset_tokens").
		Set("used", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark reset token used sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// InvalidateForEmail marks all unused tokens for the email used and returns
// how many were invalidated.
func (r *ResetTokenRepository) InvalidateForEmail(ctx context.Context, email string) (int, error) {
	stmt, args, err := r.builder.Update("gameverse.password_reset_tokens").
		Set("used", true).
		Where(squirrel.Eq{"email": email, "used": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build invalidate reset tokens sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("invalidate reset tokens: %w", err)
	}

	return int(ct.RowsAffected()), nil
}

var _ port.ResetTokenRepository = (*ResetTokenRepository)(nil)
