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

const adminColumns = "id, name, email, password_hash, created_at"

// AdminRepository implements port.AdminRepository using PostgreSQL.
type AdminRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAdminRepository wires a PostgreSQL-backed admin repository.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new admin row.
func (r *AdminRepository) Create(ctx context.Context, admin domain.Admin) error {
	stmt, args, err := r.builder.Insert("gameverse.admins").
		Columns("id", "name", "email", "password_hash", "created_at").
		Values(admin.ID, admin.Name, admin.Email, admin.PasswordHash, admin.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert admin sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}

	return nil
}

func scanAdmin(row pgx.Row) (*domain.Admin, error) {
	var admin domain.Admin
	if err := row.Scan(
		&admin.ID,
		&admin.Name,
		&admin.Email,
		&admin.PasswordHash,
		&admin.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan admin: %w", err)
	}
	return &admin, nil
}

// GetByID retrieves an admin by identifier.
func (r *AdminRepository) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	stmt, args, err := r.builder.Select(adminColumns).
		From("gameverse.admins").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select admin sql: %w", err)
	}

	return scanAdmin(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByEmail retrieves an admin by email address.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	stmt, args, err := r.builder.Select(adminColumns).
		From("gameverse.admins").
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select admin by email sql: %w", err)
	}

	return scanAdmin(r.exec.QueryRow(ctx, stmt, args...))
}

var _ port.AdminRepository = (*AdminRepository)(nil)
