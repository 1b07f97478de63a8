package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/repository"
)

const gameColumns = "id, title, category, price, rating, downloads, image, created_at"

// GameRepository implements port.GameRepository using PostgreSQL.
type GameRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewGameRepository wires a PostgreSQL-backed game repository.
func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *GameRepository) WithTx(tx pgx.Tx) *GameRepository {
	if tx == nil {
		return r
	}
	return &GameRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new game row.
func (r *GameRepository) Create(ctx context.Context, game domain.Game) error {
	var ratingValue any
	if game.Rating != nil {
		ratingValue = *game.Rating
	}

	stmt, args, err := r.builder.Insert("gameverse.games").
		Columns("id", "title", "category", "price", "rating", "downloads", "image", "created_at").
		Values(game.ID, game.Title, game.Category, game.Price, ratingValue, game.Downloads, game.Image, game.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert game sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	return nil
}

func scanGameRow(row pgx.Row) (*domain.Game, error) {
	var (
		game   domain.Game
		rating sql.NullFloat64
		image  sql.NullString
	)

	if err := row.Scan(
		&game.ID,
		&game.Title,
		&game.Category,
		&game.Price,
		&rating,
		&game.Downloads,
		&image,
		&game.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}

	if rating.Valid {
		val := rating.Float64
		game.Rating = &val
	}
	if image.Valid {
		game.Image = image.String
	}

	return &game, nil
}

// GetByID retrieves a game by identifier.
func (r *GameRepository) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	stmt, args, err := r.builder.Select(gameColumns).
		From("gameverse.games").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select game sql: %w", err)
	}

	return scanGameRow(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByIDs returns the subset of requested games that exist, keyed by id.
func (r *GameRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Game, error) {
	result := make(map[string]domain.Game, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	stmt, args, err := r.builder.Select(gameColumns).
		From("gameverse.games").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select games sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			game   domain.Game
			rating sql.NullFloat64
			image  sql.NullString
		)

		if err := rows.Scan(
			&game.ID,
			&game.Title,
			&game.Category,
			&game.Price,
			&rating,
			&game.Downloads,
			&image,
			&game.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}

		if rating.Valid {
			val := rating.Float64
			game.Rating = &val
		}
		if image.Valid {
			game.Image = image.String
		}

		result[game.ID] = game
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}

	return result, nil
}

// List returns games with optional filtering and pagination.
func (r *GameRepository) List(ctx context.Context, filter port.GameFilter) ([]domain.Game, error) {
	query := r.builder.Select(gameColumns).
		From("gameverse.games").
		OrderBy("created_at DESC")

	if filter.TitleSearch != "" {
		query = query.Where(squirrel.ILike{"title": "%" + filter.TitleSearch + "%"})
	}

	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"category": filter.Category})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list games sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	games := make([]domain.Game, 0)
	for rows.Next() {
		var (
			game   domain.Game
			rating sql.NullFloat64
			image  sql.NullString
		)

		if err := rows.Scan(
			&game.ID,
			&game.Title,
			&game.Category,
			&game.Price,
			&rating,
			&game.Downloads,
			&image,
			&game.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}

		if rating.Valid {
			val := rating.Float64
			game.Rating = &val
		}
		if image.Valid {
			game.Image = image.String
		}

		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}

	return games, nil
}

// Count returns the total number of games.
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("gameverse.games").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count games sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan games count: %w", err)
	}

	return int(count), nil
}

// Update modifies an existing game's catalog fields.
func (r *GameRepository) Update(ctx context.Context, game domain.Game) error {
	var ratingValue any
	if game.Rating != nil {
		ratingValue = *game.Rating
	}

	stmt, args, err := r.builder.Update("gameverse.games").
		Set("title", game.Title).
		Set("category", game.Category).
		Set("price", game.Price).
		Set("rating", ratingValue).
		Set("downloads", game.Downloads).
		Set("image", game.Image).
		Where(squirrel.Eq{"id": game.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update game sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a game row.
func (r *GameRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("gameverse.games").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete game sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.GameRepository = (*GameRepository)(nil)
