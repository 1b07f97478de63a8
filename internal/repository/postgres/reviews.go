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

const reviewColumns = "id, user_id, game_id, comment, rating, created_at, updated_at"

// ReviewRepository implements port.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewReviewRepository wires a PostgreSQL-backed review repository.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new review row.
func (r *ReviewRepository) Create(ctx context.Context, review domain.Review) error {
	var ratingValue any
	if review.Rating != nil {
		ratingValue = *review.Rating
	}

	stmt, args, err := r.builder.Insert("gameverse.reviews").
		Columns("id", "user_id", "game_id", "comment", "rating", "created_at", "updated_at").
		Values(review.ID, review.UserID, review.GameID, review.Comment, ratingValue, review.CreatedAt, review.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert review sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var (
		review domain.Review
		rating sql.NullFloat64
	)

	if err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.GameID,
		&review.Comment,
		&rating,
		&review.CreatedAt,
		&review.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	if rating.Valid {
		val := rating.Float64
		review.Rating = &val
	}

	return &review, nil
}

// GetByID retrieves a review by identifier.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	stmt, args, err := r.builder.Select(reviewColumns).
		From("gameverse.reviews").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select review sql: %w", err)
	}

	return scanReview(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByUserAndGame retrieves the review a user left on a game, if any.
func (r *ReviewRepository) GetByUserAndGame(ctx context.Context, userID, gameID string) (*domain.Review, error) {
	stmt, args, err := r.builder.Select(reviewColumns).
		From("gameverse.reviews").
		Where(squirrel.Eq{"user_id": userID, "game_id": gameID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select review by user and game sql: %w", err)
	}

	return scanReview(r.exec.QueryRow(ctx, stmt, args...))
}

// ListByGame returns the reviews for a game, newest first.
func (r *ReviewRepository) ListByGame(ctx context.Context, gameID string) ([]domain.Review, error) {
	stmt, args, err := r.builder.Select(reviewColumns).
		From("gameverse.reviews").
		Where(squirrel.Eq{"game_id": gameID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reviews sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var (
			review domain.Review
			rating sql.NullFloat64
		)

		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.GameID,
			&review.Comment,
			&rating,
			&review.CreatedAt,
			&review.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}

		if rating.Valid {
			val := rating.Float64
			review.Rating = &val
		}

		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

// Update modifies an existing review's comment and rating.
func (r *ReviewRepository) Update(ctx context.Context, review domain.Review) error {
	var ratingValue any
	if review.Rating != nil {
		ratingValue = *review.Rating
	}

	stmt, args, err := r.builder.Update("gameverse.reviews").
		Set("comment", review.Comment).
		Set("rating", ratingValue).
		Set("updated_at", review.UpdatedAt).
		Where(squirrel.Eq{"id": review.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update review sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a review row.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("gameverse.reviews").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete review sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.ReviewRepository = (*ReviewRepository)(nil)
