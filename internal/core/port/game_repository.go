package port

import (
	"context"

	"github.com/aidosk/gameverse/internal/core/domain"
)

// GameFilter narrows catalog listing queries.
type GameFilter struct {
	TitleSearch string
	Category    string
	Limit       int
	Offset      int
}

// GameRepository persists the game catalog.
type GameRepository interface {
	Create(ctx context.Context, game domain.Game) error
	GetByID(ctx context.Context, id string) (*domain.Game, error)
	// GetByIDs returns the subset of requested games that still exist,
	// keyed by id. Missing ids are simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Game, error)
	List(ctx context.Context, filter GameFilter) ([]domain.Game, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, game domain.Game) error
	Delete(ctx context.Context, id string) error
}

// ReviewRepository persists game reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	GetByUserAndGame(ctx context.Context, userID, gameID string) (*domain.Review, error)
	ListByGame(ctx context.Context, gameID string) ([]domain.Review, error)
	Update(ctx context.Context, review domain.Review) error
	Delete(ctx context.Context, id string) error
}
