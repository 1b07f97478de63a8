package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/repository"
)

// CatalogService serves the public game catalog.
type CatalogService struct {
	games   port.GameRepository
	reviews port.ReviewRepository
}

// GameDetail bundles a game with its reviews for the detail page.
type GameDetail struct {
	Game    domain.Game
	Reviews []domain.Review
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(games port.GameRepository, reviews port.ReviewRepository) *CatalogService {
	return &CatalogService{games: games, reviews: reviews}
}

// Browse lists catalog games with optional title search and category filter.
func (s *CatalogService) Browse(ctx context.Context, filter port.GameFilter) ([]domain.Game, error) {
	games, err := s.games.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// Get returns a single game with its reviews.
func (s *CatalogService) Get(ctx context.Context, gameID string) (*GameDetail, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("lookup game: %w", err)
	}

	reviews, err := s.reviews.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return &GameDetail{Game: *game, Reviews: reviews}, nil
}
