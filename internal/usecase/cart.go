package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/repository"
)

// CartService manages session-scoped carts. Carts hold only game ids and
// quantities; prices always come from the live catalog at read time.
type CartService struct {
	carts  port.CartStore
	games  port.GameRepository
	logger *zap.Logger
}

// NewCartService constructs a CartService.
func NewCartService(carts port.CartStore, games port.GameRepository, log *zap.Logger) *CartService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartService{carts: carts, games: games, logger: log}
}

// Add puts one more unit of the game into the session's cart. The game must
// exist in the catalog at add time.
func (s *CartService) Add(ctx context.Context, sessionID, gameID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	if _, err := s.games.GetByID(ctx, gameID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("lookup game: %w", err)
	}

	if err := s.carts.Add(ctx, sessionID, gameID); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}

	return nil
}

// SetQuantity replaces the line's quantity. Zero or negative removes the line.
func (s *CartService) SetQuantity(ctx context.Context, sessionID, gameID string, quantity int) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	if quantity > 0 {
		if _, err := s.games.GetByID(ctx, gameID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrGameNotFound
			}
			return fmt.Errorf("lookup game: %w", err)
		}
	}

	if err := s.carts.Set(ctx, sessionID, gameID, quantity); err != nil {
		return fmt.Errorf("set cart item: %w", err)
	}

	return nil
}

// Remove deletes the line from the cart. Removing an absent line is a no-op.
func (s *CartService) Remove(ctx context.Context, sessionID, gameID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	if err := s.carts.Remove(ctx, sessionID, gameID); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}

	return nil
}

// Get materializes the cart against the live catalog. Lines whose game has
// been deleted from the catalog are silently dropped from both the view and
// the stored cart.
func (s *CartService) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}

	quantities, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	if len(quantities) == 0 {
		return &domain.Cart{Lines: []domain.CartLine{}, Total: decimal.Zero}, nil
	}

	gameIDs := make([]string, 0, len(quantities))
	for gameID := range quantities {
		gameIDs = append(gameIDs, gameID)
	}
	sort.Strings(gameIDs)

	games, err := s.games.GetByIDs(ctx, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("load cart games: %w", err)
	}

	cart := &domain.Cart{Lines: make([]domain.CartLine, 0, len(gameIDs)), Total: decimal.Zero}
	for _, gameID := range gameIDs {
		game, ok := games[gameID]
		if !ok {
			// Game vanished from the catalog; drop the stale line.
			if err := s.carts.Remove(ctx, sessionID, gameID); err != nil {
				s.logger.Warn("prune stale cart line failed",
					zap.String("game_id", gameID),
					zap.Error(err),
				)
			}
			continue
		}

		qty := quantities[gameID]
		subtotal := game.Price.Mul(decimal.NewFromInt(int64(qty)))
		cart.Lines = append(cart.Lines, domain.CartLine{
			Game:     game,
			Quantity: qty,
			Subtotal: subtotal,
		})
		cart.Total = cart.Total.Add(subtotal)
	}

	return cart, nil
}

// Clear drops the whole cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}
