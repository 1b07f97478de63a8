package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/repository"
)

// PurchaseStore implements port.PurchaseStore. All reads and writes of a
// purchase happen in one transaction; the buyer's user row is locked FOR
// UPDATE first, so two checkouts against the same balance serialize.
type PurchaseStore struct {
	store  *Store
	users  *UserRepository
	games  *GameRepository
	orders *OrderRepository
}

// NewPurchaseStore wires the transactional purchase workflow.
func NewPurchaseStore(pool *pgxpool.Pool) *PurchaseStore {
	return &PurchaseStore{
		store:  NewStore(pool),
		users:  NewUserRepository(pool),
		games:  NewGameRepository(pool),
		orders: NewOrderRepository(pool),
	}
}

// Purchase debits the buyer and writes the order with price snapshots taken
// from the catalog inside the same transaction.
func (s *PurchaseStore) Purchase(ctx context.Context, userID string, quantities map[string]int, at time.Time) (*domain.Order, error) {
	if len(quantities) == 0 {
		return nil, fmt.Errorf("purchase: no items")
	}

	gameIDs := make([]string, 0, len(quantities))
	for gameID, qty := range quantities {
		if qty <= 0 {
			return nil, fmt.Errorf("purchase: non-positive quantity for game %s", gameID)
		}
		gameIDs = append(gameIDs, gameID)
	}
	sort.Strings(gameIDs)

	var order *domain.Order

	err := s.store.RunInTx(ctx, func(tx pgx.Tx) error {
		user, err := s.users.WithTx(tx).LockByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		games, err := s.games.WithTx(tx).GetByIDs(ctx, gameIDs)
		if err != nil {
			return fmt.Errorf("load games: %w", err)
		}

		total := decimal.Zero
		items := make([]domain.OrderItem, 0, len(gameIDs))
		orderID := uuid.NewString()

		for _, gameID := range gameIDs {
			game, ok := games[gameID]
			if !ok {
				return fmt.Errorf("game %s: %w", gameID, repository.ErrNotFound)
			}

			qty := quantities[gameID]
			total = total.Add(game.Price.Mul(decimal.NewFromInt(int64(qty))))
			items = append(items, domain.OrderItem{
				ID:              uuid.NewString(),
				OrderID:         orderID,
				GameID:          gameID,
				Quantity:        qty,
				PriceAtPurchase: game.Price,
			})
		}

		if user.Balance.LessThan(total) {
			return repository.ErrInsufficientFunds
		}

		created := domain.Order{
			ID:         orderID,
			UserID:     userID,
			Status:     domain.OrderStatusProcessing,
			TotalPrice: total,
			CreatedAt:  at.UTC(),
			Items:      items,
		}

		txOrders := s.orders.WithTx(tx)
		if err := txOrders.Create(ctx, created); err != nil {
			return err
		}
		if err := txOrders.CreateItems(ctx, items); err != nil {
			return err
		}

		if err := s.users.WithTx(tx).AdjustBalance(ctx, userID, total.Neg()); err != nil {
			return fmt.Errorf("debit balance: %w", err)
		}

		order = &created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// CancelOrder moves a non-terminal order to cancelled and refunds its total.
func (s *PurchaseStore) CancelOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var cancelled *domain.Order

	err := s.store.RunInTx(ctx, func(tx pgx.Tx) error {
		txOrders := s.orders.WithTx(tx)

		order, err := txOrders.LockByID(ctx, orderID)
		if err != nil {
			return err
		}

		if order.Status.Terminal() {
			return repository.ErrOrderClosed
		}

		if err := txOrders.UpdateStatus(ctx, order.ID, domain.OrderStatusCancelled); err != nil {
			return err
		}

		if err := s.users.WithTx(tx).AdjustBalance(ctx, order.UserID, order.TotalPrice); err != nil {
			return fmt.Errorf("refund balance: %w", err)
		}

		order.Status = domain.OrderStatusCancelled
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

var _ port.PurchaseStore = (*PurchaseStore)(nil)
