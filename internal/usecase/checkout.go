package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/repository"
)

// CheckoutService turns a cart into an order and manages the order lifecycle
// from the buyer's side.
type CheckoutService struct {
	purchases     port.PurchaseStore
	carts         port.CartStore
	users         port.UserRepository
	games         port.GameRepository
	orders        port.OrderRepository
	notifications port.NotificationRepository
	events        port.EventPublisher
	logger        *zap.Logger
	now           func() time.Time
}

// NewCheckoutService constructs a CheckoutService.
func NewCheckoutService(
	purchases port.PurchaseStore,
	carts port.CartStore,
	users port.UserRepository,
	games port.GameRepository,
	orders port.OrderRepository,
	notifications port.NotificationRepository,
	events port.EventPublisher,
	log *zap.Logger,
) *CheckoutService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{
		purchases:     purchases,
		carts:         carts,
		users:         users,
		games:         games,
		orders:        orders,
		notifications: notifications,
		events:        events,
		logger:        log,
		now:           time.Now,
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *CheckoutService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Checkout converts the user's cart into an order. The balance debit, price
// snapshot, and order insert happen atomically in the purchase store; the
// cart is cleared only after the order has landed.
func (s *CheckoutService) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.Status == domain.AccountStatusBanned {
		return nil, ErrAccountBanned
	}

	quantities, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(quantities) == 0 {
		return nil, ErrCartEmpty
	}

	now := s.now().UTC()
	order, err := s.purchases.Purchase(ctx, userID, quantities, now)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientFunds):
			return nil, ErrInsufficientFunds
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrGameNotFound
		default:
			return nil, fmt.Errorf("purchase: %w", err)
		}
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.Warn("clear cart after checkout failed",
			zap.String("user_id", userID),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}

	// One notification per purchased line.
	gameIDs := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		gameIDs = append(gameIDs, item.GameID)
	}
	titles, err := s.games.GetByIDs(ctx, gameIDs)
	if err != nil {
		s.logger.Warn("load games for notifications failed", zap.Error(err))
		titles = map[string]domain.Game{}
	}
	for _, item := range order.Items {
		title := item.GameID
		if game, ok := titles[item.GameID]; ok {
			title = game.Title
		}
		s.notify(ctx, userID, fmt.Sprintf("You purchased %s for %s.", title, item.PriceAtPurchase.StringFixed(2)))
	}

	if s.events != nil {
		event := domain.OrderPlacedEvent{
			EventID:   uuid.NewString(),
			OrderID:   order.ID,
			UserID:    userID,
			Total:     order.TotalPrice,
			ItemCount: len(order.Items),
			PlacedAt:  now,
		}
		if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
			s.logger.Warn("publish order placed event failed",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("total", order.TotalPrice.StringFixed(2)),
		zap.Int("items", len(order.Items)),
	)

	return order, nil
}

// CancelAsAdmin cancels any non-terminal order and refunds its total.
// Cancellation is an admin-only transition; buyers cannot unwind their own
// orders.
func (s *CheckoutService) CancelAsAdmin(ctx context.Context, adminID, orderID string) (*domain.Order, error) {
	return s.cancel(ctx, orderID, adminID)
}

func (s *CheckoutService) cancel(ctx context.Context, orderID, actorID string) (*domain.Order, error) {
	cancelled, err := s.purchases.CancelOrder(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrOrderNotFound
		case errors.Is(err, repository.ErrOrderClosed):
			return nil, ErrOrderClosed
		default:
			return nil, fmt.Errorf("cancel order: %w", err)
		}
	}

	s.notify(ctx, cancelled.UserID,
		fmt.Sprintf("Order %s cancelled; %s refunded to your balance.", cancelled.ID, cancelled.TotalPrice.StringFixed(2)))

	if s.events != nil {
		event := domain.OrderCancelledEvent{
			EventID:     uuid.NewString(),
			OrderID:     cancelled.ID,
			UserID:      cancelled.UserID,
			Refunded:    cancelled.TotalPrice,
			CancelledBy: actorID,
			CancelledAt: s.now().UTC(),
		}
		if err := s.events.PublishOrderCancelled(ctx, event); err != nil {
			s.logger.Warn("publish order cancelled event failed",
				zap.String("order_id", cancelled.ID),
				zap.Error(err),
			)
		}
	}

	return cancelled, nil
}

// GetOrder returns the caller's own order with its line items.
func (s *CheckoutService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("lookup order: %w", err)
	}

	if order.UserID != userID {
		return nil, ErrNotOwner
	}

	items, err := s.orders.ListItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	order.Items = items

	return order, nil
}

// ListOrders returns the caller's orders, newest first.
func (s *CheckoutService) ListOrders(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx, port.OrderFilter{UserID: userID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *CheckoutService) notify(ctx context.Context, userID, message string) {
	if s.notifications == nil {
		return
	}

	notification := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.Warn("create notification failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
