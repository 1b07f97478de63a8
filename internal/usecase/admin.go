package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/repository"
)

// Audit actions recorded by the back-office.
const (
	ActionBanUser       = "ban_user"
	ActionUnbanUser     = "unban_user"
	ActionUpdateUser    = "update_user"
	ActionAdjustBalance = "adjust_balance"
	ActionDeleteUser    = "delete_user"
	ActionCreateGame    = "create_game"
	ActionUpdateGame    = "update_game"
	ActionDeleteGame    = "delete_game"
	ActionUpdateOrder   = "update_order_status"
	ActionCancelOrder   = "cancel_order"
)

// AdminService is the back-office: user, game, and order management. Every
// state-changing action appends an immutable audit record and mirrors it to
// the event bus.
type AdminService struct {
	users    port.UserRepository
	games    port.GameRepository
	orders   port.OrderRepository
	activity port.ActivityLogRepository
	checkout *CheckoutService
	profiles *ProfileService
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// Dashboard aggregates the admin landing page counters.
type Dashboard struct {
	UserCount int
	GameCount int
	Orders    port.OrderSummary
	Recent    []domain.ActivityLog
}

// GameInput carries catalog fields for game creation and update.
type GameInput struct {
	Title     string
	Category  string
	Price     decimal.Decimal
	Rating    *float64
	Downloads int64
	Image     string
}

// NewAdminService constructs an AdminService.
func NewAdminService(
	users port.UserRepository,
	games port.GameRepository,
	orders port.OrderRepository,
	activity port.ActivityLogRepository,
	checkout *CheckoutService,
	profiles *ProfileService,
	events port.EventPublisher,
	log *zap.Logger,
) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{
		users:    users,
		games:    games,
		orders:   orders,
		activity: activity,
		checkout: checkout,
		profiles: profiles,
		events:   events,
		logger:   log,
		now:      time.Now,
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *AdminService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Dashboard returns storefront counters and the recent audit trail.
func (s *AdminService) Dashboard(ctx context.Context, recentLimit int) (*Dashboard, error) {
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	gameCount, err := s.games.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count games: %w", err)
	}

	summary, err := s.orders.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("orders summary: %w", err)
	}

	recent, err := s.activity.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	return &Dashboard{
		UserCount: userCount,
		GameCount: gameCount,
		Orders:    *summary,
		Recent:    recent,
	}, nil
}

// ListUsers returns storefront users for the back-office table.
func (s *AdminService) ListUsers(ctx context.Context, filter port.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// BanUser moves a user to banned status.
func (s *AdminService) BanUser(ctx context.Context, adminID, userID string) error {
	if err := s.users.UpdateStatus(ctx, userID, domain.AccountStatusBanned); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("ban user: %w", err)
	}

	s.audit(ctx, adminID, ActionBanUser, domain.TargetUser, userID, nil)
	return nil
}

// UnbanUser restores a banned user to active status.
func (s *AdminService) UnbanUser(ctx context.Context, adminID, userID string) error {
	if err := s.users.UpdateStatus(ctx, userID, domain.AccountStatusActive); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("unban user: %w", err)
	}

	s.audit(ctx, adminID, ActionUnbanUser, domain.TargetUser, userID, nil)
	return nil
}

// UpdateUser edits a user's profile fields on their behalf, with the same
// uniqueness checks as a self-service edit.
func (s *AdminService) UpdateUser(ctx context.Context, adminID, userID string, input ProfileUpdateInput) (*domain.User, error) {
	user, err := s.profiles.Update(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("username=%s email=%s", user.Username, user.Email)
	s.audit(ctx, adminID, ActionUpdateUser, domain.TargetUser, userID, &details)
	return user, nil
}

// AdjustUserBalance applies a signed delta to a user's balance.
func (s *AdminService) AdjustUserBalance(ctx context.Context, adminID, userID string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return fmt.Errorf("balance delta must be non-zero")
	}

	if err := s.users.AdjustBalance(ctx, userID, delta); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("adjust balance: %w", err)
	}

	details := fmt.Sprintf("delta=%s", delta.StringFixed(2))
	s.audit(ctx, adminID, ActionAdjustBalance, domain.TargetUser, userID, &details)
	return nil
}

// DeleteUser removes a storefront user. The audit record outlives the row.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	details := fmt.Sprintf("username=%s", user.Username)
	s.audit(ctx, adminID, ActionDeleteUser, domain.TargetUser, userID, &details)
	return nil
}

// CreateGame adds a catalog entry.
func (s *AdminService) CreateGame(ctx context.Context, adminID string, input GameInput) (*domain.Game, error) {
	if err := validateGameInput(input); err != nil {
		return nil, err
	}

	game := domain.Game{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(input.Title),
		Category:  strings.TrimSpace(input.Category),
		Price:     input.Price,
		Rating:    input.Rating,
		Downloads: input.Downloads,
		Image:     strings.TrimSpace(input.Image),
		CreatedAt: s.now().UTC(),
	}

	if err := s.games.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	details := fmt.Sprintf("title=%s price=%s", game.Title, game.Price.StringFixed(2))
	s.audit(ctx, adminID, ActionCreateGame, domain.TargetGame, game.ID, &details)
	return &game, nil
}

// UpdateGame edits a catalog entry. Existing order items keep their
// snapshotted prices regardless.
func (s *AdminService) UpdateGame(ctx context.Context, adminID, gameID string, input GameInput) (*domain.Game, error) {
	if err := validateGameInput(input); err != nil {
		return nil, err
	}

	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("lookup game: %w", err)
	}

	game.Title = strings.TrimSpace(input.Title)
	game.Category = strings.TrimSpace(input.Category)
	game.Price = input.Price
	game.Rating = input.Rating
	game.Downloads = input.Downloads
	game.Image = strings.TrimSpace(input.Image)

	if err := s.games.Update(ctx, *game); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("update game: %w", err)
	}

	details := fmt.Sprintf("title=%s price=%s", game.Title, game.Price.StringFixed(2))
	s.audit(ctx, adminID, ActionUpdateGame, domain.TargetGame, gameID, &details)
	return game, nil
}

// DeleteGame removes a catalog entry. Past order items keep the game id and
// price snapshot.
func (s *AdminService) DeleteGame(ctx context.Context, adminID, gameID string) error {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("lookup game: %w", err)
	}

	if err := s.games.Delete(ctx, gameID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("delete game: %w", err)
	}

	details := fmt.Sprintf("title=%s", game.Title)
	s.audit(ctx, adminID, ActionDeleteGame, domain.TargetGame, gameID, &details)
	return nil
}

// ListOrders returns orders for the back-office table.
func (s *AdminService) ListOrders(ctx context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus advances a non-terminal order. Cancellation must go
// through CancelOrder so the refund happens.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, adminID, orderID string, status domain.OrderStatus) error {
	switch status {
	case domain.OrderStatusProcessing, domain.OrderStatusPending, domain.OrderStatusCompleted:
	case domain.OrderStatusCancelled:
		return fmt.Errorf("%w: use cancel to refund and close an order", ErrStatusTransitionInvalid)
	default:
		return fmt.Errorf("%w: unknown order status %q", ErrStatusTransitionInvalid, status)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("lookup order: %w", err)
	}

	if order.Status.Terminal() {
		return ErrOrderClosed
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("update order status: %w", err)
	}

	details := fmt.Sprintf("from=%s to=%s", order.Status, status)
	s.audit(ctx, adminID, ActionUpdateOrder, domain.TargetOrder, orderID, &details)
	return nil
}

// CancelOrder cancels any non-terminal order with a refund, as an admin.
func (s *AdminService) CancelOrder(ctx context.Context, adminID, orderID string) error {
	cancelled, err := s.checkout.CancelAsAdmin(ctx, adminID, orderID)
	if err != nil {
		return err
	}

	details := fmt.Sprintf("refunded=%s", cancelled.TotalPrice.StringFixed(2))
	s.audit(ctx, adminID, ActionCancelOrder, domain.TargetOrder, orderID, &details)
	return nil
}

// ListActivity returns the newest audit records.
func (s *AdminService) ListActivity(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	entries, err := s.activity.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return entries, nil
}

// audit appends the immutable log row and mirrors it onto the event bus.
// Audit failures are logged, never propagated; the admin action itself has
// already landed.
func (s *AdminService) audit(ctx context.Context, adminID, action, targetType, targetID string, details *string) {
	now := s.now().UTC()
	entry := domain.ActivityLog{
		ID:         uuid.NewString(),
		AdminID:    adminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		CreatedAt:  now,
	}

	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Error("append activity log failed",
			zap.String("admin_id", adminID),
			zap.String("action", action),
			zap.Error(err),
		)
	}

	if s.events != nil {
		event := domain.AdminActionEvent{
			EventID:    uuid.NewString(),
			AdminID:    adminID,
			Action:     action,
			TargetType: targetType,
			TargetID:   targetID,
			OccurredAt: now,
		}
		if details != nil {
			event.Details = *details
		}
		if err := s.events.PublishAdminAction(ctx, event); err != nil {
			s.logger.Warn("publish admin action event failed",
				zap.String("admin_id", adminID),
				zap.String("action", action),
				zap.Error(err),
			)
		}
	}
}

func validateGameInput(input GameInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrGameInvalid)
	}
	if input.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrGameInvalid)
	}
	if input.Rating != nil && (*input.Rating < 0 || *input.Rating > 5) {
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrGameInvalid)
	}
	return nil
}
