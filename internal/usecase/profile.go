package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/infra/security"
	"github.com/aidosk/gameverse/internal/repository"
)

// ProfileService serves and edits the authenticated user's account view.
type ProfileService struct {
	users             port.UserRepository
	orders            port.OrderRepository
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
	now               func() time.Time
	recentOrders      int
}

// Profile is the account page aggregate: the user plus recent orders.
type Profile struct {
	User         domain.User
	RecentOrders []domain.Order
}

// ProfileUpdateInput carries editable profile fields. Nil means unchanged.
type ProfileUpdateInput struct {
	Username     *string
	Email        *string
	ProfilePhoto *string
}

// NewProfileService constructs a ProfileService.
func NewProfileService(
	users port.UserRepository,
	orders port.OrderRepository,
	events port.EventPublisher,
	validator *security.PasswordValidator,
	recentOrders int,
	log *zap.Logger,
) *ProfileService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if recentOrders <= 0 {
		recentOrders = 5
	}
	return &ProfileService{
		users:             users,
		orders:            orders,
		events:            events,
		passwordValidator: validator,
		logger:            log,
		now:               time.Now,
		recentOrders:      recentOrders,
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *ProfileService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Get returns the user's profile with their most recent orders.
func (s *ProfileService) Get(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	recent, err := s.orders.List(ctx, port.OrderFilter{UserID: userID, Limit: s.recentOrders})
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}

	return &Profile{User: *user, RecentOrders: recent}, nil
}

// Update edits the user's profile fields, enforcing username and email
// uniqueness.
func (s *ProfileService) Update(ctx context.Context, userID string, input ProfileUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, fmt.Errorf("username is required")
		}
		if username != user.Username {
			if existing, err := s.users.GetByUsername(ctx, username); err == nil && existing.ID != userID {
				return nil, ErrUsernameTaken
			} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("lookup username: %w", err)
			}
			user.Username = username
		}
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("invalid email address")
		}
		if email != user.Email {
			if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing.ID != userID {
				return nil, ErrEmailTaken
			} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("lookup email: %w", err)
			}
			user.Email = email
		}
	}

	if input.ProfilePhoto != nil {
		photo := strings.TrimSpace(*input.ProfilePhoto)
		if photo == "" {
			user.ProfilePhoto = nil
		} else {
			user.ProfilePhoto = &photo
		}
	}

	if err := s.users.Update(ctx, *user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// ChangePassword replaces the user's password after checking the current one.
// The new password must satisfy the password policy and differ from the
// current password.
func (s *ProfileService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify current password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return err
	}
	if err := security.RequireDifferentFrom(currentPassword).Validate(newPassword); err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	if err := s.users.UpdatePassword(ctx, userID, hash, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	if s.events != nil {
		event := domain.PasswordChangedEvent{
			EventID:   uuid.NewString(),
			UserID:    userID,
			ChangedAt: now,
			ChangedBy: "user",
		}
		if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
			s.logger.Warn("publish password changed event failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// Library returns the user's purchased games, most recent first.
func (s *ProfileService) Library(ctx context.Context, userID string) ([]domain.LibraryEntry, error) {
	entries, err := s.orders.ListLibrary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	return entries, nil
}
